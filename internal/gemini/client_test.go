// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/haven-tui/internal/model"
	"github.com/jeranaias/haven-tui/internal/safety"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWithConfig(&ClientConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
	}, nil)
}

func candidateResponse(text string) string {
	raw, _ := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{"content": map[string]any{"parts": []any{map[string]string{"text": text}}}},
		},
	})
	return string(raw)
}

// =============================================================================
// RESPOND TESTS
// =============================================================================

func TestClient_Respond_Success(t *testing.T) {
	var captured generateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(candidateResponse("Stay near exits.")))
	})

	history := []model.Message{
		model.NewModelMessage("Welcome."),
		model.NewUserMessage("help"),
	}
	got := c.Respond(context.Background(), "what now?", history)
	assert.Equal(t, "Stay near exits.", got)

	// History plus the new message, roles preserved, persona attached.
	require.NotNil(t, captured.SystemInstruction)
	require.Len(t, captured.Contents, 3)
	assert.Equal(t, "model", captured.Contents[0].Role)
	assert.Equal(t, "user", captured.Contents[2].Role)
	assert.Equal(t, "what now?", captured.Contents[2].Parts[0].Text)
}

func TestClient_Respond_ServerErrorFallsBack(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	got := c.Respond(context.Background(), "hello", nil)
	assert.Equal(t, FallbackConnection, got)
}

func TestClient_Respond_EmptyCandidateFallsBack(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	})

	got := c.Respond(context.Background(), "hello", nil)
	assert.Equal(t, FallbackEmpty, got)
}

func TestClient_Respond_UnconfiguredNeverDialsOut(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	c.config.APIKey = ""

	got := c.Respond(context.Background(), "hello", nil)
	assert.Equal(t, FallbackConnection, got)
	assert.False(t, called)
}

// =============================================================================
// CLASSIFY TESTS
// =============================================================================

func TestClient_ClassifyLocation_Success(t *testing.T) {
	var captured generateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(candidateResponse(`{"level":"HIGH","message":"Protests downtown."}`)))
	})

	got := c.ClassifyLocation(context.Background(), "Paris")
	assert.Equal(t, model.LevelHigh, got.Level)
	assert.Equal(t, "Protests downtown.", got.Message)

	// Structured output was requested.
	require.NotNil(t, captured.GenerationConfig)
	assert.Equal(t, "application/json", captured.GenerationConfig.ResponseMimeType)
	assert.Contains(t, captured.Contents[0].Parts[0].Text, "Paris")
}

func TestClient_ClassifyLocation_Fallbacks(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}},
		{"non-json verdict", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(candidateResponse("not json at all")))
		}},
		{"unknown level", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(candidateResponse(`{"level":"SEVERE","message":"??"}`)))
		}},
		{"missing message", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(candidateResponse(`{"level":"HIGH","message":""}`)))
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, tc.handler)
			got := c.ClassifyLocation(context.Background(), "Anywhere")
			assert.Equal(t, model.LevelLow, got.Level)
			assert.Equal(t, safety.FallbackMessage, got.Message)
		})
	}
}
