// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/haven-tui/internal/model"
	"github.com/jeranaias/haven-tui/internal/safety"
)

// Fallback replies. The chat never breaks on transport problems; the
// user sees one of these instead of an error.
const (
	FallbackConnection = "Connection error. Please check your internet or API configuration."
	FallbackEmpty      = "I'm having trouble responding right now."
)

// systemInstruction fixes the assistant's persona for every chat turn.
const systemInstruction = "You are Haven, a calm and discreet personal safety assistant. " +
	"You help people plan for their safety: exit strategies, preserving evidence, " +
	"travel checklists, and finding safe places. Be practical and specific. " +
	"Never moralize, never speculate about the user's situation beyond what they share, " +
	"and keep answers short enough to read under stress. Use markdown lists where it helps."

// classifyPrompt asks for a structured risk verdict for one location.
const classifyPrompt = "Assess the current public safety risk for the following location " +
	"and respond with a JSON object containing \"level\" (LOW, MEDIUM, or HIGH) and " +
	"\"message\" (one short sentence explaining the level). Location: "

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError categorizes a failed API call. These never escape the
// public methods; they exist for logging.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotConfigured
	ErrTypeConnection
	ErrTypeStatus
	ErrTypeInvalidResponse
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the Gemini client.
type ClientConfig struct {
	// APIKey authenticates every request. Empty means unconfigured;
	// calls short-circuit to fallbacks without touching the network.
	APIKey string

	// Model is the Gemini model name (default: "gemini-2.0-flash").
	Model string

	// BaseURL is the API base URL. Overridable for tests.
	BaseURL string

	// Timeout for requests (default: 30s).
	Timeout time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		Model:   "gemini-2.0-flash",
		BaseURL: "https://generativelanguage.googleapis.com",
		Timeout: 30 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the Gemini API. It implements both the chat
// Responder and the safety Classifier. Thread-safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient creates a client with default configuration and the given key.
func NewClient(apiKey string, log *zap.Logger) *Client {
	cfg := DefaultConfig()
	cfg.APIKey = apiKey
	return NewClientWithConfig(cfg, log)
}

// NewClientWithConfig creates a client with custom configuration.
func NewClientWithConfig(config *ClientConfig, log *zap.Logger) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Model == "" {
		config.Model = "gemini-2.0-flash"
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		log:        log,
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.config.APIKey != ""
}

// =============================================================================
// CHAT RESPONDER
// =============================================================================

// Respond sends the conversation plus the new user message and returns
// the assistant's reply. Never returns an error: failures come back as
// fallback text.
func (c *Client) Respond(ctx context.Context, message string, history []model.Message) string {
	if !c.Configured() {
		return FallbackConnection
	}

	contents := make([]content, 0, len(history)+1)
	for _, m := range history {
		if m.Text == "" {
			continue
		}
		contents = append(contents, content{
			Role:  string(m.Role),
			Parts: []part{{Text: m.Text}},
		})
	}
	contents = append(contents, content{
		Role:  string(model.RoleUser),
		Parts: []part{{Text: message}},
	})

	req := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: systemInstruction}}},
		Contents:          contents,
	}

	text, err := c.generate(ctx, req)
	if err != nil {
		c.log.Warn("chat request failed", zap.Error(err))
		return FallbackConnection
	}
	if text == "" {
		return FallbackEmpty
	}
	return text
}

// =============================================================================
// RISK CLASSIFIER
// =============================================================================

// ClassifyLocation assesses one location. Never returns an error: any
// failure yields the LOW fallback assessment.
func (c *Client) ClassifyLocation(ctx context.Context, location string) model.Assessment {
	fallback := model.Assessment{Level: model.LevelLow, Message: safety.FallbackMessage}
	if !c.Configured() {
		return fallback
	}

	req := generateRequest{
		Contents: []content{{
			Role:  string(model.RoleUser),
			Parts: []part{{Text: classifyPrompt + location}},
		}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema: &schema{
				Type: "OBJECT",
				Properties: map[string]*schema{
					"level":   {Type: "STRING", Enum: []string{"LOW", "MEDIUM", "HIGH"}},
					"message": {Type: "STRING"},
				},
				Required: []string{"level", "message"},
			},
		},
	}

	text, err := c.generate(ctx, req)
	if err != nil {
		c.log.Warn("classify request failed",
			zap.String("location", location), zap.Error(err))
		return fallback
	}

	var verdict struct {
		Level   string `json:"level"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(text), &verdict); err != nil || verdict.Message == "" {
		c.log.Warn("classify response unparseable", zap.String("location", location))
		return fallback
	}

	level := model.Level(verdict.Level)
	if !level.Valid() {
		return fallback
	}
	return model.Assessment{Level: level, Message: verdict.Message}
}

// =============================================================================
// WIRE TYPES
// =============================================================================

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type schema struct {
	Type       string             `json:"type"`
	Enum       []string           `json:"enum,omitempty"`
	Properties map[string]*schema `json:"properties,omitempty"`
	Required   []string           `json:"required,omitempty"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
	ResponseSchema   *schema `json:"responseSchema,omitempty"`
}

type generateRequest struct {
	SystemInstruction *content          `json:"system_instruction,omitempty"`
	Contents          []content         `json:"contents"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// =============================================================================
// INTERNALS
// =============================================================================

// generate performs one generateContent call and returns the first
// candidate's text.
func (c *Client) generate(ctx context.Context, reqBody generateRequest) (string, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", &ClientError{Type: ErrTypeUnknown, Message: "failed to encode request", Cause: err}
	}

	endpoint := c.config.BaseURL + "/v1beta/models/" + url.PathEscape(c.config.Model) +
		":generateContent?key=" + url.QueryEscape(c.config.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &ClientError{Type: ErrTypeConnection, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", &ClientError{Type: ErrTypeConnection, Message: "failed to read response", Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ClientError{Type: ErrTypeStatus, Message: "unexpected status: " + resp.Status}
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
