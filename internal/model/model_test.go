// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// LEVEL TESTS
// =============================================================================

func TestLevel_AtLeast(t *testing.T) {
	tests := []struct {
		name      string
		level     Level
		threshold Level
		want      bool
	}{
		{"low meets low", LevelLow, LevelLow, true},
		{"low below medium", LevelLow, LevelMedium, false},
		{"low below high", LevelLow, LevelHigh, false},
		{"medium meets low", LevelMedium, LevelLow, true},
		{"medium meets medium", LevelMedium, LevelMedium, true},
		{"medium below high", LevelMedium, LevelHigh, false},
		{"high meets everything", LevelHigh, LevelLow, true},
		{"high meets high", LevelHigh, LevelHigh, true},
		{"unknown never meets low", Level("CRITICAL"), LevelLow, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.level.AtLeast(tc.threshold))
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelHigh, ParseLevel("HIGH"))
	assert.Equal(t, LevelHigh, ParseLevel("high"))
	assert.Equal(t, LevelMedium, ParseLevel(" Medium "))
	assert.Equal(t, LevelLow, ParseLevel("LOW"))

	// Garbage falls back to LOW, never to a higher level.
	assert.Equal(t, LevelLow, ParseLevel("severe"))
	assert.Equal(t, LevelLow, ParseLevel(""))
}

func TestNextLevel_Cycles(t *testing.T) {
	l := LevelLow
	seen := []Level{l}
	for i := 0; i < 3; i++ {
		l = NextLevel(l)
		seen = append(seen, l)
	}
	assert.Equal(t, []Level{LevelLow, LevelMedium, LevelHigh, LevelLow}, seen)
}

// =============================================================================
// TITLE DERIVATION TESTS
// =============================================================================

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"short text unchanged", "Help me plan", "Help me plan"},
		{"exactly 30 chars unchanged", strings.Repeat("a", 30), strings.Repeat("a", 30)},
		{"31 chars truncated", strings.Repeat("a", 31), strings.Repeat("a", 30) + "..."},
		{"long text truncated", "I need a plan to leave my apartment safely tonight", "I need a plan to leave my apar..."},
		{"empty stays empty", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveTitle(tc.text))
		})
	}
}

func TestDeriveTitle_MultibyteNotSplit(t *testing.T) {
	text := strings.Repeat("日", 40)
	title := DeriveTitle(text)
	assert.Equal(t, strings.Repeat("日", 30)+"...", title)
}

// =============================================================================
// CHAT SESSION TESTS
// =============================================================================

func TestChatSession_AppendUser_SetsTitleOnce(t *testing.T) {
	c := NewChatSession("1700000000000", time.Now())
	require.Equal(t, DefaultChatTitle, c.Title)

	// A seeded welcome message must not claim the title.
	c.AppendModel("Welcome to Haven.")
	assert.Equal(t, DefaultChatTitle, c.Title)

	c.AppendUser("first question")
	assert.Equal(t, "first question", c.Title)

	c.AppendUser("second question")
	assert.Equal(t, "first question", c.Title, "title is set by the first user message only")
}

func TestChatSession_AppendRolesAndOrder(t *testing.T) {
	c := NewChatSession("1700000000000", time.Now())
	c.AppendUser("hi")
	c.AppendModel("hello")

	require.Len(t, c.Messages, 2)
	assert.Equal(t, RoleUser, c.Messages[0].Role)
	assert.Equal(t, RoleModel, c.Messages[1].Role)
	assert.Equal(t, "hello", c.LastMessage().Text)
	assert.Equal(t, 1, c.UserMessageCount())
}

func TestChatSession_Clone_IsDeep(t *testing.T) {
	c := NewChatSession("1700000000000", time.Now())
	c.AppendUser("original")

	clone := c.Clone()
	clone.AppendModel("only in clone")

	assert.Len(t, c.Messages, 1)
	assert.Len(t, clone.Messages, 2)
}

// =============================================================================
// STORED DATA TESTS
// =============================================================================

func TestStoredData_Normalize_BackfillsLegacyRecords(t *testing.T) {
	// A record written before the safety monitor existed.
	raw := `{"users":[{"username":"ana","token":"tok-1"}],"chats":{},"activeUser":null}`

	var d StoredData
	require.NoError(t, json.Unmarshal([]byte(raw), &d))
	d.Normalize()

	assert.NotNil(t, d.SafetyZones)
	assert.NotNil(t, d.Alerts)
	assert.Empty(t, d.SafetyZones)
	assert.Empty(t, d.Alerts)
	require.Len(t, d.Users, 1)
	assert.Equal(t, "ana", d.Users[0].Username)
}

func TestStoredData_FindUser(t *testing.T) {
	d := NewStoredData()
	d.Users = append(d.Users, User{Username: "ana"}, User{Username: "ben"})

	require.NotNil(t, d.FindUser("ben"))
	assert.Nil(t, d.FindUser("missing"))

	// The pointer aliases the slice element so callers can mutate in place.
	d.FindUser("ana").Token = "tok-x"
	assert.Equal(t, "tok-x", d.Users[0].Token)
}

func TestUser_Sanitized(t *testing.T) {
	u := User{Username: "ana", Password: "secret", Token: "tok-1"}
	s := u.Sanitized()
	assert.Empty(t, s.Password)
	assert.Equal(t, "secret", u.Password, "original untouched")
}
