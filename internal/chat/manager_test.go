// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/haven-tui/internal/model"
	"github.com/jeranaias/haven-tui/internal/storage"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "haven.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewManager(store)
}

// =============================================================================
// CREATE TESTS
// =============================================================================

func TestManager_Create_SeedsWelcome(t *testing.T) {
	m := newTestManager(t)

	chat, err := m.Create()
	require.NoError(t, err)
	assert.Equal(t, model.DefaultChatTitle, chat.Title)
	require.Len(t, chat.Messages, 1)
	assert.Equal(t, model.RoleModel, chat.Messages[0].Role)
	assert.Equal(t, WelcomeText, chat.Messages[0].Text)

	// Persisted, not just returned.
	got, err := m.Get(chat.ID)
	require.NoError(t, err)
	assert.Equal(t, chat.ID, got.ID)
}

func TestManager_Create_UniqueIDs(t *testing.T) {
	m := newTestManager(t)

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		chat, err := m.Create()
		require.NoError(t, err)
		assert.False(t, seen[chat.ID], "duplicate chat id %s", chat.ID)
		seen[chat.ID] = true
	}
}

// =============================================================================
// APPEND TESTS
// =============================================================================

func TestManager_AppendUserMessage_TitleRule(t *testing.T) {
	m := newTestManager(t)
	chat, err := m.Create()
	require.NoError(t, err)

	long := strings.Repeat("x", 45)
	got, err := m.AppendUserMessage(chat.ID, long)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("x", 30)+"...", got.Title)

	// Later user messages never retitle.
	got, err = m.AppendUserMessage(chat.ID, "short follow-up")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("x", 30)+"...", got.Title)
}

func TestManager_AppendUserMessage_ShortTitleNoEllipsis(t *testing.T) {
	m := newTestManager(t)
	chat, err := m.Create()
	require.NoError(t, err)

	got, err := m.AppendUserMessage(chat.ID, "exactly short")
	require.NoError(t, err)
	assert.Equal(t, "exactly short", got.Title)
}

func TestManager_AppendUserMessage_RejectsBlank(t *testing.T) {
	m := newTestManager(t)
	chat, err := m.Create()
	require.NoError(t, err)

	_, err = m.AppendUserMessage(chat.ID, "   \n\t ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	// Nothing was persisted.
	got, err := m.Get(chat.ID)
	require.NoError(t, err)
	assert.Len(t, got.Messages, 1)
}

func TestManager_AppendModelMessage(t *testing.T) {
	m := newTestManager(t)
	chat, err := m.Create()
	require.NoError(t, err)

	_, err = m.AppendUserMessage(chat.ID, "help me plan")
	require.NoError(t, err)
	got, err := m.AppendModelMessage(chat.ID, "Here is a plan.")
	require.NoError(t, err)

	require.Len(t, got.Messages, 3)
	assert.Equal(t, model.RoleModel, got.Messages[2].Role)
	assert.Equal(t, "Here is a plan.", got.Messages[2].Text)
}

func TestManager_Append_UnknownChat(t *testing.T) {
	m := newTestManager(t)

	_, err := m.AppendUserMessage("missing", "hello")
	assert.ErrorIs(t, err, ErrChatNotFound)
	_, err = m.AppendModelMessage("missing", "hello")
	assert.ErrorIs(t, err, ErrChatNotFound)
}

// =============================================================================
// DELETE / LIST TESTS
// =============================================================================

func TestManager_Delete(t *testing.T) {
	m := newTestManager(t)
	chat, err := m.Create()
	require.NoError(t, err)

	require.NoError(t, m.Delete(chat.ID))
	_, err = m.Get(chat.ID)
	assert.ErrorIs(t, err, ErrChatNotFound)

	assert.ErrorIs(t, m.Delete(chat.ID), ErrChatNotFound)
}

func TestManager_List_NewestFirst(t *testing.T) {
	m := newTestManager(t)

	// Spaced out so CreatedAt ordering is deterministic.
	a, err := m.Create()
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	b, err := m.Create()
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	c, err := m.Create()
	require.NoError(t, err)

	chats, err := m.List()
	require.NoError(t, err)
	require.Len(t, chats, 3)

	// Newest first, recomputed from CreatedAt.
	assert.Equal(t, c.ID, chats[0].ID)
	assert.Equal(t, b.ID, chats[1].ID)
	assert.Equal(t, a.ID, chats[2].ID)

	require.NoError(t, m.Delete(b.ID))
	chats, err = m.List()
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, c.ID, chats[0].ID)
	assert.Equal(t, a.ID, chats[1].ID)
}

func TestManager_List_CopiesAreIndependent(t *testing.T) {
	m := newTestManager(t)
	chat, err := m.Create()
	require.NoError(t, err)

	chats, err := m.List()
	require.NoError(t, err)
	chats[0].Title = "mutated locally"

	got, err := m.Get(chat.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultChatTitle, got.Title)
}
