// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/haven-tui/internal/model"
	"github.com/jeranaias/haven-tui/internal/storage"
)

// WelcomeText seeds every new chat so the user is never staring at an
// empty thread.
const WelcomeText = "Hello, I'm Haven. I'm here to help you plan for your safety. " +
	"You can ask me for an exit strategy, help preserving evidence, or a travel safety checklist. " +
	"What's on your mind?"

// QuickPrompts are the one-tap starter prompts shown above the input.
var QuickPrompts = []string{
	"I am lost and need to find a safe place nearby",
	"Help me plan a discreet exit strategy",
	"How do I preserve evidence safely?",
	"Make me a travel safety checklist",
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrChatNotFound = errors.New("chat not found")
	ErrEmptyMessage = errors.New("message text is empty")
)

// =============================================================================
// RESPONDER
// =============================================================================

// Responder produces the assistant's reply to a user message given the
// prior history. Implementations never return an error: failures are
// absorbed into fallback text so the conversation always continues.
type Responder interface {
	Respond(ctx context.Context, message string, history []model.Message) string
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager performs chat session operations against the store.
type Manager struct {
	store *storage.Store
}

// NewManager creates a chat manager.
func NewManager(store *storage.Store) *Manager {
	return &Manager{store: store}
}

// Create starts a new chat with the placeholder title and the seeded
// welcome message, persists it, and returns it.
func (m *Manager) Create() (*model.ChatSession, error) {
	var created *model.ChatSession
	err := m.store.Update(func(d *model.StoredData) error {
		now := time.Now()
		chat := model.NewChatSession(newChatID(d, now), now)
		chat.AppendModel(WelcomeText)
		d.Chats[chat.ID] = chat
		created = chat.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AppendUserMessage appends a user message to a chat. Blank text is
// rejected before anything is persisted. The first user message sets
// the chat title.
func (m *Manager) AppendUserMessage(chatID, text string) (*model.ChatSession, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}
	return m.append(chatID, func(c *model.ChatSession) {
		c.AppendUser(text)
	})
}

// AppendModelMessage appends an assistant reply to a chat.
func (m *Manager) AppendModelMessage(chatID, text string) (*model.ChatSession, error) {
	return m.append(chatID, func(c *model.ChatSession) {
		c.AppendModel(text)
	})
}

// Delete removes a chat. Unknown ids return ErrChatNotFound.
func (m *Manager) Delete(chatID string) error {
	return m.store.Update(func(d *model.StoredData) error {
		if _, ok := d.Chats[chatID]; !ok {
			return ErrChatNotFound
		}
		delete(d.Chats, chatID)
		return nil
	})
}

// Get returns a copy of a chat by id.
func (m *Manager) Get(chatID string) (*model.ChatSession, error) {
	data, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	chat, ok := data.Chats[chatID]
	if !ok {
		return nil, ErrChatNotFound
	}
	return chat.Clone(), nil
}

// List returns all chats, newest first. The order is recomputed from
// CreatedAt on every call rather than cached.
func (m *Manager) List() ([]*model.ChatSession, error) {
	data, err := m.store.Load()
	if err != nil {
		return nil, err
	}

	chats := make([]*model.ChatSession, 0, len(data.Chats))
	for _, c := range data.Chats {
		chats = append(chats, c.Clone())
	}
	sort.Slice(chats, func(i, j int) bool {
		if !chats[i].CreatedAt.Equal(chats[j].CreatedAt) {
			return chats[i].CreatedAt.After(chats[j].CreatedAt)
		}
		return chats[i].ID > chats[j].ID
	})
	return chats, nil
}

// =============================================================================
// INTERNALS
// =============================================================================

func (m *Manager) append(chatID string, mutate func(*model.ChatSession)) (*model.ChatSession, error) {
	var updated *model.ChatSession
	err := m.store.Update(func(d *model.StoredData) error {
		chat, ok := d.Chats[chatID]
		if !ok {
			return ErrChatNotFound
		}
		mutate(chat)
		updated = chat.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// newChatID derives an id from the creation timestamp. Two chats
// created within the same millisecond get a random suffix on the
// second one.
func newChatID(d *model.StoredData, now time.Time) string {
	id := strconv.FormatInt(now.UnixMilli(), 10)
	if _, taken := d.Chats[id]; !taken {
		return id
	}
	bytes := make([]byte, 3)
	rand.Read(bytes)
	return id + "-" + hex.EncodeToString(bytes)
}
