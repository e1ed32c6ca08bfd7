// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// DefaultChatTitle is the placeholder title before the first user message.
const DefaultChatTitle = "New Safety Plan"

// titleRuneLimit is the number of leading characters kept when a chat
// title is derived from the first user message.
const titleRuneLimit = 30

// =============================================================================
// CHAT SESSION TYPE
// =============================================================================

// ChatSession holds one conversation thread with the assistant.
type ChatSession struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewChatSession creates an empty chat with the placeholder title.
// The ID is derived from the creation timestamp by the chat manager.
func NewChatSession(id string, createdAt time.Time) *ChatSession {
	return &ChatSession{
		ID:        id,
		Title:     DefaultChatTitle,
		Messages:  make([]Message, 0),
		CreatedAt: createdAt,
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AppendUser appends a user message. The first user message in the chat
// also sets the title.
func (c *ChatSession) AppendUser(text string) Message {
	msg := NewUserMessage(text)
	if c.UserMessageCount() == 0 {
		c.Title = DeriveTitle(text)
	}
	c.Messages = append(c.Messages, msg)
	return msg
}

// AppendModel appends an AI response message.
func (c *ChatSession) AppendModel(text string) Message {
	msg := NewModelMessage(text)
	c.Messages = append(c.Messages, msg)
	return msg
}

// UserMessageCount returns the number of user messages in the chat.
func (c *ChatSession) UserMessageCount() int {
	n := 0
	for _, m := range c.Messages {
		if m.Role == RoleUser {
			n++
		}
	}
	return n
}

// LastMessage returns the most recent message, or nil if empty.
func (c *ChatSession) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return &c.Messages[len(c.Messages)-1]
}

// Clone creates a deep copy of the chat session.
func (c *ChatSession) Clone() *ChatSession {
	clone := *c
	clone.Messages = make([]Message, len(c.Messages))
	copy(clone.Messages, c.Messages)
	return &clone
}

// =============================================================================
// TITLE DERIVATION
// =============================================================================

// DeriveTitle builds a chat title from the first user message: the
// first 30 characters, with "..." appended only when the message was
// actually longer. Rune-based so Unicode is never split mid-character.
func DeriveTitle(text string) string {
	runes := []rune(text)
	if len(runes) <= titleRuneLimit {
		return text
	}
	return string(runes[:titleRuneLimit]) + "..."
}
