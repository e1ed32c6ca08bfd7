// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/haven-tui/internal/auth"
	"github.com/jeranaias/haven-tui/internal/chat"
	"github.com/jeranaias/haven-tui/internal/export"
	"github.com/jeranaias/haven-tui/internal/model"
	"github.com/jeranaias/haven-tui/internal/safety"
	"github.com/jeranaias/haven-tui/internal/storage"
)

// scanTimeout bounds a whole scan pass, not a single classification.
const scanTimeout = 2 * time.Minute

// =============================================================================
// AUTH COMMANDS
// =============================================================================

func loginCmd(m *auth.Manager, username, password string) tea.Cmd {
	return func() tea.Msg {
		user, err := m.Login(username, password)
		if err != nil {
			return authFailedMsg{err: err}
		}
		return authSuccessMsg{user: *user}
	}
}

func registerCmd(m *auth.Manager, username, password string, profile auth.Profile) tea.Cmd {
	return func() tea.Msg {
		if err := m.Register(username, password, profile); err != nil {
			return authFailedMsg{err: err}
		}
		return signupDoneMsg{username: username}
	}
}

// =============================================================================
// CHAT COMMANDS
// =============================================================================

func createChatCmd(m *chat.Manager) tea.Cmd {
	return func() tea.Msg {
		created, err := m.Create()
		if err != nil {
			return errMsg{err: err}
		}
		return chatCreatedMsg{chat: created}
	}
}

// respondCmd asks the responder for a reply and persists it. history is
// the transcript before the pending user message; the responder never
// fails, so the reply (or its fallback text) always lands in the chat.
func respondCmd(r chat.Responder, m *chat.Manager, chatID, text string, history []model.Message, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		reply := r.Respond(ctx, text, history)
		if _, err := m.AppendModelMessage(chatID, reply); err != nil {
			return errMsg{err: err}
		}
		return chatResponseMsg{chatID: chatID, text: reply}
	}
}

// =============================================================================
// SAFETY COMMANDS
// =============================================================================

func scanCmd(m *safety.Monitor) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
		defer cancel()

		raised, err := m.ScanAll(ctx)
		return scanFinishedMsg{raised: raised, err: err}
	}
}

// =============================================================================
// EXPORT COMMANDS
// =============================================================================

func exportCmd(e *export.PDFExporter, c *model.ChatSession, username, password string) tea.Cmd {
	return func() tea.Msg {
		path, err := e.ExportToFile(c, username, password)
		return exportDoneMsg{path: path, err: err}
	}
}

// =============================================================================
// STORAGE COMMANDS
// =============================================================================

func wipeCmd(s *storage.Store) tea.Cmd {
	return func() tea.Msg {
		return wipeDoneMsg{err: s.Wipe()}
	}
}
