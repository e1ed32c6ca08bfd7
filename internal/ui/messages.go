// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/haven-tui/internal/config"
	"github.com/jeranaias/haven-tui/internal/model"
)

// =============================================================================
// APPLICATION MESSAGES
// =============================================================================

// authSuccessMsg reports a successful login.
type authSuccessMsg struct {
	user model.User
}

// authFailedMsg reports a failed login or registration.
type authFailedMsg struct {
	err error
}

// signupDoneMsg reports a completed registration.
type signupDoneMsg struct {
	username string
}

// chatCreatedMsg carries a freshly created chat session.
type chatCreatedMsg struct {
	chat *model.ChatSession
}

// chatResponseMsg carries the assistant reply for a chat. The reply is
// already persisted when this message arrives.
type chatResponseMsg struct {
	chatID string
	text   string
}

// scanFinishedMsg reports the outcome of a safety zone scan pass.
type scanFinishedMsg struct {
	raised []model.Alert
	err    error
}

// exportDoneMsg reports the outcome of a PDF export.
type exportDoneMsg struct {
	path string
	err  error
}

// wipeDoneMsg reports the outcome of wiping stored data.
type wipeDoneMsg struct {
	err error
}

// configReloadedMsg carries a config reloaded from disk.
type configReloadedMsg struct {
	cfg *config.Config
}

// errMsg carries a generic failure for the status line.
type errMsg struct {
	err error
}

// ConfigReloaded wraps a freshly loaded config so the watcher can hand
// it to the running program via Send.
func ConfigReloaded(cfg *config.Config) tea.Msg {
	return configReloadedMsg{cfg: cfg}
}
