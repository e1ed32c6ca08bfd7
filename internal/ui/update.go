// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/haven-tui/internal/auth"
	"github.com/jeranaias/haven-tui/internal/chat"
	"github.com/jeranaias/haven-tui/internal/export"
	"github.com/jeranaias/haven-tui/internal/model"
	"github.com/jeranaias/haven-tui/internal/safety"
	"github.com/jeranaias/haven-tui/internal/session"
)

// Update routes messages to the active view.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.layout(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		a.tracker.RecordActivity()
		a.lockWarning = ""

		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		switch a.view {
		case viewLogin:
			return a.updateLogin(msg)
		case viewSignup:
			return a.updateSignup(msg)
		case viewChat:
			return a.updateChat(msg)
		case viewSafety:
			return a.updateSafety(msg)
		}
		return a, nil

	case session.TickMsg:
		if a.view == viewChat || a.view == viewSafety {
			return a, a.tracker.HandleTick()
		}
		return a, session.TickCmd()

	case session.LockWarningMsg:
		a.lockWarning = fmt.Sprintf("Locking in %s due to inactivity...", msg.Remaining.Round(time.Second))
		return a, nil

	case session.LockMsg:
		if a.view == viewChat || a.view == viewSafety {
			if err := a.deps.Auth.Logout(); err != nil {
				a.log.Error("auto-lock logout failed", zap.Error(err))
			}
			a.resetToLogin()
			a.setStatus("Locked after inactivity. Log in to continue.", false)
		}
		return a, nil

	case spinner.TickMsg:
		if a.composing || a.scanning {
			var cmd tea.Cmd
			a.spin, cmd = a.spin.Update(msg)
			if a.composing && a.view == viewChat {
				a.renderTranscript()
			}
			return a, cmd
		}
		return a, nil

	case configReloadedMsg:
		a.cfg = msg.cfg
		a.tracker.SetIdleLimit(time.Duration(msg.cfg.Auth.IdleLogoutMins) * time.Minute)
		a.setStatus("Configuration reloaded.", false)
		return a, nil

	default:
		return a.updateAsync(msg)
	}
}

// updateAsync handles results arriving from commands.
func (a *App) updateAsync(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case authSuccessMsg:
		a.activeUser = msg.user
		a.view = viewChat
		a.formErr = ""
		a.composer.Focus()
		if err := a.refreshChats(); err != nil {
			a.setStatus(err.Error(), true)
			return a, nil
		}
		if len(a.chats) == 0 {
			return a, createChatCmd(a.deps.Chats)
		}
		a.renderTranscript()
		return a, nil

	case authFailedMsg:
		a.formErr = friendlyAuthError(msg.err)
		return a, nil

	case signupDoneMsg:
		a.view = viewLogin
		a.formErr = ""
		a.loginInputs = makeLoginInputs()
		a.loginInputs[loginFieldUsername].SetValue(msg.username)
		a.loginFocus = loginFieldPassword
		a.loginInputs[loginFieldPassword].Focus()
		a.setStatus("Account created. Log in to continue.", false)
		return a, nil

	case chatCreatedMsg:
		a.activeChatID = msg.chat.ID
		if err := a.refreshChats(); err != nil {
			a.setStatus(err.Error(), true)
			return a, nil
		}
		a.renderTranscript()
		return a, nil

	case chatResponseMsg:
		a.composing = false
		if err := a.refreshChats(); err != nil {
			a.setStatus(err.Error(), true)
			return a, nil
		}
		if msg.chatID == a.activeChatID {
			a.renderTranscript()
		}
		return a, nil

	case scanFinishedMsg:
		a.scanning = false
		if err := a.refreshSafety(); err != nil {
			a.setStatus(err.Error(), true)
			return a, nil
		}
		switch {
		case msg.err != nil:
			a.setStatus("Scan interrupted: "+msg.err.Error(), true)
		case len(msg.raised) == 0:
			a.setStatus("Scan finished. No alerts.", false)
		default:
			a.setStatus(fmt.Sprintf("Scan finished. %d alert(s) raised.", len(msg.raised)), true)
		}
		return a, nil

	case exportDoneMsg:
		if msg.err != nil {
			if errors.Is(msg.err, export.ErrNoPassword) {
				a.setStatus("Export needs your password. Log out and back in, then retry.", true)
			} else {
				a.setStatus("Export failed: "+msg.err.Error(), true)
			}
			return a, nil
		}
		a.setStatus("Exported to "+msg.path, false)
		return a, nil

	case wipeDoneMsg:
		if msg.err != nil {
			a.setStatus("Wipe failed: "+msg.err.Error(), true)
			return a, nil
		}
		a.resetToLogin()
		a.setStatus("All data wiped.", false)
		return a, nil

	case errMsg:
		a.composing = false
		a.setStatus(msg.err.Error(), true)
		return a, nil
	}
	return a, nil
}

// =============================================================================
// LOGIN VIEW
// =============================================================================

func (a *App) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		a.moveLoginFocus(1)
		return a, nil
	case "shift+tab", "up":
		a.moveLoginFocus(-1)
		return a, nil

	case "ctrl+n":
		a.view = viewSignup
		a.formErr = ""
		a.signupInputs = makeSignupInputs()
		a.signupFocus = signupFieldUsername
		a.signupInputs[signupFieldUsername].Focus()
		return a, nil

	case "enter":
		username := strings.TrimSpace(a.loginInputs[loginFieldUsername].Value())
		password := a.loginInputs[loginFieldPassword].Value()
		if username == "" {
			a.formErr = "Username is required."
			return a, nil
		}
		a.sessionPassword = password
		return a, loginCmd(a.deps.Auth, username, password)
	}

	var cmd tea.Cmd
	a.loginInputs[a.loginFocus], cmd = a.loginInputs[a.loginFocus].Update(msg)
	return a, cmd
}

func (a *App) moveLoginFocus(delta int) {
	a.loginInputs[a.loginFocus].Blur()
	a.loginFocus = (a.loginFocus + delta + loginFieldCount) % loginFieldCount
	a.loginInputs[a.loginFocus].Focus()
}

// =============================================================================
// SIGNUP VIEW
// =============================================================================

func (a *App) updateSignup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.view = viewLogin
		a.formErr = ""
		return a, nil

	case "tab", "down":
		a.moveSignupFocus(1)
		return a, nil
	case "shift+tab", "up":
		a.moveSignupFocus(-1)
		return a, nil

	case "enter":
		if a.signupFocus < signupFieldCount-1 {
			a.moveSignupFocus(1)
			return a, nil
		}
		return a, a.submitSignup()

	case "ctrl+s":
		return a, a.submitSignup()
	}

	var cmd tea.Cmd
	a.signupInputs[a.signupFocus], cmd = a.signupInputs[a.signupFocus].Update(msg)
	return a, cmd
}

func (a *App) submitSignup() tea.Cmd {
	username := strings.TrimSpace(a.signupInputs[signupFieldUsername].Value())
	password := a.signupInputs[signupFieldPassword].Value()
	if username == "" || password == "" {
		a.formErr = "Username and password are required."
		return nil
	}
	profile := auth.Profile{
		Email:            strings.TrimSpace(a.signupInputs[signupFieldEmail].Value()),
		Phone:            strings.TrimSpace(a.signupInputs[signupFieldPhone].Value()),
		EmergencyContact: strings.TrimSpace(a.signupInputs[signupFieldEmergency].Value()),
	}
	return registerCmd(a.deps.Auth, username, password, profile)
}

func (a *App) moveSignupFocus(delta int) {
	a.signupInputs[a.signupFocus].Blur()
	a.signupFocus = (a.signupFocus + delta + signupFieldCount) % signupFieldCount
	a.signupInputs[a.signupFocus].Focus()
}

// =============================================================================
// CHAT VIEW
// =============================================================================

func (a *App) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Two-step wipe confirmation: any key other than ctrl+w cancels.
	if a.confirmWipe && key != "ctrl+w" {
		a.confirmWipe = false
		a.setStatus("Wipe cancelled.", false)
	}

	switch key {
	case "enter":
		return a, a.sendMessage()

	case "ctrl+n":
		return a, createChatCmd(a.deps.Chats)

	case "ctrl+d":
		return a, a.deleteActiveChat()

	case "ctrl+e":
		return a, a.exportActiveChat()

	case "ctrl+b":
		a.sidebarOpen = !a.sidebarOpen
		a.layout(a.width, a.height)
		return a, nil

	case "ctrl+j":
		a.selectChat(a.sidebarIndex + 1)
		return a, nil
	case "ctrl+k":
		a.selectChat(a.sidebarIndex - 1)
		return a, nil

	case "ctrl+g":
		a.view = viewSafety
		a.composer.Blur()
		if err := a.refreshSafety(); err != nil {
			a.setStatus(err.Error(), true)
		}
		return a, nil

	case "ctrl+l":
		if err := a.deps.Auth.Logout(); err != nil {
			a.setStatus(err.Error(), true)
			return a, nil
		}
		a.resetToLogin()
		return a, nil

	case "ctrl+w":
		if !a.confirmWipe {
			a.confirmWipe = true
			a.setStatus("Wipe ALL data? Press ctrl+w again to confirm.", true)
			return a, nil
		}
		a.confirmWipe = false
		return a, wipeCmd(a.deps.Store)

	case "alt+1", "alt+2", "alt+3", "alt+4":
		idx := int(key[len(key)-1] - '1')
		if idx >= 0 && idx < len(chat.QuickPrompts) {
			a.composer.SetValue(chat.QuickPrompts[idx])
		}
		return a, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.composer, cmd = a.composer.Update(msg)
	cmds = append(cmds, cmd)
	a.transcript, cmd = a.transcript.Update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

// sendMessage persists the composed message and kicks off the reply.
func (a *App) sendMessage() tea.Cmd {
	if a.composing || a.activeChatID == "" {
		return nil
	}
	text := a.composer.Value()
	if strings.TrimSpace(text) == "" {
		return nil
	}

	updated, err := a.deps.Chats.AppendUserMessage(a.activeChatID, text)
	if err != nil {
		a.setStatus(err.Error(), true)
		return nil
	}
	a.composer.Reset()
	a.composing = true
	if err := a.refreshChats(); err != nil {
		a.setStatus(err.Error(), true)
	}
	a.renderTranscript()

	// History excludes the message just appended.
	history := updated.Messages[:len(updated.Messages)-1]
	timeout := time.Duration(a.cfg.Gemini.TimeoutSecs) * time.Second
	return tea.Batch(
		a.spin.Tick,
		respondCmd(a.deps.Responder, a.deps.Chats, a.activeChatID, text, history, timeout),
	)
}

// deleteActiveChat removes the current chat and selects the next one,
// creating a fresh chat when the last one goes.
func (a *App) deleteActiveChat() tea.Cmd {
	if a.activeChatID == "" {
		return nil
	}
	if err := a.deps.Chats.Delete(a.activeChatID); err != nil {
		a.setStatus(err.Error(), true)
		return nil
	}
	a.activeChatID = ""
	if err := a.refreshChats(); err != nil {
		a.setStatus(err.Error(), true)
		return nil
	}
	if len(a.chats) == 0 {
		return createChatCmd(a.deps.Chats)
	}
	a.renderTranscript()
	return nil
}

// exportActiveChat writes the protected PDF for the current chat.
func (a *App) exportActiveChat() tea.Cmd {
	current := a.activeChat()
	if current == nil {
		return nil
	}
	password := a.exportPassword()
	return exportCmd(a.deps.Exporter, current, a.activeUser.Username, password)
}

// exportPassword picks the plain-text password for export derivation:
// the one typed at login, else the stored record when it is not a
// hash. Empty means export cannot run.
func (a *App) exportPassword() string {
	if a.sessionPassword != "" {
		return a.sessionPassword
	}
	if strings.HasPrefix(a.activeUser.Password, "$2") {
		return ""
	}
	return a.activeUser.Password
}

func (a *App) selectChat(index int) {
	if index < 0 || index >= len(a.chats) {
		return
	}
	a.sidebarIndex = index
	a.activeChatID = a.chats[index].ID
	a.renderTranscript()
}

// =============================================================================
// SAFETY VIEW
// =============================================================================

func (a *App) updateSafety(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.addingZone {
		return a.updateZoneForm(msg)
	}

	switch msg.String() {
	case "esc", "ctrl+g":
		a.view = viewChat
		a.composer.Focus()
		a.renderTranscript()
		return a, nil

	case "a":
		a.addingZone = true
		a.zoneInput.Reset()
		a.zoneInput.Focus()
		return a, textinput.Blink

	case "d":
		if a.zoneIndex < len(a.zones) {
			zone := a.zones[a.zoneIndex]
			if err := a.deps.Monitor.RemoveZone(zone.ID); err != nil {
				a.setStatus(err.Error(), true)
				return a, nil
			}
			if err := a.refreshSafety(); err != nil {
				a.setStatus(err.Error(), true)
			}
		}
		return a, nil

	case "s":
		if a.scanning || len(a.zones) == 0 {
			return a, nil
		}
		a.scanning = true
		a.setStatus("", false)
		return a, tea.Batch(a.spin.Tick, scanCmd(a.deps.Monitor))

	case "t":
		a.nextLevel = model.NextLevel(a.nextLevel)
		return a, nil

	case "up", "k":
		if a.zoneIndex > 0 {
			a.zoneIndex--
		}
		return a, nil
	case "down", "j":
		if a.zoneIndex < len(a.zones)-1 {
			a.zoneIndex++
		}
		return a, nil

	case "ctrl+l":
		if err := a.deps.Auth.Logout(); err != nil {
			a.setStatus(err.Error(), true)
			return a, nil
		}
		a.resetToLogin()
		return a, nil
	}
	return a, nil
}

func (a *App) updateZoneForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.addingZone = false
		a.zoneInput.Blur()
		return a, nil

	case "ctrl+t":
		a.nextLevel = model.NextLevel(a.nextLevel)
		return a, nil

	case "enter":
		name := a.zoneInput.Value()
		a.addingZone = false
		a.zoneInput.Blur()
		if _, err := a.deps.Monitor.AddZone(name, a.nextLevel); err != nil {
			if errors.Is(err, safety.ErrEmptyZoneName) {
				a.setStatus("Zone name cannot be empty.", true)
			} else {
				a.setStatus(err.Error(), true)
			}
			return a, nil
		}
		if err := a.refreshSafety(); err != nil {
			a.setStatus(err.Error(), true)
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.zoneInput, cmd = a.zoneInput.Update(msg)
	return a, cmd
}

// =============================================================================
// HELPERS
// =============================================================================

// friendlyAuthError maps auth failures to form-ready text.
func friendlyAuthError(err error) string {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid username or password."
	case errors.Is(err, auth.ErrDuplicateUser):
		return "That username is taken."
	case errors.Is(err, auth.ErrEmptyCredentials):
		return "Username and password are required."
	default:
		return err.Error()
	}
}
