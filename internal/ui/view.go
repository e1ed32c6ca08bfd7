// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/haven-tui/internal/chat"
	"github.com/jeranaias/haven-tui/internal/model"
	"github.com/jeranaias/haven-tui/internal/util"
)

const (
	headerHeight   = 1
	statusHeight   = 1
	composerHeight = 5
)

// layout recomputes sizes after a resize or sidebar toggle.
func (a *App) layout(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	transcriptWidth := width
	if a.sidebarOpen {
		transcriptWidth -= sidebarWidth
	}
	if transcriptWidth < 20 {
		transcriptWidth = 20
	}
	transcriptHeight := height - headerHeight - statusHeight - composerHeight
	if transcriptHeight < 3 {
		transcriptHeight = 3
	}

	a.transcript.Width = transcriptWidth
	a.transcript.Height = transcriptHeight
	a.composer.SetWidth(transcriptWidth - 2)
	a.markdown.SetWidth(transcriptWidth - 2)
	a.zoneInput.Width = transcriptWidth - 10

	if a.view == viewChat {
		a.renderTranscript()
	}
}

// View renders the active view.
func (a *App) View() string {
	if !a.ready {
		return "Starting haven..."
	}

	switch a.view {
	case viewLogin:
		return a.viewLogin()
	case viewSignup:
		return a.viewSignup()
	case viewChat:
		return a.viewChat()
	case viewSafety:
		return a.viewSafety()
	}
	return ""
}

// =============================================================================
// LOGIN / SIGNUP VIEWS
// =============================================================================

func (a *App) viewLogin() string {
	var b strings.Builder

	b.WriteString(a.theme.HeaderBrand.Render("haven"))
	b.WriteString(a.theme.MutedText.Render("  — your personal safety companion"))
	b.WriteString("\n\n")
	b.WriteString(a.theme.FormLabel.Render("Log in") + "\n\n")

	labels := []string{"Username", "Password"}
	for i, input := range a.loginInputs {
		b.WriteString(a.theme.FormLabel.Render(labels[i]) + "\n")
		b.WriteString(input.View() + "\n\n")
	}

	b.WriteString(a.formLine())
	b.WriteString(a.shortcuts(
		"enter", "log in",
		"ctrl+n", "create account",
		"ctrl+c", "quit",
	))
	return a.centered(b.String())
}

func (a *App) viewSignup() string {
	var b strings.Builder

	b.WriteString(a.theme.HeaderBrand.Render("haven"))
	b.WriteString("\n\n")
	b.WriteString(a.theme.FormLabel.Render("Create account") + "\n\n")

	labels := []string{"Username", "Password", "Email", "Phone", "Emergency contact"}
	for i, input := range a.signupInputs {
		b.WriteString(a.theme.FormLabel.Render(labels[i]) + "\n")
		b.WriteString(input.View() + "\n\n")
	}

	b.WriteString(a.formLine())
	b.WriteString(a.shortcuts(
		"enter", "next / submit",
		"ctrl+s", "submit",
		"esc", "back",
	))
	return a.centered(b.String())
}

// formLine renders the form error or pending status.
func (a *App) formLine() string {
	switch {
	case a.formErr != "":
		return a.theme.ErrorText.Render(a.formErr) + "\n\n"
	case a.status != "":
		return a.theme.InfoText.Render(a.status) + "\n\n"
	}
	return ""
}

// =============================================================================
// CHAT VIEW
// =============================================================================

func (a *App) viewChat() string {
	header := a.chatHeader()

	body := a.transcript.View()
	if a.sidebarOpen {
		body = lipgloss.JoinHorizontal(lipgloss.Top, a.sidebar(), body)
	}

	composer := a.theme.InputContainer.Render(a.composer.View())
	status := a.statusBar()

	return lipgloss.JoinVertical(lipgloss.Left, header, body, composer, status)
}

func (a *App) chatHeader() string {
	title := "haven"
	if current := a.activeChat(); current != nil {
		title += "  ·  " + current.Title
	}
	left := a.theme.Header.Render(title)

	if a.lockWarning != "" {
		return left + "  " + a.theme.WarningText.Render(a.lockWarning)
	}
	return left
}

// sidebar lists chats newest first with the active one highlighted.
func (a *App) sidebar() string {
	var b strings.Builder
	b.WriteString(a.theme.FormLabel.Render("Safety plans") + "\n")

	for i, c := range a.chats {
		title := util.TruncateWidth(c.Title, sidebarWidth-4)
		if i == a.sidebarIndex {
			b.WriteString(a.theme.SidebarSelected.Render("> "+title) + "\n")
		} else {
			b.WriteString(a.theme.SidebarItem.Render("  "+title) + "\n")
		}
	}

	content := lipgloss.NewStyle().
		Width(sidebarWidth - 2).
		Height(a.transcript.Height).
		Render(b.String())
	return a.theme.Sidebar.Render(content)
}

// renderTranscript rebuilds the viewport content for the active chat.
func (a *App) renderTranscript() {
	current := a.activeChat()
	if current == nil {
		a.transcript.SetContent("")
		return
	}

	var b strings.Builder
	for _, msg := range current.Messages {
		b.WriteString(a.messageHeader(msg) + "\n")
		b.WriteString(a.markdown.Render(msg.Text))
		b.WriteString("\n\n")
	}

	if a.composing {
		b.WriteString(a.spin.View())
		b.WriteString(a.theme.MutedText.Render(" Haven is thinking..."))
		b.WriteString("\n")
	} else if current.UserMessageCount() == 0 {
		b.WriteString(a.quickPromptHelp())
	}

	a.transcript.SetContent(b.String())
	a.transcript.GotoBottom()
}

func (a *App) messageHeader(msg model.Message) string {
	label := a.theme.ModelLabel
	if msg.Role == model.RoleUser {
		label = a.theme.UserLabel
	}
	return label.Render(msg.Role.DisplayName()) + " " +
		a.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))
}

// quickPromptHelp shows the starter prompts until the first message.
func (a *App) quickPromptHelp() string {
	var b strings.Builder
	b.WriteString(a.theme.MutedText.Render("Quick starts:") + "\n")
	for i, prompt := range chat.QuickPrompts {
		b.WriteString(a.theme.ShortcutKey.Render(fmt.Sprintf("  alt+%d", i+1)))
		b.WriteString(a.theme.ShortcutDesc.Render(" " + prompt))
		b.WriteString("\n")
	}
	return b.String()
}

// =============================================================================
// SAFETY VIEW
// =============================================================================

func (a *App) viewSafety() string {
	var b strings.Builder

	header := a.theme.Header.Render("haven  ·  safety zones")
	if a.lockWarning != "" {
		header += "  " + a.theme.WarningText.Render(a.lockWarning)
	}
	b.WriteString(header + "\n\n")

	if a.scanning {
		b.WriteString(a.spin.View() + a.theme.MutedText.Render(" Scanning zones...") + "\n\n")
	}

	b.WriteString(a.theme.FormLabel.Render("Monitored zones") + "\n")
	if len(a.zones) == 0 {
		b.WriteString(a.theme.MutedText.Render("  No zones yet. Press 'a' to add one.") + "\n")
	}
	for i, zone := range a.zones {
		cursor := "  "
		style := a.theme.SidebarItem
		if i == a.zoneIndex {
			cursor = "> "
			style = a.theme.SidebarSelected
		}
		line := fmt.Sprintf("%s%s  [alerts at %s]", cursor, zone.Name, zone.Threshold)
		if zone.LastChecked != nil {
			line += "  checked " + zone.LastChecked.Format("15:04")
		}
		b.WriteString(style.Render(line) + "\n")
	}
	b.WriteString("\n")

	if a.addingZone {
		b.WriteString(a.theme.FormLabel.Render("New zone") + "\n")
		b.WriteString(a.zoneInput.View() + "\n")
		b.WriteString(a.theme.MutedText.Render(
			fmt.Sprintf("  alerts at %s (ctrl+t to change) · enter to add · esc to cancel", a.nextLevel)) + "\n\n")
	} else {
		b.WriteString(a.theme.MutedText.Render(
			fmt.Sprintf("Next zone alerts at %s (press 't' to change)", a.nextLevel)) + "\n\n")
	}

	b.WriteString(a.theme.FormLabel.Render("Alerts") + "\n")
	if len(a.alerts) == 0 {
		b.WriteString(a.theme.MutedText.Render("  No alerts.") + "\n")
	}
	shown := a.alerts
	maxShown := a.height - strings.Count(b.String(), "\n") - statusHeight - 2
	if maxShown > 0 && len(shown) > maxShown {
		shown = shown[:maxShown]
	}
	for _, alert := range shown {
		style := a.theme.LevelStyle(alert.Level)
		b.WriteString(style.Render(fmt.Sprintf("  %s %s — %s",
			alert.Level, alert.ZoneName, alert.Message)))
		b.WriteString(a.theme.Timestamp.Render("  " + alert.Timestamp.Format("Jan 2 15:04")))
		b.WriteString("\n")
	}

	b.WriteString("\n" + a.statusBar())
	return b.String()
}

// =============================================================================
// SHARED CHROME
// =============================================================================

func (a *App) statusBar() string {
	if a.status != "" {
		style := a.theme.InfoText
		if a.statusIsErr {
			style = a.theme.ErrorText
		}
		return a.theme.StatusBar.Width(a.width).Render(style.Render(a.status))
	}

	var help string
	switch a.view {
	case viewChat:
		help = a.shortcuts(
			"enter", "send",
			"ctrl+n", "new",
			"ctrl+d", "delete",
			"ctrl+e", "export",
			"ctrl+g", "zones",
			"ctrl+b", "sidebar",
			"ctrl+l", "log out",
		)
	case viewSafety:
		help = a.shortcuts(
			"a", "add",
			"d", "delete",
			"s", "scan",
			"t", "threshold",
			"esc", "chat",
			"ctrl+l", "log out",
		)
	}
	return a.theme.StatusBar.Width(a.width).Render(help)
}

// shortcuts renders key/description pairs for the status bar.
func (a *App) shortcuts(pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts,
			a.theme.ShortcutKey.Render(pairs[i])+
				a.theme.ShortcutDesc.Render(" "+pairs[i+1]))
	}
	return strings.Join(parts, a.theme.ShortcutDesc.Render("  ·  "))
}

// centered places form content in the middle of the screen.
func (a *App) centered(content string) string {
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, content)
}
