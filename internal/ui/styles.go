// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/haven-tui/internal/model"
)

// =============================================================================
// COLOR PALETTE
// =============================================================================

// All colors use AdaptiveColor so the same palette works on light and
// dark terminals.

// Teal - brand color, headers, the active selection
var Teal = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Violet - assistant messages
var Violet = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// Emerald - LOW alerts, success states
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Amber - MEDIUM alerts, warnings
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// Rose - HIGH alerts, errors
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Surface colors
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#181825"}
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}

// Text colors
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}

// =============================================================================
// THEME
// =============================================================================

// Theme holds the styled components for the application.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	Header      lipgloss.Style
	HeaderBrand lipgloss.Style

	UserLabel  lipgloss.Style
	ModelLabel lipgloss.Style
	Timestamp  lipgloss.Style

	Sidebar         lipgloss.Style
	SidebarItem     lipgloss.Style
	SidebarSelected lipgloss.Style

	InputContainer lipgloss.Style
	FormLabel      lipgloss.Style

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	ErrorText   lipgloss.Style
	InfoText    lipgloss.Style
	WarningText lipgloss.Style
	MutedText   lipgloss.Style

	AlertLow    lipgloss.Style
	AlertMedium lipgloss.Style
	AlertHigh   lipgloss.Style

	Spinner lipgloss.Style
}

// NewTheme creates a theme. name is "dark", "light", or "auto"; dark
// and light override terminal background detection.
func NewTheme(name string) *Theme {
	switch strings.ToLower(name) {
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	case "light":
		lipgloss.SetHasDarkBackground(false)
	}

	t := &Theme{
		IsDark:       lipgloss.HasDarkBackground(),
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal).
		Background(SurfaceDim).
		Padding(0, 2)

	t.HeaderBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal)

	t.UserLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal)

	t.ModelLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Violet)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		PaddingRight(1)

	t.SidebarItem = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.SidebarSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.FormLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.ErrorText = lipgloss.NewStyle().
		Foreground(Rose)

	t.InfoText = lipgloss.NewStyle().
		Foreground(Emerald)

	t.WarningText = lipgloss.NewStyle().
		Foreground(Amber)

	t.MutedText = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.AlertLow = lipgloss.NewStyle().
		Foreground(Emerald)

	t.AlertMedium = lipgloss.NewStyle().
		Foreground(Amber)

	t.AlertHigh = lipgloss.NewStyle().
		Bold(true).
		Foreground(Rose)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Violet)
}

// LevelStyle returns the alert style for a safety level.
func (t *Theme) LevelStyle(level model.Level) lipgloss.Style {
	switch level {
	case model.LevelHigh:
		return t.AlertHigh
	case model.LevelMedium:
		return t.AlertMedium
	default:
		return t.AlertLow
	}
}
