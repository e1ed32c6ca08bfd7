// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns assistant markdown into styled terminal output.
//
// Rendering never fails from the caller's point of view: when glamour
// cannot be initialized or chokes on input, the raw text passes
// through unchanged.
package render

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// Markdown renders markdown for the chat viewport. Safe for use from
// multiple goroutines; the renderer is rebuilt when the width changes.
type Markdown struct {
	mu       sync.Mutex
	renderer *glamour.TermRenderer
	width    int
}

// New creates a renderer wrapping at the given width.
func New(width int) *Markdown {
	m := &Markdown{}
	m.SetWidth(width)
	return m
}

// SetWidth rebuilds the renderer for a new wrap width.
func (m *Markdown) SetWidth(width int) {
	if width < 20 {
		width = 20
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.renderer != nil && m.width == width {
		return
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		// Plain-text passthrough until a later SetWidth succeeds.
		m.renderer = nil
		return
	}
	m.renderer = renderer
	m.width = width
}

// Render converts markdown to terminal markup. Falls back to the raw
// text on any failure.
func (m *Markdown) Render(text string) string {
	m.mu.Lock()
	renderer := m.renderer
	m.mu.Unlock()

	if renderer == nil {
		return text
	}

	m.mu.Lock()
	out, err := renderer.Render(text)
	m.mu.Unlock()
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}
