// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks user activity for the idle auto-lock.
//
// Every keypress records activity; a once-a-second tick checks whether
// the idle limit has passed and, if so, the UI logs the active user
// out. A limit of zero disables the lock.
package session

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// ACTIVITY TRACKER
// =============================================================================

// Tracker tracks last-activity time against an idle limit.
type Tracker struct {
	mu           sync.Mutex
	lastActivity time.Time
	idleLimit    time.Duration
	warned       bool
}

// New creates a tracker. idleLimit <= 0 disables expiry.
func New(idleLimit time.Duration) *Tracker {
	return &Tracker{
		lastActivity: time.Now(),
		idleLimit:    idleLimit,
	}
}

// RecordActivity resets the idle clock. Call on every user input.
func (t *Tracker) RecordActivity() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastActivity = time.Now()
	t.warned = false
}

// IdleTime returns how long since the last recorded activity.
func (t *Tracker) IdleTime() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return time.Since(t.lastActivity)
}

// Expired reports whether the idle limit has passed.
func (t *Tracker) Expired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.idleLimit <= 0 {
		return false
	}
	return time.Since(t.lastActivity) >= t.idleLimit
}

// ShouldWarn reports whether the one-minute warning should fire. It
// fires once per idle stretch; recording activity re-arms it.
func (t *Tracker) ShouldWarn() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.idleLimit <= 0 || t.warned {
		return false
	}
	idle := time.Since(t.lastActivity)
	if idle >= t.idleLimit-time.Minute && idle < t.idleLimit {
		t.warned = true
		return true
	}
	return false
}

// Remaining returns the time left before expiry, floored at zero.
func (t *Tracker) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.idleLimit <= 0 {
		return 0
	}
	remaining := t.idleLimit - time.Since(t.lastActivity)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// SetIdleLimit updates the idle limit (config live-reload).
func (t *Tracker) SetIdleLimit(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.idleLimit = d
}

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// TickMsg is sent once a second to drive idle checks.
type TickMsg struct {
	Time time.Time
}

// LockWarningMsg indicates the auto-lock is about to fire.
type LockWarningMsg struct {
	Remaining time.Duration
}

// LockMsg indicates the idle limit has passed.
type LockMsg struct{}

// TickCmd returns a command that ticks once a second.
func TickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(ts time.Time) tea.Msg {
		return TickMsg{Time: ts}
	})
}

// HandleTick evaluates idle state and returns follow-up commands. The
// returned batch always re-arms the tick.
func (t *Tracker) HandleTick() tea.Cmd {
	var cmds []tea.Cmd

	if t.ShouldWarn() {
		remaining := t.Remaining()
		cmds = append(cmds, func() tea.Msg {
			return LockWarningMsg{Remaining: remaining}
		})
	}
	if t.Expired() {
		cmds = append(cmds, func() tea.Msg {
			return LockMsg{}
		})
	}

	cmds = append(cmds, TickCmd())
	return tea.Batch(cmds...)
}
