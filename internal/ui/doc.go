// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui implements the haven terminal interface.
//
// The interface is a single Bubble Tea program with four views: login,
// signup, the safety-plan chat, and the safety zone monitor. All
// domain work happens in the manager packages; this package only
// translates key presses into manager calls and manager results into
// screen updates.
//
// Blocking work (Gemini calls, zone scans, PDF export) runs inside
// tea.Cmd closures so the event loop never stalls.
package ui
