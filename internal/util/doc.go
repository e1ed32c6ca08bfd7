// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across haven-tui.
//
// String helpers are UTF-8 and display-width aware (rune truncation,
// terminal column truncation via go-runewidth). AtomicWriteFile writes
// files crash-safely with fsync + rename.
package util
