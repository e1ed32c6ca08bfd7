// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import "github.com/mattn/go-runewidth"

// TruncateRunes truncates a string to a maximum number of runes,
// appending "..." when anything was cut. Safe for UTF-8: it counts
// characters, not bytes.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// TruncateWidth truncates a string to a maximum display width in
// terminal columns, appending "..." when anything was cut. CJK and
// other double-width characters count as 2 columns.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// StringWidth returns the display width of a string in terminal columns.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// RuneLen returns the number of runes (characters) in a string.
func RuneLen(s string) int {
	return len([]rune(s))
}

// FirstRunes returns the first n runes of s, or all of s when shorter.
func FirstRunes(s string, n int) string {
	runes := []rune(s)
	if n >= len(runes) {
		return s
	}
	if n < 0 {
		return ""
	}
	return string(runes[:n])
}

// LastRunes returns the last n runes of s, or all of s when shorter.
func LastRunes(s string, n int) string {
	runes := []rune(s)
	if n >= len(runes) {
		return s
	}
	if n < 0 {
		return ""
	}
	return string(runes[len(runes)-n:])
}
