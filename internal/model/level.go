// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "strings"

// =============================================================================
// THREAT LEVEL TYPE
// =============================================================================

// Level is a threat level with a total order: LOW < MEDIUM < HIGH.
type Level string

const (
	LevelLow    Level = "LOW"
	LevelMedium Level = "MEDIUM"
	LevelHigh   Level = "HIGH"
)

// ordinal maps levels onto a comparable scale. Unknown levels rank
// below LOW so malformed classifier output never trips a threshold.
func (l Level) ordinal() int {
	switch l {
	case LevelLow:
		return 1
	case LevelMedium:
		return 2
	case LevelHigh:
		return 3
	default:
		return 0
	}
}

// Valid reports whether l is one of the three known levels.
func (l Level) Valid() bool {
	return l.ordinal() > 0
}

// AtLeast reports whether l meets or exceeds other.
func (l Level) AtLeast(other Level) bool {
	return l.ordinal() >= other.ordinal()
}

// String returns the string representation of the level.
func (l Level) String() string {
	return string(l)
}

// ParseLevel converts a string to a Level, case-insensitively.
// Unrecognized input falls back to LOW.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOW":
		return LevelLow
	case "MEDIUM":
		return LevelMedium
	case "HIGH":
		return LevelHigh
	default:
		return LevelLow
	}
}

// NextLevel cycles LOW -> MEDIUM -> HIGH -> LOW. Used by the zone form
// threshold selector.
func NextLevel(l Level) Level {
	switch l {
	case LevelLow:
		return LevelMedium
	case LevelMedium:
		return LevelHigh
	default:
		return LevelLow
	}
}
