// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// STRING TESTS
// =============================================================================

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxRunes int
		want     string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"truncated with ellipsis", "hello world", 8, "hello..."},
		{"tiny budget no ellipsis", "hello", 2, "he"},
		{"zero budget", "hello", 0, ""},
		{"cjk not split", "日本語のテキスト", 6, "日本語..."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TruncateRunes(tc.input, tc.maxRunes))
		})
	}
}

func TestTruncateWidth(t *testing.T) {
	// Double-width characters cost two columns.
	assert.Equal(t, "日本", TruncateWidth("日本", 4))
	got := TruncateWidth("日本語テキスト", 8)
	assert.LessOrEqual(t, StringWidth(got), 8)
	assert.Contains(t, got, "...")

	assert.Equal(t, "plain", TruncateWidth("plain", 10))
	assert.Equal(t, "", TruncateWidth("plain", 0))
}

func TestFirstLastRunes(t *testing.T) {
	assert.Equal(t, "anab", FirstRunes("anabelle", 4))
	assert.Equal(t, "elle", LastRunes("anabelle", 4))
	assert.Equal(t, "ab", FirstRunes("ab", 4))
	assert.Equal(t, "ab", LastRunes("ab", 4))
	assert.Equal(t, "", FirstRunes("ab", -1))
	assert.Equal(t, "日本", LastRunes("語日本", 2))
}

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.bin")

	require.NoError(t, AtomicWriteFile(path, []byte("first"), 0600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// Overwrite replaces content completely.
	require.NoError(t, AtomicWriteFile(path, []byte("second"), 0600))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
