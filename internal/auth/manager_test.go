// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/haven-tui/internal/model"
	"github.com/jeranaias/haven-tui/internal/storage"
)

func newTestManager(t *testing.T, cfg Config) *Manager {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "haven.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewManager(store, cfg, nil)
}

// =============================================================================
// REGISTRATION TESTS
// =============================================================================

func TestManager_Register_ThenLogin(t *testing.T) {
	m := newTestManager(t, Config{})

	require.NoError(t, m.Register("ana", "secret", Profile{Email: "ana@example.com"}))

	user, err := m.Login("ana", "secret")
	require.NoError(t, err)
	assert.Equal(t, "ana", user.Username)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.True(t, strings.HasPrefix(user.Token, "tok-"))
}

func TestManager_Register_Duplicate(t *testing.T) {
	m := newTestManager(t, Config{})

	require.NoError(t, m.Register("ana", "secret", Profile{}))
	err := m.Register("ana", "other", Profile{})
	assert.ErrorIs(t, err, ErrDuplicateUser)
}

func TestManager_Register_EmptyFields(t *testing.T) {
	m := newTestManager(t, Config{})

	assert.ErrorIs(t, m.Register("", "secret", Profile{}), ErrEmptyCredentials)
	assert.ErrorIs(t, m.Register("ana", "", Profile{}), ErrEmptyCredentials)
	assert.ErrorIs(t, m.Register("   ", "secret", Profile{}), ErrEmptyCredentials)
}

// =============================================================================
// LOGIN TESTS
// =============================================================================

func TestManager_Login_InvalidCredentials(t *testing.T) {
	m := newTestManager(t, Config{})
	require.NoError(t, m.Register("ana", "secret", Profile{}))

	_, err := m.Login("ana", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = m.Login("nobody", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestManager_Login_SetsActiveUser(t *testing.T) {
	m := newTestManager(t, Config{})
	require.NoError(t, m.Register("ana", "secret", Profile{}))

	active, err := m.ActiveUser()
	require.NoError(t, err)
	assert.Nil(t, active, "registration must not log in")

	_, err = m.Login("ana", "secret")
	require.NoError(t, err)

	active, err = m.ActiveUser()
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "ana", active.Username)
}

func TestManager_Login_PasswordlessLegacyRecord(t *testing.T) {
	tests := []struct {
		name    string
		allow   bool
		wantErr error
	}{
		{"allowed when toggle on", true, nil},
		{"rejected when toggle off", false, ErrInvalidCredentials},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store, err := storage.Open(filepath.Join(t.TempDir(), "haven.db"))
			require.NoError(t, err)
			defer store.Close()

			// A record written by a version that never stored passwords.
			require.NoError(t, store.Update(func(d *model.StoredData) error {
				d.Users = append(d.Users, model.User{Username: "old-timer", Token: "tok-legacy"})
				return nil
			}))
			m := NewManager(store, Config{AllowPasswordlessLogin: tc.allow}, nil)

			_, err = m.Login("old-timer", "anything at all")
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// =============================================================================
// HASHING TESTS
// =============================================================================

func TestManager_HashPasswords_RoundTrip(t *testing.T) {
	m := newTestManager(t, Config{HashPasswords: true})
	require.NoError(t, m.Register("ana", "secret", Profile{}))

	user, err := m.Login("ana", "secret")
	require.NoError(t, err)
	assert.True(t, isBcryptHash(user.Password), "stored password should be a hash")
	assert.NotEqual(t, "secret", user.Password)

	_, err = m.Login("ana", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestManager_PlainRecordStillVerifiesWhenHashingEnabled(t *testing.T) {
	// Turn hashing on after a plain-text account already exists.
	plain := newTestManager(t, Config{})
	store := plain.store
	require.NoError(t, plain.Register("ana", "secret", Profile{}))

	hashed := NewManager(store, Config{HashPasswords: true}, nil)
	_, err := hashed.Login("ana", "secret")
	assert.NoError(t, err)
}

// =============================================================================
// LOGOUT TESTS
// =============================================================================

func TestManager_Logout(t *testing.T) {
	m := newTestManager(t, Config{})
	require.NoError(t, m.Register("ana", "secret", Profile{}))
	_, err := m.Login("ana", "secret")
	require.NoError(t, err)

	require.NoError(t, m.Logout())

	active, err := m.ActiveUser()
	require.NoError(t, err)
	assert.Nil(t, active)

	// Logging out twice is harmless.
	assert.NoError(t, m.Logout())
}
