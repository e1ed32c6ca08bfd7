// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jeranaias/haven-tui/internal/model"
	"github.com/jeranaias/haven-tui/internal/storage"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrDuplicateUser      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrEmptyCredentials   = errors.New("username and password are required")
)

// =============================================================================
// MANAGER
// =============================================================================

// Config controls authentication behavior.
type Config struct {
	// AllowPasswordlessLogin accepts any password for accounts that
	// have no stored password. Kept for records written by older
	// versions that never persisted one.
	AllowPasswordlessLogin bool

	// HashPasswords stores bcrypt hashes instead of the password
	// itself. Off by default; existing plain-text records still
	// verify either way.
	HashPasswords bool
}

// Profile holds the optional signup fields.
type Profile struct {
	Email            string
	Phone            string
	EmergencyContact string
}

// Manager performs account and session operations against the store.
type Manager struct {
	store *storage.Store
	cfg   Config
	log   *zap.Logger
}

// NewManager creates an auth manager. A nil logger is replaced with a
// no-op one.
func NewManager(store *storage.Store, cfg Config, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{store: store, cfg: cfg, log: log}
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Register creates a new account. The username must be unused.
func (m *Manager) Register(username, password string, profile Profile) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrEmptyCredentials
	}

	stored := password
	if m.cfg.HashPasswords {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		stored = string(hash)
	}

	err := m.store.Update(func(d *model.StoredData) error {
		if d.FindUser(username) != nil {
			return ErrDuplicateUser
		}
		d.Users = append(d.Users, model.User{
			Username:         username,
			Token:            newToken(),
			Password:         stored,
			Email:            profile.Email,
			Phone:            profile.Phone,
			EmergencyContact: profile.EmergencyContact,
		})
		return nil
	})
	if err != nil {
		return err
	}

	m.log.Info("user registered", zap.String("username", username))
	return nil
}

// Login verifies credentials and persists the account as the active
// user. The returned user includes the stored password so the caller
// can derive the export password from it.
func (m *Manager) Login(username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)

	var user model.User
	err := m.store.Update(func(d *model.StoredData) error {
		found := d.FindUser(username)
		if found == nil {
			return ErrInvalidCredentials
		}
		if !m.passwordMatches(found.Password, password) {
			return ErrInvalidCredentials
		}
		user = *found
		active := user
		d.ActiveUser = &active
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			m.log.Warn("login rejected", zap.String("username", username))
		}
		return nil, err
	}

	m.log.Info("user logged in", zap.String("username", username))
	return &user, nil
}

// Logout clears the active user. Safe to call when nobody is logged in.
func (m *Manager) Logout() error {
	err := m.store.Update(func(d *model.StoredData) error {
		d.ActiveUser = nil
		return nil
	})
	if err != nil {
		return err
	}
	m.log.Info("user logged out")
	return nil
}

// ActiveUser returns the persisted active user, or nil when nobody is
// logged in.
func (m *Manager) ActiveUser() (*model.User, error) {
	data, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	if data.ActiveUser == nil {
		return nil, nil
	}
	user := *data.ActiveUser
	return &user, nil
}

// =============================================================================
// INTERNALS
// =============================================================================

// passwordMatches verifies a candidate password against the stored
// value, which may be plain text, a bcrypt hash, or absent.
func (m *Manager) passwordMatches(stored, candidate string) bool {
	if stored == "" {
		return m.cfg.AllowPasswordlessLogin
	}
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
	}
	return stored == candidate
}

// isBcryptHash recognizes the modular crypt prefixes bcrypt emits.
func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

// newToken mints an opaque session token.
func newToken() string {
	return "tok-" + uuid.NewString()
}
