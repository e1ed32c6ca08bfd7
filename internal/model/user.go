// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// USER TYPE
// =============================================================================

// User is a registered account. Password holds either the plain-text
// password (legacy records) or a bcrypt hash when hashing is enabled;
// the auth manager distinguishes the two by the hash prefix.
type User struct {
	Username string `json:"username"`
	Token    string `json:"token"`
	Password string `json:"password,omitempty"`

	// Optional profile fields captured at signup.
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	EmergencyContact string `json:"emergencyContact,omitempty"`
}

// Sanitized returns a copy with the password cleared, for logging and
// for the in-memory active-user handle the UI holds.
func (u User) Sanitized() User {
	u.Password = ""
	return u
}
