// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth manages accounts and the active session: registration,
// login, logout, and the persisted active user.
//
// Passwords are stored as entered unless hashing is enabled, in which
// case bcrypt hashes are stored instead. Legacy records without a
// stored password can still log in when the passwordless toggle is on.
package auth
