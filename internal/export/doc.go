// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a chat session to a password-protected PDF.
//
// The document password is derived from the account credentials: the
// first four characters of the username followed by the last four of
// the password. That derivation is an external contract other tooling
// relies on; it is an access convenience, not real encryption-grade
// secrecy.
package export
