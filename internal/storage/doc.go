// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists the application's single root record.
//
// The whole StoredData structure is JSON-encoded into one row of a
// SQLite key/value table under a versioned key. Every save rewrites
// the record as a whole; Update wraps a load-modify-save cycle in a
// store-wide mutex so concurrent writers cannot lose updates.
package storage
