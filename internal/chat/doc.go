// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat manages safety-plan chat sessions: creation, message
// appends, deletion, and listing. All state lives in the store; every
// operation is a read-modify-write against the root record.
package chat
