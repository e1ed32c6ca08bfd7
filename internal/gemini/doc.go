// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini provides the HTTP client for the Gemini API.
//
// The client backs both external collaborators: the chat responder and
// the location risk classifier. Neither surface returns errors to
// callers; every failure is absorbed into a fixed fallback value so
// the UI always has something to show.
package gemini
