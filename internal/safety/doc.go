// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package safety manages monitored zones and scan alerts.
//
// A scan pass asks the risk classifier about each zone in turn and
// raises an alert when the assessed level meets the zone's threshold.
// Per-zone failures are absorbed into a LOW fallback so one bad zone
// never aborts the pass.
package safety
