// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// SAFETY ZONE TYPE
// =============================================================================

// SafetyZone is a monitored named location with an alert threshold.
type SafetyZone struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Threshold   Level      `json:"threshold"`
	LastChecked *time.Time `json:"lastChecked,omitempty"`
}

// =============================================================================
// ALERT TYPE
// =============================================================================

// Alert records a scan result that met or exceeded a zone's threshold.
// ZoneName is a snapshot taken at creation; removing the zone later
// does not touch its alerts.
type Alert struct {
	ID        string    `json:"id"`
	ZoneID    string    `json:"zoneId"`
	ZoneName  string    `json:"zoneName"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// =============================================================================
// ASSESSMENT TYPE
// =============================================================================

// Assessment is a risk classifier verdict for a single location.
// Classifiers return a value in every case; failures are absorbed into
// a LOW fallback rather than surfaced as errors.
type Assessment struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}
