// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// ROOT RECORD
// =============================================================================

// StoredData is the single root record the store persists. Everything
// the application remembers lives in this one structure, serialized as
// a whole on every save.
type StoredData struct {
	Users       []User                  `json:"users"`
	Chats       map[string]*ChatSession `json:"chats"`
	ActiveUser  *User                   `json:"activeUser"`
	SafetyZones []SafetyZone            `json:"safetyZones"`
	Alerts      []Alert                 `json:"alerts"`
}

// NewStoredData returns an empty, fully initialized record.
func NewStoredData() *StoredData {
	return &StoredData{
		Users:       make([]User, 0),
		Chats:       make(map[string]*ChatSession),
		SafetyZones: make([]SafetyZone, 0),
		Alerts:      make([]Alert, 0),
	}
}

// Normalize backfills collections that older records persisted as null.
// Records written before the safety monitor existed lack safetyZones
// and alerts entirely.
func (d *StoredData) Normalize() {
	if d.Users == nil {
		d.Users = make([]User, 0)
	}
	if d.Chats == nil {
		d.Chats = make(map[string]*ChatSession)
	}
	if d.SafetyZones == nil {
		d.SafetyZones = make([]SafetyZone, 0)
	}
	if d.Alerts == nil {
		d.Alerts = make([]Alert, 0)
	}
}

// FindUser returns the user with the given username, or nil.
func (d *StoredData) FindUser(username string) *User {
	for i := range d.Users {
		if d.Users[i].Username == username {
			return &d.Users[i]
		}
	}
	return nil
}

// FindZone returns the zone with the given id, or nil.
func (d *StoredData) FindZone(id string) *SafetyZone {
	for i := range d.SafetyZones {
		if d.SafetyZones[i].ID == id {
			return &d.SafetyZones[i]
		}
	}
	return nil
}
