// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package safety

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/haven-tui/internal/model"
	"github.com/jeranaias/haven-tui/internal/storage"
)

// stubClassifier returns canned assessments by location name.
type stubClassifier struct {
	byName map[string]model.Assessment
	calls  []string
}

func (s *stubClassifier) ClassifyLocation(_ context.Context, location string) model.Assessment {
	s.calls = append(s.calls, location)
	if a, ok := s.byName[location]; ok {
		return a
	}
	return model.Assessment{Level: model.LevelLow, Message: "All clear."}
}

func newTestMonitor(t *testing.T, classifier Classifier) (*Monitor, *storage.Store) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "haven.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	// Tests run unthrottled.
	return NewMonitor(store, classifier, 60000, nil), store
}

// =============================================================================
// ZONE CRUD TESTS
// =============================================================================

func TestMonitor_AddZone(t *testing.T) {
	m, _ := newTestMonitor(t, &stubClassifier{})

	zone, err := m.AddZone("  Home  ", model.LevelHigh)
	require.NoError(t, err)
	assert.Equal(t, "Home", zone.Name)
	assert.Equal(t, model.LevelHigh, zone.Threshold)
	assert.NotEmpty(t, zone.ID)
	assert.Nil(t, zone.LastChecked)

	zones, err := m.Zones()
	require.NoError(t, err)
	require.Len(t, zones, 1)
}

func TestMonitor_AddZone_Validation(t *testing.T) {
	m, _ := newTestMonitor(t, &stubClassifier{})

	_, err := m.AddZone("   ", model.LevelLow)
	assert.ErrorIs(t, err, ErrEmptyZoneName)

	// Invalid thresholds default to MEDIUM.
	zone, err := m.AddZone("Office", model.Level("SEVERE"))
	require.NoError(t, err)
	assert.Equal(t, model.LevelMedium, zone.Threshold)
}

func TestMonitor_RemoveZone(t *testing.T) {
	m, _ := newTestMonitor(t, &stubClassifier{})

	a, err := m.AddZone("Home", model.LevelMedium)
	require.NoError(t, err)
	b, err := m.AddZone("Office", model.LevelMedium)
	require.NoError(t, err)

	require.NoError(t, m.RemoveZone(a.ID))
	zones, err := m.Zones()
	require.NoError(t, err)
	require.Len(t, zones, 1)
	assert.Equal(t, b.ID, zones[0].ID)

	// Unknown ids are a no-op, and removal is idempotent.
	assert.NoError(t, m.RemoveZone(a.ID))
	assert.NoError(t, m.RemoveZone("does-not-exist"))
}

// =============================================================================
// SCAN TESTS
// =============================================================================

func TestMonitor_ScanAll_RaisesAtThreshold(t *testing.T) {
	classifier := &stubClassifier{byName: map[string]model.Assessment{
		"Paris":  {Level: model.LevelHigh, Message: "Protests reported downtown."},
		"Quiet":  {Level: model.LevelLow, Message: "All clear."},
		"Market": {Level: model.LevelMedium, Message: "Pickpocket activity."},
	}}
	m, _ := newTestMonitor(t, classifier)

	_, err := m.AddZone("Paris", model.LevelMedium)
	require.NoError(t, err)
	_, err = m.AddZone("Quiet", model.LevelMedium)
	require.NoError(t, err)
	_, err = m.AddZone("Market", model.LevelMedium)
	require.NoError(t, err)

	raised, err := m.ScanAll(context.Background())
	require.NoError(t, err)
	require.Len(t, raised, 2, "HIGH and MEDIUM meet a MEDIUM threshold, LOW does not")

	// Newest first: Market was scanned after Paris.
	assert.Equal(t, "Market", raised[0].ZoneName)
	assert.Equal(t, "Paris", raised[1].ZoneName)
	assert.Equal(t, model.LevelHigh, raised[1].Level)
	assert.Equal(t, "Protests reported downtown.", raised[1].Message)

	// Every zone was checked sequentially, in order.
	assert.Equal(t, []string{"Paris", "Quiet", "Market"}, classifier.calls)

	// lastChecked is set even for zones that raised nothing.
	zones, err := m.Zones()
	require.NoError(t, err)
	for _, z := range zones {
		assert.NotNil(t, z.LastChecked, "zone %s", z.Name)
	}
}

func TestMonitor_ScanAll_InvalidAssessmentFallsBack(t *testing.T) {
	classifier := &stubClassifier{byName: map[string]model.Assessment{
		"Broken": {Level: model.Level("???"), Message: "garbage"},
	}}
	m, _ := newTestMonitor(t, classifier)

	// LOW threshold: even the fallback LOW assessment raises an alert,
	// carrying the fallback message rather than classifier garbage.
	_, err := m.AddZone("Broken", model.LevelLow)
	require.NoError(t, err)

	raised, err := m.ScanAll(context.Background())
	require.NoError(t, err)
	require.Len(t, raised, 1)
	assert.Equal(t, model.LevelLow, raised[0].Level)
	assert.Equal(t, FallbackMessage, raised[0].Message)
}

func TestMonitor_ScanAll_NoZones(t *testing.T) {
	m, _ := newTestMonitor(t, &stubClassifier{})

	raised, err := m.ScanAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, raised)
}

func TestMonitor_ScanAll_CancelledContext(t *testing.T) {
	m, _ := newTestMonitor(t, &stubClassifier{})
	_, err := m.AddZone("Home", model.LevelMedium)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = m.ScanAll(ctx)
	assert.Error(t, err)
}

// =============================================================================
// ALERT RETENTION TESTS
// =============================================================================

func TestMonitor_Alerts_CappedNewestFirst(t *testing.T) {
	classifier := &stubClassifier{byName: map[string]model.Assessment{
		"Hot": {Level: model.LevelHigh, Message: "Always risky."},
	}}
	m, _ := newTestMonitor(t, classifier)
	_, err := m.AddZone("Hot", model.LevelLow)
	require.NoError(t, err)

	for i := 0; i < MaxAlerts+5; i++ {
		_, err := m.ScanAll(context.Background())
		require.NoError(t, err)
	}

	alerts, err := m.Alerts()
	require.NoError(t, err)
	require.Len(t, alerts, MaxAlerts, "collection capped, oldest dropped")

	// Newest first.
	for i := 1; i < len(alerts); i++ {
		assert.False(t, alerts[i].Timestamp.After(alerts[i-1].Timestamp))
	}
}

func TestMonitor_RemoveZone_KeepsAlerts(t *testing.T) {
	classifier := &stubClassifier{byName: map[string]model.Assessment{
		"Hot": {Level: model.LevelHigh, Message: "Risky."},
	}}
	m, _ := newTestMonitor(t, classifier)
	zone, err := m.AddZone("Hot", model.LevelLow)
	require.NoError(t, err)

	_, err = m.ScanAll(context.Background())
	require.NoError(t, err)
	require.NoError(t, m.RemoveZone(zone.ID))

	alerts, err := m.Alerts()
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "Hot", alerts[0].ZoneName, "zone name snapshot survives removal")
}
