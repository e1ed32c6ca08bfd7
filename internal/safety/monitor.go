// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package safety

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jeranaias/haven-tui/internal/model"
	"github.com/jeranaias/haven-tui/internal/storage"
)

// MaxAlerts caps the stored alert collection. New alerts are prepended
// and the oldest fall off the end.
const MaxAlerts = 50

// FallbackMessage is recorded when a zone cannot be assessed.
const FallbackMessage = "Unable to verify location status at this time."

// =============================================================================
// ERRORS
// =============================================================================

var ErrEmptyZoneName = errors.New("zone name is empty")

// =============================================================================
// CLASSIFIER
// =============================================================================

// Classifier assesses the risk level of a named location. It always
// returns a usable assessment; transport or parse failures come back
// as a LOW-level fallback rather than an error.
type Classifier interface {
	ClassifyLocation(ctx context.Context, location string) model.Assessment
}

// =============================================================================
// MONITOR
// =============================================================================

// Monitor performs zone CRUD and scan passes against the store.
type Monitor struct {
	store      *storage.Store
	classifier Classifier
	limiter    *rate.Limiter
	log        *zap.Logger
}

// NewMonitor creates a monitor. scansPerMinute paces the classifier
// calls during a pass; values below 1 are clamped to 1. A nil logger
// is replaced with a no-op one.
func NewMonitor(store *storage.Store, classifier Classifier, scansPerMinute int, log *zap.Logger) *Monitor {
	if scansPerMinute < 1 {
		scansPerMinute = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Monitor{
		store:      store,
		classifier: classifier,
		limiter:    rate.NewLimiter(rate.Limit(float64(scansPerMinute)/60.0), 1),
		log:        log,
	}
}

// =============================================================================
// ZONE CRUD
// =============================================================================

// AddZone registers a new monitored zone. Blank names are rejected;
// an invalid threshold defaults to MEDIUM.
func (m *Monitor) AddZone(name string, threshold model.Level) (*model.SafetyZone, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyZoneName
	}
	if !threshold.Valid() {
		threshold = model.LevelMedium
	}

	zone := model.SafetyZone{
		ID:        uuid.NewString(),
		Name:      name,
		Threshold: threshold,
	}
	err := m.store.Update(func(d *model.StoredData) error {
		d.SafetyZones = append(d.SafetyZones, zone)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &zone, nil
}

// RemoveZone deletes a zone by id. Removing an unknown id is a no-op.
// Alerts already raised for the zone are left untouched.
func (m *Monitor) RemoveZone(id string) error {
	return m.store.Update(func(d *model.StoredData) error {
		for i := range d.SafetyZones {
			if d.SafetyZones[i].ID == id {
				d.SafetyZones = append(d.SafetyZones[:i], d.SafetyZones[i+1:]...)
				break
			}
		}
		return nil
	})
}

// Zones returns the monitored zones in insertion order.
func (m *Monitor) Zones() ([]model.SafetyZone, error) {
	data, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	zones := make([]model.SafetyZone, len(data.SafetyZones))
	copy(zones, data.SafetyZones)
	return zones, nil
}

// Alerts returns the stored alerts, newest first.
func (m *Monitor) Alerts() ([]model.Alert, error) {
	data, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	alerts := make([]model.Alert, len(data.Alerts))
	copy(alerts, data.Alerts)
	return alerts, nil
}

// =============================================================================
// SCANNING
// =============================================================================

// ScanAll assesses every zone sequentially and returns the alerts the
// pass raised, newest first. Each zone's lastChecked is updated and
// persisted whether or not an alert fired. The pass stops early only
// when the context is cancelled.
func (m *Monitor) ScanAll(ctx context.Context) ([]model.Alert, error) {
	zones, err := m.Zones()
	if err != nil {
		return nil, err
	}

	var raised []model.Alert
	for _, zone := range zones {
		if err := m.limiter.Wait(ctx); err != nil {
			return raised, err
		}

		assessment := m.classifier.ClassifyLocation(ctx, zone.Name)
		if !assessment.Level.Valid() {
			assessment = model.Assessment{Level: model.LevelLow, Message: FallbackMessage}
		}

		now := time.Now()
		var alert *model.Alert
		if assessment.Level.AtLeast(zone.Threshold) {
			alert = &model.Alert{
				ID:        newAlertID(now),
				ZoneID:    zone.ID,
				ZoneName:  zone.Name,
				Level:     assessment.Level,
				Message:   assessment.Message,
				Timestamp: now,
			}
		}

		err := m.store.Update(func(d *model.StoredData) error {
			if z := d.FindZone(zone.ID); z != nil {
				checked := now
				z.LastChecked = &checked
			}
			if alert != nil {
				d.Alerts = prependAlert(d.Alerts, *alert)
			}
			return nil
		})
		if err != nil {
			m.log.Error("failed to persist scan result",
				zap.String("zone", zone.Name), zap.Error(err))
			continue
		}

		if alert != nil {
			raised = append([]model.Alert{*alert}, raised...)
			m.log.Warn("alert raised",
				zap.String("zone", zone.Name),
				zap.String("level", alert.Level.String()))
		}
	}

	m.log.Info("scan pass finished",
		zap.Int("zones", len(zones)), zap.Int("alerts", len(raised)))
	return raised, nil
}

// =============================================================================
// INTERNALS
// =============================================================================

// prependAlert puts the newest alert first and drops the oldest past
// the cap.
func prependAlert(alerts []model.Alert, alert model.Alert) []model.Alert {
	alerts = append([]model.Alert{alert}, alerts...)
	if len(alerts) > MaxAlerts {
		alerts = alerts[:MaxAlerts]
	}
	return alerts
}

// newAlertID combines the timestamp with random bytes so alerts raised
// in the same millisecond stay distinct.
func newAlertID(now time.Time) string {
	bytes := make([]byte, 4)
	rand.Read(bytes)
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + hex.EncodeToString(bytes)
}
