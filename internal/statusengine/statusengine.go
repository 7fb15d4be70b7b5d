// Package statusengine derives a Device's status from a protocol adapter's
// ProbeResult and records the resulting transition (spec.md §4.3).
package statusengine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/netwatch-io/netwatch/internal/models"
	"github.com/netwatch-io/netwatch/internal/storage"
	"github.com/rs/zerolog/log"
)

// Dispatcher is the notification side-effect of a status transition. It is
// an interface (rather than a direct import of internal/notifications) so
// this package stays free of the HTTP/template dependency the dispatcher
// carries — mirroring the teacher's Manager/callback split in
// internal/alerts/alerts.go (SetAlertCallback et al.).
type Dispatcher interface {
	Dispatch(ctx context.Context, device *models.Device, previous, newStatus models.Status) error
}

// Engine derives status and appends DeviceStatusEvent rows.
type Engine struct {
	store      storage.Store
	dispatcher Dispatcher
}

// New returns an Engine. dispatcher may be nil, in which case transitions
// are recorded but no notification is ever dispatched (useful for tests and
// for deployments that don't wire a dispatcher yet).
func New(store storage.Store, dispatcher Dispatcher) *Engine {
	return &Engine{store: store, dispatcher: dispatcher}
}

// Derive implements spec.md §4.3's basic derivation. `warning` is never
// produced here — it is left purely API-driven (spec.md §9 Open Question).
func Derive(result models.ProbeResult) models.Status {
	if !result.Success {
		return models.StatusOffline
	}
	d := result.Data
	if d.Model != "" || d.Uptime != "" || d.Version != "" {
		return models.StatusOnline
	}
	return models.StatusUnknown
}

// HandleTransition compares the derived status against device.Status. On
// any change it writes the new status, appends an immutable
// DeviceStatusEvent, and (best-effort) dispatches notifications. On no
// change it is a no-op beyond returning false.
//
// Within HandleTransition the steps run strictly in this order: status
// write, status-event append, notification dispatch. History rows are not
// written here; the Scheduler's worker writes them after this returns.
// The status write and the event share one timestamp.
func (e *Engine) HandleTransition(ctx context.Context, device *models.Device, derived models.Status) (bool, error) {
	if device.Status == derived {
		return false, nil
	}

	previous := device.Status
	now := time.Now()
	device.Status = derived
	device.UpdatedAt = now

	if err := e.store.UpdateDevice(ctx, device); err != nil {
		return false, fmt.Errorf("update device status: %w", err)
	}

	event := &models.DeviceStatusEvent{
		ID:        uuid.NewString(),
		DeviceID:  device.ID,
		NewStatus: derived,
		CreatedAt: now,
	}
	if previous != "" {
		p := previous
		event.PreviousStatus = &p
	}
	if err := e.store.AppendStatusEvent(ctx, event); err != nil {
		return true, fmt.Errorf("append status event: %w", err)
	}

	if e.dispatcher != nil {
		if err := e.dispatcher.Dispatch(ctx, device, previous, derived); err != nil {
			// Notification delivery failures are logged and dropped, never
			// propagated (spec.md §7).
			log.Warn().Err(err).Str("deviceId", device.ID).Msg("notification dispatch failed")
		}
	}

	return true, nil
}
