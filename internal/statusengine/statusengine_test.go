package statusengine

import (
	"context"
	"testing"

	"github.com/netwatch-io/netwatch/internal/models"
	"github.com/netwatch-io/netwatch/internal/storage/memstore"
)

func float64p(f float64) *float64 { return &f }

func TestDerive(t *testing.T) {
	tests := []struct {
		name string
		in   models.ProbeResult
		want models.Status
	}{
		{"failure is offline", models.ProbeResult{Success: false}, models.StatusOffline},
		{"success with model is online", models.ProbeResult{Success: true, Data: models.DeviceData{Model: "CCR2004"}}, models.StatusOnline},
		{"success with uptime is online", models.ProbeResult{Success: true, Data: models.DeviceData{Uptime: "1d"}}, models.StatusOnline},
		{"success with version is online", models.ProbeResult{Success: true, Data: models.DeviceData{Version: "7.10"}}, models.StatusOnline},
		{"success with nothing is unknown", models.ProbeResult{Success: true}, models.StatusUnknown},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Derive(tc.in); got != tc.want {
				t.Errorf("Derive() = %q, want %q", got, tc.want)
			}
		})
	}
}

type recordingDispatcher struct {
	calls int
	prev  models.Status
	next  models.Status
}

func (r *recordingDispatcher) Dispatch(ctx context.Context, device *models.Device, previous, newStatus models.Status) error {
	r.calls++
	r.prev = previous
	r.next = newStatus
	return nil
}

func TestHandleTransitionNoChangeIsNoop(t *testing.T) {
	store := memstore.New()
	disp := &recordingDispatcher{}
	eng := New(store, disp)

	dev := &models.Device{ID: "d1", Status: models.StatusOnline}
	store.CreateDevice(context.Background(), dev)

	changed, err := eng.HandleTransition(context.Background(), dev, models.StatusOnline)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Error("expected no change")
	}
	if disp.calls != 0 {
		t.Errorf("dispatcher called %d times, want 0", disp.calls)
	}
}

func TestHandleTransitionAppendsEventAndDispatches(t *testing.T) {
	store := memstore.New()
	disp := &recordingDispatcher{}
	eng := New(store, disp)

	dev := &models.Device{ID: "d1", Status: models.StatusOnline}
	store.CreateDevice(context.Background(), dev)

	changed, err := eng.HandleTransition(context.Background(), dev, models.StatusOffline)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Fatal("expected a change")
	}
	if dev.Status != models.StatusOffline {
		t.Errorf("device.Status = %q, want offline", dev.Status)
	}

	events, err := store.StatusEventsRange(context.Background(), "d1", dev.UpdatedAt.Add(-1), dev.UpdatedAt.Add(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].NewStatus != models.StatusOffline || events[0].PreviousStatus == nil || *events[0].PreviousStatus != models.StatusOnline {
		t.Errorf("event = %+v, want previous=online new=offline", events[0])
	}

	if disp.calls != 1 || disp.prev != models.StatusOnline || disp.next != models.StatusOffline {
		t.Errorf("dispatcher recorded %+v, want one call online->offline", disp)
	}
}
