package notifications

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/netwatch-io/netwatch/internal/models"
	"github.com/netwatch-io/netwatch/internal/storage"
	"github.com/netwatch-io/netwatch/internal/storage/memstore"
)

func TestInShiftHandlesMidnightWrap(t *testing.T) {
	tests := []struct {
		name       string
		nowMinutes int
		start, end int
		want       bool
	}{
		{"day shift inside window", 12 * 60, 8 * 60, 18 * 60, true},
		{"day shift outside window", 20 * 60, 8 * 60, 18 * 60, false},
		{"night shift wraps, inside after midnight", 2 * 60, 22 * 60, 6 * 60, true},
		{"night shift wraps, inside before midnight", 23 * 60, 22 * 60, 6 * 60, true},
		{"night shift wraps, outside", 12 * 60, 22 * 60, 6 * 60, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := inShift(tc.nowMinutes, tc.start, tc.end); got != tc.want {
				t.Errorf("inShift(%d, %d, %d) = %v, want %v", tc.nowMinutes, tc.start, tc.end, got, tc.want)
			}
		})
	}
}

func TestIsSuppressedGlobalMute(t *testing.T) {
	store := memstore.New()
	store.UpsertMute(context.Background(), storage.AlarmMute{})

	suppressed, err := isSuppressed(context.Background(), store, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !suppressed {
		t.Error("expected global mute to suppress dispatch")
	}
}

func TestIsSuppressedNoRosterMeansNotSuppressed(t *testing.T) {
	store := memstore.New()
	suppressed, err := isSuppressed(context.Background(), store, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if suppressed {
		t.Error("expected no roster to mean not suppressed")
	}
}

func TestIsSuppressedAllOnDutyMuted(t *testing.T) {
	store := memstore.New()
	at := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	store.SetDutyShifts([]storage.DutyShift{
		{UserID: "alice", Shift: "day", Start: "08:00", End: "18:00"},
	})
	alice := "alice"
	store.UpsertMute(context.Background(), storage.AlarmMute{UserID: &alice})

	suppressed, err := isSuppressed(context.Background(), store, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !suppressed {
		t.Error("expected suppression when the only on-duty user is muted")
	}
}

func TestIsSuppressedOneOnDutyUnmuted(t *testing.T) {
	store := memstore.New()
	at := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	store.SetDutyShifts([]storage.DutyShift{
		{UserID: "alice", Shift: "day", Start: "08:00", End: "18:00"},
		{UserID: "bob", Shift: "day", Start: "08:00", End: "18:00"},
	})
	alice := "alice"
	store.UpsertMute(context.Background(), storage.AlarmMute{UserID: &alice})

	suppressed, err := isSuppressed(context.Background(), store, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if suppressed {
		t.Error("expected bob (unmuted, on-duty) to keep dispatch live")
	}
}

func TestDispatchDeliversGetAndPost(t *testing.T) {
	var gotMethod, gotPath, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.String()
		if r.Method == http.MethodPost {
			buf := make([]byte, 1024)
			n, _ := r.Body.Read(buf)
			gotBody = string(buf[:n])
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store := memstore.New()
	dev := &models.Device{ID: "d1", Name: "core-switch", IPAddress: "10.0.0.1"}
	store.CreateDevice(context.Background(), dev)
	store.UpsertNotification(context.Background(), &storage.Notification{
		DeviceID:        "d1",
		Enabled:         true,
		Method:          "POST",
		URL:             server.URL,
		MessageTemplate: "[Device.Name] is now [Status.New]",
	})

	d := NewDispatcher(store)
	d.UpdateAllowedPrivateCIDRs("127.0.0.0/8")

	if err := d.Dispatch(context.Background(), dev, models.StatusOnline, models.StatusOffline); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodPost {
		t.Errorf("method = %q, want POST", gotMethod)
	}
	if gotBody != "core-switch is now offline" {
		t.Errorf("body = %q", gotBody)
	}

	dev2 := &models.Device{ID: "d2", Name: "edge-router", IPAddress: "10.0.0.2"}
	store.CreateDevice(context.Background(), dev2)
	store.UpsertNotification(context.Background(), &storage.Notification{
		DeviceID:        "d2",
		Enabled:         true,
		Method:          "GET",
		URL:             server.URL + "/notify?msg=",
		MessageTemplate: "[Device.Name] is now [Status.New]",
	})
	if err := d.Dispatch(context.Background(), dev2, models.StatusOffline, models.StatusOnline); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodGet {
		t.Errorf("method = %q, want GET", gotMethod)
	}
	if gotPath != "/notify?msg=edge-router+is+now+online" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestDispatchSkipsDisabledSubscriptions(t *testing.T) {
	hit := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store := memstore.New()
	dev := &models.Device{ID: "d1"}
	store.CreateDevice(context.Background(), dev)
	store.UpsertNotification(context.Background(), &storage.Notification{
		DeviceID: "d1",
		Enabled:  false,
		URL:      server.URL,
	})

	d := NewDispatcher(store)
	d.UpdateAllowedPrivateCIDRs("127.0.0.0/8")
	if err := d.Dispatch(context.Background(), dev, models.StatusOnline, models.StatusOffline); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hit {
		t.Error("disabled subscription should not be delivered")
	}
}
