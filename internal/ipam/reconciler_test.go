package ipam

import (
	"context"
	"testing"
	"time"

	"github.com/netwatch-io/netwatch/internal/models"
	"github.com/netwatch-io/netwatch/internal/storage/memstore"
)

func TestReconcileUpsertsAndAssigns(t *testing.T) {
	store := memstore.New()
	store.UpsertIpamPool(context.Background(), &models.IpamPool{ID: "p1", EntryType: models.IpamEntryCIDR, CIDR: "10.0.0.0/24"})
	r := New(store)

	at := time.Now()
	prefix := 24
	err := r.Reconcile(context.Background(), "dev-1", map[string]string{"ether1": "iface-1"}, []models.InterfaceObservation{
		{IPAddress: "10.0.0.5", PrefixLength: &prefix, InterfaceName: "ether1"},
	}, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	addr, err := store.GetIpamAddressByIP(context.Background(), "10.0.0.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr.PoolID == nil || *addr.PoolID != "p1" {
		t.Errorf("expected address bound to pool p1, got %+v", addr.PoolID)
	}
	if addr.Source != models.IpamSourceDiscovered {
		t.Errorf("Source = %q, want discovered", addr.Source)
	}
}

func TestReconcilePreservesManualSource(t *testing.T) {
	store := memstore.New()
	store.UpsertIpamAddress(context.Background(), &models.IpamAddress{
		IPAddress: "10.0.0.5",
		Source:    models.IpamSourceManual,
		Status:    models.IpamStatusReserved,
	})
	r := New(store)

	err := r.Reconcile(context.Background(), "dev-1", nil, []models.InterfaceObservation{
		{IPAddress: "10.0.0.5", InterfaceName: "ether1"},
	}, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	addr, _ := store.GetIpamAddressByIP(context.Background(), "10.0.0.5")
	if addr.Source != models.IpamSourceManual {
		t.Errorf("Source = %q, want manual preserved", addr.Source)
	}
}

func TestReconcileMarksUnseenDiscoveredAddressesOffline(t *testing.T) {
	store := memstore.New()
	store.UpsertIpamAddress(context.Background(), &models.IpamAddress{
		IPAddress:        "10.0.0.9",
		Source:           models.IpamSourceDiscovered,
		Status:           models.IpamStatusAssigned,
		AssignedDeviceID: strPtr("dev-1"),
	})
	r := New(store)

	// A new cycle observes a different address on the same device; 10.0.0.9
	// is not seen and should transition to offline.
	err := r.Reconcile(context.Background(), "dev-1", nil, []models.InterfaceObservation{
		{IPAddress: "10.0.0.10", InterfaceName: "ether1"},
	}, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	addr, _ := store.GetIpamAddressByIP(context.Background(), "10.0.0.9")
	if addr.Status != models.IpamStatusOffline {
		t.Errorf("Status = %q, want offline", addr.Status)
	}
}

func strPtr(s string) *string { return &s }
