package ipam

import (
	"testing"

	"github.com/netwatch-io/netwatch/internal/models"
)

func TestCIDRContainmentExcludesNetworkAndBroadcast(t *testing.T) {
	pool := &models.IpamPool{EntryType: models.IpamEntryCIDR, CIDR: "10.0.0.0/24"}

	tests := []struct {
		ip   string
		want bool
	}{
		{"10.0.0.0", false},   // network address excluded
		{"10.0.0.1", true},    // first usable host
		{"10.0.0.254", true},  // last usable host
		{"10.0.0.255", false}, // broadcast excluded
		{"10.0.1.1", false},   // outside the block entirely
	}
	for _, tc := range tests {
		t.Run(tc.ip, func(t *testing.T) {
			got, err := FindPool(tc.ip, []*models.IpamPool{pool})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (got != nil) != tc.want {
				t.Errorf("FindPool(%q) matched=%v, want %v", tc.ip, got != nil, tc.want)
			}
		})
	}
}

func TestCIDRContainmentSlash31AllowsAllAddresses(t *testing.T) {
	pool := &models.IpamPool{EntryType: models.IpamEntryCIDR, CIDR: "10.0.0.0/31"}
	for _, ip := range []string{"10.0.0.0", "10.0.0.1"} {
		got, err := FindPool(ip, []*models.IpamPool{pool})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil {
			t.Errorf("FindPool(%q) on /31 pool should match (no net/broadcast exclusion)", ip)
		}
	}
}

func TestCIDRContainmentSlash32AllowsTheSingleAddress(t *testing.T) {
	pool := &models.IpamPool{EntryType: models.IpamEntryCIDR, CIDR: "10.0.0.5/32"}
	got, err := FindPool("10.0.0.5", []*models.IpamPool{pool})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Error("expected /32 pool to match its single address")
	}
}

func TestRangePoolContainment(t *testing.T) {
	pool := &models.IpamPool{EntryType: models.IpamEntryRange, RangeStart: "192.168.1.10", RangeEnd: "192.168.1.20"}
	for ip, want := range map[string]bool{
		"192.168.1.10": true,
		"192.168.1.15": true,
		"192.168.1.20": true,
		"192.168.1.9":  false,
		"192.168.1.21": false,
	} {
		got, err := FindPool(ip, []*models.IpamPool{pool})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if (got != nil) != want {
			t.Errorf("FindPool(%q) matched=%v, want %v", ip, got != nil, want)
		}
	}
}

func TestSinglePoolContainment(t *testing.T) {
	pool := &models.IpamPool{EntryType: models.IpamEntrySingle, RangeStart: "172.16.0.1"}
	got, _ := FindPool("172.16.0.1", []*models.IpamPool{pool})
	if got == nil {
		t.Error("expected single pool to match its address")
	}
	got, _ = FindPool("172.16.0.2", []*models.IpamPool{pool})
	if got != nil {
		t.Error("expected single pool to reject a different address")
	}
}

func TestFindPoolReturnsFirstMatchInOrder(t *testing.T) {
	a := &models.IpamPool{ID: "a", EntryType: models.IpamEntryCIDR, CIDR: "10.0.0.0/8"}
	b := &models.IpamPool{ID: "b", EntryType: models.IpamEntryCIDR, CIDR: "10.0.0.0/16"}
	got, err := FindPool("10.0.0.5", []*models.IpamPool{a, b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.ID != "a" {
		t.Errorf("expected first pool (a) to win, got %+v", got)
	}
}
