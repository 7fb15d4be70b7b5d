package routeros

import (
	"testing"

	"github.com/netwatch-io/netwatch/internal/models"
)

func TestResolveSpeedPrefersMeasured(t *testing.T) {
	p := models.Port{Name: "ether1", DefaultName: "ether1"}
	measured := map[string]string{"ether1": "1Gbps"}
	got := resolveSpeed(p, measured, nil)
	if got != "1Gbps" {
		t.Errorf("resolveSpeed = %q, want 1Gbps", got)
	}
}

func TestResolveSpeedFallsBackToPreviousByDefaultName(t *testing.T) {
	p := models.Port{Name: "renamed-eth1", DefaultName: "ether1"}
	previous := []models.Port{{Name: "ether1", DefaultName: "ether1", Speed: "100Mbps"}}
	got := resolveSpeed(p, map[string]string{}, previous)
	if got != "100Mbps" {
		t.Errorf("resolveSpeed = %q, want 100Mbps (matched via DefaultName)", got)
	}
}

func TestResolveSpeedFallsBackToPreviousByNameWhenNoDefaultName(t *testing.T) {
	p := models.Port{Name: "ether1"}
	previous := []models.Port{{Name: "ether1", Speed: "100Mbps"}}
	got := resolveSpeed(p, map[string]string{}, previous)
	if got != "100Mbps" {
		t.Errorf("resolveSpeed = %q, want 100Mbps", got)
	}
}

func TestResolveSpeedUnknownWhenNoMatch(t *testing.T) {
	p := models.Port{Name: "ether5"}
	got := resolveSpeed(p, map[string]string{}, nil)
	if got != "" {
		t.Errorf("resolveSpeed = %q, want empty", got)
	}
}

func TestMemoryUsagePct(t *testing.T) {
	pct := memoryUsagePct("1000", "250")
	if pct == nil || *pct != 75 {
		t.Errorf("memoryUsagePct = %v, want 75", pct)
	}
}

func TestMemoryUsagePctInvalidInput(t *testing.T) {
	if memoryUsagePct("not-a-number", "250") != nil {
		t.Error("expected nil for unparseable input")
	}
}

func TestParsePercentField(t *testing.T) {
	got := parsePercentField("42%")
	if got == nil || *got != 42 {
		t.Errorf("parsePercentField = %v, want 42", got)
	}
}
