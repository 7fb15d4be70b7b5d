package snmp

import "testing"

func TestFormatSpeed(t *testing.T) {
	got := formatSpeed(1_000_000_000)
	if got != "1000Mbps" {
		t.Errorf("formatSpeed(1Gbps) = %q, want 1000Mbps", got)
	}
}

func TestFormatSpeedZero(t *testing.T) {
	if got := formatSpeed(0); got != "" {
		t.Errorf("formatSpeed(0) = %q, want empty", got)
	}
}
