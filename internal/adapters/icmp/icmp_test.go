package icmp

import "testing"

func TestParseSingleReceivedSamples(t *testing.T) {
	output := "10.0.0.5 : 1.1 2.2 -\n"
	samples, received, err := parseSingle(output, "10.0.0.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if received != 2 {
		t.Errorf("received = %d, want 2", received)
	}
	if len(samples) != 2 || samples[0] != 1.1 || samples[1] != 2.2 {
		t.Errorf("samples = %v", samples)
	}
}

func TestParseSingleAllLost(t *testing.T) {
	_, received, err := parseSingle("10.0.0.5 : - - -\n", "10.0.0.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if received != 0 {
		t.Errorf("received = %d, want 0", received)
	}
}

func TestParseSingleNoMatchingLine(t *testing.T) {
	_, _, err := parseSingle("10.0.0.9 : 1.0\n", "10.0.0.5")
	if err == nil {
		t.Error("expected error for missing target line")
	}
}

func TestMeanReceivedEmpty(t *testing.T) {
	if got := meanReceived(nil); got != 0 {
		t.Errorf("meanReceived(nil) = %v, want 0", got)
	}
}
