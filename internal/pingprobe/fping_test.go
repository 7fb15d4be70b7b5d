package pingprobe

import "testing"

func TestParseBatchOutputMixedLossAndHits(t *testing.T) {
	output := "10.0.0.1 : 1.23 2.34 -\n10.0.0.2 : - - -\n\n"
	results := parseBatchOutput(output)

	r1, ok := results["10.0.0.1"]
	if !ok || len(r1) != 3 {
		t.Fatalf("10.0.0.1 samples = %v", r1)
	}
	if r1[0] == nil || *r1[0] != 1.23 {
		t.Errorf("sample 0 = %v, want 1.23", r1[0])
	}
	if r1[2] != nil {
		t.Errorf("sample 2 = %v, want nil (lost)", r1[2])
	}

	r2, ok := results["10.0.0.2"]
	if !ok || len(r2) != 3 {
		t.Fatalf("10.0.0.2 samples = %v", r2)
	}
	for _, s := range r2 {
		if s != nil {
			t.Errorf("expected all lost, got %v", *s)
		}
	}
}

func TestParseBatchOutputIgnoresMalformedLines(t *testing.T) {
	results := parseBatchOutput("not a valid line\n10.0.0.1 : 1.0\n")
	if len(results) != 1 {
		t.Fatalf("expected 1 parsed target, got %d", len(results))
	}
}
