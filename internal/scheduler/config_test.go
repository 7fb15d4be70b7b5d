package scheduler

import "testing"

func TestConfigNormalizeDefaults(t *testing.T) {
	def := DefaultConfig()

	tests := []struct {
		name string
		in   Config
		want Config
	}{
		{"all valid preserved", Config{Concurrency: 40, ProbeDeadline: 3e9, DetailedCycleInterval: 5}, Config{Concurrency: 40, ProbeDeadline: 3e9, DetailedCycleInterval: 5}},
		{"zero concurrency gets default", Config{Concurrency: 0, ProbeDeadline: 3e9, DetailedCycleInterval: 5}, Config{Concurrency: def.Concurrency, ProbeDeadline: 3e9, DetailedCycleInterval: 5}},
		{"negative deadline gets default", Config{Concurrency: 40, ProbeDeadline: -1, DetailedCycleInterval: 5}, Config{Concurrency: 40, ProbeDeadline: def.ProbeDeadline, DetailedCycleInterval: 5}},
		{"zero detailed interval gets default", Config{Concurrency: 40, ProbeDeadline: 3e9, DetailedCycleInterval: 0}, Config{Concurrency: 40, ProbeDeadline: 3e9, DetailedCycleInterval: def.DetailedCycleInterval}},
		{"empty config gets full default", Config{}, def},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.normalize()
			if got != tc.want {
				t.Errorf("normalize() = %+v, want %+v", got, tc.want)
			}
		})
	}
}
