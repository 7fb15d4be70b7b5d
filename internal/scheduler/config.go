// Package scheduler implements the bounded-concurrency probe cycle
// (spec.md §4.1): a timer fires a cycle, the cycle loads the device
// inventory, and a fixed-size worker pool probes each device with an
// independent hard deadline.
package scheduler

import "time"

// Config mirrors the defaulting shape of the teacher's SchedulerConfig
// (internal/monitoring/scheduler_test.go: zero/negative fields fall back to
// their documented default rather than erroring).
type Config struct {
	// Concurrency is the worker-pool ceiling C (spec.md §4.1, default 80).
	Concurrency int

	// ProbeDeadline is the hard per-device deadline T (default 6s).
	ProbeDeadline time.Duration

	// DetailedCycleInterval is the number of cycles between forced
	// detailed probes (default 10, i.e. every 10th cycle).
	DetailedCycleInterval int
}

const (
	defaultConcurrency            = 80
	defaultProbeDeadline          = 6 * time.Second
	defaultDetailedCycleInterval  = 10
)

// DefaultConfig returns spec.md §6's documented defaults.
func DefaultConfig() Config {
	return Config{
		Concurrency:           defaultConcurrency,
		ProbeDeadline:         defaultProbeDeadline,
		DetailedCycleInterval: defaultDetailedCycleInterval,
	}
}

// normalize fills in any zero/negative field with its default, matching the
// teacher's constructor-level defaulting rather than validating at the
// call site.
func (c Config) normalize() Config {
	out := c
	if out.Concurrency <= 0 {
		out.Concurrency = defaultConcurrency
	}
	if out.ProbeDeadline <= 0 {
		out.ProbeDeadline = defaultProbeDeadline
	}
	if out.DetailedCycleInterval <= 0 {
		out.DetailedCycleInterval = defaultDetailedCycleInterval
	}
	return out
}
