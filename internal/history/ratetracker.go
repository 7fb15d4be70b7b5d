// Package history batches probe-cycle samples into the time-series tables
// and sweeps rows past their retention horizon (spec.md §4.4).
package history

import (
	"sync"
	"time"
)

// counterSample is the last raw octet counters observed on a connection.
type counterSample struct {
	inOctets, outOctets uint64
	at                  time.Time
}

// wraparoundEpsilon tolerates the ambiguity between a genuine 32-bit
// counter wraparound and ordinary SNMP jitter; a drop larger than this is
// treated as wraparound and the interval is discarded rather than
// producing a negative rate (spec.md §4.2, §8 testable property).
const wraparoundEpsilon = 1024

// RateTracker computes connection bandwidth from successive SNMP octet
// counter samples, generalizing the teacher's per-VM I/O rate calculation
// (internal/monitoring/ratetracker_test.go: CalculateRates) from disk/net
// counters on a VM to in/out octet counters on a Connection.
type RateTracker struct {
	mu   sync.Mutex
	last map[string]counterSample
}

// NewRateTracker returns an empty tracker.
func NewRateTracker() *RateTracker {
	return &RateTracker{last: make(map[string]counterSample)}
}

// Rate computes the (inBps, outBps) rate for connectionID given a new pair
// of counter readings. ok is false on the first sample for a connection
// (no prior baseline) or when a counter decrease larger than
// wraparoundEpsilon is detected, in which case the sample becomes the new
// baseline and the interval is omitted from history.
func (r *RateTracker) Rate(connectionID string, inOctets, outOctets uint64, at time.Time) (inBps, outBps float64, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, have := r.last[connectionID]
	r.last[connectionID] = counterSample{inOctets: inOctets, outOctets: outOctets, at: at}

	if !have {
		return 0, 0, false
	}
	elapsed := at.Sub(prev.at).Seconds()
	if elapsed <= 0 {
		return 0, 0, false
	}

	if wrapped(prev.inOctets, inOctets) || wrapped(prev.outOctets, outOctets) {
		return 0, 0, false
	}

	// A decrease within wraparoundEpsilon is jitter and counts as no traffic.
	var inDelta, outDelta uint64
	if inOctets > prev.inOctets {
		inDelta = inOctets - prev.inOctets
	}
	if outOctets > prev.outOctets {
		outDelta = outOctets - prev.outOctets
	}
	return float64(inDelta) * 8 / elapsed, float64(outDelta) * 8 / elapsed, true
}

// wrapped reports whether newVal is smaller than prevVal by more than the
// wraparound epsilon — the counter-monotonicity guard (spec.md §8).
func wrapped(prevVal, newVal uint64) bool {
	if newVal >= prevVal {
		return false
	}
	return prevVal-newVal > wraparoundEpsilon
}
