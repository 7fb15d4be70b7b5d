package models

import "time"

// ProbeOutcome classifies how a worker's probe of one device concluded,
// aggregated into the cycle summary (spec.md §4.1).
type ProbeOutcome string

const (
	OutcomeSuccess ProbeOutcome = "success"
	OutcomeTimeout ProbeOutcome = "timeout"
	OutcomeError   ProbeOutcome = "error"
)

// InterfaceCounterSample carries one interface's raw octet counters for a
// single probe, consumed by the Scheduler's rate tracker to derive
// connection-bandwidth history on detailed cycles (spec.md §4.2, §4.4).
// Only adapters able to read hardware counters (RouterOS, SNMP) populate
// this.
type InterfaceCounterSample struct {
	InOctets  uint64
	OutOctets uint64
}

// ProbeResult is the common envelope every protocol adapter returns.
// Adapters never mutate storage directly; the worker that invoked them
// writes back.
type ProbeResult struct {
	Success bool
	Data    DeviceData

	// Interfaces carries any interface-address observations for the IPAM
	// Reconciler (spec.md §4.6). Not all adapters populate this.
	Interfaces []InterfaceObservation

	// InterfaceCounters is keyed by interface name, populated only on
	// detailed cycles by adapters that expose hardware byte counters.
	InterfaceCounters map[string]InterfaceCounterSample

	// ProxmoxNodes/ProxmoxVms are populated only by the Proxmox adapter.
	ProxmoxNodes []ProxmoxNode
	ProxmoxVms   []ProxmoxVm

	// Err carries the underlying failure for logging; nil on success.
	Err error
}

// DeviceMetricSample is one row of the device-metrics history table.
type DeviceMetricSample struct {
	DeviceID    string
	Timestamp   time.Time
	CPUPct      *float64
	MemoryPct   *float64
	DiskPct     *float64
	PingRTTMs   *float64
	UptimeSecs  *int64
}

// ConnectionBandwidthSample is one row of the connection-bandwidth history
// table: a bandwidth rate derived between two successive counter samples.
type ConnectionBandwidthSample struct {
	ConnectionID string
	Timestamp    time.Time
	InBps        float64
	OutBps       float64
}

// PrometheusSample is one row per (device, metric, timestamp).
type PrometheusSample struct {
	DeviceID  string
	Metric    string
	Labels    map[string]string
	Value     float64
	Timestamp time.Time
}

// PingStats carries the percentile/dispersion statistics for one ping
// cycle's samples on a single target (spec.md §4.5).
type PingStats struct {
	Min  *float64
	Max  *float64
	Mean *float64
	Mdev *float64 // sample standard deviation
	P10  *float64
	P25  *float64
	P50  *float64
	P75  *float64
	P90  *float64
	P95  *float64
}

// PingSample is one row per target per ping cycle.
type PingSample struct {
	TargetID  string
	Timestamp time.Time
	Sent      int
	Received  int
	LossPct   float64
	Stats     PingStats
}
