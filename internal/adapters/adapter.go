// Package adapters defines the protocol-adapter dispatch contract
// (spec.md §4.2, §9 "tagged variant" design note) and a registry that
// resolves a Device's category to the adapter that probes it.
package adapters

import (
	"context"
	"fmt"

	"github.com/netwatch-io/netwatch/internal/models"
)

// ProbeOptions carries the per-cycle context an adapter needs beyond the
// target address and credentials.
type ProbeOptions struct {
	// Detailed requests the expensive per-cycle extras (RouterOS link
	// speed sampling) per spec.md §4.1.
	Detailed bool

	// PreviousPorts is the port set cached from the device's last probe,
	// used by the RouterOS adapter to resolve speed-fallback priority
	// and by the Scheduler to detect link-state flaps.
	PreviousPorts []models.Port
}

// Adapter is implemented once per protocol family. Adapters never mutate
// storage; the caller (the Scheduler's worker) writes back whatever the
// ProbeResult carries.
type Adapter interface {
	Probe(ctx context.Context, ipAddress string, creds models.Credentials, opts ProbeOptions) models.ProbeResult
}

// Registry resolves a Device's Type to the Adapter that knows how to
// probe it (spec.md §9: "sum over device category", not a class hierarchy).
type Registry struct {
	Mikrotik   Adapter
	SNMP       Adapter
	Prometheus Adapter
	Proxmox    Adapter
	// ICMP backs on-demand single-device reachability checks (e.g. the
	// forced re-probe an API edit triggers). The Scheduler's periodic
	// cycle instead routes generic_ping devices through the separate
	// high-frequency batch prober (spec.md §4.5, internal/pingprobe).
	ICMP Adapter
}

// For returns the Adapter that probes devices of type t.
func (r *Registry) For(t models.DeviceType) (Adapter, error) {
	switch t {
	case models.DeviceTypeMikrotikRouter, models.DeviceTypeMikrotikSwitch:
		return r.Mikrotik, nil
	case models.DeviceTypeGenericSNMP, models.DeviceTypeAccessPoint:
		return r.SNMP, nil
	case models.DeviceTypeServer:
		// A server may be monitored via SNMP or Prometheus; the caller
		// decides by credential type since both are legal for this
		// category (spec.md §6 compatibility table).
		return nil, fmt.Errorf("server devices resolve via ForServer, not For")
	case models.DeviceTypeProxmox:
		return r.Proxmox, nil
	case models.DeviceTypeGenericPing:
		return r.ICMP, nil
	default:
		return nil, fmt.Errorf("unknown device type %q", t)
	}
}

// ForServer resolves a server device's adapter based on which credential
// shape it carries (spec.md §4.2: "server with usePrometheus").
func (r *Registry) ForServer(creds models.Credentials) (Adapter, error) {
	switch creds.(type) {
	case models.PrometheusCredentials:
		return r.Prometheus, nil
	case models.SNMPCredentials:
		return r.SNMP, nil
	default:
		return nil, fmt.Errorf("server device credentials must be SNMP or Prometheus, got %T", creds)
	}
}
