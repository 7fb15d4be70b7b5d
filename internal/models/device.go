// Package models defines the domain types shared across the monitoring
// core: devices, maps, connections, credentials, IPAM, and history rows.
package models

import "time"

// DeviceType enumerates the device categories the Scheduler dispatches on.
type DeviceType string

const (
	DeviceTypeMikrotikRouter DeviceType = "mikrotik_router"
	DeviceTypeMikrotikSwitch DeviceType = "mikrotik_switch"
	DeviceTypeGenericSNMP    DeviceType = "generic_snmp"
	DeviceTypeGenericPing    DeviceType = "generic_ping"
	DeviceTypeServer         DeviceType = "server"
	DeviceTypeAccessPoint    DeviceType = "access_point"
	DeviceTypeProxmox        DeviceType = "proxmox"
)

// IsMikrotik reports whether t is one of the mikrotik_* variants.
func (t DeviceType) IsMikrotik() bool {
	return t == DeviceTypeMikrotikRouter || t == DeviceTypeMikrotikSwitch
}

// Status is the derived reachability/health state of a Device.
type Status string

const (
	StatusOnline  Status = "online"
	StatusWarning Status = "warning"
	StatusOffline Status = "offline"
	StatusUnknown Status = "unknown"
)

// ValidStatus reports whether s is one of the enumerated status values.
func ValidStatus(s Status) bool {
	switch s {
	case StatusOnline, StatusWarning, StatusOffline, StatusUnknown:
		return true
	default:
		return false
	}
}

// Port describes one interface as surfaced in a RouterOS/SNMP probe snapshot.
type Port struct {
	Name        string `json:"name"`
	DefaultName string `json:"defaultName,omitempty"`
	Comment     string `json:"comment,omitempty"`
	Status      string `json:"status"` // up | down
	Speed       string `json:"speed,omitempty"`
}

// DeviceData is the last-known probe snapshot persisted on the Device row.
// It is never erased on a transient failure (spec.md §4.1 Failure semantics).
type DeviceData struct {
	Identity       string            `json:"identity,omitempty"`
	Model          string            `json:"model,omitempty"`
	Version        string            `json:"version,omitempty"`
	Uptime         string            `json:"uptime,omitempty"`
	CPUUsagePct    *float64          `json:"cpuUsagePct,omitempty"`
	MemoryUsagePct *float64          `json:"memoryUsagePct,omitempty"`
	DiskUsagePct   *float64          `json:"diskUsagePct,omitempty"`
	Ports          []Port            `json:"ports,omitempty"`
	Extra          map[string]string `json:"extra,omitempty"`
}

// Device is a monitored network element.
type Device struct {
	ID                  string
	Name                string
	Type                DeviceType
	IPAddress           string
	Status              Status
	CredentialProfileID *string
	CustomCredentials   Credentials
	DeviceData          DeviceData
	UpdatedAt           time.Time
}

// HasCredentialSource reports whether at least one of
// {CredentialProfileID, CustomCredentials} is set.
func (d *Device) HasCredentialSource() bool {
	return d.CredentialProfileID != nil || d.CustomCredentials != nil
}

// ValidCredentialAssignment enforces "exactly one of {profile, custom}, or
// both null" (spec.md §3 Device invariants).
func (d *Device) ValidCredentialAssignment() bool {
	return !(d.CredentialProfileID != nil && d.CustomCredentials != nil)
}

// Map is a visual topology canvas.
type Map struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Position is a placement's 2D coordinate on a Map.
type Position struct {
	X float64
	Y float64
}

// Placement ties a Device to a Map at a position. At most one placement
// per (MapID, DeviceID) may exist.
type Placement struct {
	ID       string
	MapID    string
	DeviceID string
	Position Position
}

// DynamicConnectionType enumerates the kinds of connection the VM Topology
// Resolver knows how to rewrite.
type DynamicConnectionType string

const (
	DynamicTypeProxmoxVMHost DynamicConnectionType = "proxmox_vm_host"
)

// VMEnd identifies which endpoint of a dynamic connection is the VM side.
type VMEnd string

const (
	VMEndSource VMEnd = "source"
	VMEndTarget VMEnd = "target"
)

// DynamicMetadata carries the VM Topology Resolver's bookkeeping for a
// dynamic connection.
type DynamicMetadata struct {
	VMEnd              VMEnd  `json:"vmEnd,omitempty"`
	LastResolvedHostID string `json:"lastResolvedHostId,omitempty"`
	LastResolvedNode   string `json:"lastResolvedNodeName,omitempty"`
	State              string `json:"state,omitempty"` // "resolved" once rewritten
}

// Connection is an edge between two devices on a Map.
type Connection struct {
	ID                string
	MapID             string
	SourceDeviceID    string
	SourcePort        *string
	TargetDeviceID    string
	TargetPort        *string
	MonitorInterface  *string
	IsDynamic         bool
	DynamicType       *DynamicConnectionType
	DynamicMetadata   *DynamicMetadata
}

// DeviceStatusEvent is an immutable record of a status transition.
type DeviceStatusEvent struct {
	ID               string
	DeviceID         string
	PreviousStatus   *Status
	NewStatus        Status
	CreatedAt        time.Time
}
