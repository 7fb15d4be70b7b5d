package models

import "time"

// IpamEntryType selects which of a pool's three address-range shapes is
// populated.
type IpamEntryType string

const (
	IpamEntryCIDR   IpamEntryType = "cidr"
	IpamEntryRange  IpamEntryType = "range"
	IpamEntrySingle IpamEntryType = "single"
)

// IpamPool is an operator-defined address range. Pools are never
// auto-created by the reconciler.
type IpamPool struct {
	ID         string
	Name       string
	EntryType  IpamEntryType
	CIDR       string // entryType == cidr or single (as a /32 or /128)
	RangeStart string // entryType == range or single
	RangeEnd   string // entryType == range
}

// IpamAddressStatus tracks the lifecycle of a discovered or manually
// entered address.
type IpamAddressStatus string

const (
	IpamStatusAvailable IpamAddressStatus = "available"
	IpamStatusAssigned  IpamAddressStatus = "assigned"
	IpamStatusReserved  IpamAddressStatus = "reserved"
	IpamStatusOffline   IpamAddressStatus = "offline"
)

// IpamSource records where an address entry came from. Entries sourced
// "manual" are never overwritten by a resync (spec.md §3 invariant).
type IpamSource string

const (
	IpamSourceManual     IpamSource = "manual"
	IpamSourceDiscovered IpamSource = "discovered"
	IpamSourceSync       IpamSource = "sync"
)

// IpamAddress is a single IP's inventory row, unique on IPAddress.
type IpamAddress struct {
	ID                  string
	IPAddress           string
	PoolID              *string
	NetworkAddress      *string
	Status              IpamAddressStatus
	Source              IpamSource
	AssignedDeviceID    *string
	AssignedInterfaceID *string
	LastSeenAt          time.Time
}

// IpamAssignment is a junction row permitting multiple (address, device,
// interface) tuples from heterogeneous discovery sources.
type IpamAssignment struct {
	ID          string
	AddressID   string
	DeviceID    string
	InterfaceID *string
}

// InterfaceObservation is what a protocol adapter reports for one
// discovered interface address, consumed by the IPAM Reconciler
// (spec.md §4.6).
type InterfaceObservation struct {
	IPAddress     string
	PrefixLength  *int // CIDR prefix, when known
	InterfaceName string
	Disabled      bool
	Comment       string
}

// DeviceInterface is a per-device network interface row, unique on
// (DeviceID, Name).
type DeviceInterface struct {
	ID                string
	DeviceID          string
	Name              string
	Type              string
	OperStatus        string // up|down
	AdminStatus       string // up|down
	Speed             *string
	MACAddress        *string
	ParentInterfaceID *string
	DiscoverySource   string
	LastSeenAt        time.Time
}
