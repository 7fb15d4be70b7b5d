package models

import "time"

// ProxmoxGuestType distinguishes QEMU VMs from LXC containers.
type ProxmoxGuestType string

const (
	ProxmoxGuestQEMU ProxmoxGuestType = "qemu"
	ProxmoxGuestLXC  ProxmoxGuestType = "lxc"
)

// ProxmoxGuestStatus mirrors the Proxmox API's guest status values.
type ProxmoxGuestStatus string

const (
	ProxmoxGuestRunning ProxmoxGuestStatus = "running"
	ProxmoxGuestStopped ProxmoxGuestStatus = "stopped"
	ProxmoxGuestPaused  ProxmoxGuestStatus = "paused"
	ProxmoxGuestUnknown ProxmoxGuestStatus = "unknown"
)

// ProxmoxVm is one guest (VM or container) as observed on a host's probe,
// unique on (HostDeviceID, Vmid).
type ProxmoxVm struct {
	ID            string
	HostDeviceID  string
	Vmid          int
	VmType        ProxmoxGuestType
	Name          string
	Status        ProxmoxGuestStatus
	Node          string
	CPUFraction   float64
	MemoryBytes   int64
	MemoryPct     float64
	DiskBytes     int64
	UptimeSeconds int64
	IPAddresses   []string
	MACAddresses  []string
	MatchedDeviceID *string
	ClusterName   string
	LastSeen      time.Time
}

// ProxmoxNode identifies which Device "is" a given cluster node, unique on
// (ClusterName, NodeName).
type ProxmoxNode struct {
	ClusterName  string
	NodeName     string
	HostDeviceID string
	LastSeen     time.Time
}

// PingTarget is a host monitored only for reachability by the Ping Prober.
type PingTarget struct {
	ID         string
	DeviceID   *string
	IPAddress  string
	Label      string
	Enabled    bool
	ProbeCount int // clamped to [1, 100]
}

// ClampProbeCount enforces the PingTarget.ProbeCount invariant.
func ClampProbeCount(n int) int {
	if n < 1 {
		return 1
	}
	if n > 100 {
		return 100
	}
	return n
}
