// Package storage defines the persistence interface the monitoring core
// requires (spec.md §6). Schema, SQL dialect, and migration are external
// concerns; this package only names the operations the core calls.
package storage

import (
	"context"
	"time"

	"github.com/netwatch-io/netwatch/internal/models"
)

// DeviceStore covers device CRUD plus the lookups the Scheduler and IPAM
// Reconciler need.
type DeviceStore interface {
	GetAllDevices(ctx context.Context) ([]*models.Device, error)
	GetDevice(ctx context.Context, id string) (*models.Device, error)
	GetDeviceByAnyIP(ctx context.Context, ip string) (*models.Device, error)
	CreateDevice(ctx context.Context, d *models.Device) error
	UpdateDevice(ctx context.Context, d *models.Device) error
	DeleteDevice(ctx context.Context, id string) error
}

// ConnectionStore covers per-map connection fetch and the dynamic-host
// rewrite the VM Topology Resolver performs.
type ConnectionStore interface {
	GetConnectionsByMap(ctx context.Context, mapID string) ([]*models.Connection, error)
	GetDynamicConnectionsForDevice(ctx context.Context, deviceID string) ([]*models.Connection, error)
	ListConnectionsForDevice(ctx context.Context, deviceID string) ([]*models.Connection, error)
	UpdateConnectionDynamicHost(ctx context.Context, connectionID string, newHostDeviceID string, clearPort bool, meta models.DynamicMetadata) error
}

// CredentialProfileStore covers CRUD for reusable credential bags.
type CredentialProfileStore interface {
	GetCredentialProfile(ctx context.Context, id string) (*models.CredentialProfile, error)
	ListCredentialProfiles(ctx context.Context) ([]*models.CredentialProfile, error)
	UpsertCredentialProfile(ctx context.Context, p *models.CredentialProfile) error
	DeleteCredentialProfile(ctx context.Context, id string) error
}

// IpamStore covers pool CRUD, address upsert/sync, and pool statistics.
type IpamStore interface {
	ListIpamPools(ctx context.Context) ([]*models.IpamPool, error)
	UpsertIpamPool(ctx context.Context, p *models.IpamPool) error
	DeleteIpamPool(ctx context.Context, id string) error

	GetIpamAddressByIP(ctx context.Context, ip string) (*models.IpamAddress, error)
	UpsertIpamAddress(ctx context.Context, a *models.IpamAddress) error
	SyncDeviceIpamAddresses(ctx context.Context, deviceID string, seenAddressIDs []string) error
	EnsureAssignment(ctx context.Context, addressID, deviceID string, interfaceID *string) error
	PoolStats(ctx context.Context, poolID string) (total, assigned, available int, err error)
}

// InterfaceStore covers per-device interface sync and the startup dedup
// pass.
type InterfaceStore interface {
	UpsertDeviceInterface(ctx context.Context, iface *models.DeviceInterface) error
	ListDeviceInterfaces(ctx context.Context, deviceID string) ([]*models.DeviceInterface, error)
	DedupDeviceInterfaces(ctx context.Context) (removed int, err error)
}

// ProxmoxStore covers VM/node upsert keyed on their natural identifiers.
type ProxmoxStore interface {
	UpsertProxmoxNode(ctx context.Context, n *models.ProxmoxNode) error
	UpsertProxmoxVm(ctx context.Context, v *models.ProxmoxVm) error
	GetProxmoxNode(ctx context.Context, clusterName, nodeName string) (*models.ProxmoxNode, error)
	ListProxmoxVmsByHost(ctx context.Context, hostDeviceID string) ([]*models.ProxmoxVm, error)
	DedupProxmoxVms(ctx context.Context) (removed int, err error)
}

// HistoryStore covers the append-only time-series tables.
type HistoryStore interface {
	InsertDeviceMetrics(ctx context.Context, rows []models.DeviceMetricSample) error
	InsertConnectionBandwidth(ctx context.Context, rows []models.ConnectionBandwidthSample) error
	InsertPrometheusSamples(ctx context.Context, rows []models.PrometheusSample) error
	InsertPingSamples(ctx context.Context, rows []models.PingSample) error

	DeviceMetricsRange(ctx context.Context, deviceID string, from, to time.Time) ([]models.DeviceMetricSample, error)
	DeleteOlderThan(ctx context.Context, table string, horizon time.Duration) (deleted int, err error)
}

// Notification describes one outbound status-change subscription.
type Notification struct {
	ID              string
	DeviceID        string
	Enabled         bool
	URL             string
	Method          string // GET|POST
	MessageTemplate string
}

// NotificationStore covers CRUD plus per-device subscription lookup.
type NotificationStore interface {
	GetNotificationsForDevice(ctx context.Context, deviceID string) ([]*Notification, error)
	UpsertNotification(ctx context.Context, n *Notification) error
	DeleteNotification(ctx context.Context, id string) error
}

// DutyShift is one user's day/night window, wall-clock start/end times.
type DutyShift struct {
	UserID string
	Shift  string // "day" | "night"
	Start  string // "HH:MM"
	End    string // "HH:MM"
}

// AlarmMute is either the single global mute or one keyed to a user.
type AlarmMute struct {
	ID        string
	UserID    *string // nil == global
	ExpiresAt *time.Time // nil == indefinite
}

// DutyStore covers roster and mute CRUD plus "active at time T" queries.
type DutyStore interface {
	ListDutyShifts(ctx context.Context) ([]DutyShift, error)
	ActiveMutes(ctx context.Context, at time.Time) ([]AlarmMute, error)
	UpsertMute(ctx context.Context, m AlarmMute) error
	ClearMute(ctx context.Context, id string) error
}

// StatusEventStore covers append-only status event bookkeeping.
type StatusEventStore interface {
	AppendStatusEvent(ctx context.Context, e *models.DeviceStatusEvent) error
	StatusEventsRange(ctx context.Context, deviceID string, from, to time.Time) ([]*models.DeviceStatusEvent, error)
	DeleteStatusEventsOlderThan(ctx context.Context, horizon time.Duration) (deleted int, err error)
}

// SettingsStore covers the process-level key→JSON settings table.
type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (json []byte, ok bool, err error)
	SetSetting(ctx context.Context, key string, value []byte) error
}

// PingTargetStore covers CRUD for the Ping Prober's target list (spec.md
// §3 PingTarget, §4.5).
type PingTargetStore interface {
	ListEnabledPingTargets(ctx context.Context) ([]*models.PingTarget, error)
	UpsertPingTarget(ctx context.Context, t *models.PingTarget) error
	DeletePingTarget(ctx context.Context, id string) error
}

// Store is the full interface the core requires from the persistence
// layer (spec.md §6). A production deployment supplies its own
// implementation against whatever database it runs; internal/storage/memstore
// provides an in-memory reference implementation.
type Store interface {
	DeviceStore
	ConnectionStore
	CredentialProfileStore
	IpamStore
	InterfaceStore
	ProxmoxStore
	HistoryStore
	NotificationStore
	DutyStore
	StatusEventStore
	SettingsStore
	PingTargetStore
}
