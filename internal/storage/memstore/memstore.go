// Package memstore is an in-memory reference implementation of
// storage.Store. It exists so the monitoring core can run and be tested
// without an external database wired in; spec.md §1 treats persistent
// storage and its schema as an external collaborator, so this package
// intentionally avoids any SQL dialect.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/netwatch-io/netwatch/internal/models"
	"github.com/netwatch-io/netwatch/internal/storage"
)

// Store is a mutex-guarded, map-backed implementation of storage.Store.
type Store struct {
	mu sync.RWMutex

	devices      map[string]*models.Device
	connections  map[string]*models.Connection
	profiles     map[string]*models.CredentialProfile
	pools        map[string]*models.IpamPool
	addresses    map[string]*models.IpamAddress // keyed by IP string
	assignments  map[string]*models.IpamAssignment
	interfaces   map[string]*models.DeviceInterface
	proxmoxNodes map[string]*models.ProxmoxNode // keyed by clusterName/nodeName
	proxmoxVms   map[string]*models.ProxmoxVm   // keyed by hostDeviceID/vmid
	notifications map[string]*storage.Notification
	dutyShifts   []storage.DutyShift
	mutes        map[string]storage.AlarmMute
	settings     map[string][]byte
	pingTargets  map[string]*models.PingTarget

	deviceMetrics       []models.DeviceMetricSample
	connectionBandwidth []models.ConnectionBandwidthSample
	prometheusSamples   []models.PrometheusSample
	pingSamples         []models.PingSample
	statusEvents        []*models.DeviceStatusEvent
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		devices:       make(map[string]*models.Device),
		connections:   make(map[string]*models.Connection),
		profiles:      make(map[string]*models.CredentialProfile),
		pools:         make(map[string]*models.IpamPool),
		addresses:     make(map[string]*models.IpamAddress),
		assignments:   make(map[string]*models.IpamAssignment),
		interfaces:    make(map[string]*models.DeviceInterface),
		proxmoxNodes:  make(map[string]*models.ProxmoxNode),
		proxmoxVms:    make(map[string]*models.ProxmoxVm),
		notifications: make(map[string]*storage.Notification),
		mutes:         make(map[string]storage.AlarmMute),
		settings:      make(map[string][]byte),
		pingTargets:   make(map[string]*models.PingTarget),
	}
}

var _ storage.Store = (*Store)(nil)

// --- devices ---

func (s *Store) GetAllDevices(ctx context.Context) ([]*models.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Device, 0, len(s.devices))
	for _, d := range s.devices {
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetDevice(ctx context.Context, id string) (*models.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.devices[id]
	if !ok {
		return nil, fmt.Errorf("device %s: %w", id, storage.ErrNotFound)
	}
	cp := *d
	return &cp, nil
}

func (s *Store) GetDeviceByAnyIP(ctx context.Context, ip string) (*models.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.devices {
		if d.IPAddress == ip {
			cp := *d
			return &cp, nil
		}
	}
	for _, a := range s.addresses {
		if a.IPAddress == ip && a.AssignedDeviceID != nil {
			if d, ok := s.devices[*a.AssignedDeviceID]; ok {
				cp := *d
				return &cp, nil
			}
		}
	}
	return nil, fmt.Errorf("device with ip %s: %w", ip, storage.ErrNotFound)
}

func (s *Store) CreateDevice(ctx context.Context, d *models.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	cp := *d
	s.devices[d.ID] = &cp
	return nil
}

func (s *Store) UpdateDevice(ctx context.Context, d *models.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.devices[d.ID]; !ok {
		return fmt.Errorf("device %s: %w", d.ID, storage.ErrNotFound)
	}
	cp := *d
	s.devices[d.ID] = &cp
	return nil
}

func (s *Store) DeleteDevice(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.devices, id)
	// Cascade: placements/connections/history/VMs/interfaces/IPAM assignments.
	for cid, c := range s.connections {
		if c.SourceDeviceID == id || c.TargetDeviceID == id {
			delete(s.connections, cid)
		}
	}
	for ifID, iface := range s.interfaces {
		if iface.DeviceID == id {
			delete(s.interfaces, ifID)
		}
	}
	for key, vm := range s.proxmoxVms {
		if vm.HostDeviceID == id {
			delete(s.proxmoxVms, key)
		}
	}
	for aid, asn := range s.assignments {
		if asn.DeviceID == id {
			delete(s.assignments, aid)
		}
	}
	return nil
}

// --- connections ---

func (s *Store) GetConnectionsByMap(ctx context.Context, mapID string) ([]*models.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Connection
	for _, c := range s.connections {
		if c.MapID == mapID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) GetDynamicConnectionsForDevice(ctx context.Context, deviceID string) ([]*models.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Connection
	for _, c := range s.connections {
		if !c.IsDynamic {
			continue
		}
		if c.SourceDeviceID == deviceID || c.TargetDeviceID == deviceID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ListConnectionsForDevice returns every connection (static or dynamic)
// with deviceID on either endpoint, for the Scheduler's bandwidth-history
// matching (spec.md §4.4).
func (s *Store) ListConnectionsForDevice(ctx context.Context, deviceID string) ([]*models.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Connection
	for _, c := range s.connections {
		if c.SourceDeviceID == deviceID || c.TargetDeviceID == deviceID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) UpdateConnectionDynamicHost(ctx context.Context, connectionID string, newHostDeviceID string, clearPort bool, meta models.DynamicMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.connections[connectionID]
	if !ok {
		return fmt.Errorf("connection %s: %w", connectionID, storage.ErrNotFound)
	}
	vmEnd := meta.VMEnd
	if vmEnd == models.VMEndSource {
		c.TargetDeviceID = newHostDeviceID
		if clearPort {
			c.TargetPort = nil
		}
	} else {
		c.SourceDeviceID = newHostDeviceID
		if clearPort {
			c.SourcePort = nil
		}
	}
	metaCopy := meta
	c.DynamicMetadata = &metaCopy
	return nil
}

// --- credential profiles ---

func (s *Store) GetCredentialProfile(ctx context.Context, id string) (*models.CredentialProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, fmt.Errorf("credential profile %s: %w", id, storage.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (s *Store) ListCredentialProfiles(ctx context.Context) ([]*models.CredentialProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.CredentialProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (s *Store) UpsertCredentialProfile(ctx context.Context, p *models.CredentialProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	cp := *p
	s.profiles[p.ID] = &cp
	return nil
}

func (s *Store) DeleteCredentialProfile(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, id)
	return nil
}

// --- settings ---

func (s *Store) GetSetting(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.settings[key]
	return v, ok, nil
}

func (s *Store) SetSetting(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[key] = value
	return nil
}

// --- ping targets ---

func (s *Store) ListEnabledPingTargets(ctx context.Context) ([]*models.PingTarget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.PingTarget
	for _, t := range s.pingTargets {
		if t.Enabled {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpsertPingTarget(ctx context.Context, t *models.PingTarget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.ProbeCount = models.ClampProbeCount(t.ProbeCount)
	cp := *t
	s.pingTargets[t.ID] = &cp
	return nil
}

func (s *Store) DeletePingTarget(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pingTargets, id)
	return nil
}

// SeedConnection inserts a connection directly. Connection authorship
// belongs to the external map-editor collaborator (spec.md §1); this
// exists only so package tests can set up fixtures without reimplementing
// a REST layer.
func (s *Store) SeedConnection(c *models.Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	cp := *c
	s.connections[c.ID] = &cp
}
