package memstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/netwatch-io/netwatch/internal/models"
	"github.com/netwatch-io/netwatch/internal/storage"
)

func (s *Store) ListIpamPools(ctx context.Context) ([]*models.IpamPool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.IpamPool, 0, len(s.pools))
	for _, p := range s.pools {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (s *Store) UpsertIpamPool(ctx context.Context, p *models.IpamPool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	cp := *p
	s.pools[p.ID] = &cp
	return nil
}

func (s *Store) DeleteIpamPool(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pools, id)
	return nil
}

func (s *Store) GetIpamAddressByIP(ctx context.Context, ip string) (*models.IpamAddress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.addresses[ip]
	if !ok {
		return nil, fmt.Errorf("ipam address %s: %w", ip, storage.ErrNotFound)
	}
	cp := *a
	return &cp, nil
}

// UpsertIpamAddress upserts keyed on IPAddress. It never overwrites a
// source=manual row's source marker, and only updates fields explicitly
// present (non-zero) on the incoming record — it never clobbers existing
// fields with zero values the caller didn't intend to set. Callers that
// want to clear a field must do so via an explicit read-modify-write.
func (s *Store) UpsertIpamAddress(ctx context.Context, a *models.IpamAddress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.addresses[a.IPAddress]
	if !ok {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		cp := *a
		s.addresses[a.IPAddress] = &cp
		return nil
	}

	merged := *existing
	if a.PoolID != nil {
		merged.PoolID = a.PoolID
	}
	if a.NetworkAddress != nil {
		merged.NetworkAddress = a.NetworkAddress
	}
	if a.Status != "" {
		merged.Status = a.Status
	}
	if a.Source != "" && existing.Source != models.IpamSourceManual {
		merged.Source = a.Source
	}
	if a.AssignedDeviceID != nil {
		merged.AssignedDeviceID = a.AssignedDeviceID
	}
	if a.AssignedInterfaceID != nil {
		merged.AssignedInterfaceID = a.AssignedInterfaceID
	}
	if !a.LastSeenAt.IsZero() {
		merged.LastSeenAt = a.LastSeenAt
	}
	s.addresses[a.IPAddress] = &merged
	return nil
}

func (s *Store) SyncDeviceIpamAddresses(ctx context.Context, deviceID string, seenAddressIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{}, len(seenAddressIDs))
	for _, id := range seenAddressIDs {
		seen[id] = struct{}{}
	}
	for _, a := range s.addresses {
		if a.AssignedDeviceID == nil || *a.AssignedDeviceID != deviceID {
			continue
		}
		if a.Source != models.IpamSourceDiscovered {
			continue
		}
		if _, ok := seen[a.ID]; !ok {
			a.Status = models.IpamStatusOffline
		}
	}
	return nil
}

func (s *Store) EnsureAssignment(ctx context.Context, addressID, deviceID string, interfaceID *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, asn := range s.assignments {
		if asn.AddressID == addressID && asn.DeviceID == deviceID {
			asn.InterfaceID = interfaceID
			return nil
		}
	}
	id := uuid.NewString()
	s.assignments[id] = &models.IpamAssignment{
		ID:          id,
		AddressID:   addressID,
		DeviceID:    deviceID,
		InterfaceID: interfaceID,
	}
	return nil
}

func (s *Store) PoolStats(ctx context.Context, poolID string) (total, assigned, available int, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.addresses {
		if a.PoolID == nil || *a.PoolID != poolID {
			continue
		}
		total++
		switch a.Status {
		case models.IpamStatusAssigned:
			assigned++
		case models.IpamStatusAvailable:
			available++
		}
	}
	return total, assigned, available, nil
}

// --- device interfaces ---

func interfaceKey(deviceID, name string) string { return deviceID + "\x00" + name }

func (s *Store) UpsertDeviceInterface(ctx context.Context, iface *models.DeviceInterface) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := interfaceKey(iface.DeviceID, iface.Name)
	if existing, ok := s.interfaces[key]; ok {
		iface.ID = existing.ID
	} else if iface.ID == "" {
		iface.ID = uuid.NewString()
	}
	cp := *iface
	s.interfaces[key] = &cp
	return nil
}

func (s *Store) ListDeviceInterfaces(ctx context.Context, deviceID string) ([]*models.DeviceInterface, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.DeviceInterface
	for _, iface := range s.interfaces {
		if iface.DeviceID == deviceID {
			cp := *iface
			out = append(out, &cp)
		}
	}
	return out, nil
}

// DedupDeviceInterfaces enforces (deviceID, name) uniqueness over any
// legacy rows, retaining the most-recently-seen row (spec.md §4.8).
func (s *Store) DedupDeviceInterfaces(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	best := make(map[string]*models.DeviceInterface)
	removed := 0
	for _, iface := range s.interfaces {
		key := interfaceKey(iface.DeviceID, iface.Name)
		if cur, ok := best[key]; !ok || iface.LastSeenAt.After(cur.LastSeenAt) {
			if ok {
				removed++
			}
			best[key] = iface
		} else {
			removed++
		}
	}
	s.interfaces = best
	return removed, nil
}
