package memstore

import (
	"context"
	"fmt"
	"strconv"

	"github.com/netwatch-io/netwatch/internal/models"
	"github.com/netwatch-io/netwatch/internal/storage"
)

func nodeKey(cluster, node string) string { return cluster + "\x00" + node }
func vmKey(hostDeviceID string, vmid int) string {
	return hostDeviceID + "\x00" + strconv.Itoa(vmid)
}

func (s *Store) UpsertProxmoxNode(ctx context.Context, n *models.ProxmoxNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *n
	s.proxmoxNodes[nodeKey(n.ClusterName, n.NodeName)] = &cp
	return nil
}

func (s *Store) UpsertProxmoxVm(ctx context.Context, v *models.ProxmoxVm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := vmKey(v.HostDeviceID, v.Vmid)
	if existing, ok := s.proxmoxVms[key]; ok && v.ID == "" {
		v.ID = existing.ID
	}
	cp := *v
	s.proxmoxVms[key] = &cp
	return nil
}

func (s *Store) GetProxmoxNode(ctx context.Context, clusterName, nodeName string) (*models.ProxmoxNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.proxmoxNodes[nodeKey(clusterName, nodeName)]
	if !ok {
		return nil, fmt.Errorf("proxmox node %s/%s: %w", clusterName, nodeName, storage.ErrNotFound)
	}
	cp := *n
	return &cp, nil
}

func (s *Store) ListProxmoxVmsByHost(ctx context.Context, hostDeviceID string) ([]*models.ProxmoxVm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.ProxmoxVm
	for _, v := range s.proxmoxVms {
		if v.HostDeviceID == hostDeviceID {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}

// DedupProxmoxVms enforces (hostDeviceID, vmid) uniqueness over any legacy
// rows, retaining the most-recently-seen row (spec.md §4.8).
func (s *Store) DedupProxmoxVms(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	best := make(map[string]*models.ProxmoxVm)
	removed := 0
	for _, v := range s.proxmoxVms {
		key := vmKey(v.HostDeviceID, v.Vmid)
		if cur, ok := best[key]; !ok || v.LastSeen.After(cur.LastSeen) {
			if ok {
				removed++
			}
			best[key] = v
		} else {
			removed++
		}
	}
	s.proxmoxVms = best
	return removed, nil
}
