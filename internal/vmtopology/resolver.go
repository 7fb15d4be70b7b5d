// Package vmtopology rewrites dynamic map connections when a Proxmox VM
// migrates to a different host (spec.md §4.7).
package vmtopology

import (
	"context"
	"fmt"

	"github.com/netwatch-io/netwatch/internal/models"
	"github.com/netwatch-io/netwatch/internal/storage"
	"github.com/rs/zerolog/log"
)

// Resolver retargets proxmox_vm_host dynamic connections on migration.
type Resolver struct {
	store storage.Store
}

// New returns a Resolver backed by store.
func New(store storage.Store) *Resolver {
	return &Resolver{store: store}
}

// ResolveMigrations inspects each freshly-probed VM and, for any whose
// MatchedDeviceID is set and whose dynamic connections still point at a
// stale host, rewrites the host-side endpoint (spec.md §4.7). The VM-side
// endpoint is never touched.
func (r *Resolver) ResolveMigrations(ctx context.Context, vms []models.ProxmoxVm) error {
	for _, vm := range vms {
		if vm.MatchedDeviceID == nil {
			continue
		}
		if err := r.resolveOne(ctx, vm); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) resolveOne(ctx context.Context, vm models.ProxmoxVm) error {
	conns, err := r.store.GetDynamicConnectionsForDevice(ctx, *vm.MatchedDeviceID)
	if err != nil {
		return fmt.Errorf("load dynamic connections for vm device %s: %w", *vm.MatchedDeviceID, err)
	}

	for _, c := range conns {
		if c.DynamicType == nil || *c.DynamicType != models.DynamicTypeProxmoxVMHost {
			continue
		}
		vmEnd := models.VMEndSource
		if c.DynamicMetadata != nil && c.DynamicMetadata.VMEnd != "" {
			vmEnd = c.DynamicMetadata.VMEnd
		}

		currentHost := c.TargetDeviceID
		if vmEnd == models.VMEndTarget {
			currentHost = c.SourceDeviceID
		}
		if currentHost == vm.HostDeviceID {
			continue // already pointed at the right host
		}

		meta := models.DynamicMetadata{
			VMEnd:              vmEnd,
			LastResolvedHostID: vm.HostDeviceID,
			LastResolvedNode:   vm.Node,
			State:              "resolved",
		}
		if err := r.store.UpdateConnectionDynamicHost(ctx, c.ID, vm.HostDeviceID, true, meta); err != nil {
			return fmt.Errorf("rewrite connection %s for migrated vm %s: %w", c.ID, *vm.MatchedDeviceID, err)
		}
		log.Info().
			Str("connectionId", c.ID).
			Str("vmDeviceId", *vm.MatchedDeviceID).
			Str("newHostDeviceId", vm.HostDeviceID).
			Msg("dynamic connection retargeted after vm migration")
	}
	return nil
}
