package ipam

import (
	"context"
	"fmt"
	"net/netip"
	"time"

	"github.com/netwatch-io/netwatch/internal/models"
	"github.com/netwatch-io/netwatch/internal/storage"
	"github.com/rs/zerolog/log"
)

// Reconciler maps discovered interface addresses to pools and devices
// (spec.md §4.6).
type Reconciler struct {
	store storage.Store
}

// New returns a Reconciler backed by store.
func New(store storage.Store) *Reconciler {
	return &Reconciler{store: store}
}

// Reconcile processes one probe's interface-address observations for
// deviceID: pool lookup, address upsert, assignment junction maintenance,
// and the end-of-cycle discovered-address staleness sweep (spec.md §4.6
// steps 1-5).
func (r *Reconciler) Reconcile(ctx context.Context, deviceID string, interfaceIDByName map[string]string, observations []models.InterfaceObservation, at time.Time) error {
	pools, err := r.store.ListIpamPools(ctx)
	if err != nil {
		return fmt.Errorf("list ipam pools: %w", err)
	}

	var seenAddressIDs []string
	for _, obs := range observations {
		if obs.Disabled {
			continue
		}
		addrStr, network := splitPrefix(obs.IPAddress, obs.PrefixLength)

		pool, err := FindPool(addrStr, pools)
		if err != nil {
			log.Warn().Err(err).Str("ip", addrStr).Msg("ipam pool lookup failed")
		}

		record := &models.IpamAddress{
			IPAddress:        addrStr,
			Status:           models.IpamStatusAssigned,
			Source:           models.IpamSourceDiscovered,
			LastSeenAt:       at,
			AssignedDeviceID: &deviceID,
		}
		if pool != nil {
			record.PoolID = &pool.ID
		}
		if network != "" {
			record.NetworkAddress = &network
		}

		if err := r.store.UpsertIpamAddress(ctx, record); err != nil {
			return fmt.Errorf("upsert ipam address %s: %w", addrStr, err)
		}

		existing, err := r.store.GetIpamAddressByIP(ctx, addrStr)
		if err != nil {
			return fmt.Errorf("reload ipam address %s: %w", addrStr, err)
		}
		seenAddressIDs = append(seenAddressIDs, existing.ID)

		var interfaceID *string
		if id, ok := interfaceIDByName[obs.InterfaceName]; ok {
			interfaceID = &id
		}
		if err := r.store.EnsureAssignment(ctx, existing.ID, deviceID, interfaceID); err != nil {
			return fmt.Errorf("ensure assignment for %s: %w", addrStr, err)
		}
	}

	if err := r.store.SyncDeviceIpamAddresses(ctx, deviceID, seenAddressIDs); err != nil {
		return fmt.Errorf("sync device ipam addresses: %w", err)
	}
	return nil
}

// splitPrefix strips the prefix length from an observed address and
// derives the network address from it, when known (spec.md §4.6 step 1).
func splitPrefix(ip string, prefixLen *int) (addr string, network string) {
	if prefixLen == nil {
		return ip, ""
	}
	a, err := netip.ParseAddr(ip)
	if err != nil {
		return ip, ""
	}
	prefix, err := a.Prefix(*prefixLen)
	if err != nil {
		return ip, ""
	}
	return ip, prefix.Masked().Addr().String()
}
