// Package startup runs the one-time housekeeping pass spec.md §4.8
// requires before the Scheduler begins: deduplicating any legacy rows
// that violate the DeviceInterface and ProxmoxVm uniqueness invariants.
package startup

import (
	"context"
	"fmt"

	"github.com/netwatch-io/netwatch/internal/storage"
	"github.com/rs/zerolog/log"
)

// Run performs the startup dedup pass. Errors are logged and tolerated —
// the Scheduler still starts (spec.md §7: "Startup errors in dedup/index
// creation are logged and tolerated").
func Run(ctx context.Context, store storage.Store) {
	if removed, err := store.DedupDeviceInterfaces(ctx); err != nil {
		log.Warn().Err(err).Msg("device interface dedup pass failed")
	} else if removed > 0 {
		log.Info().Int("removed", removed).Msg("deduplicated legacy device interface rows")
	}

	if removed, err := store.DedupProxmoxVms(ctx); err != nil {
		log.Warn().Err(err).Msg("proxmox vm dedup pass failed")
	} else if removed > 0 {
		log.Info().Int("removed", removed).Msg("deduplicated legacy proxmox vm rows")
	}
}

// RunStrict is like Run but propagates the first error encountered,
// useful for tests that want to assert on failure paths directly.
func RunStrict(ctx context.Context, store storage.Store) error {
	if _, err := store.DedupDeviceInterfaces(ctx); err != nil {
		return fmt.Errorf("dedup device interfaces: %w", err)
	}
	if _, err := store.DedupProxmoxVms(ctx); err != nil {
		return fmt.Errorf("dedup proxmox vms: %w", err)
	}
	return nil
}
