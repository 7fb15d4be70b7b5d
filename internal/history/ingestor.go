package history

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/netwatch-io/netwatch/internal/models"
	"github.com/netwatch-io/netwatch/internal/storage"
	"github.com/rs/zerolog/log"
)

// Ingestor batches probe-cycle samples into the history tables. Writes are
// one multi-row insert per cycle; rows with all-null metric fields, or any
// non-finite float, are dropped before insert (spec.md §4.4).
type Ingestor struct {
	store storage.Store
	Rates *RateTracker
}

// New returns an Ingestor backed by store.
func New(store storage.Store) *Ingestor {
	return &Ingestor{store: store, Rates: NewRateTracker()}
}

// IngestDeviceMetrics drops samples where CPU/Memory/Disk/RTT/Uptime are
// all nil (nothing worth recording) and drops individual non-finite
// fields, then performs one batch insert.
func (i *Ingestor) IngestDeviceMetrics(ctx context.Context, rows []models.DeviceMetricSample) error {
	var kept []models.DeviceMetricSample
	for _, r := range rows {
		r.CPUPct = finiteOrNil(r.CPUPct)
		r.MemoryPct = finiteOrNil(r.MemoryPct)
		r.DiskPct = finiteOrNil(r.DiskPct)
		r.PingRTTMs = finiteOrNil(r.PingRTTMs)
		if r.CPUPct == nil && r.MemoryPct == nil && r.DiskPct == nil && r.PingRTTMs == nil && r.UptimeSecs == nil {
			continue
		}
		kept = append(kept, r)
	}
	if len(kept) == 0 {
		return nil
	}
	if err := i.store.InsertDeviceMetrics(ctx, kept); err != nil {
		return fmt.Errorf("insert device metrics: %w", err)
	}
	return nil
}

// IngestConnectionBandwidth drops rows with non-finite rates.
func (i *Ingestor) IngestConnectionBandwidth(ctx context.Context, rows []models.ConnectionBandwidthSample) error {
	var kept []models.ConnectionBandwidthSample
	for _, r := range rows {
		if !finite(r.InBps) || !finite(r.OutBps) {
			continue
		}
		kept = append(kept, r)
	}
	if len(kept) == 0 {
		return nil
	}
	if err := i.store.InsertConnectionBandwidth(ctx, kept); err != nil {
		return fmt.Errorf("insert connection bandwidth: %w", err)
	}
	return nil
}

// IngestPrometheusSamples drops rows whose value is non-finite (data
// errors discard only the offending sample, spec.md §7).
func (i *Ingestor) IngestPrometheusSamples(ctx context.Context, rows []models.PrometheusSample) error {
	var kept []models.PrometheusSample
	for _, r := range rows {
		if !finite(r.Value) {
			continue
		}
		kept = append(kept, r)
	}
	if len(kept) == 0 {
		return nil
	}
	if err := i.store.InsertPrometheusSamples(ctx, kept); err != nil {
		return fmt.Errorf("insert prometheus samples: %w", err)
	}
	return nil
}

// IngestPingSamples inserts one row per target per cycle.
func (i *Ingestor) IngestPingSamples(ctx context.Context, rows []models.PingSample) error {
	if len(rows) == 0 {
		return nil
	}
	if err := i.store.InsertPingSamples(ctx, rows); err != nil {
		return fmt.Errorf("insert ping samples: %w", err)
	}
	return nil
}

// SweepRetention deletes rows older than each table's configured horizon.
// Sweep failures are logged and do not abort the remaining sweeps
// (spec.md §4.4, §7: "Sweep failures are non-fatal").
func (i *Ingestor) SweepRetention(ctx context.Context, horizons map[string]time.Duration) {
	for table, horizon := range horizons {
		if table == "status_events" {
			deleted, err := i.store.DeleteStatusEventsOlderThan(ctx, horizon)
			if err != nil {
				log.Warn().Err(err).Str("table", table).Msg("retention sweep failed")
				continue
			}
			log.Debug().Str("table", table).Int("deleted", deleted).Msg("retention sweep complete")
			continue
		}
		deleted, err := i.store.DeleteOlderThan(ctx, table, horizon)
		if err != nil {
			log.Warn().Err(err).Str("table", table).Msg("retention sweep failed")
			continue
		}
		log.Debug().Str("table", table).Int("deleted", deleted).Msg("retention sweep complete")
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func finiteOrNil(f *float64) *float64 {
	if f == nil || !finite(*f) {
		return nil
	}
	return f
}
