// Package pingprobe implements the independent high-frequency batch
// reachability prober (spec.md §4.5): on each cycle it loads the enabled
// PingTargets, invokes the external fping binary once for the whole
// target list, and inserts one PingSample per target.
package pingprobe

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/netwatch-io/netwatch/internal/models"
	"github.com/netwatch-io/netwatch/internal/storage"
	"github.com/rs/zerolog/log"
)

// Config tunes the prober's per-packet timing.
type Config struct {
	Interval          time.Duration
	PacketTimeoutMS   int
	IntervalMS        int // inter-packet spacing, fping's -p
}

// DefaultConfig matches spec.md §4.5's defaults.
func DefaultConfig() Config {
	return Config{
		Interval:        30 * time.Second,
		PacketTimeoutMS: 1000,
		IntervalMS:      10,
	}
}

// Prober runs ping cycles against the store's enabled PingTargets.
type Prober struct {
	store  storage.Store
	config Config

	running atomic.Bool // concurrent-run guard (spec.md §4.5)
}

// New constructs a Prober.
func New(store storage.Store, config Config) *Prober {
	return &Prober{store: store, config: config}
}

// RunCycle executes one ping cycle. It is a no-op (returning nil) if a
// prior cycle is still in flight, implementing the "concurrent-run guard"
// spec.md §4.5 requires.
func (p *Prober) RunCycle(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		log.Debug().Msg("ping cycle skipped: previous cycle still running")
		return nil
	}
	defer p.running.Store(false)

	targets, err := p.store.ListEnabledPingTargets(ctx)
	if err != nil {
		return fmt.Errorf("list ping targets: %w", err)
	}
	if len(targets) == 0 {
		return nil
	}

	maxCount := 1
	ips := make([]string, 0, len(targets))
	byIP := make(map[string]*models.PingTarget, len(targets))
	for _, t := range targets {
		count := models.ClampProbeCount(t.ProbeCount)
		if count > maxCount {
			maxCount = count
		}
		ips = append(ips, t.IPAddress)
		byIP[t.IPAddress] = t
	}

	runCtx, cancel := context.WithTimeout(ctx, fpingTimeout(maxCount, p.config.PacketTimeoutMS, p.config.IntervalMS))
	defer cancel()

	results, err := runBatch(runCtx, ips, maxCount, p.config.PacketTimeoutMS, p.config.IntervalMS)
	if err != nil {
		return fmt.Errorf("run fping batch: %w", err)
	}

	now := time.Now()
	rows := make([]models.PingSample, 0, len(targets))
	for ip, target := range byIP {
		samples, ok := results[ip]
		if !ok {
			continue
		}
		count := models.ClampProbeCount(target.ProbeCount)
		if len(samples) > count {
			samples = samples[:count]
		}
		received := 0
		for _, s := range samples {
			if s != nil {
				received++
			}
		}
		sent := count
		lossPct := 0.0
		if sent > 0 {
			lossPct = float64(sent-received) / float64(sent) * 100
		}
		rows = append(rows, models.PingSample{
			TargetID:  target.ID,
			Timestamp: now,
			Sent:      sent,
			Received:  received,
			LossPct:   lossPct,
			Stats:     computeStats(samples),
		})
	}

	if err := p.store.InsertPingSamples(ctx, rows); err != nil {
		return fmt.Errorf("insert ping samples: %w", err)
	}
	log.Info().Int("targets", len(rows)).Int("probeCount", maxCount).Msg("ping cycle complete")
	return nil
}

// Run blocks, firing RunCycle on config.Interval until ctx is cancelled
// (spec.md §4.5: "independent of the main Scheduler").
func (p *Prober) Run(ctx context.Context) {
	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.RunCycle(ctx); err != nil {
				log.Error().Err(err).Msg("ping cycle failed")
			}
		}
	}
}
