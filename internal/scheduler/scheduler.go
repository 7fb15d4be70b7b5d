package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/netwatch-io/netwatch/internal/adapters"
	"github.com/netwatch-io/netwatch/internal/history"
	"github.com/netwatch-io/netwatch/internal/ipam"
	"github.com/netwatch-io/netwatch/internal/models"
	"github.com/netwatch-io/netwatch/internal/statusengine"
	"github.com/netwatch-io/netwatch/internal/storage"
	"github.com/netwatch-io/netwatch/internal/vmtopology"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

// Scheduler runs the bounded-concurrency probe cycle (spec.md §4.1): a
// timer fires RunCycle, which loads the device inventory, filters to
// devices with an IP, and pushes them through a worker pool whose
// concurrency ceiling is Config.Concurrency. Each worker resolves
// credentials, chooses a Protocol Adapter by device type, invokes it with
// a per-device deadline, derives a status, persists mutated state, and —
// if status changed — dispatches notifications.
type Scheduler struct {
	store    storage.Store
	registry *adapters.Registry

	statusEngine *statusengine.Engine
	history      *history.Ingestor
	ipamRec      *ipam.Reconciler
	vmResolver   *vmtopology.Resolver

	config Config

	isProbing    atomic.Bool
	cycleCounter atomic.Int64
}

// New constructs a Scheduler wiring together the downstream collaborators
// each worker invokes. Within one worker the order is: observation write
// (device row) → status write → status-event append → notification
// dispatch (those three inside statusEngine, the Dispatcher passed to
// statusengine.New carrying the notification step) → history write. The
// history rows are therefore written after the notification dispatch, not
// before the status-event append.
func New(
	store storage.Store,
	registry *adapters.Registry,
	statusEngine *statusengine.Engine,
	historyIngestor *history.Ingestor,
	ipamRec *ipam.Reconciler,
	vmResolver *vmtopology.Resolver,
	config Config,
) *Scheduler {
	return &Scheduler{
		store:        store,
		registry:     registry,
		statusEngine: statusEngine,
		history:      historyIngestor,
		ipamRec:      ipamRec,
		vmResolver:   vmResolver,
		config:       config.normalize(),
	}
}

// cycleSummary aggregates the outcome counts logged at the end of each
// cycle (spec.md §4.1).
type cycleSummary struct {
	total   int
	success atomic.Int64
	timeout atomic.Int64
	errored atomic.Int64
}

// RunCycle executes one probe cycle. It is a no-op (returning nil) if a
// prior cycle is still in flight — the Scheduler's own concurrent-run
// guard, independent of the Ping Prober's (spec.md §4.1, §4.5).
func (s *Scheduler) RunCycle(ctx context.Context) error {
	if !s.isProbing.CompareAndSwap(false, true) {
		log.Debug().Msg("scheduler cycle skipped: previous cycle still running")
		return nil
	}
	defer s.isProbing.Store(false)

	cycle := s.cycleCounter.Add(1)
	detailed := cycle%int64(s.config.DetailedCycleInterval) == 0

	devices, err := s.store.GetAllDevices(ctx)
	if err != nil {
		return fmt.Errorf("load device inventory: %w", err)
	}

	targets := make([]*models.Device, 0, len(devices))
	for _, d := range devices {
		// Ping-only devices are serviced exclusively by the separate
		// batch prober (spec.md §4.1).
		if d.IPAddress == "" || d.Type == models.DeviceTypeGenericPing {
			continue
		}
		targets = append(targets, d)
	}

	start := time.Now()
	summary := &cycleSummary{total: len(targets)}
	sem := semaphore.NewWeighted(int64(s.config.Concurrency))
	var wg sync.WaitGroup

	for _, device := range targets {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Context cancelled mid-cycle; stop dispatching further workers.
			break
		}
		wg.Add(1)
		go func(d *models.Device) {
			defer wg.Done()
			defer sem.Release(1)
			s.probeDevice(ctx, d, detailed, summary)
		}(device)
	}
	wg.Wait()

	log.Info().
		Int64("cycle", cycle).
		Bool("detailed", detailed).
		Int("total", summary.total).
		Int64("success", summary.success.Load()).
		Int64("timeout", summary.timeout.Load()).
		Int64("error", summary.errored.Load()).
		Dur("elapsed", time.Since(start)).
		Msg("scheduler cycle complete")
	return nil
}

// Run blocks, firing RunCycle every pollingInterval until ctx is
// cancelled.
func (s *Scheduler) Run(ctx context.Context, pollingInterval time.Duration) {
	ticker := time.NewTicker(pollingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RunCycle(ctx); err != nil {
				log.Error().Err(err).Msg("scheduler cycle failed")
			}
		}
	}
}

// probeDevice is one worker's unit of work: resolve credentials, probe,
// detect link flaps and promote to a detailed re-probe when warranted,
// then persist the observation and hand off to the downstream
// collaborators.
func (s *Scheduler) probeDevice(ctx context.Context, device *models.Device, detailed bool, summary *cycleSummary) {
	creds, err := s.resolveCredentials(ctx, device)
	if err != nil {
		log.Warn().Err(err).Str("deviceId", device.ID).Msg("credential resolution failed")
		summary.errored.Add(1)
		return
	}

	adapter, err := s.resolveAdapter(device, creds)
	if err != nil {
		log.Warn().Err(err).Str("deviceId", device.ID).Msg("adapter resolution failed")
		summary.errored.Add(1)
		return
	}

	previousPorts := device.DeviceData.Ports
	opts := adapters.ProbeOptions{Detailed: detailed, PreviousPorts: previousPorts}

	deadlineCtx, cancel := context.WithTimeout(ctx, s.config.ProbeDeadline)
	result := probeWithDeadline(deadlineCtx, adapter, device.IPAddress, creds, opts)
	cancel()

	if !detailed && result.Success && linkFlapped(previousPorts, result.Data.Ports) {
		// Promote to a detailed re-probe mid-cycle on any down→up
		// transition (spec.md §4.1).
		log.Debug().Str("deviceId", device.ID).Msg("link flap detected, promoting to detailed re-probe")
		opts.Detailed = true
		var cancel2 context.CancelFunc
		deadlineCtx, cancel2 = context.WithTimeout(ctx, s.config.ProbeDeadline)
		result = probeWithDeadline(deadlineCtx, adapter, device.IPAddress, creds, opts)
		cancel2()
	}

	classifyOutcome(deadlineCtx, result, summary)

	if result.Success {
		device.DeviceData = result.Data
	}
	device.UpdatedAt = time.Now()
	if err := s.store.UpdateDevice(ctx, device); err != nil {
		log.Warn().Err(err).Str("deviceId", device.ID).Msg("failed to persist device snapshot")
		return
	}

	derived := statusengine.Derive(result)
	if _, err := s.statusEngine.HandleTransition(ctx, device, derived); err != nil {
		log.Warn().Err(err).Str("deviceId", device.ID).Msg("status transition handling failed")
	}

	if !result.Success {
		return
	}

	s.ingestHistory(ctx, device, result)

	if len(result.Interfaces) > 0 {
		ifaceIDs := s.syncInterfaces(ctx, device, result)
		if err := s.ipamRec.Reconcile(ctx, device.ID, ifaceIDs, result.Interfaces, time.Now()); err != nil {
			log.Warn().Err(err).Str("deviceId", device.ID).Msg("ipam reconciliation failed")
		}
	}

	if device.Type == models.DeviceTypeProxmox {
		s.persistProxmoxObservations(ctx, device, result)
	}
}

// probeWithDeadline runs the adapter in its own goroutine and abandons it
// once ctx is done, so an adapter that ignores ctx cannot hold the worker
// past its deadline.
func probeWithDeadline(ctx context.Context, adapter adapters.Adapter, ip string, creds models.Credentials, opts adapters.ProbeOptions) models.ProbeResult {
	done := make(chan models.ProbeResult, 1)
	go func() { done <- adapter.Probe(ctx, ip, creds, opts) }()
	select {
	case r := <-done:
		return r
	case <-ctx.Done():
		return models.ProbeResult{Success: false, Err: ctx.Err()}
	}
}

// resolveCredentials returns the device's CustomCredentials when set,
// otherwise the credentials of its referenced CredentialProfile.
func (s *Scheduler) resolveCredentials(ctx context.Context, device *models.Device) (models.Credentials, error) {
	if device.CustomCredentials != nil {
		return device.CustomCredentials, nil
	}
	if device.CredentialProfileID != nil {
		profile, err := s.store.GetCredentialProfile(ctx, *device.CredentialProfileID)
		if err != nil {
			return nil, fmt.Errorf("load credential profile %s: %w", *device.CredentialProfileID, err)
		}
		return profile.Credentials, nil
	}
	return nil, fmt.Errorf("device %s has no credential source", device.ID)
}

func (s *Scheduler) resolveAdapter(device *models.Device, creds models.Credentials) (adapters.Adapter, error) {
	if device.Type == models.DeviceTypeServer {
		return s.registry.ForServer(creds)
	}
	return s.registry.For(device.Type)
}

// linkFlapped reports whether any port transitioned from down to up
// between the previous and current probe (spec.md §4.1), matched by
// DefaultName first and falling back to Name.
func linkFlapped(previous, current []models.Port) bool {
	prevStatus := make(map[string]string, len(previous))
	for _, p := range previous {
		key := p.DefaultName
		if key == "" {
			key = p.Name
		}
		prevStatus[key] = p.Status
	}
	for _, p := range current {
		key := p.DefaultName
		if key == "" {
			key = p.Name
		}
		if prevStatus[key] == "down" && p.Status == "up" {
			return true
		}
	}
	return false
}

func classifyOutcome(deadlineCtx context.Context, result models.ProbeResult, summary *cycleSummary) {
	switch {
	case result.Success:
		summary.success.Add(1)
	case errors.Is(deadlineCtx.Err(), context.DeadlineExceeded):
		summary.timeout.Add(1)
	default:
		summary.errored.Add(1)
	}
}

func (s *Scheduler) ingestHistory(ctx context.Context, device *models.Device, result models.ProbeResult) {
	now := time.Now()
	metric := models.DeviceMetricSample{
		DeviceID:  device.ID,
		Timestamp: now,
		CPUPct:    result.Data.CPUUsagePct,
		MemoryPct: result.Data.MemoryUsagePct,
		DiskPct:   result.Data.DiskUsagePct,
	}
	if err := s.history.IngestDeviceMetrics(ctx, []models.DeviceMetricSample{metric}); err != nil {
		log.Warn().Err(err).Str("deviceId", device.ID).Msg("device metric ingestion failed")
	}

	if len(result.InterfaceCounters) == 0 {
		return
	}
	conns, err := s.store.ListConnectionsForDevice(ctx, device.ID)
	if err != nil {
		log.Warn().Err(err).Str("deviceId", device.ID).Msg("failed to load connections for bandwidth sampling")
		return
	}
	var rows []models.ConnectionBandwidthSample
	for _, c := range conns {
		if c.MonitorInterface == nil {
			continue
		}
		counters, ok := result.InterfaceCounters[*c.MonitorInterface]
		if !ok {
			continue
		}
		inBps, outBps, ok := s.history.Rates.Rate(c.ID, counters.InOctets, counters.OutOctets, now)
		if !ok {
			continue
		}
		rows = append(rows, models.ConnectionBandwidthSample{
			ConnectionID: c.ID,
			Timestamp:    now,
			InBps:        inBps,
			OutBps:       outBps,
		})
	}
	if err := s.history.IngestConnectionBandwidth(ctx, rows); err != nil {
		log.Warn().Err(err).Str("deviceId", device.ID).Msg("connection bandwidth ingestion failed")
	}
}

// syncInterfaces upserts DeviceInterface rows for each observed interface
// name and returns the resulting name→ID map the IPAM Reconciler needs.
func (s *Scheduler) syncInterfaces(ctx context.Context, device *models.Device, result models.ProbeResult) map[string]string {
	ifaceIDs := make(map[string]string, len(result.Interfaces))
	seen := make(map[string]struct{}, len(result.Interfaces))
	for _, obs := range result.Interfaces {
		if _, ok := seen[obs.InterfaceName]; ok {
			continue
		}
		seen[obs.InterfaceName] = struct{}{}
		status := "up"
		if obs.Disabled {
			status = "down"
		}
		iface := &models.DeviceInterface{
			DeviceID:        device.ID,
			Name:            obs.InterfaceName,
			OperStatus:      status,
			AdminStatus:     status,
			DiscoverySource: string(device.Type),
			LastSeenAt:      time.Now(),
		}
		if err := s.store.UpsertDeviceInterface(ctx, iface); err != nil {
			log.Warn().Err(err).Str("deviceId", device.ID).Str("interface", obs.InterfaceName).Msg("interface upsert failed")
			continue
		}
		ifaceIDs[obs.InterfaceName] = iface.ID
	}
	return ifaceIDs
}

func (s *Scheduler) persistProxmoxObservations(ctx context.Context, device *models.Device, result models.ProbeResult) {
	for _, node := range result.ProxmoxNodes {
		node.HostDeviceID = device.ID
		if err := s.store.UpsertProxmoxNode(ctx, &node); err != nil {
			log.Warn().Err(err).Str("deviceId", device.ID).Str("node", node.NodeName).Msg("proxmox node upsert failed")
		}
	}

	vms := make([]models.ProxmoxVm, 0, len(result.ProxmoxVms))
	for i := range result.ProxmoxVms {
		vm := result.ProxmoxVms[i]
		vm.HostDeviceID = device.ID
		if vm.MatchedDeviceID == nil && len(vm.IPAddresses) > 0 {
			if matched, err := s.store.GetDeviceByAnyIP(ctx, vm.IPAddresses[0]); err == nil {
				vm.MatchedDeviceID = &matched.ID
			}
		}
		if err := s.store.UpsertProxmoxVm(ctx, &vm); err != nil {
			log.Warn().Err(err).Str("deviceId", device.ID).Int("vmid", vm.Vmid).Msg("proxmox vm upsert failed")
		}
		vms = append(vms, vm)
	}

	if s.vmResolver == nil {
		return
	}
	if err := s.vmResolver.ResolveMigrations(ctx, vms); err != nil {
		log.Warn().Err(err).Str("deviceId", device.ID).Msg("vm topology resolution failed")
	}
}
