package memstore

import (
	"context"
	"time"

	"github.com/netwatch-io/netwatch/internal/models"
)

func (s *Store) InsertDeviceMetrics(ctx context.Context, rows []models.DeviceMetricSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deviceMetrics = append(s.deviceMetrics, rows...)
	return nil
}

func (s *Store) InsertConnectionBandwidth(ctx context.Context, rows []models.ConnectionBandwidthSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connectionBandwidth = append(s.connectionBandwidth, rows...)
	return nil
}

func (s *Store) InsertPrometheusSamples(ctx context.Context, rows []models.PrometheusSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prometheusSamples = append(s.prometheusSamples, rows...)
	return nil
}

func (s *Store) InsertPingSamples(ctx context.Context, rows []models.PingSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pingSamples = append(s.pingSamples, rows...)
	return nil
}

func (s *Store) DeviceMetricsRange(ctx context.Context, deviceID string, from, to time.Time) ([]models.DeviceMetricSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.DeviceMetricSample
	for _, r := range s.deviceMetrics {
		if r.DeviceID != deviceID {
			continue
		}
		if r.Timestamp.Before(from) || r.Timestamp.After(to) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// DeleteOlderThan sweeps one named history table for rows older than
// horizon. Unknown table names are a no-op, matching the "sweep failures
// are non-fatal" policy (spec.md §4.4, §7).
func (s *Store) DeleteOlderThan(ctx context.Context, table string, horizon time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-horizon)
	deleted := 0

	switch table {
	case "device_metrics":
		kept := s.deviceMetrics[:0]
		for _, r := range s.deviceMetrics {
			if r.Timestamp.Before(cutoff) {
				deleted++
				continue
			}
			kept = append(kept, r)
		}
		s.deviceMetrics = kept
	case "connection_bandwidth":
		kept := s.connectionBandwidth[:0]
		for _, r := range s.connectionBandwidth {
			if r.Timestamp.Before(cutoff) {
				deleted++
				continue
			}
			kept = append(kept, r)
		}
		s.connectionBandwidth = kept
	case "prometheus_samples":
		kept := s.prometheusSamples[:0]
		for _, r := range s.prometheusSamples {
			if r.Timestamp.Before(cutoff) {
				deleted++
				continue
			}
			kept = append(kept, r)
		}
		s.prometheusSamples = kept
	case "ping_samples":
		kept := s.pingSamples[:0]
		for _, r := range s.pingSamples {
			if r.Timestamp.Before(cutoff) {
				deleted++
				continue
			}
			kept = append(kept, r)
		}
		s.pingSamples = kept
	}
	return deleted, nil
}

// --- status events ---

func (s *Store) AppendStatusEvent(ctx context.Context, e *models.DeviceStatusEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.statusEvents = append(s.statusEvents, &cp)
	return nil
}

func (s *Store) StatusEventsRange(ctx context.Context, deviceID string, from, to time.Time) ([]*models.DeviceStatusEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.DeviceStatusEvent
	for _, e := range s.statusEvents {
		if e.DeviceID != deviceID {
			continue
		}
		if e.CreatedAt.Before(from) || e.CreatedAt.After(to) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (s *Store) DeleteStatusEventsOlderThan(ctx context.Context, horizon time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-horizon)
	kept := s.statusEvents[:0]
	deleted := 0
	for _, e := range s.statusEvents {
		if e.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.statusEvents = kept
	return deleted, nil
}
