package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/netwatch-io/netwatch/internal/storage"
)

func (s *Store) GetNotificationsForDevice(ctx context.Context, deviceID string) ([]*storage.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*storage.Notification
	for _, n := range s.notifications {
		if n.DeviceID == deviceID {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) UpsertNotification(ctx context.Context, n *storage.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	cp := *n
	s.notifications[n.ID] = &cp
	return nil
}

func (s *Store) DeleteNotification(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.notifications, id)
	return nil
}

func (s *Store) ListDutyShifts(ctx context.Context) ([]storage.DutyShift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]storage.DutyShift, len(s.dutyShifts))
	copy(out, s.dutyShifts)
	return out, nil
}

func (s *Store) ActiveMutes(ctx context.Context, at time.Time) ([]storage.AlarmMute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []storage.AlarmMute
	for _, m := range s.mutes {
		if m.ExpiresAt == nil || m.ExpiresAt.After(at) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Store) UpsertMute(ctx context.Context, m storage.AlarmMute) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	s.mutes[m.ID] = m
	return nil
}

func (s *Store) ClearMute(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.mutes, id)
	return nil
}

// SetDutyShifts replaces the roster wholesale; a convenience for tests and
// the (external) admin API that configures shifts.
func (s *Store) SetDutyShifts(shifts []storage.DutyShift) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dutyShifts = append([]storage.DutyShift(nil), shifts...)
}
