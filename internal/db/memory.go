package db

import (
	"context"
	"sync"

	"gopherwatch/internal/models"
)

// MemoryStore keeps the newest alerts in memory, dropping the oldest past
// its capacity.
type MemoryStore struct {
	mu       sync.Mutex
	alerts   models.AlertList // newest first
	nextID   int64
	capacity int
}

func NewMemoryStore(capacity int) *MemoryStore {
	if capacity < 1 {
		capacity = 1
	}

	return &MemoryStore{alerts: models.AlertList{}, capacity: capacity}
}

func (s *MemoryStore) SaveAlert(_ context.Context, alert models.Alert) (models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	alert.ID = s.nextID

	s.alerts = append(models.AlertList{alert}, s.alerts...)
	if len(s.alerts) > s.capacity {
		s.alerts = s.alerts[:s.capacity]
	}

	return alert, nil
}

func (s *MemoryStore) RecentAlerts(_ context.Context, limit int) (models.AlertList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	alerts := s.alerts
	if limit >= 0 && len(alerts) > limit {
		alerts = alerts[:limit]
	}

	return alerts.Clone(), nil
}

func (*MemoryStore) Close() error { return nil }
