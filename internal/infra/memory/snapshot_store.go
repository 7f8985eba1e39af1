package memory

import (
	"context"
	"sync"

	"seminar-results-service/internal/domain"
)

// SnapshotStore is an in-memory implementation of app.SnapshotStore.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[domain.SnapshotKey][]byte
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		snapshots: make(map[domain.SnapshotKey][]byte),
	}
}

func (s *SnapshotStore) Get(_ context.Context, key domain.SnapshotKey) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.snapshots[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

func (s *SnapshotStore) Create(_ context.Context, key domain.SnapshotKey, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.snapshots[key]; ok {
		return domain.ErrAlreadyFrozen
	}
	s.snapshots[key] = append([]byte(nil), data...)
	return nil
}
