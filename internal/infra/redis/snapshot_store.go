package redis

import (
	"context"
	"errors"
	"fmt"

	"seminar-results-service/internal/app"
	"seminar-results-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

// SnapshotStore keeps frozen results under results:frozen:{kind}:{id}.
// Snapshots never expire.
//
// Without a backing store Redis is authoritative and Create relies on SETNX.
// With one, the backing store decides and Redis acts as a read-through cache;
// frozen snapshots are immutable so cached copies never go stale.
type SnapshotStore struct {
	client  *redis.Client
	backing app.SnapshotStore
}

func NewSnapshotStore(client *redis.Client, backing app.SnapshotStore) *SnapshotStore {
	return &SnapshotStore{client: client, backing: backing}
}

func (s *SnapshotStore) Get(ctx context.Context, key domain.SnapshotKey) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err == nil {
		return data, true, nil
	}
	if s.backing == nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get snapshot: %w", err)
	}

	data, ok, err := s.backing.Get(ctx, key)
	if err != nil || !ok {
		return nil, ok, err
	}
	// best-effort fill
	_ = s.client.SetNX(ctx, s.key(key), data, 0).Err()
	return data, true, nil
}

func (s *SnapshotStore) Create(ctx context.Context, key domain.SnapshotKey, data []byte) error {
	if s.backing != nil {
		if err := s.backing.Create(ctx, key, data); err != nil {
			return err
		}
		_ = s.client.SetNX(ctx, s.key(key), data, 0).Err()
		return nil
	}

	created, err := s.client.SetNX(ctx, s.key(key), data, 0).Result()
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if !created {
		return domain.ErrAlreadyFrozen
	}
	return nil
}

func (s *SnapshotStore) key(key domain.SnapshotKey) string {
	return "results:frozen:" + key.String()
}
