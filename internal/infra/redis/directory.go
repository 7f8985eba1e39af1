package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"seminar-results-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// DirectoryLoader fetches round and period structure from a backing store (e.g., Postgres).
type DirectoryLoader interface {
	LoadRound(ctx context.Context, roundID int64) (domain.Round, error)
	LoadPeriod(ctx context.Context, periodID int64) (domain.Period, error)
}

// Directory caches round and period structure in Redis as JSON and falls
// back to a loader on cache miss.
// Rounds are stored as:  SET results:round:{id}  {json}
// Periods are stored as: SET results:period:{id} {json}
type Directory struct {
	client *redis.Client
	loader DirectoryLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewDirectory(client *redis.Client, loader DirectoryLoader, ttl time.Duration) *Directory {
	return &Directory{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (d *Directory) GetRound(ctx context.Context, roundID int64) (domain.Round, error) {
	return fetch(ctx, d, "results:round:"+strconv.FormatInt(roundID, 10), func() (domain.Round, error) {
		return d.loader.LoadRound(ctx, roundID)
	})
}

func (d *Directory) GetPeriod(ctx context.Context, periodID int64) (domain.Period, error) {
	return fetch(ctx, d, "results:period:"+strconv.FormatInt(periodID, 10), func() (domain.Period, error) {
		return d.loader.LoadPeriod(ctx, periodID)
	})
}

func fetch[T any](ctx context.Context, d *Directory, key string, load func() (T, error)) (T, error) {
	if value, ok := cachedValue[T](ctx, d.client, key); ok {
		return value, nil
	}

	result, err, _ := d.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if value, ok := cachedValue[T](ctx, d.client, key); ok {
			return value, nil
		}

		value, err := load()
		if err != nil {
			return value, err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return value, nil
		}
		_ = d.client.Set(ctx, key, raw, d.ttlWithJitter()).Err()
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

// cachedValue treats unreadable entries as misses.
func cachedValue[T any](ctx context.Context, client *redis.Client, key string) (T, bool) {
	var value T
	raw, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return value, false
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return value, false
	}
	return value, true
}

func (d *Directory) ttlWithJitter() time.Duration {
	if d.ttl <= 0 {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	jitterMax := int64(d.ttl) / 10
	return d.ttl + time.Duration(d.rnd.Int63n(jitterMax+1))
}
