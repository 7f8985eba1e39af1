package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"seminar-results-service/internal/domain"

	"golang.org/x/sync/singleflight"
)

// DirectoryLoader fetches round and period structure from a backing store.
type DirectoryLoader interface {
	LoadRound(ctx context.Context, roundID int64) (domain.Round, error)
	LoadPeriod(ctx context.Context, periodID int64) (domain.Period, error)
}

// Directory caches round and period structure with TTL to avoid repeated DB hits.
type Directory struct {
	loader DirectoryLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu      sync.RWMutex
	rounds  map[int64]cached[domain.Round]
	periods map[int64]cached[domain.Period]
}

type cached[T any] struct {
	value     T
	expiresAt time.Time
}

func NewDirectory(loader DirectoryLoader, ttl time.Duration) *Directory {
	return &Directory{
		loader:  loader,
		ttl:     ttl,
		clock:   time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		rounds:  make(map[int64]cached[domain.Round]),
		periods: make(map[int64]cached[domain.Period]),
	}
}

func (d *Directory) GetRound(ctx context.Context, roundID int64) (domain.Round, error) {
	return lookup(d, d.rounds, "round:"+strconv.FormatInt(roundID, 10), roundID, func() (domain.Round, error) {
		return d.loader.LoadRound(ctx, roundID)
	})
}

func (d *Directory) GetPeriod(ctx context.Context, periodID int64) (domain.Period, error) {
	return lookup(d, d.periods, "period:"+strconv.FormatInt(periodID, 10), periodID, func() (domain.Period, error) {
		return d.loader.LoadPeriod(ctx, periodID)
	})
}

func lookup[T any](d *Directory, cache map[int64]cached[T], sfKey string, id int64, load func() (T, error)) (T, error) {
	d.mu.RLock()
	if entry, ok := cache[id]; ok && entry.expiresAt.After(d.clock()) {
		d.mu.RUnlock()
		return entry.value, nil
	}
	d.mu.RUnlock()

	result, err, _ := d.sf.Do(sfKey, func() (interface{}, error) {
		now := d.clock()
		d.mu.RLock()
		if entry, ok := cache[id]; ok && entry.expiresAt.After(now) {
			d.mu.RUnlock()
			return entry.value, nil
		}
		d.mu.RUnlock()

		value, err := load()
		if err != nil {
			return value, err
		}

		expiresAt := now.Add(d.ttlWithJitter())
		d.mu.Lock()
		cache[id] = cached[T]{value: value, expiresAt: expiresAt}
		d.mu.Unlock()
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

func (d *Directory) ttlWithJitter() time.Duration {
	if d.ttl <= 0 {
		return 0
	}
	d.rndMu.Lock()
	defer d.rndMu.Unlock()
	// add up to 10% jitter to spread expirations
	jitterMax := int64(d.ttl) / 10
	return d.ttl + time.Duration(d.rnd.Int63n(jitterMax+1))
}
