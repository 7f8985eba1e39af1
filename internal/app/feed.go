package app

import (
	"sync"

	"seminar-results-service/internal/domain"
)

// Feed fans out result updates per round or period to subscribers.
type Feed struct {
	mu          sync.Mutex
	subscribers map[domain.SnapshotKey]map[chan []domain.ResultRow]*subscriber
}

type subscriber struct {
	published bool
}

func NewFeed() *Feed {
	return &Feed{subscribers: make(map[domain.SnapshotKey]map[chan []domain.ResultRow]*subscriber)}
}

// Subscribe registers a channel for key. prime delivers the initial rows
// unless an update was already published to the channel. The returned cancel
// closes the channel and must be called by the subscriber.
func (f *Feed) Subscribe(key domain.SnapshotKey) (<-chan []domain.ResultRow, func([]domain.ResultRow), func()) {
	ch := make(chan []domain.ResultRow, 4)
	sub := &subscriber{}

	f.mu.Lock()
	subs, ok := f.subscribers[key]
	if !ok {
		subs = make(map[chan []domain.ResultRow]*subscriber)
		f.subscribers[key] = subs
	}
	subs[ch] = sub
	f.mu.Unlock()

	prime := func(initial []domain.ResultRow) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.subscribers[key][ch]; !ok || sub.published {
			return
		}
		sub.published = true
		ch <- initial
	}

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		subs := f.subscribers[key]
		if _, ok := subs[ch]; !ok {
			return
		}
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(f.subscribers, key)
		}
	}
	return ch, prime, cancel
}

// Publish sends rows to every subscriber of key without blocking; a full
// channel loses its oldest pending update.
func (f *Feed) Publish(key domain.SnapshotKey, rows []domain.ResultRow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch, sub := range f.subscribers[key] {
		sub.published = true
		select {
		case ch <- rows:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- rows
		}
	}
}

// Subscribers reports how many subscribers key has.
func (f *Feed) Subscribers(key domain.SnapshotKey) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers[key])
}
