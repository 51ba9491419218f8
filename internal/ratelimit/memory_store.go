package ratelimit

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	count       int
	windowStart time.Time
}

// MemoryStore is the in-process Store: a map under a mutex, with a
// background sweep that evicts expired entries so transient clients do not
// grow the map forever.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

// NewMemoryStore builds a store and starts its sweep loop. sweepEvery must
// be at least the admission window, since entries older than one sweep
// interval are evicted; <= 0 disables the sweep (useful in tests).
func NewMemoryStore(sweepEvery time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]*entry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if sweepEvery > 0 {
		go s.sweepLoop(sweepEvery)
	}
	return s
}

func (s *MemoryStore) Hit(_ context.Context, clientID string, window time.Duration) (int, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[clientID]
	if !ok || now.Sub(e.windowStart) >= window {
		s.entries[clientID] = &entry{count: 1, windowStart: now}
		return 1, nil
	}
	e.count++
	return e.count, nil
}

// Close stops the sweep loop.
func (s *MemoryStore) Close() {
	s.once.Do(func() { close(s.stop) })
}

func (s *MemoryStore) sweepLoop(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-t.C:
			s.sweep(every)
		}
	}
}

// sweep drops entries whose window started longer than maxAge ago. Callers
// pass at least the window duration so live windows survive.
func (s *MemoryStore) sweep(maxAge time.Duration) {
	cutoff := s.now().Add(-maxAge)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		if e.windowStart.Before(cutoff) {
			delete(s.entries, id)
		}
	}
}
