package ratelimit

import (
	"log/slog"
	"math"
	"sync"
	"time"
)

type Config struct {
	MaxRequests int
	Window      time.Duration
	Purpose     string
}

type Result struct {
	Allowed        bool
	Remaining      int
	ResetInSeconds int
	Limit          int
}

// Store is the counter backend. The in-memory store below is the only
// shipped implementation; a shared counter store would slot in here for
// multi-instance deployments.
type Store interface {
	Increment(key string, window time.Duration) (count int, resetAt time.Time)
}

type Limiter struct {
	store Store
}

func NewLimiter(store Store) *Limiter {
	return &Limiter{store: store}
}

// Check counts the request against its fixed window. Requests over the limit
// still increment, so the counter keeps climbing until the window resets.
func (l *Limiter) Check(clientKey string, cfg Config) Result {
	count, resetAt := l.store.Increment(cfg.Purpose+":"+clientKey, cfg.Window)
	remaining := cfg.MaxRequests - count
	if remaining < 0 {
		remaining = 0
	}
	reset := int(math.Ceil(time.Until(resetAt).Seconds()))
	if reset < 0 {
		reset = 0
	}
	return Result{
		Allowed:        count <= cfg.MaxRequests,
		Remaining:      remaining,
		ResetInSeconds: reset,
		Limit:          cfg.MaxRequests,
	}
}

type entry struct {
	count   int
	resetAt time.Time
}

type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*entry
	stop    chan struct{}
}

const sweepInterval = 5 * time.Minute

// NewMemoryStore starts a background sweep of expired windows. The sweep only
// bounds memory; expiry is also checked on every access.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]*entry),
		stop:    make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

func (s *MemoryStore) Increment(key string, window time.Duration) (int, time.Time) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || now.After(e.resetAt) {
		e = &entry{count: 1, resetAt: now.Add(window)}
		s.entries[key] = e
		return e.count, e.resetAt
	}
	e.count++
	return e.count, e.resetAt
}

func (s *MemoryStore) sweepLoop() {
	t := time.NewTicker(sweepInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			s.sweep(time.Now())
		case <-s.stop:
			return
		}
	}
}

func (s *MemoryStore) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int
	for key, e := range s.entries {
		if now.After(e.resetAt) {
			delete(s.entries, key)
			removed++
		}
	}
	if removed > 0 {
		slog.Debug("swept expired rate-limit entries", "removed", removed)
	}
}

func (s *MemoryStore) Stop() {
	close(s.stop)
}
