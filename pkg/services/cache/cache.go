package cache

import (
	"context"
	"sync"
	"time"

	"github.com/de-tools/gbb-board/pkg/models/domain"
	"github.com/jonboulle/clockwork"
)

// Loader produces a fresh table on cache miss.
type Loader func(ctx context.Context) (*domain.Table, error)

// Store memoizes normalized tables per report for a bounded TTL. Entries
// are replaced wholesale on refresh, never mutated. Expired entries stick
// around so a failed refresh can still serve the last good table.
type Store struct {
	clock      clockwork.Clock
	defaultTTL time.Duration

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	table     *domain.Table
	fetchedAt time.Time
	ttl       time.Duration
}

func NewStore(clock clockwork.Clock, defaultTTL time.Duration) *Store {
	return &Store{
		clock:      clock,
		defaultTTL: defaultTTL,
		entries:    make(map[string]*entry),
	}
}

// GetOrLoad returns the cached table for name if its TTL has not elapsed,
// otherwise invokes load and stores the result. The second return reports
// whether the call was served from cache. A zero ttl uses the store default.
func (s *Store) GetOrLoad(ctx context.Context, name string, ttl time.Duration, load Loader) (*domain.Table, bool, error) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	s.mu.Lock()
	if e, ok := s.entries[name]; ok && s.clock.Since(e.fetchedAt) < e.ttl {
		s.mu.Unlock()
		return e.table, true, nil
	}
	s.mu.Unlock()

	table, err := load(ctx)
	if err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	s.entries[name] = &entry{
		table:     table,
		fetchedAt: s.clock.Now(),
		ttl:       ttl,
	}
	s.mu.Unlock()

	return table, false, nil
}

// Stale returns the last successfully cached table for name, expired or
// not, for the fallback path after a failed refresh.
func (s *Store) Stale(name string) (*domain.Table, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[name]
	if !ok {
		return nil, false
	}
	return e.table, true
}

// Invalidate drops the entry for name so the next GetOrLoad refetches.
func (s *Store) Invalidate(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, name)
}
