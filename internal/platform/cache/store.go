package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/grid-manager/internal/platform/resilience"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Store is an in-process TTL map. A non-positive ttl keeps entries until deleted.
type Store[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	ttl     time.Duration
	now     func() time.Time
	flight  resilience.SingleFlight[loadResult[V]]
}

func NewStore[V any](ttl time.Duration, now func() time.Time) *Store[V] {
	if now == nil {
		now = time.Now
	}
	return &Store[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		now:     now,
	}
}

func (s *Store[V]) Get(key string) (V, bool) {
	var zero V
	if key == "" {
		return zero, false
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if s.ttl > 0 && !e.expiresAt.After(s.now()) {
		s.mu.Lock()
		if current, still := s.entries[key]; still && current.expiresAt.Equal(e.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return zero, false
	}

	return e.value, true
}

func (s *Store[V]) Set(key string, value V) {
	if key == "" {
		return
	}

	var expiresAt time.Time
	if s.ttl > 0 {
		expiresAt = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	s.entries[key] = entry[V]{value: value, expiresAt: expiresAt}
	s.mu.Unlock()
}

func (s *Store[V]) Delete(key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

type loadResult[V any] struct {
	value V
	hit   bool
}

// GetOrLoad returns the live entry for key, or runs loader once for all
// concurrent callers. A loaded value is stored only when keep reports true;
// a nil keep stores every successful load. The bool result reports a cache hit.
func (s *Store[V]) GetOrLoad(
	ctx context.Context,
	key string,
	loader func(context.Context) (V, error),
	keep func(V) bool,
) (V, bool, error) {
	var zero V
	if loader == nil {
		return zero, false, fmt.Errorf("loader is required")
	}
	if key == "" {
		value, err := loader(ctx)
		return value, false, err
	}

	if value, ok := s.Get(key); ok {
		return value, true, nil
	}

	res, err, _ := s.flight.Do(key, func() (loadResult[V], error) {
		if cached, ok := s.Get(key); ok {
			return loadResult[V]{value: cached, hit: true}, nil
		}

		loaded, loadErr := loader(ctx)
		if loadErr == nil && (keep == nil || keep(loaded)) {
			s.Set(key, loaded)
		}
		return loadResult[V]{value: loaded}, loadErr
	})
	return res.value, res.hit, err
}
