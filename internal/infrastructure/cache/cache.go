package cache

import (
	"sync"
	"time"
)

// Store is the per-resource query cache. Entries go stale after the TTL
// but stay readable through GetStale (stale-while-error). Invalidation
// bumps a per-key generation; SetIfCurrent drops writes whose fetch
// started before the last invalidation, so a superseded in-flight
// request can never overwrite fresher state.
type Store struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]*entry
}

type entry struct {
	value      any
	storedAt   time.Time
	generation uint64
	hasValue   bool
}

func New(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Store{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// Get returns the value only while it is fresh.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok || !e.hasValue {
		return nil, false
	}
	if s.now().Sub(e.storedAt) > s.ttl {
		return nil, false
	}
	return e.value, true
}

// GetStale returns the value regardless of age.
func (s *Store) GetStale(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok || !e.hasValue {
		return nil, false
	}
	return e.value, true
}

// Generation is captured before a fetch and passed back to SetIfCurrent.
func (s *Store) Generation(key string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.entries[key]; ok {
		return e.generation
	}
	return 0
}

// SetIfCurrent stores the value unless the key was invalidated after the
// generation was captured.
func (s *Store) SetIfCurrent(key string, generation uint64, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		if generation != 0 {
			return
		}
		e = &entry{}
		s.entries[key] = e
	} else if e.generation != generation {
		return
	}
	e.value = value
	e.storedAt = s.now()
	e.hasValue = true
}

// Invalidate drops values and bumps generations so racing writes from
// superseded fetches are discarded.
func (s *Store) Invalidate(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		e, ok := s.entries[key]
		if !ok {
			e = &entry{}
			s.entries[key] = e
		}
		e.generation++
		e.value = nil
		e.hasValue = false
	}
}
