// Package readstate remembers which notifications the user has read.
//
// The backend does not keep per-item read state for the feed, so the client
// stores a set of opaque keys under cachestore.KeyReadNotificationKeys. Keys
// are only ever added; Clear (logout) is the single way to drop them.
package readstate

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dmitrijs2005/legaltrack/internal/client/cachestore"
)

type Store struct {
	cache *cachestore.Cache

	mu   sync.RWMutex
	keys map[string]struct{}
}

func New(cache *cachestore.Cache) *Store {
	return &Store{cache: cache, keys: map[string]struct{}{}}
}

// Load reads the persisted set, replaces the in-memory copy with it and
// returns a copy. A missing or unreadable entry yields an empty set.
func (s *Store) Load(ctx context.Context) map[string]struct{} {
	list, _ := cachestore.Load[[]string](ctx, s.cache, cachestore.KeyReadNotificationKeys)

	set := make(map[string]struct{}, len(list))
	for _, k := range list {
		set[k] = struct{}{}
	}

	s.mu.Lock()
	s.keys = set
	s.mu.Unlock()

	return s.Snapshot()
}

// Save persists set as the whole read state.
func (s *Store) Save(ctx context.Context, set map[string]struct{}) error {
	copied := make(map[string]struct{}, len(set))
	for k := range set {
		copied[k] = struct{}{}
	}

	s.mu.Lock()
	s.keys = copied
	s.mu.Unlock()

	return s.persist(ctx)
}

// Add inserts keys and persists the set before returning.
func (s *Store) Add(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	added := false
	for _, k := range keys {
		if _, ok := s.keys[k]; !ok {
			s.keys[k] = struct{}{}
			added = true
		}
	}
	s.mu.Unlock()

	if !added {
		return nil
	}
	return s.persist(ctx)
}

func (s *Store) Contains(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.keys[key]
	return ok
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}

func (s *Store) Snapshot() map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]struct{}, len(s.keys))
	for k := range s.keys {
		out[k] = struct{}{}
	}
	return out
}

// Clear empties the set in memory and on disk.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.keys = map[string]struct{}{}
	s.mu.Unlock()

	if err := s.cache.Remove(ctx, cachestore.KeyReadNotificationKeys); err != nil {
		return fmt.Errorf("clear read state: %w", err)
	}
	return nil
}

// Reset drops the in-memory copy only; used after the cache was wiped.
func (s *Store) Reset() {
	s.mu.Lock()
	s.keys = map[string]struct{}{}
	s.mu.Unlock()
}

func (s *Store) persist(ctx context.Context) error {
	s.mu.RLock()
	list := make([]string, 0, len(s.keys))
	for k := range s.keys {
		list = append(list, k)
	}
	s.mu.RUnlock()

	// sorted so identical sets produce identical payloads
	sort.Strings(list)

	if err := s.cache.Save(ctx, cachestore.KeyReadNotificationKeys, list); err != nil {
		return fmt.Errorf("save read state: %w", err)
	}
	return nil
}
