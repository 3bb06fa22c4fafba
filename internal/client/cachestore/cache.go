// Package cachestore is the typed, JSON-speaking face of the local cache.
//
// Save returns write errors to the caller. Load never fails: a missing row,
// a storage error and a payload that no longer decodes all read as "absent",
// so screens degrade to an empty state instead of crashing.
package cachestore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/legaltrack/internal/client/metrics"
	"github.com/dmitrijs2005/legaltrack/internal/client/models"
	"github.com/dmitrijs2005/legaltrack/internal/client/repositories/cache"
	"github.com/dmitrijs2005/legaltrack/internal/logging"
)

type Cache struct {
	repo    cache.Repository
	log     logging.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Cache)

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func New(repo cache.Repository, log logging.Logger, opts ...Option) *Cache {
	c := &Cache{repo: repo, log: log, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Save JSON-encodes value and replaces the entry under key.
func (c *Cache) Save(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		c.metrics.CacheWrite(err)
		return fmt.Errorf("encode cache[%s]: %w", key, err)
	}
	err = c.repo.Put(ctx, models.CacheEntry{Key: key, Payload: payload, SavedAt: c.now()})
	c.metrics.CacheWrite(err)
	return err
}

// Raw returns the stored entry or nil.
func (c *Cache) Raw(ctx context.Context, key string) *models.CacheEntry {
	e, err := c.repo.Get(ctx, key)
	if err != nil {
		c.log.Warn(ctx, "cache read failed", "key", key, "error", err)
		return nil
	}
	return e
}

// Load decodes the entry under key into a T. The boolean is false when the
// entry is missing or unreadable.
func Load[T any](ctx context.Context, c *Cache, key string) (T, bool) {
	var zero T

	e := c.Raw(ctx, key)
	if e == nil {
		c.metrics.CacheRead("miss")
		return zero, false
	}

	var v T
	if err := json.Unmarshal(e.Payload, &v); err != nil {
		c.metrics.CacheRead("corrupt")
		c.log.Warn(ctx, "cache entry is corrupt, treating as absent", "key", key, "error", err)
		return zero, false
	}
	c.metrics.CacheRead("hit")
	return v, true
}

func (c *Cache) Has(ctx context.Context, key string) bool {
	return c.Raw(ctx, key) != nil
}

func (c *Cache) LastWriteTime(ctx context.Context, key string) (time.Time, bool) {
	e := c.Raw(ctx, key)
	if e == nil {
		return time.Time{}, false
	}
	return e.SavedAt, true
}

func (c *Cache) Remove(ctx context.Context, key string) error {
	return c.repo.Delete(ctx, key)
}

func (c *Cache) RemovePrefix(ctx context.Context, prefix string) error {
	return c.repo.DeletePrefix(ctx, prefix)
}

// ClearAll wipes every key, read state and the sync marker included.
func (c *Cache) ClearAll(ctx context.Context) error {
	if err := c.repo.Clear(ctx); err != nil {
		return err
	}
	c.log.Info(ctx, "cache cleared")
	return nil
}

// InvalidateSubscriptions drops the case and company lists so the next load
// goes to the network.
func (c *Cache) InvalidateSubscriptions(ctx context.Context) error {
	if err := c.repo.Delete(ctx, KeyCases); err != nil {
		return err
	}
	return c.repo.Delete(ctx, KeyCompanies)
}

func (c *Cache) MarkSynced(ctx context.Context, at time.Time) error {
	return c.Save(ctx, KeyLastSyncTime, at.UTC())
}

func (c *Cache) LastSyncTime(ctx context.Context) (time.Time, bool) {
	return Load[time.Time](ctx, c, KeyLastSyncTime)
}

func (c *Cache) Keys(ctx context.Context, prefix string) ([]string, error) {
	return c.repo.Keys(ctx, prefix)
}

func (c *Cache) Size(ctx context.Context) (int64, error) {
	return c.repo.Size(ctx)
}
