package resource

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/legaltrack/internal/client/cachestore"
	"github.com/dmitrijs2005/legaltrack/internal/client/client"
	"github.com/dmitrijs2005/legaltrack/internal/client/metrics"
	"github.com/dmitrijs2005/legaltrack/internal/logging"
)

// Online reports reachability; *connectivity.Observer satisfies it.
type Online interface {
	IsConnected() bool
}

// State is what a screen renders.
type State[T any] struct {
	Data       T
	HasData    bool
	Loading    bool
	Refreshing bool
	FromCache  bool
	Err        error
	Message    string
	LastSync   time.Time
	Generation uint64
}

type Options[T any] struct {
	// Name labels logs and metrics; defaults to Key.
	Name string
	Key  string

	Fetch func(ctx context.Context) (T, error)

	// IsEmpty decides whether data counts as "something on screen".
	// Nil means never empty.
	IsEmpty func(T) bool

	// Prepare runs on cached and fetched values before they are published.
	Prepare func(ctx context.Context, v T) T

	// OnSuccess runs after a fresh result was applied and cached.
	OnSuccess func(ctx context.Context, v T)

	// Persist and Restore replace the single-key cache access for resources
	// stored under several keys.
	Persist func(ctx context.Context, v T) error
	Restore func(ctx context.Context) (T, time.Time, bool)

	// Message maps a surfaced error to user copy; defaults to client.UserMessage.
	Message func(error) string
}

type Deps struct {
	Cache   *cachestore.Cache
	Online  Online
	Log     logging.Logger
	Metrics *metrics.Metrics
	Now     func() time.Time
}

type Controller[T any] struct {
	opts Options[T]
	deps Deps
	log  logging.Logger

	mu      sync.Mutex
	state   State[T]
	latest  uint64
	applied uint64
	cancel  context.CancelFunc
	subs    map[int]func(State[T])
	nextSub int

	writeMu sync.Mutex
}

func NewController[T any](deps Deps, opts Options[T]) *Controller[T] {
	if opts.Name == "" {
		opts.Name = opts.Key
	}
	if opts.IsEmpty == nil {
		opts.IsEmpty = func(T) bool { return false }
	}
	if opts.Message == nil {
		opts.Message = client.UserMessage
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Controller[T]{
		opts: opts,
		deps: deps,
		log:  deps.Log.With("resource", opts.Name),
		subs: map[int]func(State[T]){},
	}
}

// SliceEmpty is an IsEmpty for list resources.
func SliceEmpty[E any](s []E) bool { return len(s) == 0 }

func (c *Controller[T]) Key() string { return c.opts.Key }

func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller[T]) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest
}

// Subscribe registers fn for every published state; returns unsubscribe.
func (c *Controller[T]) Subscribe(fn func(State[T])) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Load runs one cache-first cycle and returns the resulting state. It
// blocks until the fetch finishes or is superseded.
func (c *Controller[T]) Load(ctx context.Context) State[T] {
	lctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.latest++
	gen := c.latest
	c.cancel = cancel
	c.mu.Unlock()

	cached, cachedAt, hit := c.loadCache(ctx)
	online := c.deps.Online == nil || c.deps.Online.IsConnected()

	st, ok := c.update(gen, func(s *State[T]) {
		if hit && !s.HasData {
			s.Data = cached
			s.HasData = !c.opts.IsEmpty(cached)
			s.FromCache = true
			s.LastSync = cachedAt
		}
		s.Loading = online && !s.HasData
		s.Refreshing = online && s.HasData
	})
	if !ok {
		return c.State()
	}

	if !online {
		c.deps.Metrics.Fetch(c.opts.Name, metrics.OutcomeOffline)
		c.log.Debug(ctx, "offline, serving cache only", "cached", hit)
		return st
	}

	data, err := c.opts.Fetch(lctx)

	switch {
	case lctx.Err() != nil || errors.Is(err, context.Canceled):
		return c.finishCanceled(ctx, gen)
	case err != nil:
		return c.finishFailure(ctx, gen, err)
	default:
		return c.finishSuccess(ctx, gen, data)
	}
}

func (c *Controller[T]) finishSuccess(ctx context.Context, gen uint64, data T) State[T] {
	if c.opts.Prepare != nil {
		data = c.opts.Prepare(ctx, data)
	}
	now := c.deps.Now()

	st, ok := c.update(gen, func(s *State[T]) {
		s.Data = data
		s.HasData = !c.opts.IsEmpty(data)
		s.FromCache = false
		s.Loading, s.Refreshing = false, false
		s.Err, s.Message = nil, ""
		s.LastSync = now
		c.applied = gen
	})
	if !ok {
		c.deps.Metrics.Fetch(c.opts.Name, metrics.OutcomeStale)
		c.log.Debug(ctx, "dropping stale response", "generation", gen)
		return c.State()
	}
	c.deps.Metrics.Fetch(c.opts.Name, metrics.OutcomeSuccess)

	c.writeIfApplied(ctx, gen, data)

	if c.opts.OnSuccess != nil {
		c.opts.OnSuccess(ctx, data)
	}
	return st
}

// writeIfApplied persists data unless a newer generation has replaced it.
func (c *Controller[T]) writeIfApplied(ctx context.Context, gen uint64, data T) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	current := c.applied == gen
	c.mu.Unlock()
	if !current {
		return
	}

	if err := c.persist(context.WithoutCancel(ctx), data); err != nil {
		c.log.Warn(ctx, "cache write failed", "key", c.opts.Key, "error", err)
	}
}

func (c *Controller[T]) persist(ctx context.Context, data T) error {
	if c.opts.Persist != nil {
		return c.opts.Persist(ctx, data)
	}
	return c.deps.Cache.Save(ctx, c.opts.Key, data)
}

func (c *Controller[T]) finishFailure(ctx context.Context, gen uint64, err error) State[T] {
	c.deps.Metrics.Fetch(c.opts.Name, metrics.OutcomeFailure)

	c.mu.Lock()
	if gen != c.latest {
		c.mu.Unlock()
		return c.State()
	}
	hasData := c.state.HasData
	c.mu.Unlock()

	if hasData {
		c.deps.Metrics.Suppressed(c.opts.Name)
		c.log.Debug(ctx, "fetch failed, keeping visible data", "error", err)
		st, _ := c.update(gen, func(s *State[T]) {
			s.Loading, s.Refreshing = false, false
		})
		return st
	}

	// nothing on screen: one more look at the cache before giving up
	cached, cachedAt, hit := c.loadCache(ctx)
	st, ok := c.update(gen, func(s *State[T]) {
		s.Loading, s.Refreshing = false, false
		if hit && !c.opts.IsEmpty(cached) {
			s.Data = cached
			s.HasData = true
			s.FromCache = true
			s.LastSync = cachedAt
			return
		}
		s.Err = err
		s.Message = c.opts.Message(err)
	})
	if !ok {
		return c.State()
	}
	if st.Err != nil {
		c.log.Warn(ctx, "load failed with nothing to show", "error", err)
	}
	return st
}

func (c *Controller[T]) finishCanceled(ctx context.Context, gen uint64) State[T] {
	c.deps.Metrics.Fetch(c.opts.Name, metrics.OutcomeCanceled)
	st, ok := c.update(gen, func(s *State[T]) {
		s.Loading, s.Refreshing = false, false
	})
	if !ok {
		return c.State()
	}
	c.log.Debug(ctx, "load canceled", "generation", gen)
	return st
}

func (c *Controller[T]) loadCache(ctx context.Context) (T, time.Time, bool) {
	var (
		v       T
		savedAt time.Time
		ok      bool
	)
	if c.opts.Restore != nil {
		v, savedAt, ok = c.opts.Restore(ctx)
	} else if v, ok = cachestore.Load[T](ctx, c.deps.Cache, c.opts.Key); ok {
		savedAt, _ = c.deps.Cache.LastWriteTime(ctx, c.opts.Key)
	}
	if !ok {
		return v, time.Time{}, false
	}
	if c.opts.Prepare != nil {
		v = c.opts.Prepare(ctx, v)
	}
	return v, savedAt, true
}

// update mutates the state if gen is still the latest generation and
// publishes the result. The bool is false for a stale generation.
func (c *Controller[T]) update(gen uint64, fn func(*State[T])) (State[T], bool) {
	c.mu.Lock()
	if gen != c.latest {
		c.mu.Unlock()
		return State[T]{}, false
	}
	fn(&c.state)
	c.state.Generation = gen
	st := c.state
	subs := c.subscribers()
	c.mu.Unlock()

	for _, fn := range subs {
		fn(st)
	}
	return st, true
}

func (c *Controller[T]) subscribers() []func(State[T]) {
	out := make([]func(State[T]), 0, len(c.subs))
	for _, fn := range c.subs {
		out = append(out, fn)
	}
	return out
}

// Update changes the in-memory data without touching the cache. Used for
// local edits such as flipping read flags or appending a page.
func (c *Controller[T]) Update(fn func(T) T) State[T] {
	c.mu.Lock()
	gen := c.latest
	c.mu.Unlock()

	st, ok := c.UpdateIfCurrent(gen, fn)
	if !ok {
		return c.State()
	}
	return st
}

// UpdateIfCurrent is Update guarded by a generation taken earlier.
func (c *Controller[T]) UpdateIfCurrent(gen uint64, fn func(T) T) (State[T], bool) {
	return c.update(gen, func(s *State[T]) {
		s.Data = fn(s.Data)
		s.HasData = !c.opts.IsEmpty(s.Data)
	})
}

// Replace sets data in memory and in the cache, e.g. after a local delete.
func (c *Controller[T]) Replace(ctx context.Context, data T) error {
	c.mu.Lock()
	gen := c.latest
	c.mu.Unlock()

	if _, ok := c.update(gen, func(s *State[T]) {
		s.Data = data
		s.HasData = !c.opts.IsEmpty(data)
		s.FromCache = false
	}); !ok {
		return nil
	}
	return c.persist(ctx, data)
}

// CancelInFlight aborts the running fetch, if any. The load then settles on
// whatever is already visible.
func (c *Controller[T]) CancelInFlight() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}

// HandleConnectivity is the Observer hook: going offline cancels the fetch.
func (c *Controller[T]) HandleConnectivity(connected bool) {
	if !connected {
		c.CancelInFlight()
	}
}

// Reset forgets everything in memory and invalidates in-flight loads.
func (c *Controller[T]) Reset() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.latest++
	c.state = State[T]{Generation: c.latest}
	st := c.state
	subs := c.subscribers()
	c.mu.Unlock()

	for _, fn := range subs {
		fn(st)
	}
}
