// Package prefetch warms the case detail cache in the background so that
// cases opened later work offline.
package prefetch

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/legaltrack/internal/client/cachestore"
	"github.com/dmitrijs2005/legaltrack/internal/client/metrics"
	"github.com/dmitrijs2005/legaltrack/internal/client/models"
	"github.com/dmitrijs2005/legaltrack/internal/client/resource"
	"github.com/dmitrijs2005/legaltrack/internal/logging"
)

const DefaultConcurrency = 3

type DetailSource interface {
	CaseDetail(ctx context.Context, id int) (*models.CaseDetail, error)
}

type Progress struct {
	Total      int
	Done       int
	InProgress bool
}

type Prefetcher struct {
	src     DetailSource
	cache   *cachestore.Cache
	online  resource.Online
	log     logging.Logger
	metrics *metrics.Metrics
	limit   int

	mu       sync.Mutex
	run      uint64
	cancel   context.CancelFunc
	finished chan struct{}
	progress Progress
}

type Option func(*Prefetcher)

func WithConcurrency(n int) Option {
	return func(p *Prefetcher) {
		if n > 0 {
			p.limit = n
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Prefetcher) { p.metrics = m }
}

func New(src DetailSource, cache *cachestore.Cache, online resource.Online, log logging.Logger, opts ...Option) *Prefetcher {
	p := &Prefetcher{
		src:    src,
		cache:  cache,
		online: online,
		log:    log.With("component", "prefetch"),
		limit:  DefaultConcurrency,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// PrefetchMissing starts fetching details for ids that have no cache entry
// and returns the initial progress without waiting. A previous run is
// canceled first. Failed fetches are dropped.
func (p *Prefetcher) PrefetchMissing(ctx context.Context, ids []int) Progress {
	p.Cancel()

	missing := p.missing(ctx, ids)
	if len(missing) == 0 || (p.online != nil && !p.online.IsConnected()) {
		p.mu.Lock()
		p.progress = Progress{}
		p.mu.Unlock()
		return Progress{}
	}

	// the run outlives the request that triggered it
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	finished := make(chan struct{})

	run, started := p.begin(cancel, finished, len(missing))

	p.metrics.PrefetchStarted()
	p.log.Debug(ctx, "prefetch started", "missing", len(missing))

	go func() {
		defer close(finished)
		defer cancel()

		var g errgroup.Group
		g.SetLimit(p.limit)
		for _, id := range missing {
			if runCtx.Err() != nil {
				break
			}
			g.Go(func() error {
				p.fetch(runCtx, run, id)
				return nil
			})
		}
		_ = g.Wait()

		p.mu.Lock()
		if p.run == run {
			p.progress.InProgress = false
		}
		done := p.progress
		p.mu.Unlock()

		p.log.Debug(runCtx, "prefetch finished", "done", done.Done, "total", done.Total)
	}()

	return started
}

func (p *Prefetcher) missing(ctx context.Context, ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if !p.cache.Has(ctx, cachestore.CaseDetailKey(id)) {
			out = append(out, id)
		}
	}
	return out
}

func (p *Prefetcher) fetch(ctx context.Context, run uint64, id int) {
	if ctx.Err() != nil {
		return
	}

	d, err := p.src.CaseDetail(ctx, id)
	if err == nil && d != nil && ctx.Err() == nil {
		err = p.cache.Save(ctx, cachestore.CaseDetailKey(id), d)
	}
	p.metrics.PrefetchAttempt(err)
	if err != nil {
		p.log.Debug(ctx, "prefetch attempt dropped", "case", id, "error", err)
	}

	p.mu.Lock()
	if p.run == run {
		p.progress.Done++
	}
	p.mu.Unlock()
}

func (p *Prefetcher) Progress() Progress {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.progress
}

// begin installs a new run. A run installed by an overlapping call after
// our initial Cancel is canceled here.
func (p *Prefetcher) begin(cancel context.CancelFunc, finished chan struct{}, total int) (uint64, Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
	p.run++
	p.cancel = cancel
	p.finished = finished
	p.progress = Progress{Total: total, InProgress: true}
	return p.run, p.progress
}

// Cancel stops the current run. Entries already written stay.
func (p *Prefetcher) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
		p.progress.InProgress = false
	}
}

// Wait blocks until the latest run has stopped.
func (p *Prefetcher) Wait() {
	p.mu.Lock()
	finished := p.finished
	p.mu.Unlock()
	if finished != nil {
		<-finished
	}
}

func (p *Prefetcher) HandleConnectivity(connected bool) {
	if !connected {
		p.Cancel()
	}
}

// Reset cancels the run and zeroes progress. Writes of the canceled run
// that had not started are skipped.
func (p *Prefetcher) Reset() {
	p.Cancel()
	p.mu.Lock()
	p.run++
	p.progress = Progress{}
	p.mu.Unlock()
}
