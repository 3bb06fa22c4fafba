// Package connectivity tracks whether the backend is reachable.
//
// Observer holds one process-wide flag, starting as connected. Whatever
// learns about reachability (the probe loop in Run, or a platform hook)
// calls Set; subscribers hear about transitions only. Going back online does
// not trigger any reload by itself.
package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/legaltrack/internal/client/metrics"
	"github.com/dmitrijs2005/legaltrack/internal/logging"
)

// Prober checks reachability; client.HTTPClient satisfies it.
type Prober interface {
	Ping(ctx context.Context) error
}

type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

type Observer struct {
	log     logging.Logger
	metrics *metrics.Metrics

	mu        sync.RWMutex
	connected bool
	subs      map[int]func(bool)
	nextID    int
}

func NewObserver(log logging.Logger, m *metrics.Metrics) *Observer {
	return &Observer{log: log, metrics: m, connected: true, subs: map[int]func(bool){}}
}

func (o *Observer) IsConnected() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.connected
}

func (o *Observer) Mode() Mode {
	if o.IsConnected() {
		return ModeOnline
	}
	return ModeOffline
}

// Set records the reachability state. Subscribers run synchronously, in no
// particular order, only when the value changes.
func (o *Observer) Set(connected bool) {
	o.mu.Lock()
	if o.connected == connected {
		o.mu.Unlock()
		return
	}
	o.connected = connected
	subs := make([]func(bool), 0, len(o.subs))
	for _, fn := range o.subs {
		subs = append(subs, fn)
	}
	o.mu.Unlock()

	mode := ModeOffline
	if connected {
		mode = ModeOnline
	}
	o.log.Info(context.Background(), "switched mode", "mode", mode)
	o.metrics.SetOnline(connected)

	for _, fn := range subs {
		fn(connected)
	}
}

// Subscribe registers fn for transitions and returns its unsubscribe func.
func (o *Observer) Subscribe(fn func(connected bool)) func() {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.subs[id] = fn
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		delete(o.subs, id)
		o.mu.Unlock()
	}
}

// Run probes every interval until ctx is done. Each probe gets its own
// timeout; a failed probe means offline.
func (o *Observer) Run(ctx context.Context, p Prober, interval, timeout time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			o.Check(ctx, p, timeout)
		case <-ctx.Done():
			return
		}
	}
}

// Check runs one probe and applies its result.
func (o *Observer) Check(ctx context.Context, p Prober, timeout time.Duration) bool {
	pctx, cancel := context.WithTimeout(ctx, timeout)
	err := p.Ping(pctx)
	cancel()

	if ctx.Err() != nil {
		// shutting down, not a reachability signal
		return o.IsConnected()
	}
	if err != nil {
		o.log.Debug(ctx, "probe failed", "error", err)
	}
	o.Set(err == nil)
	return err == nil
}
