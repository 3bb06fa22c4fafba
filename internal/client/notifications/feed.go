// Package notifications keeps the paginated notification feed. Page 1 is
// cache-first like every other resource; later pages are appended on
// scroll and kept in memory only. Read marks survive restarts through
// readstate.
package notifications

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/legaltrack/internal/client/cachestore"
	"github.com/dmitrijs2005/legaltrack/internal/client/datex"
	"github.com/dmitrijs2005/legaltrack/internal/client/metrics"
	"github.com/dmitrijs2005/legaltrack/internal/client/models"
	"github.com/dmitrijs2005/legaltrack/internal/client/readstate"
	"github.com/dmitrijs2005/legaltrack/internal/client/resource"
	"github.com/dmitrijs2005/legaltrack/internal/logging"
)

const (
	// LoadMoreDistance is how close to the end a visible item must be to
	// trigger the next page.
	LoadMoreDistance = 5

	// CachedItemsLimit caps the list rewritten to page 1 after read marks.
	CachedItemsLimit = 200
)

type Source interface {
	Notifications(ctx context.Context, page int) (*models.NotificationsPage, error)
}

type State = resource.State[models.NotificationsPage]

type Feed struct {
	src     Source
	cache   *cachestore.Cache
	read    *readstate.Store
	dates   *datex.Parser
	online  resource.Online
	log     logging.Logger
	metrics *metrics.Metrics

	first *resource.Controller[models.NotificationsPage]

	readLoaded  atomic.Bool
	moreMu      sync.Mutex
	loadingMore bool
}

func NewFeed(deps resource.Deps, src Source, read *readstate.Store, dates *datex.Parser) *Feed {
	if dates == nil {
		dates = datex.NewParser(nil)
	}
	f := &Feed{
		src:     src,
		cache:   deps.Cache,
		read:    read,
		dates:   dates,
		online:  deps.Online,
		log:     deps.Log.With("component", "notifications"),
		metrics: deps.Metrics,
	}
	f.first = resource.NewController(deps, resource.Options[models.NotificationsPage]{
		Name:    "notifications",
		Key:     cachestore.NotificationsPageKey(1),
		Fetch:   f.fetchFirst,
		IsEmpty: func(p models.NotificationsPage) bool { return len(p.Data) == 0 },
		Prepare: func(_ context.Context, p models.NotificationsPage) models.NotificationsPage {
			p.Data = f.Normalize(p.Data, nil)
			return p
		},
	})
	return f
}

func (f *Feed) fetchFirst(ctx context.Context) (models.NotificationsPage, error) {
	p, err := f.src.Notifications(ctx, 1)
	if err != nil {
		return models.NotificationsPage{}, err
	}
	if p == nil {
		return models.NotificationsPage{Page: 1, TotalPages: 1}, nil
	}
	return *p, nil
}

// Normalize merges incoming into existing using the current read state.
func (f *Feed) Normalize(incoming, existing []models.Notification) []models.Notification {
	return Normalize(incoming, existing, f.read, f.dates)
}

func (f *Feed) ensureReadState(ctx context.Context) {
	if f.readLoaded.CompareAndSwap(false, true) {
		f.read.Load(ctx)
	}
}

// LoadFirstPage reloads page 1 and drops any pages appended before.
func (f *Feed) LoadFirstPage(ctx context.Context) State {
	f.ensureReadState(ctx)
	return f.first.Load(ctx)
}

func (f *Feed) State() State {
	return f.first.State()
}

func (f *Feed) Items() []models.Notification {
	return f.first.State().Data.Data
}

func (f *Feed) Subscribe(fn func(State)) func() {
	return f.first.Subscribe(fn)
}

func (f *Feed) HasMorePages() bool {
	p := f.first.State().Data
	return p.Page < p.TotalPages
}

func (f *Feed) UnreadCount() int {
	n := 0
	for _, item := range f.Items() {
		if !item.IsRead {
			n++
		}
	}
	return n
}

// Groups returns the current list split by day.
func (f *Feed) Groups() []DayGroup {
	return GroupByDay(f.Items(), f.dates)
}

// LoadMoreIfNeeded fetches the next page when visible is one of the last
// LoadMoreDistance items. It reports whether a page was appended. Errors are
// not surfaced: the list on screen stays as it is.
func (f *Feed) LoadMoreIfNeeded(ctx context.Context, visible models.Notification) bool {
	st := f.first.State()
	if !nearEnd(st.Data.Data, visible) || st.Data.Page >= st.Data.TotalPages {
		return false
	}
	if f.online != nil && !f.online.IsConnected() {
		return false
	}

	f.moreMu.Lock()
	if f.loadingMore {
		f.moreMu.Unlock()
		return false
	}
	f.loadingMore = true
	f.moreMu.Unlock()

	defer func() {
		f.moreMu.Lock()
		f.loadingMore = false
		f.moreMu.Unlock()
	}()

	gen := st.Generation
	next := st.Data.Page + 1

	p, err := f.src.Notifications(ctx, next)
	if err != nil {
		f.metrics.Fetch("notifications_more", metrics.OutcomeFailure)
		f.log.Debug(ctx, "next page failed", "page", next, "error", err)
		return false
	}
	if p == nil {
		p = &models.NotificationsPage{Page: next, TotalPages: st.Data.TotalPages}
	}
	incoming := f.Normalize(p.Data, nil)

	_, ok := f.first.UpdateIfCurrent(gen, func(cur models.NotificationsPage) models.NotificationsPage {
		cur.Data = f.Normalize(incoming, cur.Data)
		cur.Page = max(p.Page, next)
		cur.TotalPages = p.TotalPages
		return cur
	})
	if !ok {
		f.metrics.Fetch("notifications_more", metrics.OutcomeStale)
		return false
	}
	f.metrics.Fetch("notifications_more", metrics.OutcomeSuccess)
	return true
}

func nearEnd(list []models.Notification, visible models.Notification) bool {
	key := visible.ReadKey()
	from := max(len(list)-LoadMoreDistance, 0)
	for _, n := range list[from:] {
		if n.ReadKey() == key {
			return true
		}
	}
	return false
}

// MarkRead flips one item, persists its key and rewrites cached page 1.
func (f *Feed) MarkRead(ctx context.Context, n models.Notification) error {
	key := n.ReadKey()
	f.first.Update(func(p models.NotificationsPage) models.NotificationsPage {
		p.Data = flipRead(p.Data, func(item models.Notification) bool { return item.ReadKey() == key })
		return p
	})
	if err := f.read.Add(ctx, key); err != nil {
		return err
	}
	return f.rewriteFirstPage(ctx)
}

// MarkAllRead flips every loaded item.
func (f *Feed) MarkAllRead(ctx context.Context) error {
	items := f.Items()
	keys := make([]string, 0, len(items))
	for _, n := range items {
		keys = append(keys, n.ReadKey())
	}

	f.first.Update(func(p models.NotificationsPage) models.NotificationsPage {
		p.Data = flipRead(p.Data, func(models.Notification) bool { return true })
		return p
	})
	if err := f.read.Add(ctx, keys...); err != nil {
		return err
	}
	return f.rewriteFirstPage(ctx)
}

func flipRead(list []models.Notification, match func(models.Notification) bool) []models.Notification {
	out := make([]models.Notification, len(list))
	for i, n := range list {
		if match(n) {
			n.IsRead = true
		}
		out[i] = n
	}
	return out
}

func (f *Feed) rewriteFirstPage(ctx context.Context) error {
	p := f.first.State().Data
	items := p.Data
	if len(items) > CachedItemsLimit {
		items = items[:CachedItemsLimit]
	}
	return f.cache.Save(ctx, cachestore.NotificationsPageKey(1), models.NotificationsPage{
		Data:       items,
		Page:       1,
		TotalPages: p.TotalPages,
	})
}

func (f *Feed) HandleConnectivity(connected bool) {
	f.first.HandleConnectivity(connected)
}

// Reset forgets the loaded list; the read state is reloaded on next use.
func (f *Feed) Reset() {
	f.first.Reset()
	f.readLoaded.Store(false)
}
