package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/legaltrack/internal/client/cachestore"
	"github.com/dmitrijs2005/legaltrack/internal/client/client"
	"github.com/dmitrijs2005/legaltrack/internal/client/models"
	"github.com/dmitrijs2005/legaltrack/internal/client/prefetch"
	"github.com/dmitrijs2005/legaltrack/internal/client/resource"
	"github.com/dmitrijs2005/legaltrack/internal/logging"
)

var ErrEmptyNumber = errors.New("case number is empty")

// Subscriptions is what the monitoring screen shows. It is fetched in one
// request and cached under two keys.
type Subscriptions struct {
	Cases     []models.LegalCase
	Companies []models.Company
}

type MonitoringState = resource.State[Subscriptions]

// Prefetcher is the part of prefetch.Prefetcher used after a list refresh.
type Prefetcher interface {
	PrefetchMissing(ctx context.Context, ids []int) prefetch.Progress
}

// MonitoringService defines the monitoring list operations.
//
// Contract:
//   - Load: cache-first load of cases and companies; a successful fetch
//     stamps the last sync time and starts detail prefetch for the cases.
//   - AddCase/AddCompany: create a subscription and invalidate cached lists.
//   - DeleteCase/DeleteCompany: remove remotely, then drop it locally.
//   - LastSync: time of the last successful list fetch, survives restarts.
type MonitoringService interface {
	Load(ctx context.Context) MonitoringState
	State() MonitoringState
	Subscribe(fn func(MonitoringState)) func()
	LastSync(ctx context.Context) (time.Time, bool)

	AddCase(ctx context.Context, number string, sou bool) error
	AddCompany(ctx context.Context, inn string) error
	DeleteCase(ctx context.Context, id int) error
	DeleteCompany(ctx context.Context, id int) error

	HandleConnectivity(connected bool)
	Reset()
}

type monitoringService struct {
	api      client.Client
	cache    *cachestore.Cache
	prefetch Prefetcher
	log      logging.Logger
	now      func() time.Time
	ctrl     *resource.Controller[Subscriptions]
}

// NewMonitoringService wires the list controller. prefetcher may be nil.
func NewMonitoringService(deps resource.Deps, api client.Client, prefetcher Prefetcher) MonitoringService {
	s := &monitoringService{api: api, cache: deps.Cache, prefetch: prefetcher, log: deps.Log, now: deps.Now}
	if s.log == nil {
		s.log = logging.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.ctrl = resource.NewController(deps, resource.Options[Subscriptions]{
		Name: "subscriptions",
		Key:  cachestore.KeyCases,
		Fetch: func(ctx context.Context) (Subscriptions, error) {
			resp, err := api.Subscriptions(ctx)
			if err != nil {
				return Subscriptions{}, err
			}
			return Subscriptions{Cases: resp.Cases(), Companies: resp.Companies()}, nil
		},
		IsEmpty:   func(v Subscriptions) bool { return len(v.Cases) == 0 && len(v.Companies) == 0 },
		Persist:   s.persist,
		Restore:   s.restore,
		OnSuccess: s.loaded,
	})
	return s
}

func (s *monitoringService) persist(ctx context.Context, v Subscriptions) error {
	if err := s.cache.Save(ctx, cachestore.KeyCases, nonNil(v.Cases)); err != nil {
		return err
	}
	return s.cache.Save(ctx, cachestore.KeyCompanies, nonNil(v.Companies))
}

func (s *monitoringService) restore(ctx context.Context) (Subscriptions, time.Time, bool) {
	cases, okCases := cachestore.Load[[]models.LegalCase](ctx, s.cache, cachestore.KeyCases)
	companies, okCompanies := cachestore.Load[[]models.Company](ctx, s.cache, cachestore.KeyCompanies)
	if !okCases && !okCompanies {
		return Subscriptions{}, time.Time{}, false
	}
	at, _ := s.cache.LastWriteTime(ctx, cachestore.KeyCases)
	return Subscriptions{Cases: cases, Companies: companies}, at, true
}

func (s *monitoringService) loaded(ctx context.Context, v Subscriptions) {
	if err := s.cache.MarkSynced(ctx, s.now()); err != nil {
		s.log.Warn(ctx, "failed to store last sync time", "error", err)
	}

	if s.prefetch == nil || len(v.Cases) == 0 {
		return
	}
	ids := make([]int, 0, len(v.Cases))
	for _, c := range v.Cases {
		ids = append(ids, c.ID)
	}
	s.prefetch.PrefetchMissing(ctx, ids)
}

func (s *monitoringService) Load(ctx context.Context) MonitoringState {
	return s.ctrl.Load(ctx)
}

func (s *monitoringService) State() MonitoringState {
	return s.ctrl.State()
}

func (s *monitoringService) Subscribe(fn func(MonitoringState)) func() {
	return s.ctrl.Subscribe(fn)
}

func (s *monitoringService) LastSync(ctx context.Context) (time.Time, bool) {
	return s.cache.LastSyncTime(ctx)
}

func (s *monitoringService) AddCase(ctx context.Context, number string, sou bool) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return ErrEmptyNumber
	}
	if err := s.api.AddSubscription(ctx, client.SubscriptionCase, number, sou); err != nil {
		return fmt.Errorf("add case: %w", err)
	}
	return s.cache.InvalidateSubscriptions(ctx)
}

func (s *monitoringService) AddCompany(ctx context.Context, inn string) error {
	inn = strings.TrimSpace(inn)
	if inn == "" {
		return ErrEmptyNumber
	}
	if err := s.api.AddSubscription(ctx, client.SubscriptionCompany, inn, false); err != nil {
		return fmt.Errorf("add company: %w", err)
	}
	return s.cache.InvalidateSubscriptions(ctx)
}

func (s *monitoringService) DeleteCase(ctx context.Context, id int) error {
	if err := s.api.DeleteSubscription(ctx, client.SubscriptionCase, id); err != nil {
		return fmt.Errorf("delete case: %w", err)
	}

	cur := s.ctrl.State().Data
	if !cur.HasCases() {
		if cached, _, ok := s.restore(ctx); ok {
			cur = cached
		}
	}
	next := Subscriptions{Companies: cur.Companies}
	for _, c := range cur.Cases {
		if c.ID != id {
			next.Cases = append(next.Cases, c)
		}
	}

	if err := s.ctrl.Replace(ctx, next); err != nil {
		return err
	}
	return s.cache.Remove(ctx, cachestore.CaseDetailKey(id))
}

func (s *monitoringService) DeleteCompany(ctx context.Context, id int) error {
	if err := s.api.DeleteSubscription(ctx, client.SubscriptionCompany, id); err != nil {
		return fmt.Errorf("delete company: %w", err)
	}

	cur := s.ctrl.State().Data
	if len(cur.Companies) == 0 {
		if cached, _, ok := s.restore(ctx); ok {
			cur = cached
		}
	}
	next := Subscriptions{Cases: cur.Cases}
	for _, c := range cur.Companies {
		if c.ID != id {
			next.Companies = append(next.Companies, c)
		}
	}
	return s.ctrl.Replace(ctx, next)
}

func (s *monitoringService) HandleConnectivity(connected bool) {
	s.ctrl.HandleConnectivity(connected)
}

func (s *monitoringService) Reset() {
	s.ctrl.Reset()
}

func (v Subscriptions) HasCases() bool { return len(v.Cases) > 0 }

func nonNil[E any](s []E) []E {
	if s == nil {
		return []E{}
	}
	return s
}
