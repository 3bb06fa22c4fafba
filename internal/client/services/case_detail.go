package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/legaltrack/internal/client/cachestore"
	"github.com/dmitrijs2005/legaltrack/internal/client/client"
	"github.com/dmitrijs2005/legaltrack/internal/client/models"
	"github.com/dmitrijs2005/legaltrack/internal/client/resource"
)

type CaseDetailState = resource.State[*models.CaseDetail]

// CaseDetailService keeps one controller per opened case.
type CaseDetailService interface {
	Load(ctx context.Context, id int) CaseDetailState
	State(id int) CaseDetailState
	HandleConnectivity(connected bool)
	Reset()
}

type caseDetailService struct {
	deps resource.Deps
	api  client.Client

	mu    sync.Mutex
	cards map[int]*resource.Controller[*models.CaseDetail]
}

func NewCaseDetailService(deps resource.Deps, api client.Client) CaseDetailService {
	return &caseDetailService{deps: deps, api: api, cards: map[int]*resource.Controller[*models.CaseDetail]{}}
}

func (s *caseDetailService) controller(id int) *resource.Controller[*models.CaseDetail] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.cards[id]; ok {
		return c
	}
	c := resource.NewController(s.deps, resource.Options[*models.CaseDetail]{
		Name: "case_detail",
		Key:  cachestore.CaseDetailKey(id),
		Fetch: func(ctx context.Context) (*models.CaseDetail, error) {
			return s.api.CaseDetail(ctx, id)
		},
		IsEmpty: func(d *models.CaseDetail) bool { return d == nil },
	})
	s.cards[id] = c
	return c
}

func (s *caseDetailService) Load(ctx context.Context, id int) CaseDetailState {
	return s.controller(id).Load(ctx)
}

func (s *caseDetailService) State(id int) CaseDetailState {
	return s.controller(id).State()
}

func (s *caseDetailService) all() []*resource.Controller[*models.CaseDetail] {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*resource.Controller[*models.CaseDetail], 0, len(s.cards))
	for _, c := range s.cards {
		out = append(out, c)
	}
	return out
}

func (s *caseDetailService) HandleConnectivity(connected bool) {
	for _, c := range s.all() {
		c.HandleConnectivity(connected)
	}
}

func (s *caseDetailService) Reset() {
	for _, c := range s.all() {
		c.Reset()
	}
	s.mu.Lock()
	s.cards = map[int]*resource.Controller[*models.CaseDetail]{}
	s.mu.Unlock()
}
