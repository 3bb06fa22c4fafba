package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/legaltrack/internal/client/cachestore"
	"github.com/dmitrijs2005/legaltrack/internal/client/client"
	"github.com/dmitrijs2005/legaltrack/internal/client/models"
	"github.com/dmitrijs2005/legaltrack/internal/client/resource"
	"github.com/dmitrijs2005/legaltrack/internal/logging"
)

type DelaysState = resource.State[[]models.DelayItem]

// DelaysService shows postponements. They are a paid feature: with an
// inactive tariff the list is empty and the delays endpoint is not called.
type DelaysService interface {
	Load(ctx context.Context) DelaysState
	State() DelaysState
	Tariff(ctx context.Context) (models.Tariff, bool)
	Search(ctx context.Context, caseNumber string) ([]models.DelayItem, error)
	HandleConnectivity(connected bool)
	Reset()
}

type delaysService struct {
	api   client.Client
	cache *cachestore.Cache
	log   logging.Logger
	ctrl  *resource.Controller[[]models.DelayItem]
}

func NewDelaysService(deps resource.Deps, api client.Client) DelaysService {
	s := &delaysService{api: api, cache: deps.Cache, log: deps.Log}
	s.ctrl = resource.NewController(deps, resource.Options[[]models.DelayItem]{
		Name:    "delays",
		Key:     cachestore.KeyDelays,
		Fetch:   s.fetch,
		IsEmpty: resource.SliceEmpty[models.DelayItem],
	})
	return s
}

func (s *delaysService) fetch(ctx context.Context) ([]models.DelayItem, error) {
	tariff, err := s.api.Tariff(ctx)
	if err != nil {
		return nil, fmt.Errorf("tariff: %w", err)
	}
	if err := s.cache.Save(ctx, cachestore.KeyTariff, tariff); err != nil {
		s.log.Warn(ctx, "cache write failed", "key", cachestore.KeyTariff, "error", err)
	}
	if !tariff.Active {
		return []models.DelayItem{}, nil
	}
	return s.api.Delays(ctx)
}

func (s *delaysService) Load(ctx context.Context) DelaysState { return s.ctrl.Load(ctx) }
func (s *delaysService) State() DelaysState                   { return s.ctrl.State() }
func (s *delaysService) HandleConnectivity(connected bool)    { s.ctrl.HandleConnectivity(connected) }
func (s *delaysService) Reset()                               { s.ctrl.Reset() }

// Tariff returns the last tariff seen by Load.
func (s *delaysService) Tariff(ctx context.Context) (models.Tariff, bool) {
	return cachestore.Load[models.Tariff](ctx, s.cache, cachestore.KeyTariff)
}

// Search goes straight to the backend; results are not cached.
func (s *delaysService) Search(ctx context.Context, caseNumber string) ([]models.DelayItem, error) {
	caseNumber = strings.TrimSpace(caseNumber)
	if caseNumber == "" {
		return nil, ErrEmptyNumber
	}
	return s.api.SearchDelays(ctx, caseNumber)
}
