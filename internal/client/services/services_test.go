package services

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/legaltrack/internal/client/cachestore"
	"github.com/dmitrijs2005/legaltrack/internal/client/client"
	"github.com/dmitrijs2005/legaltrack/internal/client/datex"
	"github.com/dmitrijs2005/legaltrack/internal/client/models"
	"github.com/dmitrijs2005/legaltrack/internal/client/prefetch"
	"github.com/dmitrijs2005/legaltrack/internal/client/repositories/cache"
	"github.com/dmitrijs2005/legaltrack/internal/client/resource"
	"github.com/dmitrijs2005/legaltrack/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fake client ----

// fakeClient реализует client.Client; не переопределённые методы паникуют.
type fakeClient struct {
	client.Client

	mu sync.Mutex

	SubsRet *models.SubscriptionsResponse
	SubsErr error

	DetailRet map[int]*models.CaseDetail
	DetailErr error

	CalendarRet []models.CalendarEvent

	TariffRet   *models.Tariff
	DelaysRet   []models.DelayItem
	DelaysCalls int
	SearchArg   string

	DeleteErr  error
	Deleted    []int
	AddedValue string
	AddedSou   bool
	AddedKind  client.SubscriptionKind
}

func (f *fakeClient) Subscriptions(context.Context) (*models.SubscriptionsResponse, error) {
	return f.SubsRet, f.SubsErr
}

func (f *fakeClient) CaseDetail(_ context.Context, id int) (*models.CaseDetail, error) {
	if f.DetailErr != nil {
		return nil, f.DetailErr
	}
	d, ok := f.DetailRet[id]
	if !ok {
		return nil, client.ErrNoData
	}
	return d, nil
}

func (f *fakeClient) CalendarEvents(context.Context) ([]models.CalendarEvent, error) {
	return f.CalendarRet, nil
}

func (f *fakeClient) Tariff(context.Context) (*models.Tariff, error) {
	return f.TariffRet, nil
}

func (f *fakeClient) Delays(context.Context) ([]models.DelayItem, error) {
	f.mu.Lock()
	f.DelaysCalls++
	f.mu.Unlock()
	return f.DelaysRet, nil
}

func (f *fakeClient) SearchDelays(_ context.Context, n string) ([]models.DelayItem, error) {
	f.SearchArg = n
	return f.DelaysRet, nil
}

func (f *fakeClient) AddSubscription(_ context.Context, kind client.SubscriptionKind, value string, sou bool) error {
	f.AddedKind, f.AddedValue, f.AddedSou = kind, value, sou
	return nil
}

func (f *fakeClient) DeleteSubscription(_ context.Context, _ client.SubscriptionKind, id int) error {
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.Deleted = append(f.Deleted, id)
	return nil
}

type spyPrefetcher struct {
	ids atomic.Value
}

func (s *spyPrefetcher) PrefetchMissing(_ context.Context, ids []int) prefetch.Progress {
	s.ids.Store(ids)
	return prefetch.Progress{Total: len(ids)}
}

type online struct{ v atomic.Bool }

func (o *online) IsConnected() bool { return o.v.Load() }

// ---- helpers ----

func setup(t *testing.T) (resource.Deps, *cachestore.Cache, *online) {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	c := cachestore.New(cache.NewSQLiteRepository(db), logging.Nop())
	on := &online{}
	on.v.Store(true)
	return resource.Deps{Cache: c, Online: on, Log: logging.Nop()}, c, on
}

func subs(cases []models.LegalCase, companies []models.Company) *models.SubscriptionsResponse {
	raw, _ := json.Marshal(map[string]any{"data": map[string]any{"cases": cases, "companies": companies}})
	var r models.SubscriptionsResponse
	_ = json.Unmarshal(raw, &r)
	return &r
}

// ---- monitoring ----

func TestMonitoring_LoadCachesBothKeysAndPrefetches(t *testing.T) {
	deps, c, _ := setup(t)
	ctx := context.Background()
	require.NoError(t, c.Save(ctx, cachestore.KeyCases, []models.LegalCase{{ID: 1}}))

	api := &fakeClient{SubsRet: subs(
		[]models.LegalCase{{ID: 1}, {ID: 2}},
		[]models.Company{{ID: 9, Name: "ООО Ромашка"}},
	)}
	spy := &spyPrefetcher{}
	m := NewMonitoringService(deps, api, spy)

	st := m.Load(ctx)
	require.Len(t, st.Data.Cases, 2)
	require.Len(t, st.Data.Companies, 1)

	cases, ok := cachestore.Load[[]models.LegalCase](ctx, c, cachestore.KeyCases)
	require.True(t, ok)
	assert.Len(t, cases, 2)
	companies, ok := cachestore.Load[[]models.Company](ctx, c, cachestore.KeyCompanies)
	require.True(t, ok)
	assert.Equal(t, 9, companies[0].ID)

	_, synced := m.LastSync(ctx)
	assert.True(t, synced)
	assert.Equal(t, []int{1, 2}, spy.ids.Load())
}

func TestMonitoring_OfflineServesCacheWithoutPrefetch(t *testing.T) {
	deps, c, on := setup(t)
	ctx := context.Background()
	require.NoError(t, c.Save(ctx, cachestore.KeyCases, []models.LegalCase{{ID: 1}}))
	on.v.Store(false)

	spy := &spyPrefetcher{}
	m := NewMonitoringService(deps, &fakeClient{SubsErr: client.ErrUnavailable}, spy)

	st := m.Load(ctx)
	assert.True(t, st.FromCache)
	assert.Len(t, st.Data.Cases, 1)
	assert.Empty(t, st.Data.Companies)
	assert.Nil(t, spy.ids.Load())
}

func TestMonitoring_DeleteCase(t *testing.T) {
	deps, c, _ := setup(t)
	ctx := context.Background()
	require.NoError(t, c.Save(ctx, cachestore.CaseDetailKey(2), models.CaseDetail{ID: 2}))

	api := &fakeClient{SubsRet: subs([]models.LegalCase{{ID: 1}, {ID: 2}}, nil)}
	m := NewMonitoringService(deps, api, nil)
	m.Load(ctx)

	require.NoError(t, m.DeleteCase(ctx, 2))
	assert.Equal(t, []int{2}, api.Deleted)

	st := m.State()
	require.Len(t, st.Data.Cases, 1)
	assert.Equal(t, 1, st.Data.Cases[0].ID)

	cached, ok := cachestore.Load[[]models.LegalCase](ctx, c, cachestore.KeyCases)
	require.True(t, ok)
	assert.Len(t, cached, 1)
	assert.False(t, c.Has(ctx, cachestore.CaseDetailKey(2)))
}

func TestMonitoring_DeleteFailureKeepsList(t *testing.T) {
	deps, _, _ := setup(t)
	ctx := context.Background()
	api := &fakeClient{SubsRet: subs([]models.LegalCase{{ID: 1}}, nil)}
	m := NewMonitoringService(deps, api, nil)
	m.Load(ctx)

	api.DeleteErr = &client.HTTPError{StatusCode: 400, Message: "bad id"}
	err := m.DeleteCase(ctx, 1)
	require.Error(t, err)
	assert.Len(t, m.State().Data.Cases, 1)
}

func TestMonitoring_AddCaseInvalidatesLists(t *testing.T) {
	deps, c, _ := setup(t)
	ctx := context.Background()
	require.NoError(t, c.Save(ctx, cachestore.KeyCases, []models.LegalCase{{ID: 1}}))
	require.NoError(t, c.Save(ctx, cachestore.KeyCompanies, []models.Company{{ID: 1}}))

	api := &fakeClient{}
	m := NewMonitoringService(deps, api, nil)

	require.ErrorIs(t, m.AddCase(ctx, "  ", false), ErrEmptyNumber)
	require.NoError(t, m.AddCase(ctx, " 2-1234/2024 ", true))

	assert.Equal(t, client.SubscriptionCase, api.AddedKind)
	assert.Equal(t, "2-1234/2024", api.AddedValue)
	assert.True(t, api.AddedSou)
	assert.False(t, c.Has(ctx, cachestore.KeyCases))
	assert.False(t, c.Has(ctx, cachestore.KeyCompanies))

	require.NoError(t, m.AddCompany(ctx, "7700000000"))
	assert.Equal(t, client.SubscriptionCompany, api.AddedKind)
}

// ---- case detail ----

func TestCaseDetail_NoDataSurfacesOnlyWithoutCache(t *testing.T) {
	deps, c, _ := setup(t)
	ctx := context.Background()
	api := &fakeClient{DetailRet: map[int]*models.CaseDetail{}}
	s := NewCaseDetailService(deps, api)

	st := s.Load(ctx, 5)
	assert.ErrorIs(t, st.Err, client.ErrNoData)
	assert.Equal(t, client.UserMessage(client.ErrNoData), st.Message)

	require.NoError(t, c.Save(ctx, cachestore.CaseDetailKey(6), models.CaseDetail{ID: 6, Judge: "Петров"}))
	st = s.Load(ctx, 6)
	assert.Nil(t, st.Err)
	require.NotNil(t, st.Data)
	assert.Equal(t, "Петров", st.Data.Judge)
}

func TestCaseDetail_ResetForgetsCards(t *testing.T) {
	deps, _, _ := setup(t)
	ctx := context.Background()
	api := &fakeClient{DetailRet: map[int]*models.CaseDetail{1: {ID: 1}}}
	s := NewCaseDetailService(deps, api)

	require.NotNil(t, s.Load(ctx, 1).Data)
	s.Reset()
	assert.Nil(t, s.State(1).Data)
}

// ---- calendar ----

func TestCalendar_DaysAscending(t *testing.T) {
	deps, _, _ := setup(t)
	api := &fakeClient{CalendarRet: []models.CalendarEvent{
		{ID: 1, DatetimeStart: "2024-03-05 10:00:00"},
		{ID: 2, DatetimeStart: "04.03.2024 15:30"},
		{ID: 3, DatetimeStart: "2024-03-05 09:00:00"},
		{ID: 4, DatetimeStart: "когда-нибудь"},
	}}
	s := NewCalendarService(deps, api, datex.NewParser(time.UTC))
	s.Load(context.Background())

	days := s.Days()
	require.Len(t, days, 2)
	assert.Equal(t, "4 марта 2024", days[0].Title)
	assert.Equal(t, []int{3, 1}, []int{days[1].Events[0].ID, days[1].Events[1].ID})
}

func TestGroupEventsByDay_MixedOffsetsShareDay(t *testing.T) {
	days := GroupEventsByDay([]models.CalendarEvent{
		{ID: 1, DatetimeStart: "2024-02-01T12:00:00+03:00"},
		{ID: 2, DatetimeStart: "2024-02-01T10:00:00Z"},
		{ID: 3, DatetimeStart: "2024-02-02T01:00:00+03:00"},
	}, datex.NewParser(time.UTC))

	// 01:00 по Москве 2 февраля это ещё 1 февраля по UTC
	require.Len(t, days, 1)
	assert.Equal(t, "1 февраля 2024", days[0].Title)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), days[0].Day)
	ids := make([]int, 0, len(days[0].Events))
	for _, ev := range days[0].Events {
		ids = append(ids, ev.ID)
	}
	assert.Equal(t, []int{1, 2, 3}, ids)
}

// ---- delays ----

func TestDelays_InactiveTariffSkipsRequest(t *testing.T) {
	deps, _, _ := setup(t)
	ctx := context.Background()
	api := &fakeClient{TariffRet: &models.Tariff{Active: false}, DelaysRet: []models.DelayItem{{ID: 1}}}
	s := NewDelaysService(deps, api)

	st := s.Load(ctx)
	assert.Empty(t, st.Data)
	assert.Nil(t, st.Err)
	assert.Zero(t, api.DelaysCalls)

	tariff, ok := s.Tariff(ctx)
	require.True(t, ok)
	assert.False(t, tariff.Active)
}

func TestDelays_ActiveTariff(t *testing.T) {
	deps, _, _ := setup(t)
	ctx := context.Background()
	api := &fakeClient{TariffRet: &models.Tariff{Active: true}, DelaysRet: []models.DelayItem{{ID: 1}, {ID: 2}}}
	s := NewDelaysService(deps, api)

	st := s.Load(ctx)
	assert.Len(t, st.Data, 2)
	assert.Equal(t, 1, api.DelaysCalls)

	_, err := s.Search(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyNumber)
	found, err := s.Search(ctx, " А40-1/24 ")
	require.NoError(t, err)
	assert.Len(t, found, 2)
	assert.Equal(t, "А40-1/24", api.SearchArg)
}
