package services

import (
	"context"
	"slices"
	"time"

	"github.com/dmitrijs2005/legaltrack/internal/client/cachestore"
	"github.com/dmitrijs2005/legaltrack/internal/client/client"
	"github.com/dmitrijs2005/legaltrack/internal/client/datex"
	"github.com/dmitrijs2005/legaltrack/internal/client/models"
	"github.com/dmitrijs2005/legaltrack/internal/client/resource"
)

type CalendarState = resource.State[[]models.CalendarEvent]

type CalendarDay struct {
	Day    time.Time
	Title  string
	Events []models.CalendarEvent
}

type CalendarService interface {
	Load(ctx context.Context) CalendarState
	State() CalendarState
	// Days groups loaded events by day, earliest first. Events with an
	// unreadable start are left out.
	Days() []CalendarDay
	HandleConnectivity(connected bool)
	Reset()
}

type calendarService struct {
	dates *datex.Parser
	ctrl  *resource.Controller[[]models.CalendarEvent]
}

func NewCalendarService(deps resource.Deps, api client.Client, dates *datex.Parser) CalendarService {
	if dates == nil {
		dates = datex.NewParser(nil)
	}
	return &calendarService{
		dates: dates,
		ctrl: resource.NewController(deps, resource.Options[[]models.CalendarEvent]{
			Name:    "calendar",
			Key:     cachestore.KeyCalendarEvents,
			Fetch:   api.CalendarEvents,
			IsEmpty: resource.SliceEmpty[models.CalendarEvent],
		}),
	}
}

func (s *calendarService) Load(ctx context.Context) CalendarState { return s.ctrl.Load(ctx) }
func (s *calendarService) State() CalendarState                   { return s.ctrl.State() }
func (s *calendarService) HandleConnectivity(connected bool)      { s.ctrl.HandleConnectivity(connected) }
func (s *calendarService) Reset()                                 { s.ctrl.Reset() }

func (s *calendarService) Days() []CalendarDay {
	return GroupEventsByDay(s.ctrl.State().Data, s.dates)
}

func GroupEventsByDay(events []models.CalendarEvent, dates *datex.Parser) []CalendarDay {
	type timed struct {
		at time.Time
		ev models.CalendarEvent
	}
	var list []timed
	for _, ev := range events {
		if at, ok := dates.Parse(ev.DatetimeStart); ok {
			list = append(list, timed{at, ev})
		}
	}
	slices.SortStableFunc(list, func(a, b timed) int { return a.at.Compare(b.at) })

	var out []CalendarDay
	for _, t := range list {
		d := datex.Day(t.at.In(dates.Location()))
		if n := len(out); n > 0 && out[n-1].Day.Equal(d) {
			out[n-1].Events = append(out[n-1].Events, t.ev)
			continue
		}
		out = append(out, CalendarDay{Day: d, Title: datex.DayTitle(d), Events: []models.CalendarEvent{t.ev}})
	}
	return out
}
