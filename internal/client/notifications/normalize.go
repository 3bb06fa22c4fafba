package notifications

import (
	"cmp"
	"slices"
	"time"

	"github.com/dmitrijs2005/legaltrack/internal/client/datex"
	"github.com/dmitrijs2005/legaltrack/internal/client/models"
)

// ReadSet answers whether a read key was marked as read.
type ReadSet interface {
	Contains(key string) bool
}

type dated struct {
	n  models.Notification
	at time.Time
	ok bool
}

// Normalize merges a freshly loaded page into the accumulated list.
//
// Incoming items get IsRead from read (never unset), the result is sorted
// newest first by the date in Meta with undated items last, and duplicates
// by ReadKey keep the first occurrence. Inputs are not modified.
func Normalize(incoming, existing []models.Notification, read ReadSet, dates *datex.Parser) []models.Notification {
	if dates == nil {
		dates = datex.NewParser(nil)
	}

	all := make([]dated, 0, len(incoming)+len(existing))
	for _, n := range incoming {
		if read != nil && read.Contains(n.ReadKey()) {
			n.IsRead = true
		}
		all = append(all, dated{n: n})
	}
	for _, n := range existing {
		all = append(all, dated{n: n})
	}
	for i := range all {
		all[i].at, all[i].ok = dates.Parse(all[i].n.Meta)
	}

	slices.SortStableFunc(all, compareNewestFirst)

	out := make([]models.Notification, 0, len(all))
	seen := make(map[string]struct{}, len(all))
	for _, d := range all {
		k := d.n.ReadKey()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, d.n)
	}
	return out
}

func compareNewestFirst(a, b dated) int {
	switch {
	case a.ok && !b.ok:
		return -1
	case !a.ok && b.ok:
		return 1
	case a.ok && b.ok && !a.at.Equal(b.at):
		if a.at.After(b.at) {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(b.n.ID, a.n.ID); c != 0 {
		return c
	}
	if c := cmp.Compare(b.n.SecondaryID(), a.n.SecondaryID()); c != 0 {
		return c
	}
	return cmp.Compare(b.n.Meta, a.n.Meta)
}

type DayGroup struct {
	// Day is midnight of the group's date; zero for the undated group.
	Day   time.Time
	Title string
	Items []models.Notification
}

const UndatedTitle = "Без даты"

// GroupByDay splits an already normalized list into day buckets, newest day
// first, with one trailing group for items whose Meta has no date.
func GroupByDay(list []models.Notification, dates *datex.Parser) []DayGroup {
	if dates == nil {
		dates = datex.NewParser(nil)
	}

	byDay := map[time.Time]*DayGroup{}
	var days []time.Time
	var undated []models.Notification

	for _, n := range list {
		t, ok := dates.Parse(n.Meta)
		if !ok {
			undated = append(undated, n)
			continue
		}
		d := datex.Day(t.In(dates.Location()))
		g, exists := byDay[d]
		if !exists {
			g = &DayGroup{Day: d, Title: datex.DayTitle(d)}
			byDay[d] = g
			days = append(days, d)
		}
		g.Items = append(g.Items, n)
	}

	slices.SortFunc(days, func(a, b time.Time) int { return b.Compare(a) })

	out := make([]DayGroup, 0, len(days)+1)
	for _, d := range days {
		out = append(out, *byDay[d])
	}
	if len(undated) > 0 {
		out = append(out, DayGroup{Title: UndatedTitle, Items: undated})
	}
	return out
}
