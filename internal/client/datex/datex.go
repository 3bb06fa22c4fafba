// Package datex parses the loosely formatted dates the backend puts into
// free-text fields (notification meta, calendar and delay timestamps).
//
// Parsing is a fixed, ordered table of strategies; the first one that
// succeeds wins. New server quirks are handled by adding a row.
package datex

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultHour is used when a day-first date carries no time of day.
const DefaultHour = 12

// Strategy is one named parse attempt.
type Strategy struct {
	Name  string
	Parse func(s string, loc *time.Location) (time.Time, bool)
}

func layout(l string) func(string, *time.Location) (time.Time, bool) {
	return func(s string, loc *time.Location) (time.Time, bool) {
		t, err := time.ParseInLocation(l, s, loc)
		return t, err == nil
	}
}

var (
	dayFirstLongTime  = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{4})\s+(\d{1,2}):(\d{2})\b`)
	dayFirstLong      = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{4})\b`)
	dayFirstShortTime = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{2})\s+(\d{1,2}):(\d{2})\b`)
	dayFirstShort     = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{2})\b`)
)

// dayFirst finds a dd.MM.yy(yy)[ HH:mm] date anywhere in s. Two digit years
// are 20yy.
func dayFirst(re *regexp.Regexp) func(string, *time.Location) (time.Time, bool) {
	return func(s string, loc *time.Location) (time.Time, bool) {
		m := re.FindStringSubmatch(s)
		if m == nil {
			return time.Time{}, false
		}

		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			year += 2000
		}

		hour, minute := DefaultHour, 0
		if len(m) > 5 {
			hour, _ = strconv.Atoi(m[4])
			minute, _ = strconv.Atoi(m[5])
		}
		if hour > 23 || minute > 59 {
			return time.Time{}, false
		}

		t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, loc)
		// time.Date normalises 31.02 into March; reject instead
		if t.Day() != day || int(t.Month()) != month {
			return time.Time{}, false
		}
		return t, true
	}
}

// DefaultStrategies is the production order: ISO-8601 variants first, then
// day-first forms, long years before short ones.
var DefaultStrategies = []Strategy{
	{Name: "iso8601-fractional", Parse: layout("2006-01-02T15:04:05.999999999Z07:00")},
	{Name: "iso8601", Parse: layout(time.RFC3339)},
	{Name: "iso8601-compact-offset", Parse: layout("2006-01-02T15:04:05.999999999Z0700")},
	{Name: "iso8601-local", Parse: layout("2006-01-02T15:04:05.999999999")},
	{Name: "sql-datetime", Parse: layout("2006-01-02 15:04:05")},
	{Name: "iso-date", Parse: layout("2006-01-02")},
	{Name: "dd.MM.yyyy HH:mm", Parse: dayFirst(dayFirstLongTime)},
	{Name: "dd.MM.yyyy", Parse: dayFirst(dayFirstLong)},
	{Name: "dd.MM.yy HH:mm", Parse: dayFirst(dayFirstShortTime)},
	{Name: "dd.MM.yy", Parse: dayFirst(dayFirstShort)},
}

type Parser struct {
	strategies []Strategy
	loc        *time.Location
}

// NewParser builds a parser over strategies (DefaultStrategies when empty).
// Zone-less inputs are read in loc.
func NewParser(loc *time.Location, strategies ...Strategy) *Parser {
	if loc == nil {
		loc = time.Local
	}
	if len(strategies) == 0 {
		strategies = DefaultStrategies
	}
	return &Parser{strategies: strategies, loc: loc}
}

// Parse returns the first successful interpretation of s.
func (p *Parser) Parse(s string) (time.Time, bool) {
	t, _, ok := p.ParseNamed(s)
	return t, ok
}

// ParseNamed also reports which strategy matched.
func (p *Parser) ParseNamed(s string) (time.Time, string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, "", false
	}
	for _, st := range p.strategies {
		if t, ok := st.Parse(s, p.loc); ok {
			return t, st.Name, true
		}
	}
	return time.Time{}, "", false
}

func (p *Parser) Location() *time.Location {
	return p.loc
}

var defaultParser = NewParser(time.Local)

// Parse uses DefaultStrategies in the local zone.
func Parse(s string) (time.Time, bool) {
	return defaultParser.Parse(s)
}

// Day is midnight of t's date in t's own location. Convert t first when
// dates from different offsets must share a day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

var monthsGenitive = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

// DayTitle renders a day header like "1 февраля 2024".
func DayTitle(t time.Time) string {
	return strconv.Itoa(t.Day()) + " " + monthsGenitive[t.Month()-1] + " " + strconv.Itoa(t.Year())
}
