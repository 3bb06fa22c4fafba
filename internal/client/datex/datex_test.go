package datex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_Table(t *testing.T) {
	msk := time.FixedZone("MSK", 3*3600)
	p := NewParser(msk)

	tests := []struct {
		in       string
		want     time.Time
		strategy string
	}{
		{"2024-02-01T10:30:00.123Z", time.Date(2024, 2, 1, 10, 30, 0, 123000000, time.UTC), "iso8601-fractional"},
		{"2024-02-01T10:30:00+03:00", time.Date(2024, 2, 1, 10, 30, 0, 0, msk), "iso8601-fractional"},
		{"2024-02-01T10:30:00.5+0300", time.Date(2024, 2, 1, 10, 30, 0, 500000000, msk), "iso8601-compact-offset"},
		{"2024-02-01T10:30:00", time.Date(2024, 2, 1, 10, 30, 0, 0, msk), "iso8601-local"},
		{"2024-02-01 10:30:00", time.Date(2024, 2, 1, 10, 30, 0, 0, msk), "sql-datetime"},
		{"2024-02-01", time.Date(2024, 2, 1, 0, 0, 0, 0, msk), "iso-date"},
		{"01.02.2024 09:15", time.Date(2024, 2, 1, 9, 15, 0, 0, msk), "dd.MM.yyyy HH:mm"},
		{"01.02.2024", time.Date(2024, 2, 1, 12, 0, 0, 0, msk), "dd.MM.yyyy"},
		{"02.02.24 18:05", time.Date(2024, 2, 2, 18, 5, 0, 0, msk), "dd.MM.yy HH:mm"},
		{"01.02.24", time.Date(2024, 2, 1, 12, 0, 0, 0, msk), "dd.MM.yy"},
		{"Заседание назначено на 05.03.24", time.Date(2024, 3, 5, 12, 0, 0, 0, msk), "dd.MM.yy"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, name, ok := p.ParseNamed(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.strategy, name)
			assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
		})
	}
}

func TestParser_Rejects(t *testing.T) {
	p := NewParser(time.UTC)
	for _, in := range []string{"", "   ", "вчера", "31.02.24", "01.13.2024", "99.99.99", "2024-13-01"} {
		_, ok := p.Parse(in)
		assert.False(t, ok, in)
	}
}

func TestParser_CustomStrategiesOrder(t *testing.T) {
	first := Strategy{Name: "always-epoch", Parse: func(string, *time.Location) (time.Time, bool) {
		return time.Unix(0, 0), true
	}}
	p := NewParser(time.UTC, first)

	got, name, ok := p.ParseNamed("01.02.24")
	require.True(t, ok)
	assert.Equal(t, "always-epoch", name)
	assert.Equal(t, int64(0), got.Unix())
}

func TestDayAndTitle(t *testing.T) {
	in := time.Date(2024, 2, 1, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Day(in))
	assert.Equal(t, "1 февраля 2024", DayTitle(in))
}
