package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/finance_bot/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jakarta(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	return loc
}

func TestWindowFor(t *testing.T) {
	loc := jakarta(t)
	at := func(y int, m time.Month, d, h int) time.Time {
		return time.Date(y, m, d, h, 0, 0, 0, loc)
	}

	tests := []struct {
		name         string
		period       domain.Period
		now          time.Time
		dayStartHour int
		wantStart    time.Time
		wantEnd      time.Time
	}{
		{
			name:      "today at midnight boundary",
			period:    domain.Today,
			now:       at(2025, time.July, 14, 18),
			wantStart: at(2025, time.July, 14, 0),
			wantEnd:   at(2025, time.July, 15, 0),
		},
		{
			name:         "today with seven o'clock boundary after start",
			period:       domain.Today,
			now:          at(2025, time.July, 14, 18),
			dayStartHour: 7,
			wantStart:    at(2025, time.July, 14, 7),
			wantEnd:      at(2025, time.July, 15, 7),
		},
		{
			name:         "today with seven o'clock boundary before start",
			period:       domain.Today,
			now:          at(2025, time.July, 14, 5),
			dayStartHour: 7,
			wantStart:    at(2025, time.July, 13, 7),
			wantEnd:      at(2025, time.July, 14, 7),
		},
		{
			name:      "week from a Monday",
			period:    domain.Week,
			now:       at(2025, time.July, 14, 9),
			wantStart: at(2025, time.July, 14, 0),
			wantEnd:   at(2025, time.July, 21, 0),
		},
		{
			name:      "week from a Sunday",
			period:    domain.Week,
			now:       at(2025, time.July, 20, 23),
			wantStart: at(2025, time.July, 14, 0),
			wantEnd:   at(2025, time.July, 21, 0),
		},
		{
			name:      "month in December rolls the year",
			period:    domain.Month,
			now:       at(2025, time.December, 31, 23),
			wantStart: at(2025, time.December, 1, 0),
			wantEnd:   at(2026, time.January, 1, 0),
		},
		{
			name:      "now given in UTC is evaluated in the reference zone",
			period:    domain.Today,
			now:       time.Date(2025, time.July, 14, 20, 0, 0, 0, time.UTC), // 03:00 on the 15th in Jakarta
			wantStart: at(2025, time.July, 15, 0),
			wantEnd:   at(2025, time.July, 16, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := domain.WindowFor(tt.period, tt.now, loc, tt.dayStartHour)
			require.NoError(t, err)
			assert.True(t, tt.wantStart.Equal(w.Start), "start: want %s got %s", tt.wantStart, w.Start)
			assert.True(t, tt.wantEnd.Equal(w.End), "end: want %s got %s", tt.wantEnd, w.End)
		})
	}
}

func TestWindowFor_Errors(t *testing.T) {
	loc := jakarta(t)
	now := time.Now()

	_, err := domain.WindowFor(domain.Today, now, nil, 0)
	assert.Error(t, err)

	_, err = domain.WindowFor(domain.Today, now, loc, 24)
	assert.Error(t, err)

	_, err = domain.WindowFor(domain.Period("YEAR"), now, loc, 0)
	assert.Error(t, err)
}

func TestWindow_ContainsIsEndExclusive(t *testing.T) {
	loc := jakarta(t)
	start := time.Date(2025, time.July, 14, 0, 0, 0, 0, loc)
	w := domain.Window{Start: start, End: start.AddDate(0, 0, 1)}

	assert.True(t, w.Contains(start))
	assert.True(t, w.Contains(w.End.Add(-time.Nanosecond)))
	assert.False(t, w.Contains(w.End))
	assert.False(t, w.Contains(start.Add(-time.Second)))
}

func TestParsePeriod(t *testing.T) {
	p, err := domain.ParsePeriod("week")
	require.NoError(t, err)
	assert.Equal(t, domain.Week, p)

	_, err = domain.ParsePeriod("fortnight")
	assert.Error(t, err)
}
