package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/studentaffairs/leave-engine/engine"
)

func TestExpandWindow_InclusiveAscending(t *testing.T) {
	// GIVEN: a Friday-to-Monday window
	// WHEN: expanding it
	// THEN: both endpoints and the weekend in between, in order
	days := engine.ExpandWindow(date(2025, time.March, 7), date(2025, time.March, 10))

	assert.Equal(t, []time.Time{
		date(2025, time.March, 7),
		date(2025, time.March, 8),
		date(2025, time.March, 9),
		date(2025, time.March, 10),
	}, days)
}

func TestExpandWindow_SingleDay(t *testing.T) {
	days := engine.ExpandWindow(date(2025, time.March, 7), date(2025, time.March, 7))
	assert.Equal(t, []time.Time{date(2025, time.March, 7)}, days)
}

func TestExpandWindow_ReversedRangeIsEmpty(t *testing.T) {
	days := engine.ExpandWindow(date(2025, time.March, 10), date(2025, time.March, 7))
	assert.Empty(t, days)
}

func TestExpandWindow_DropsTimeOfDay(t *testing.T) {
	start := time.Date(2025, time.March, 7, 14, 30, 0, 0, time.UTC)
	end := time.Date(2025, time.March, 8, 9, 0, 0, 0, time.UTC)

	days := engine.ExpandWindow(start, end)
	assert.Equal(t, []time.Time{
		date(2025, time.March, 7),
		date(2025, time.March, 8),
	}, days)
}

func TestDayBounds_ThreeDayLeave(t *testing.T) {
	// GIVEN: Monday-Wednesday leave, start period 5, end period 2
	mon := date(2025, time.March, 3)
	wed := date(2025, time.March, 5)

	check := func(day time.Time, wantLow, wantHigh int) {
		low, high := engine.DayBounds(day, mon, wed, 5, 2)
		assert.Equal(t, wantLow, low)
		assert.Equal(t, wantHigh, high)
	}

	check(mon, 5, 12)                         // first day: rest of day
	check(date(2025, time.March, 4), 1, 12)   // interior: full day
	check(wed, 1, 2)                          // last day: up to end period
}

func TestDayBounds_SingleDayLeave(t *testing.T) {
	day := date(2025, time.March, 3)
	low, high := engine.DayBounds(day, day, day, 3, 6)

	assert.Equal(t, 3, low)
	assert.Equal(t, 6, high)
}

func TestDayBounds_MissingEndPeriodDefaultsToLastPeriod(t *testing.T) {
	day := date(2025, time.March, 3)
	low, high := engine.DayBounds(day, day, day, 3, 0)

	assert.Equal(t, 3, low)
	assert.Equal(t, engine.LastPeriod, high)
}

func TestWindow_Valid(t *testing.T) {
	ok := engine.Window{Start: date(2025, 3, 3), End: date(2025, 3, 5), StartPeriod: 1}
	assert.True(t, ok.Valid())

	reversed := engine.Window{Start: date(2025, 3, 5), End: date(2025, 3, 3), StartPeriod: 1}
	assert.False(t, reversed.Valid())

	zeroStart := engine.Window{Start: date(2025, 3, 3), End: date(2025, 3, 5), StartPeriod: 0}
	assert.False(t, zeroStart.Valid())

	badEnd := engine.Window{Start: date(2025, 3, 3), End: date(2025, 3, 5), StartPeriod: 1, EndPeriod: 13}
	assert.False(t, badEnd.Valid())
}
