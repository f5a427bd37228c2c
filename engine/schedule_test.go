package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/studentaffairs/leave-engine/engine"
)

func TestDecodeSchedule_BracketedTokens(t *testing.T) {
	schedule := engine.DecodeSchedule("(一)12(三)3")

	assert.Len(t, schedule, 2)
	assert.Equal(t, []int{1, 2}, schedule[time.Monday])
	assert.Equal(t, []int{3}, schedule[time.Wednesday])
}

func TestDecodeSchedule_EmptyInput(t *testing.T) {
	assert.Empty(t, engine.DecodeSchedule(""))
}

func TestDecodeSchedule_NoStructure(t *testing.T) {
	// Free text with no weekday markers decodes to an unscheduled course,
	// never an error.
	assert.Empty(t, engine.DecodeSchedule("時間另訂"))
	assert.Empty(t, engine.DecodeSchedule("TBA"))
}

func TestDecodeSchedule_DuplicatePeriodsCollapse(t *testing.T) {
	// The same weekday token repeated, with repeated digits, still yields
	// one distinct set.
	schedule := engine.DecodeSchedule("(一)11(一)12")

	assert.Len(t, schedule, 1)
	assert.Equal(t, []int{1, 2}, schedule[time.Monday])
}

func TestDecodeSchedule_PeriodsSortedAscending(t *testing.T) {
	schedule := engine.DecodeSchedule("(五)4213")
	assert.Equal(t, []int{1, 2, 3, 4}, schedule[time.Friday])
}

func TestDecodeSchedule_FallbackScan(t *testing.T) {
	// GIVEN: a string whose bracket contents don't form a "(W)digits" token
	// WHEN: the regex pass finds nothing
	// THEN: the character scan still pairs digits with the open weekday
	schedule := engine.DecodeSchedule("(星期一)12")

	assert.Len(t, schedule, 1)
	assert.Equal(t, []int{1, 2}, schedule[time.Monday])
}

func TestDecodeSchedule_FallbackMultipleDays(t *testing.T) {
	schedule := engine.DecodeSchedule("(第一週起 三)34(星期五)6")

	assert.Equal(t, []int{3, 4}, schedule[time.Wednesday])
	assert.Equal(t, []int{6}, schedule[time.Friday])
}

func TestWeekdayLabel_RoundTrip(t *testing.T) {
	labels := map[time.Weekday]string{
		time.Monday:    "一",
		time.Tuesday:   "二",
		time.Wednesday: "三",
		time.Thursday:  "四",
		time.Friday:    "五",
		time.Saturday:  "六",
		time.Sunday:    "日",
	}
	for day, want := range labels {
		assert.Equal(t, want, engine.WeekdayLabel(day))
	}
}
