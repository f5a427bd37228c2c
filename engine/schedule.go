package engine

import (
	"regexp"
	"sort"
	"time"
)

// =============================================================================
// WEEKLY SCHEDULE - decoding the course-time string format
// =============================================================================

// WeeklySchedule maps a weekday to the distinct, ascending periods a
// course meets on that day.
type WeeklySchedule map[time.Weekday][]int

// Weekday marker characters used by the schedule-string format. These are
// process-wide constants; never rebuilt per call.
var weekdayMarks = map[rune]time.Weekday{
	'一': time.Monday,
	'二': time.Tuesday,
	'三': time.Wednesday,
	'四': time.Thursday,
	'五': time.Friday,
	'六': time.Saturday,
	'日': time.Sunday,
}

var weekdayLabels = map[time.Weekday]rune{
	time.Monday:    '一',
	time.Tuesday:   '二',
	time.Wednesday: '三',
	time.Thursday:  '四',
	time.Friday:    '五',
	time.Saturday:  '六',
	time.Sunday:    '日',
}

// schedulePattern matches one "(weekday)periods" token, e.g. "(三)34".
// Each digit of the periods group is an independent period number.
var schedulePattern = regexp.MustCompile(`\(([一二三四五六日])\)([0-9]+)`)

// WeekdayLabel returns the marker character for a weekday, as used in
// schedule strings and in preview responses.
func WeekdayLabel(d time.Weekday) string {
	return string(weekdayLabels[d])
}

// DecodeSchedule parses a course's recurring-schedule string into a
// weekday -> periods mapping.
//
// The primary pass scans for "(W)digits" tokens. If the string contains
// none, a character scan takes over: it tracks the most recently seen
// bracketed weekday marker and assigns subsequent digits to it. A string
// with no recognizable structure decodes to an empty mapping — the course
// is treated as unscheduled, never as an error.
func DecodeSchedule(s string) WeeklySchedule {
	if s == "" {
		return WeeklySchedule{}
	}

	seen := make(map[time.Weekday]map[int]bool)

	matches := schedulePattern.FindAllStringSubmatch(s, -1)
	if len(matches) > 0 {
		for _, m := range matches {
			day := weekdayMarks[[]rune(m[1])[0]]
			for _, c := range m[2] {
				addPeriod(seen, day, int(c-'0'))
			}
		}
	} else {
		// Fallback: no well-formed tokens. Walk the runes keeping an
		// "open weekday bracket" state so partially bracketed strings
		// still decode.
		var current time.Weekday
		haveDay := false
		inParens := false
		for _, c := range s {
			switch {
			case c == '(':
				inParens = true
			case c == ')':
				inParens = false
			case inParens:
				if day, ok := weekdayMarks[c]; ok {
					current = day
					haveDay = true
				}
			case haveDay && c >= '0' && c <= '9':
				addPeriod(seen, current, int(c-'0'))
			}
		}
	}

	schedule := make(WeeklySchedule, len(seen))
	for day, periods := range seen {
		list := make([]int, 0, len(periods))
		for p := range periods {
			list = append(list, p)
		}
		sort.Ints(list)
		schedule[day] = list
	}
	return schedule
}

func addPeriod(seen map[time.Weekday]map[int]bool, day time.Weekday, period int) {
	if seen[day] == nil {
		seen[day] = make(map[int]bool)
	}
	seen[day][period] = true
}
