package engine

import "time"

// =============================================================================
// LEAVE WINDOW - date expansion and per-day period bounds
// =============================================================================

// ExpandWindow returns every calendar day from start to end inclusive,
// ascending, weekends included. Returns nil when end precedes start;
// callers reject that case before running the rest of the engine.
func ExpandWindow(start, end time.Time) []time.Time {
	from := DateOnly(start)
	to := DateOnly(end)

	var days []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// DayBounds resolves the effective [low, high] period bound for one date
// inside a leave window. The requested periods only constrain the
// window's first and last day; interior days are full-day absences.
//
//	single-day leave:  [startPeriod, endPeriod]
//	first day:         [startPeriod, LastPeriod]
//	last day:          [FirstPeriod, endPeriod]
//	interior day:      [FirstPeriod, LastPeriod]
//
// An endPeriod of zero means the leave runs to the end of its last day.
func DayBounds(date, start, end time.Time, startPeriod, endPeriod int) (low, high int) {
	if endPeriod == 0 {
		endPeriod = LastPeriod
	}

	d := DateOnly(date)
	onStart := d.Equal(DateOnly(start))
	onEnd := d.Equal(DateOnly(end))

	switch {
	case onStart && onEnd:
		return startPeriod, endPeriod
	case onStart:
		return startPeriod, LastPeriod
	case onEnd:
		return FirstPeriod, endPeriod
	default:
		return FirstPeriod, LastPeriod
	}
}

// Bounds resolves the per-day bound for a date within the window.
func (w Window) Bounds(date time.Time) (low, high int) {
	return DayBounds(date, w.Start, w.End, w.StartPeriod, w.EndPeriod)
}

// Days expands the window into its calendar days.
func (w Window) Days() []time.Time {
	return ExpandWindow(w.Start, w.End)
}

// Valid reports whether the window is well-formed: a non-reversed date
// range and a start period inside the teaching day.
func (w Window) Valid() bool {
	if DateOnly(w.End).Before(DateOnly(w.Start)) {
		return false
	}
	if w.StartPeriod < FirstPeriod || w.StartPeriod > LastPeriod {
		return false
	}
	if w.EndPeriod != 0 && (w.EndPeriod < FirstPeriod || w.EndPeriod > LastPeriod) {
		return false
	}
	return true
}
