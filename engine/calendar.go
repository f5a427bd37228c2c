package engine

import "time"

// =============================================================================
// ACADEMIC CALENDAR - date to (year, semester) under the ROC convention
// =============================================================================

// ResolveTerm maps a calendar date to its academic term.
//
// The academic year is the ROC (Minguo) year of the term's starting
// Gregorian year: dates in January through June belong to the term that
// started the previous fall, so they resolve to year-1912; July onward
// resolves to year-1911. The second semester spans February through
// August; everything else is the first semester.
//
// The formula is total: any date resolves to some term. Rejecting dates
// that predate the institution is the caller's concern.
func ResolveTerm(date time.Time) Term {
	year := date.Year()
	month := date.Month()

	t := Term{Semester: 1}
	if month >= time.January && month <= time.June {
		t.Year = year - 1912
	} else {
		t.Year = year - 1911
	}
	if month >= time.February && month <= time.August {
		t.Semester = 2
	}
	return t
}

// containingTerm maps a date to the term that chronologically contains
// it: September through January is the first semester, February through
// August the second. Unlike ResolveTerm it is monotonic across the
// summer boundary (August sorts before the following September), which
// is what term enumeration needs; ResolveTerm tags July/August records
// into the upcoming academic year instead.
func containingTerm(date time.Time) Term {
	year := date.Year()
	switch month := date.Month(); {
	case month >= time.September:
		return Term{Year: year - 1911, Semester: 1}
	case month == time.January:
		return Term{Year: year - 1912, Semester: 1}
	default:
		return Term{Year: year - 1912, Semester: 2}
	}
}

// TermsBetween enumerates every term from the term containing from up to
// and including the term containing to, in chronological order. Used to
// report per-term leave history starting at a student's enrollment date.
// Returns nil when to precedes from's term.
func TermsBetween(from, to time.Time) []Term {
	first := containingTerm(from)
	last := containingTerm(to)

	var terms []Term
	for t := first; !t.After(last); t = t.Next() {
		terms = append(terms, t)
	}
	return terms
}

// Next returns the term immediately following t.
func (t Term) Next() Term {
	if t.Semester == 1 {
		return Term{Year: t.Year, Semester: 2}
	}
	return Term{Year: t.Year + 1, Semester: 1}
}

// After reports whether t is strictly later than other.
func (t Term) After(other Term) bool {
	if t.Year != other.Year {
		return t.Year > other.Year
	}
	return t.Semester > other.Semester
}
