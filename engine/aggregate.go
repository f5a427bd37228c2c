package engine

import (
	"sort"
	"time"
)

// =============================================================================
// CONFLICT AGGREGATION - the one shared implementation
// =============================================================================

// Aggregate computes, for every enrolled course, which class meetings fall
// inside the leave window. The result has one bucket per (course, date)
// with the affected periods distinct and ascending, sorted by date then
// course ID.
//
// Courses whose schedule string decodes to nothing are skipped silently:
// they can never conflict, and a malformed schedule is not the student's
// error to see. Merging is idempotent, so feeding the same course twice
// cannot double-count periods.
func Aggregate(w Window, courses []Course) []CourseDayBucket {
	days := w.Days()
	if len(days) == 0 {
		return nil
	}

	type bucketKey struct {
		courseID string
		date     time.Time
	}
	merged := make(map[bucketKey]map[int]bool)
	names := make(map[string]string)

	for _, course := range courses {
		schedule := DecodeSchedule(course.Schedule)
		if len(schedule) == 0 {
			continue
		}
		names[course.ID] = course.Name

		for _, day := range days {
			periods := schedule[day.Weekday()]
			if len(periods) == 0 {
				continue
			}

			low, high := w.Bounds(day)
			for _, p := range periods {
				if p < low || p > high {
					continue
				}
				k := bucketKey{courseID: course.ID, date: day}
				if merged[k] == nil {
					merged[k] = make(map[int]bool)
				}
				merged[k][p] = true
			}
		}
	}

	buckets := make([]CourseDayBucket, 0, len(merged))
	for k, set := range merged {
		periods := make([]int, 0, len(set))
		for p := range set {
			periods = append(periods, p)
		}
		sort.Ints(periods)
		buckets = append(buckets, CourseDayBucket{
			CourseID:   k.courseID,
			CourseName: names[k.courseID],
			Date:       k.date,
			Periods:    periods,
		})
	}

	sort.Slice(buckets, func(i, j int) bool {
		if !buckets[i].Date.Equal(buckets[j].Date) {
			return buckets[i].Date.Before(buckets[j].Date)
		}
		return buckets[i].CourseID < buckets[j].CourseID
	})
	return buckets
}

// TotalHours reduces aggregated buckets to the total affected period
// count. One period is one leave hour; there is no duration weighting.
func TotalHours(buckets []CourseDayBucket) int {
	total := 0
	for _, b := range buckets {
		total += len(b.Periods)
	}
	return total
}
