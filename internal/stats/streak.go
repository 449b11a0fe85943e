// Package stats computes habit statistics over in-memory check-in sets.
// Everything here is a pure function of its inputs: no I/O, no hidden
// state. Callers decide when to invoke and persist results.
package stats

import (
	"sort"
	"time"

	"github.com/Khaldybek/habit-tracker/internal"
)

// dayOf truncates t to midnight UTC so day differences come out exact.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func parseDay(date string) (time.Time, bool) {
	d, err := time.ParseInLocation(internal.DateLayout, date, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func daysBetween(later, earlier time.Time) int {
	return int(later.Sub(earlier).Hours() / 24)
}

// dedupeByDate keeps one check-in per calendar date, preferring the most
// recently created record. Uniqueness is enforced upstream, but a duplicate
// slipping through must not double-count a day in a streak walk.
func dedupeByDate(checkIns []internal.CheckIn) []internal.CheckIn {
	seen := make(map[string]internal.CheckIn, len(checkIns))
	for _, c := range checkIns {
		if prev, ok := seen[c.Date]; ok && !c.CreatedAt.After(prev.CreatedAt) {
			continue
		}
		seen[c.Date] = c
	}
	out := make([]internal.CheckIn, 0, len(seen))
	for _, c := range seen {
		out = append(out, c)
	}
	return out
}

// CurrentStreak counts consecutive completed days ending at or adjacent to
// now. The walk runs date-descending from today; a step of 0 or 1 days
// extends the streak (today may not be checked in yet, and one day of
// measurement lag is tolerated), anything larger is a gap and stops it.
func CurrentStreak(checkIns []internal.CheckIn, now time.Time) int {
	if len(checkIns) == 0 {
		return 0
	}
	checkIns = dedupeByDate(checkIns)
	sort.Slice(checkIns, func(i, j int) bool {
		return checkIns[i].Date > checkIns[j].Date
	})

	streak := 0
	cursor := dayOf(now)
	for _, c := range checkIns {
		if !c.Status.Completed() {
			break
		}
		day, ok := parseDay(c.Date)
		if !ok {
			break
		}
		diff := daysBetween(cursor, day)
		if diff == 0 || diff == 1 {
			streak++
			cursor = day
		} else {
			break
		}
	}
	return streak
}

// LongestStreak finds the longest run of consecutive completed days anywhere
// in the history. A not-completed entry resets the run; a date gap larger
// than one day restarts it at 1.
func LongestStreak(checkIns []internal.CheckIn) int {
	if len(checkIns) == 0 {
		return 0
	}
	checkIns = dedupeByDate(checkIns)
	sort.Slice(checkIns, func(i, j int) bool {
		return checkIns[i].Date < checkIns[j].Date
	})

	current := 0
	longest := 0
	var lastDay time.Time
	haveLast := false
	for _, c := range checkIns {
		if !c.Status.Completed() {
			current = 0
			haveLast = false
			continue
		}
		day, ok := parseDay(c.Date)
		if !ok {
			continue
		}
		if haveLast && daysBetween(day, lastDay) == 1 {
			current++
		} else {
			current = 1
		}
		if current > longest {
			longest = current
		}
		lastDay = day
		haveLast = true
	}
	return longest
}
