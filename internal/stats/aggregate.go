package stats

import (
	"time"

	"github.com/Khaldybek/habit-tracker/internal"
)

// moodScale maps the qualitative mood labels some clients send onto the
// numeric 1..5 scale stored on check-ins.
var moodScale = map[string]int{
	"terrible": 1,
	"bad":      2,
	"neutral":  3,
	"good":     4,
	"great":    5,
}

// MoodFromLabel converts a qualitative mood label to its numeric value.
func MoodFromLabel(label string) (int, bool) {
	v, ok := moodScale[label]
	return v, ok
}

// CompletedCount counts check-ins whose status is truthy.
func CompletedCount(checkIns []internal.CheckIn) int {
	completed := 0
	for _, c := range checkIns {
		if c.Status.Completed() {
			completed++
		}
	}
	return completed
}

// CompletionRate is completed/total*100 over logged check-ins, not over
// elapsed calendar days. Zero when the set is empty.
func CompletionRate(checkIns []internal.CheckIn) float64 {
	if len(checkIns) == 0 {
		return 0
	}
	return float64(CompletedCount(checkIns)) / float64(len(checkIns)) * 100
}

// MoodAverage is the mean over check-ins that carry a mood value, nil when
// none do.
func MoodAverage(checkIns []internal.CheckIn) *float64 {
	sum := 0
	count := 0
	for _, c := range checkIns {
		if c.Mood != nil {
			sum += *c.Mood
			count++
		}
	}
	if count == 0 {
		return nil
	}
	avg := float64(sum) / float64(count)
	return &avg
}

// DurationStats summarizes durations over check-ins that carry one.
// All fields are nil when no check-in has a duration.
type DurationStats struct {
	Average *float64 `json:"average"`
	Max     *float64 `json:"max"`
	Min     *float64 `json:"min"`
}

func Durations(checkIns []internal.CheckIn) DurationStats {
	var sum float64
	var max, min *float64
	count := 0
	for _, c := range checkIns {
		if c.Duration == nil {
			continue
		}
		d := *c.Duration
		sum += d
		count++
		if max == nil || d > *max {
			v := d
			max = &v
		}
		if min == nil || d < *min {
			v := d
			min = &v
		}
	}
	if count == 0 {
		return DurationStats{}
	}
	avg := sum / float64(count)
	return DurationStats{Average: &avg, Max: max, Min: min}
}

// Compute recomputes the full denormalized stats block for one habit's
// check-in set. This is the single source of truth for the five-field block
// written back onto the habit record.
func Compute(checkIns []internal.CheckIn, now time.Time) internal.HabitStats {
	return internal.HabitStats{
		TotalCheckIns:     len(checkIns),
		CompletedCheckIns: CompletedCount(checkIns),
		CompletionRate:    CompletionRate(checkIns),
		CurrentStreak:     CurrentStreak(checkIns, now),
		LongestStreak:     LongestStreak(checkIns),
	}
}
