package stats

import (
	"fmt"
	"sort"

	"github.com/Khaldybek/habit-tracker/internal"
)

// Period selects the bucketing granularity for trend computation.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// BucketKey maps a check-in date to its bucket key: the calendar date for
// day, "YYYY-Www" for ISO week, "YYYY-MM" for month. Unknown periods fall
// back to daily. Keys are zero-padded so lexical order is chronological.
func BucketKey(date string, period Period) string {
	day, ok := parseDay(date)
	if !ok {
		return date
	}
	switch period {
	case PeriodWeek:
		year, week := day.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case PeriodMonth:
		return day.Format("2006-01")
	default:
		return day.Format(internal.DateLayout)
	}
}

// Bucket accumulates one period's counts and moods.
type Bucket struct {
	Total     int   `json:"total"`
	Completed int   `json:"completed"`
	Moods     []int `json:"mood"`
}

// GroupByPeriod buckets check-ins by period key. The returned key slice is
// sorted chronologically; callers must iterate it rather than the map.
func GroupByPeriod(checkIns []internal.CheckIn, period Period) ([]string, map[string]*Bucket) {
	buckets := make(map[string]*Bucket)
	var keys []string
	for _, c := range checkIns {
		key := BucketKey(c.Date, period)
		b, ok := buckets[key]
		if !ok {
			b = &Bucket{}
			buckets[key] = b
			keys = append(keys, key)
		}
		b.Total++
		if c.Status.Completed() {
			b.Completed++
		}
		if c.Mood != nil {
			b.Moods = append(b.Moods, *c.Mood)
		}
	}
	sort.Strings(keys)
	return keys, buckets
}

// TrendSeries carries one value per bucket in chronological order. The mood
// series only has entries for buckets that saw at least one mood.
type TrendSeries struct {
	CompletionRate []float64 `json:"completionRate"`
	Mood           []float64 `json:"mood"`
}

func Trends(checkIns []internal.CheckIn, period Period) TrendSeries {
	keys, buckets := GroupByPeriod(checkIns, period)
	trends := TrendSeries{
		CompletionRate: make([]float64, 0, len(keys)),
		Mood:           make([]float64, 0, len(keys)),
	}
	for _, key := range keys {
		b := buckets[key]
		trends.CompletionRate = append(trends.CompletionRate, float64(b.Completed)/float64(b.Total)*100)
		if len(b.Moods) > 0 {
			sum := 0
			for _, m := range b.Moods {
				sum += m
			}
			trends.Mood = append(trends.Mood, float64(sum)/float64(len(b.Moods)))
		}
	}
	return trends
}
