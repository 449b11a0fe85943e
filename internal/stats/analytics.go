package stats

import (
	"sort"
	"time"

	"github.com/Khaldybek/habit-tracker/internal"
)

// CategoryTotals counts logged and completed check-ins for one category.
type CategoryTotals struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

// CategoryBreakdown tallies check-ins per habit category. Category
// membership comes from the habit record, not the check-in.
func CategoryBreakdown(habits []internal.Habit, checkIns []internal.CheckIn) map[internal.Category]CategoryTotals {
	byHabit := groupByHabit(checkIns)
	breakdown := make(map[internal.Category]CategoryTotals)
	for _, h := range habits {
		totals := breakdown[h.Category]
		habitCheckIns := byHabit[h.ID]
		totals.Total += len(habitCheckIns)
		totals.Completed += CompletedCount(habitCheckIns)
		breakdown[h.Category] = totals
	}
	return breakdown
}

// MoodPoint is the average mood across all habits for one calendar day.
type MoodPoint struct {
	Date        string  `json:"date"`
	AverageMood float64 `json:"averageMood"`
}

// MoodTrendByDay averages moods per calendar date, sorted chronologically.
func MoodTrendByDay(checkIns []internal.CheckIn) []MoodPoint {
	type acc struct {
		sum   int
		count int
	}
	byDay := make(map[string]*acc)
	for _, c := range checkIns {
		if c.Mood == nil {
			continue
		}
		a, ok := byDay[c.Date]
		if !ok {
			a = &acc{}
			byDay[c.Date] = a
		}
		a.sum += *c.Mood
		a.count++
	}
	points := make([]MoodPoint, 0, len(byDay))
	for date, a := range byDay {
		points = append(points, MoodPoint{
			Date:        date,
			AverageMood: float64(a.sum) / float64(a.count),
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}

// StreakEntry pairs a habit with its current streak.
type StreakEntry struct {
	HabitID       string `json:"habitId"`
	Title         string `json:"title"`
	CurrentStreak int    `json:"currentStreak"`
}

// AllStreaks lists the current streak of every habit.
func AllStreaks(habits []internal.Habit, checkIns []internal.CheckIn, now time.Time) []StreakEntry {
	byHabit := groupByHabit(checkIns)
	entries := make([]StreakEntry, 0, len(habits))
	for _, h := range habits {
		entries = append(entries, StreakEntry{
			HabitID:       h.ID,
			Title:         h.Title,
			CurrentStreak: CurrentStreak(byHabit[h.ID], now),
		})
	}
	return entries
}

// ProductivityScore blends completion rate, average current streak and
// average mood with fixed weights. The terms are deliberately left on their
// native scales (percentage, day count, 1..5) to stay compatible with the
// historical formula; rescaling is a product decision, not a bug fix.
func ProductivityScore(habits []internal.Habit, checkIns []internal.CheckIn, now time.Time) float64 {
	if len(habits) == 0 {
		return 0
	}
	const (
		weightCompletion = 0.4
		weightStreak     = 0.3
		weightMood       = 0.3
	)

	completionRate := CompletionRate(checkIns)

	byHabit := groupByHabit(checkIns)
	streakSum := 0
	for _, h := range habits {
		streakSum += CurrentStreak(byHabit[h.ID], now)
	}
	averageStreak := float64(streakSum) / float64(len(habits))

	averageMood := 0.0
	if m := MoodAverage(checkIns); m != nil {
		averageMood = *m
	}

	return completionRate*weightCompletion + averageStreak*weightStreak + averageMood*weightMood
}

func groupByHabit(checkIns []internal.CheckIn) map[string][]internal.CheckIn {
	byHabit := make(map[string][]internal.CheckIn)
	for _, c := range checkIns {
		byHabit[c.HabitID] = append(byHabit[c.HabitID], c)
	}
	return byHabit
}
