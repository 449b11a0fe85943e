package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Khaldybek/habit-tracker/internal"
	"github.com/Khaldybek/habit-tracker/internal/stats"
	"github.com/Khaldybek/habit-tracker/internal/storage"
)

type HabitSummary struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Category internal.Category `json:"category"`
}

type HabitStatsDetail struct {
	Total          int                      `json:"total"`
	Completed      int                      `json:"completed"`
	CompletionRate float64                  `json:"completionRate"`
	Streak         int                      `json:"streak"`
	LongestStreak  int                      `json:"longestStreak"`
	AverageMood    *float64                 `json:"averageMood"`
	Duration       stats.DurationStats      `json:"duration"`
	Periods        []string                 `json:"periods"`
	ByPeriod       map[string]*stats.Bucket `json:"byPeriod"`
	Trends         stats.TrendSeries        `json:"trends"`
}

type HabitStatsResult struct {
	Habit    HabitSummary       `json:"habit"`
	Stats    HabitStatsDetail   `json:"stats"`
	CheckIns []internal.CheckIn `json:"checkIns"`
}

// filterByDateRange keeps check-ins inside [startDate, endDate] inclusive.
// Empty bounds are open; dates compare lexically at day granularity.
func filterByDateRange(checkIns []internal.CheckIn, startDate, endDate string) []internal.CheckIn {
	if startDate == "" && endDate == "" {
		return checkIns
	}
	filtered := make([]internal.CheckIn, 0, len(checkIns))
	for _, c := range checkIns {
		if startDate != "" && c.Date < startDate {
			continue
		}
		if endDate != "" && c.Date > endDate {
			continue
		}
		filtered = append(filtered, c)
	}
	return filtered
}

// GetHabitStats composes the per-habit analytics view: summary counters,
// streaks, mood and duration aggregates, period buckets and trend series.
func GetHabitStats(ctx context.Context, habitRepo storage.HabitRepository, checkInRepo storage.CheckInRepository, user *internal.User, habitID, startDate, endDate string, period stats.Period) (*HabitStatsResult, error) {
	habit, err := habitRepo.GetHabit(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != user.ID {
		return nil, storage.ErrNotFound
	}

	checkIns, err := checkInRepo.ListCheckInsByHabit(ctx, habitID)
	if err != nil {
		return nil, err
	}
	checkIns = filterByDateRange(checkIns, startDate, endDate)
	sort.Slice(checkIns, func(i, j int) bool { return checkIns[i].Date < checkIns[j].Date })

	now := time.Now()
	keys, buckets := stats.GroupByPeriod(checkIns, period)
	return &HabitStatsResult{
		Habit: HabitSummary{ID: habit.ID, Title: habit.Title, Category: habit.Category},
		Stats: HabitStatsDetail{
			Total:          len(checkIns),
			Completed:      stats.CompletedCount(checkIns),
			CompletionRate: stats.CompletionRate(checkIns),
			Streak:         stats.CurrentStreak(checkIns, now),
			LongestStreak:  stats.LongestStreak(checkIns),
			AverageMood:    stats.MoodAverage(checkIns),
			Duration:       stats.Durations(checkIns),
			Periods:        keys,
			ByPeriod:       buckets,
			Trends:         stats.Trends(checkIns, period),
		},
		CheckIns: checkIns,
	}, nil
}

type OverallStats struct {
	TotalHabits       int     `json:"totalHabits"`
	TotalCheckIns     int     `json:"totalCheckIns"`
	CompletedCheckIns int     `json:"completedCheckIns"`
	CompletionRate    float64 `json:"completionRate"`
}

type CategoryStats struct {
	Total     int            `json:"total"`
	Completed int            `json:"completed"`
	Habits    []HabitSummary `json:"habits"`
}

type UserStatsResult struct {
	Overall           OverallStats                                `json:"overall"`
	Categories        map[internal.Category]CategoryStats         `json:"categories"`
	MoodTrends        []stats.MoodPoint                           `json:"moodTrends"`
	CategoryBreakdown map[internal.Category]stats.CategoryTotals  `json:"categoryBreakdown"`
	MoodByPeriod      map[string]float64                          `json:"moodByPeriod"`
	Streaks           []stats.StreakEntry                         `json:"streaks"`
	ProductivityScore float64                                     `json:"productivityScore"`
}

// GetUserStats composes the cross-habit view for one user: overall counters,
// category stats and breakdown, per-day mood trend, streak list and the
// productivity score. Analytics never cross user boundaries; only check-ins
// whose habit belongs to the user are considered.
func GetUserStats(ctx context.Context, habitRepo storage.HabitRepository, checkInRepo storage.CheckInRepository, user *internal.User, startDate, endDate string, period stats.Period) (*UserStatsResult, error) {
	habits, err := habitRepo.ListHabits(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	checkIns, err := checkInRepo.ListCheckInsByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	checkIns = filterByDateRange(checkIns, startDate, endDate)

	habitIDs := make(map[string]bool, len(habits))
	for _, h := range habits {
		habitIDs[h.ID] = true
	}
	owned := make([]internal.CheckIn, 0, len(checkIns))
	for _, c := range checkIns {
		if habitIDs[c.HabitID] {
			owned = append(owned, c)
		}
	}
	checkIns = owned

	breakdown := stats.CategoryBreakdown(habits, checkIns)
	categories := make(map[internal.Category]CategoryStats, len(breakdown))
	for _, h := range habits {
		cs := categories[h.Category]
		cs.Total = breakdown[h.Category].Total
		cs.Completed = breakdown[h.Category].Completed
		cs.Habits = append(cs.Habits, HabitSummary{ID: h.ID, Title: h.Title, Category: h.Category})
		categories[h.Category] = cs
	}

	moodByPeriod := make(map[string]float64)
	periodKeys, periodBuckets := stats.GroupByPeriod(checkIns, period)
	for _, key := range periodKeys {
		b := periodBuckets[key]
		if len(b.Moods) == 0 {
			continue
		}
		sum := 0
		for _, m := range b.Moods {
			sum += m
		}
		moodByPeriod[key] = float64(sum) / float64(len(b.Moods))
	}

	now := time.Now()
	return &UserStatsResult{
		Overall: OverallStats{
			TotalHabits:       len(habits),
			TotalCheckIns:     len(checkIns),
			CompletedCheckIns: stats.CompletedCount(checkIns),
			CompletionRate:    stats.CompletionRate(checkIns),
		},
		Categories:        categories,
		MoodTrends:        stats.MoodTrendByDay(checkIns),
		CategoryBreakdown: breakdown,
		MoodByPeriod:      moodByPeriod,
		Streaks:           stats.AllStreaks(habits, checkIns, now),
		ProductivityScore: stats.ProductivityScore(habits, checkIns, now),
	}, nil
}

// ExportData is a pure projection of a user's habits and check-ins.
type ExportData struct {
	Habits   []internal.Habit   `json:"habits"`
	CheckIns []internal.CheckIn `json:"checkIns"`
}

func ExportUserData(ctx context.Context, habitRepo storage.HabitRepository, checkInRepo storage.CheckInRepository, user *internal.User, startDate, endDate string) (*ExportData, error) {
	habits, err := habitRepo.ListHabits(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	checkIns, err := checkInRepo.ListCheckInsByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &ExportData{
		Habits:   habits,
		CheckIns: filterByDateRange(checkIns, startDate, endDate),
	}, nil
}

var csvHeader = []string{
	"Habit ID", "Habit Title", "Category", "Frequency",
	"Check-in Date", "Status", "Mood", "Note",
}

// CSV renders one quoted row per (habit, check-in) pair under a fixed
// header. Every field is quoted, embedded quotes doubled.
func (d *ExportData) CSV() string {
	byHabit := make(map[string][]internal.CheckIn)
	for _, c := range d.CheckIns {
		byHabit[c.HabitID] = append(byHabit[c.HabitID], c)
	}

	var b strings.Builder
	b.WriteString(strings.Join(csvHeader, ","))
	for _, h := range d.Habits {
		for _, c := range byHabit[h.ID] {
			row := []string{
				h.ID, h.Title, string(h.Category), h.Frequency.Type,
				c.Date, formatStatus(c.Status), formatMood(c.Mood), c.Note,
			}
			b.WriteString("\n")
			for i, cell := range row {
				if i > 0 {
					b.WriteString(",")
				}
				b.WriteString(`"` + strings.ReplaceAll(cell, `"`, `""`) + `"`)
			}
		}
	}
	return b.String()
}

func formatStatus(s internal.CheckInStatus) string {
	switch s {
	case 0:
		return "false"
	case 1:
		return "true"
	default:
		return strconv.FormatFloat(float64(s), 'f', -1, 64)
	}
}

func formatMood(mood *int) string {
	if mood == nil {
		return ""
	}
	return fmt.Sprintf("%d", *mood)
}
