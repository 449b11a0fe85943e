package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Khaldybek/habit-tracker/internal"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestCompletionRate(t *testing.T) {
	checkIns := []internal.CheckIn{
		checkIn("2024-01-01", 1),
		checkIn("2024-01-02", 1),
		checkIn("2024-01-03", 0),
		checkIn("2024-01-04", 1),
	}
	assert.Equal(t, 3, CompletedCount(checkIns))
	assert.InDelta(t, 75.0, CompletionRate(checkIns), 0.001)
	assert.Equal(t, 0.0, CompletionRate(nil))
}

func TestMoodAverage(t *testing.T) {
	checkIns := []internal.CheckIn{
		{Date: "2024-01-01", Mood: intPtr(5)},
		{Date: "2024-01-02", Mood: intPtr(3)},
		{Date: "2024-01-03"},
		{Date: "2024-01-04", Mood: intPtr(1)},
	}
	avg := MoodAverage(checkIns)
	assert.NotNil(t, avg)
	assert.InDelta(t, 3.0, *avg, 0.001)

	assert.Nil(t, MoodAverage(nil))
	assert.Nil(t, MoodAverage([]internal.CheckIn{{Date: "2024-01-01"}}))
}

func TestMoodFromLabel(t *testing.T) {
	v, ok := MoodFromLabel("great")
	assert.True(t, ok)
	assert.Equal(t, 5, v)
	v, ok = MoodFromLabel("terrible")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	_, ok = MoodFromLabel("meh")
	assert.False(t, ok)
}

func TestDurations(t *testing.T) {
	checkIns := []internal.CheckIn{
		{Date: "2024-01-01", Duration: floatPtr(30)},
		{Date: "2024-01-02"},
		{Date: "2024-01-03", Duration: floatPtr(10)},
		{Date: "2024-01-04", Duration: floatPtr(20)},
	}
	d := Durations(checkIns)
	assert.InDelta(t, 20.0, *d.Average, 0.001)
	assert.Equal(t, 30.0, *d.Max)
	assert.Equal(t, 10.0, *d.Min)

	empty := Durations(nil)
	assert.Nil(t, empty.Average)
	assert.Nil(t, empty.Max)
	assert.Nil(t, empty.Min)
}

func TestCompute_EmptyHistory(t *testing.T) {
	got := Compute(nil, time.Now())
	assert.Equal(t, internal.HabitStats{}, got)
}

func TestCompute_Idempotent(t *testing.T) {
	now := day(t, "2024-03-10")
	checkIns := []internal.CheckIn{
		checkIn("2024-03-10", 1),
		checkIn("2024-03-09", 1),
		checkIn("2024-03-07", 0),
	}
	first := Compute(checkIns, now)
	second := Compute(checkIns, now)
	assert.Equal(t, first, second)
	assert.Equal(t, 3, first.TotalCheckIns)
	assert.Equal(t, 2, first.CompletedCheckIns)
	assert.Equal(t, 2, first.CurrentStreak)
	assert.Equal(t, 2, first.LongestStreak)
}
