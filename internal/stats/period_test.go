package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Khaldybek/habit-tracker/internal"
)

func TestBucketKey(t *testing.T) {
	assert.Equal(t, "2024-03-10", BucketKey("2024-03-10", PeriodDay))
	assert.Equal(t, "2024-03", BucketKey("2024-03-10", PeriodMonth))
	// 2024-01-01 falls in ISO week 1 of 2024.
	assert.Equal(t, "2024-W01", BucketKey("2024-01-01", PeriodWeek))
	// 2023-01-01 is a Sunday and belongs to ISO week 52 of 2022.
	assert.Equal(t, "2022-W52", BucketKey("2023-01-01", PeriodWeek))
	// Unknown periods fall back to daily.
	assert.Equal(t, "2024-03-10", BucketKey("2024-03-10", Period("quarter")))
	// Unparseable dates pass through untouched.
	assert.Equal(t, "not-a-date", BucketKey("not-a-date", PeriodDay))
}

func TestGroupByPeriod_SortedKeys(t *testing.T) {
	checkIns := []internal.CheckIn{
		checkIn("2024-03-10", 1),
		checkIn("2024-01-05", 0),
		checkIn("2024-02-20", 1),
		checkIn("2024-01-17", 1),
	}
	keys, buckets := GroupByPeriod(checkIns, PeriodMonth)
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03"}, keys)
	assert.Equal(t, 2, buckets["2024-01"].Total)
	assert.Equal(t, 1, buckets["2024-01"].Completed)
	assert.Equal(t, 1, buckets["2024-03"].Completed)
}

func TestGroupByPeriod_Moods(t *testing.T) {
	checkIns := []internal.CheckIn{
		{Date: "2024-03-10", Status: 1, Mood: intPtr(4)},
		{Date: "2024-03-11", Status: 1, Mood: intPtr(2)},
		{Date: "2024-03-12", Status: 0},
	}
	keys, buckets := GroupByPeriod(checkIns, PeriodWeek)
	assert.Len(t, keys, 1)
	assert.Equal(t, []int{4, 2}, buckets[keys[0]].Moods)
}

func TestTrends(t *testing.T) {
	checkIns := []internal.CheckIn{
		{Date: "2024-01-10", Status: 1, Mood: intPtr(4)},
		{Date: "2024-01-11", Status: 0, Mood: intPtr(2)},
		{Date: "2024-02-10", Status: 1},
	}
	trends := Trends(checkIns, PeriodMonth)
	assert.Equal(t, []float64{50, 100}, trends.CompletionRate)
	// Only January had moods.
	assert.Len(t, trends.Mood, 1)
	assert.InDelta(t, 3.0, trends.Mood[0], 0.001)
}
