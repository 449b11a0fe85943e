package internal

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the calendar-day format used on check-ins. All streak and
// aggregation arithmetic works at day granularity on dates in this format.
const DateLayout = "2006-01-02"

type User struct {
	ID    string `json:"id"`
	Token string `json:"token"`
	Name  string `json:"name"`
}

// Category is the fixed habit category enumeration.
type Category string

const (
	CategoryHealth       Category = "health"
	CategoryProductivity Category = "productivity"
	CategoryLearning     Category = "learning"
	CategoryFitness      Category = "fitness"
	CategoryMindfulness  Category = "mindfulness"
	CategoryOther        Category = "other"
)

type Frequency struct {
	Type  string `json:"type"` // daily, weekly, monthly
	Days  []int  `json:"days,omitempty"`
	Times int    `json:"times,omitempty"`
}

type Target struct {
	Type  string  `json:"type"` // boolean, number, duration
	Value float64 `json:"value,omitempty"`
	Unit  string  `json:"unit,omitempty"`
}

// HabitStats is the denormalized per-habit statistics block. It is a pure
// function of the habit's current check-in set and is recomputed wholesale
// on every check-in mutation, never hand-edited.
type HabitStats struct {
	TotalCheckIns     int     `json:"totalCheckIns"`
	CompletedCheckIns int     `json:"completedCheckIns"`
	CompletionRate    float64 `json:"completionRate"`
	CurrentStreak     int     `json:"currentStreak"`
	LongestStreak     int     `json:"longestStreak"`
}

type Habit struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Icon            string     `json:"icon"`
	Color           string     `json:"color"`
	Category        Category   `json:"category"`
	Frequency       Frequency  `json:"frequency"`
	Target          *Target    `json:"target,omitempty"`
	ReminderEnabled bool       `json:"reminderEnabled"`
	ReminderTime    string     `json:"reminderTime,omitempty"` // HH:MM
	StartDate       time.Time  `json:"startDate"`
	EndDate         *time.Time `json:"endDate,omitempty"`
	Archived        bool       `json:"archived"`
	Priority        string     `json:"priority"` // low, medium, high
	Tags            []string   `json:"tags,omitempty"`
	Stats           HabitStats `json:"stats"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// CheckInStatus is logically boolean but tolerates a non-negative numeric
// encoding for partial or quantified completion. Anything above zero counts
// as completed.
type CheckInStatus float64

func (s CheckInStatus) Completed() bool { return s > 0 }

func (s *CheckInStatus) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case bool:
		if val {
			*s = 1
		} else {
			*s = 0
		}
	case float64:
		if val < 0 {
			return fmt.Errorf("status must be a boolean or a non-negative number, got %v", val)
		}
		*s = CheckInStatus(val)
	default:
		return fmt.Errorf("status must be a boolean or a non-negative number, got %T", v)
	}
	return nil
}

func (s CheckInStatus) MarshalJSON() ([]byte, error) {
	switch s {
	case 0:
		return json.Marshal(false)
	case 1:
		return json.Marshal(true)
	default:
		return json.Marshal(float64(s))
	}
}

type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

// CheckIn records whether a habit was performed on one calendar day.
// At most one check-in exists per (user, habit, date).
type CheckIn struct {
	ID        string        `json:"id"`
	HabitID   string        `json:"habitId"`
	UserID    string        `json:"userId"`
	Date      string        `json:"date"` // YYYY-MM-DD
	Status    CheckInStatus `json:"status"`
	Note      string        `json:"note,omitempty"`
	Mood      *int          `json:"mood,omitempty"` // 1..5, higher is better
	Duration  *float64      `json:"duration,omitempty"`
	Location  *Location     `json:"location,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type NotificationType string

const (
	NotificationReminder    NotificationType = "reminder"
	NotificationAchievement NotificationType = "achievement"
	NotificationStreak      NotificationType = "streak"
	NotificationSystem      NotificationType = "system"
	NotificationCheckIn     NotificationType = "checkin"
)

type Notification struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"user_id"`
	Type      NotificationType       `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Read      bool                   `json:"read"`
	CreatedAt time.Time              `json:"created_at"`
}
