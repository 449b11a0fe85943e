package scheduler

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Khaldybek/habit-tracker/internal"
	"github.com/Khaldybek/habit-tracker/internal/storage"
)

func newTestScheduler(t *testing.T) (*Scheduler, *storage.Repositories) {
	t.Helper()
	dir := t.TempDir()
	logger := internal.NewZapLogger(zap.NewNop().Sugar())
	repos, fs, err := storage.NewFileRepositories(
		filepath.Join(dir, "habits.json"),
		filepath.Join(dir, "checkins.json"),
		filepath.Join(dir, "notifications.json"),
		logger,
	)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = fs.Close() })

	s := New(repos.Habits, repos.Notifications, logger)
	t.Cleanup(s.Stop)
	return s, repos
}

func reminderHabit(id string, at string) *internal.Habit {
	now := time.Now()
	return &internal.Habit{
		ID:              id,
		UserID:          "u1",
		Title:           "Read",
		Icon:            "book",
		Category:        internal.CategoryLearning,
		Frequency:       internal.Frequency{Type: "daily"},
		ReminderEnabled: true,
		ReminderTime:    at,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestParseReminderTime(t *testing.T) {
	hour, minute, err := parseReminderTime("08:30")
	assert.NoError(t, err)
	assert.Equal(t, 8, hour)
	assert.Equal(t, 30, minute)

	_, _, err = parseReminderTime("830")
	assert.Error(t, err)
	_, _, err = parseReminderTime("ab:cd")
	assert.Error(t, err)
}

func TestScheduleHabitReminder(t *testing.T) {
	s, _ := newTestScheduler(t)

	habit := reminderHabit("h1", "08:00")
	assert.NoError(t, s.ScheduleHabitReminder(habit))
	assert.Equal(t, 1, s.Jobs())

	// Rescheduling the same habit replaces its job instead of stacking.
	habit.ReminderTime = "09:00"
	assert.NoError(t, s.ScheduleHabitReminder(habit))
	assert.Equal(t, 1, s.Jobs())

	assert.NoError(t, s.ScheduleHabitReminder(reminderHabit("h2", "07:15")))
	assert.Equal(t, 2, s.Jobs())
}

func TestScheduleHabitReminder_NoTime(t *testing.T) {
	s, _ := newTestScheduler(t)
	habit := reminderHabit("h1", "")
	assert.NoError(t, s.ScheduleHabitReminder(habit))
	assert.Equal(t, 0, s.Jobs())
}

func TestUpdateHabitReminder(t *testing.T) {
	s, _ := newTestScheduler(t)

	habit := reminderHabit("h1", "08:00")
	assert.NoError(t, s.UpdateHabitReminder(habit))
	assert.Equal(t, 1, s.Jobs())

	// Disabling removes the job.
	habit.ReminderEnabled = false
	assert.NoError(t, s.UpdateHabitReminder(habit))
	assert.Equal(t, 0, s.Jobs())

	// Archiving does too.
	habit.ReminderEnabled = true
	assert.NoError(t, s.UpdateHabitReminder(habit))
	habit.Archived = true
	assert.NoError(t, s.UpdateHabitReminder(habit))
	assert.Equal(t, 0, s.Jobs())
}

func TestRemoveHabitReminder(t *testing.T) {
	s, _ := newTestScheduler(t)

	assert.NoError(t, s.ScheduleHabitReminder(reminderHabit("h1", "08:00")))
	s.RemoveHabitReminder("h1")
	assert.Equal(t, 0, s.Jobs())

	// Removing an unknown habit is a no-op.
	s.RemoveHabitReminder("missing")
	assert.Equal(t, 0, s.Jobs())
}

func TestStart_LoadsReminderHabits(t *testing.T) {
	s, repos := newTestScheduler(t)
	ctx := context.Background()

	assert.NoError(t, repos.Habits.SaveHabit(ctx, reminderHabit("h1", "08:00")))
	assert.NoError(t, repos.Habits.SaveHabit(ctx, reminderHabit("h2", "21:30")))
	plain := reminderHabit("h3", "")
	plain.ReminderEnabled = false
	assert.NoError(t, repos.Habits.SaveHabit(ctx, plain))

	assert.NoError(t, s.Start(ctx))
	assert.Equal(t, 2, s.Jobs())
}

func TestStop_ClearsJobs(t *testing.T) {
	s, _ := newTestScheduler(t)
	assert.NoError(t, s.ScheduleHabitReminder(reminderHabit("h1", "08:00")))
	s.Stop()
	assert.Equal(t, 0, s.Jobs())
}
