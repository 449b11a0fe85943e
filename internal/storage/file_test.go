package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Khaldybek/habit-tracker/internal"
)

func newTestStorage(t *testing.T) *FileStorage {
	t.Helper()
	dir := t.TempDir()
	logger := internal.NewZapLogger(zap.NewNop().Sugar())
	s, err := NewFileStorage(
		filepath.Join(dir, "habits.json"),
		filepath.Join(dir, "checkins.json"),
		filepath.Join(dir, "notifications.json"),
		logger,
	)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testHabit(id, userID string) *internal.Habit {
	now := time.Now()
	return &internal.Habit{
		ID:        id,
		UserID:    userID,
		Title:     "Read",
		Icon:      "book",
		Category:  internal.CategoryLearning,
		Frequency: internal.Frequency{Type: "daily"},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func testCheckIn(id, habitID, userID, date string) *internal.CheckIn {
	now := time.Now()
	return &internal.CheckIn{
		ID:        id,
		HabitID:   habitID,
		UserID:    userID,
		Date:      date,
		Status:    1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestHabitCRUD(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	habit := testHabit("h1", "u1")
	assert.NoError(t, s.SaveHabit(ctx, habit))

	got, err := s.GetHabit(ctx, "h1")
	assert.NoError(t, err)
	assert.Equal(t, "Read", got.Title)

	habits, err := s.ListHabits(ctx, "u1")
	assert.NoError(t, err)
	assert.Len(t, habits, 1)

	got.Title = "Read more"
	assert.NoError(t, s.UpdateHabit(ctx, got))
	updated, err := s.GetHabit(ctx, "h1")
	assert.NoError(t, err)
	assert.Equal(t, "Read more", updated.Title)

	assert.NoError(t, s.DeleteHabit(ctx, "h1"))
	_, err = s.GetHabit(ctx, "h1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.DeleteHabit(ctx, "h1"), ErrNotFound)
}

func TestUpdateHabitStats(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	assert.NoError(t, s.SaveHabit(ctx, testHabit("h1", "u1")))
	stats := internal.HabitStats{TotalCheckIns: 3, CompletedCheckIns: 2, CompletionRate: 66.7, CurrentStreak: 2, LongestStreak: 2}
	assert.NoError(t, s.UpdateHabitStats(ctx, "h1", stats))

	got, err := s.GetHabit(ctx, "h1")
	assert.NoError(t, err)
	assert.Equal(t, stats, got.Stats)

	assert.ErrorIs(t, s.UpdateHabitStats(ctx, "missing", stats), ErrNotFound)
}

func TestListReminderHabits(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	enabled := testHabit("h1", "u1")
	enabled.ReminderEnabled = true
	enabled.ReminderTime = "08:00"
	archived := testHabit("h2", "u1")
	archived.ReminderEnabled = true
	archived.Archived = true
	plain := testHabit("h3", "u1")

	assert.NoError(t, s.SaveHabit(ctx, enabled))
	assert.NoError(t, s.SaveHabit(ctx, archived))
	assert.NoError(t, s.SaveHabit(ctx, plain))

	habits, err := s.ListReminderHabits(ctx)
	assert.NoError(t, err)
	assert.Len(t, habits, 1)
	assert.Equal(t, "h1", habits[0].ID)
}

func TestSaveCheckIn_DuplicateDateRejected(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	assert.NoError(t, s.SaveCheckIn(ctx, testCheckIn("c1", "h1", "u1", "2024-03-10")))
	err := s.SaveCheckIn(ctx, testCheckIn("c2", "h1", "u1", "2024-03-10"))
	assert.ErrorIs(t, err, ErrDuplicateCheckIn)

	// Same date on a different habit is fine.
	assert.NoError(t, s.SaveCheckIn(ctx, testCheckIn("c3", "h2", "u1", "2024-03-10")))
}

func TestUpdateCheckIn_DateChange(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	assert.NoError(t, s.SaveCheckIn(ctx, testCheckIn("c1", "h1", "u1", "2024-03-10")))
	assert.NoError(t, s.SaveCheckIn(ctx, testCheckIn("c2", "h1", "u1", "2024-03-11")))

	// Moving c1 onto c2's date is a duplicate.
	moved := testCheckIn("c1", "h1", "u1", "2024-03-11")
	assert.ErrorIs(t, s.UpdateCheckIn(ctx, moved), ErrDuplicateCheckIn)

	// Moving it to a free date releases the old slot.
	moved = testCheckIn("c1", "h1", "u1", "2024-03-12")
	assert.NoError(t, s.UpdateCheckIn(ctx, moved))
	assert.NoError(t, s.SaveCheckIn(ctx, testCheckIn("c3", "h1", "u1", "2024-03-10")))
}

func TestListCheckIns_DateDescending(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	assert.NoError(t, s.SaveCheckIn(ctx, testCheckIn("c1", "h1", "u1", "2024-03-09")))
	assert.NoError(t, s.SaveCheckIn(ctx, testCheckIn("c2", "h1", "u1", "2024-03-11")))
	assert.NoError(t, s.SaveCheckIn(ctx, testCheckIn("c3", "h1", "u1", "2024-03-10")))

	checkIns, err := s.ListCheckInsByHabit(ctx, "h1")
	assert.NoError(t, err)
	assert.Equal(t, []string{"2024-03-11", "2024-03-10", "2024-03-09"}, []string{checkIns[0].Date, checkIns[1].Date, checkIns[2].Date})

	byUser, err := s.ListCheckInsByUser(ctx, "u1")
	assert.NoError(t, err)
	assert.Len(t, byUser, 3)
}

func TestDeleteCheckInsByHabit(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	assert.NoError(t, s.SaveCheckIn(ctx, testCheckIn("c1", "h1", "u1", "2024-03-09")))
	assert.NoError(t, s.SaveCheckIn(ctx, testCheckIn("c2", "h1", "u1", "2024-03-10")))
	assert.NoError(t, s.SaveCheckIn(ctx, testCheckIn("c3", "h2", "u1", "2024-03-10")))

	assert.NoError(t, s.DeleteCheckInsByHabit(ctx, "h1"))

	remaining, err := s.ListCheckInsByUser(ctx, "u1")
	assert.NoError(t, err)
	assert.Len(t, remaining, 1)
	assert.Equal(t, "c3", remaining[0].ID)

	// The freed (habit, date) slots accept new check-ins again.
	assert.NoError(t, s.SaveCheckIn(ctx, testCheckIn("c4", "h1", "u1", "2024-03-10")))
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	logger := internal.NewZapLogger(zap.NewNop().Sugar())
	habitsFile := filepath.Join(dir, "habits.json")
	checkInsFile := filepath.Join(dir, "checkins.json")
	notifsFile := filepath.Join(dir, "notifications.json")

	s, err := NewFileStorage(habitsFile, checkInsFile, notifsFile, logger)
	assert.NoError(t, err)
	ctx := context.Background()
	assert.NoError(t, s.SaveHabit(ctx, testHabit("h1", "u1")))
	assert.NoError(t, s.SaveCheckIn(ctx, testCheckIn("c1", "h1", "u1", "2024-03-10")))
	assert.NoError(t, s.Close())

	reopened, err := NewFileStorage(habitsFile, checkInsFile, notifsFile, logger)
	assert.NoError(t, err)
	defer reopened.Close()

	habit, err := reopened.GetHabit(ctx, "h1")
	assert.NoError(t, err)
	assert.Equal(t, "u1", habit.UserID)

	// The uniqueness index is rebuilt on load.
	err = reopened.SaveCheckIn(ctx, testCheckIn("c2", "h1", "u1", "2024-03-10"))
	assert.ErrorIs(t, err, ErrDuplicateCheckIn)
}

func TestNotifications(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	for i, id := range []string{"n1", "n2", "n3"} {
		n := &internal.Notification{
			ID:        id,
			UserID:    "u1",
			Type:      internal.NotificationReminder,
			Title:     "Habit Reminder",
			CreatedAt: time.Now().Add(time.Duration(i) * time.Second),
		}
		assert.NoError(t, s.SaveNotification(ctx, n))
	}

	all, total, err := s.ListNotifications(ctx, "u1", nil, 0, 10)
	assert.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, all, 3)
	// Newest first.
	assert.Equal(t, "n3", all[0].ID)

	page, total, err := s.ListNotifications(ctx, "u1", nil, 1, 1)
	assert.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, page, 1)
	assert.Equal(t, "n2", page[0].ID)

	count, err := s.UnreadCount(ctx, "u1")
	assert.NoError(t, err)
	assert.Equal(t, 3, count)

	assert.NoError(t, s.MarkNotificationRead(ctx, "n2"))
	readFilter := true
	read, total, err := s.ListNotifications(ctx, "u1", &readFilter, 0, 10)
	assert.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, read, 1)
	assert.Equal(t, "n2", read[0].ID)

	assert.NoError(t, s.MarkAllNotificationsRead(ctx, "u1"))
	count, err = s.UnreadCount(ctx, "u1")
	assert.NoError(t, err)
	assert.Equal(t, 0, count)

	assert.NoError(t, s.DeleteNotification(ctx, "n1"))
	_, total, err = s.ListNotifications(ctx, "u1", nil, 0, 10)
	assert.NoError(t, err)
	assert.Equal(t, 2, total)

	assert.ErrorIs(t, s.DeleteNotification(ctx, "n1"), ErrNotFound)
}
