package storage

import (
	"context"
	"errors"

	"github.com/Khaldybek/habit-tracker/internal"
)

var (
	ErrNotFound         = errors.New("storage: not found")
	ErrDuplicateCheckIn = errors.New("storage: check-in already exists for this date")
)

type HabitRepository interface {
	SaveHabit(ctx context.Context, habit *internal.Habit) error
	UpdateHabit(ctx context.Context, habit *internal.Habit) error
	GetHabit(ctx context.Context, id string) (*internal.Habit, error)
	ListHabits(ctx context.Context, userID string) ([]internal.Habit, error)
	ListReminderHabits(ctx context.Context) ([]internal.Habit, error)
	UpdateHabitStats(ctx context.Context, id string, stats internal.HabitStats) error
	DeleteHabit(ctx context.Context, id string) error
}

type CheckInRepository interface {
	// SaveCheckIn returns ErrDuplicateCheckIn when a check-in already
	// exists for the same (user, habit, date).
	SaveCheckIn(ctx context.Context, checkIn *internal.CheckIn) error
	UpdateCheckIn(ctx context.Context, checkIn *internal.CheckIn) error
	GetCheckIn(ctx context.Context, id string) (*internal.CheckIn, error)
	ListCheckInsByHabit(ctx context.Context, habitID string) ([]internal.CheckIn, error)
	ListCheckInsByUser(ctx context.Context, userID string) ([]internal.CheckIn, error)
	DeleteCheckIn(ctx context.Context, id string) error
	DeleteCheckInsByHabit(ctx context.Context, habitID string) error
}

type NotificationRepository interface {
	SaveNotification(ctx context.Context, n *internal.Notification) error
	ListNotifications(ctx context.Context, userID string, read *bool, offset, limit int) ([]internal.Notification, int, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context, userID string) error
	DeleteNotification(ctx context.Context, id string) error
	UnreadCount(ctx context.Context, userID string) (int, error)
}
