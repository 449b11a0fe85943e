package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Khaldybek/habit-tracker/internal"
	"github.com/Khaldybek/habit-tracker/internal/storage"
)

func CreateNotification(ctx context.Context, repo storage.NotificationRepository, userID string, typ internal.NotificationType, title, message string, data map[string]interface{}) (*internal.Notification, error) {
	n := &internal.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		Data:      data,
		CreatedAt: time.Now(),
	}
	if err := repo.SaveNotification(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// NotifyCheckInCreated records an in-app notification for a fresh check-in.
// Notification failures are reported to the caller's logger, not the
// client: the check-in itself already succeeded.
func NotifyCheckInCreated(ctx context.Context, repo storage.NotificationRepository, logger internal.Logger, habit *internal.Habit, checkIn *internal.CheckIn) {
	_, err := CreateNotification(ctx, repo, checkIn.UserID, internal.NotificationCheckIn,
		"Check-in Created",
		fmt.Sprintf("You've completed %q for %s", habit.Title, checkIn.Date),
		map[string]interface{}{"habitId": habit.ID, "checkInId": checkIn.ID})
	if err != nil {
		logger.Errorf("failed to create check-in notification: %v", err)
	}
}

func NotifyCheckInDeleted(ctx context.Context, repo storage.NotificationRepository, logger internal.Logger, habitTitle string, checkIn *internal.CheckIn) {
	_, err := CreateNotification(ctx, repo, checkIn.UserID, internal.NotificationCheckIn,
		"Check-in Deleted",
		fmt.Sprintf("You've deleted your check-in for %q", habitTitle),
		map[string]interface{}{"habitId": checkIn.HabitID, "action": "deleted"})
	if err != nil {
		logger.Errorf("failed to create check-in notification: %v", err)
	}
}

// NotifyReminder is what scheduled reminder jobs emit.
func NotifyReminder(ctx context.Context, repo storage.NotificationRepository, habit *internal.Habit) error {
	_, err := CreateNotification(ctx, repo, habit.UserID, internal.NotificationReminder,
		"Habit Reminder",
		fmt.Sprintf("Time to check in on %q", habit.Title),
		map[string]interface{}{"habitId": habit.ID})
	return err
}
