package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Khaldybek/habit-tracker/internal"
	"github.com/Khaldybek/habit-tracker/internal/stats"
	"github.com/Khaldybek/habit-tracker/internal/storage"
)

var validate = validator.New()

type CheckInRequest struct {
	HabitID   string                  `json:"habitId" validate:"required"`
	Date      string                  `json:"date" validate:"required"`
	Status    *internal.CheckInStatus `json:"status" validate:"required"`
	Note      string                  `json:"note,omitempty"`
	Mood      *int                    `json:"mood,omitempty" validate:"omitempty,gte=1,lte=5"`
	MoodLabel string                  `json:"moodLabel,omitempty" validate:"omitempty,oneof=terrible bad neutral good great"`
	Duration  *float64                `json:"duration,omitempty" validate:"omitempty,gte=0"`
	Location  *internal.Location      `json:"location,omitempty"`
}

type CheckInUpdateRequest struct {
	Date     *string                 `json:"date,omitempty"`
	Status   *internal.CheckInStatus `json:"status,omitempty"`
	Note     *string                 `json:"note,omitempty"`
	Mood     *int                    `json:"mood,omitempty" validate:"omitempty,gte=1,lte=5"`
	Duration *float64                `json:"duration,omitempty" validate:"omitempty,gte=0"`
	Location *internal.Location      `json:"location,omitempty"`
}

func ValidateCheckInRequest(req *CheckInRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	if _, err := NormalizeDate(req.Date); err != nil {
		return err
	}
	return nil
}

func ValidateCheckInUpdateRequest(req *CheckInUpdateRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	if req.Date != nil {
		if _, err := NormalizeDate(*req.Date); err != nil {
			return err
		}
	}
	return nil
}

// NormalizeDate reduces a date or timestamp string to the calendar day the
// engine works with. Clients send either plain YYYY-MM-DD or RFC 3339.
func NormalizeDate(date string) (string, error) {
	if d, err := time.Parse(internal.DateLayout, date); err == nil {
		return d.Format(internal.DateLayout), nil
	}
	if d, err := time.Parse(time.RFC3339, date); err == nil {
		return d.Format(internal.DateLayout), nil
	}
	return "", fmt.Errorf("date must be YYYY-MM-DD or RFC 3339, got %q", date)
}

// CreateCheckIn records one check-in, enforcing the one-per-(habit, date)
// invariant, and synchronously recomputes the habit's stats before
// returning so the caller never observes stale stats for its own write.
func CreateCheckIn(ctx context.Context, habitRepo storage.HabitRepository, checkInRepo storage.CheckInRepository, logger internal.Logger, user *internal.User, req *CheckInRequest) (*internal.CheckIn, error) {
	habit, err := habitRepo.GetHabit(ctx, req.HabitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != user.ID {
		return nil, storage.ErrNotFound
	}

	date, err := NormalizeDate(req.Date)
	if err != nil {
		return nil, err
	}

	mood := req.Mood
	if mood == nil && req.MoodLabel != "" {
		if v, ok := stats.MoodFromLabel(req.MoodLabel); ok {
			mood = &v
		}
	}

	now := time.Now()
	checkIn := &internal.CheckIn{
		ID:        uuid.NewString(),
		HabitID:   habit.ID,
		UserID:    user.ID,
		Date:      date,
		Status:    *req.Status,
		Note:      req.Note,
		Mood:      mood,
		Duration:  req.Duration,
		Location:  req.Location,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := checkInRepo.SaveCheckIn(ctx, checkIn); err != nil {
		return nil, err
	}

	if err := UpdateHabitStats(ctx, habitRepo, checkInRepo, logger, habit.ID); err != nil {
		return nil, err
	}
	return checkIn, nil
}

// UpdateCheckIn applies a partial update and recomputes the habit's stats.
func UpdateCheckIn(ctx context.Context, habitRepo storage.HabitRepository, checkInRepo storage.CheckInRepository, logger internal.Logger, user *internal.User, id string, req *CheckInUpdateRequest) (*internal.CheckIn, error) {
	checkIn, err := checkInRepo.GetCheckIn(ctx, id)
	if err != nil {
		return nil, err
	}
	if checkIn.UserID != user.ID {
		return nil, storage.ErrNotFound
	}

	if req.Date != nil {
		date, err := NormalizeDate(*req.Date)
		if err != nil {
			return nil, err
		}
		checkIn.Date = date
	}
	if req.Status != nil {
		checkIn.Status = *req.Status
	}
	if req.Note != nil {
		checkIn.Note = *req.Note
	}
	if req.Mood != nil {
		checkIn.Mood = req.Mood
	}
	if req.Duration != nil {
		checkIn.Duration = req.Duration
	}
	if req.Location != nil {
		checkIn.Location = req.Location
	}
	checkIn.UpdatedAt = time.Now()

	if err := checkInRepo.UpdateCheckIn(ctx, checkIn); err != nil {
		return nil, err
	}
	if err := UpdateHabitStats(ctx, habitRepo, checkInRepo, logger, checkIn.HabitID); err != nil {
		return nil, err
	}
	return checkIn, nil
}

// DeleteCheckIn removes a check-in and recomputes the habit's stats.
func DeleteCheckIn(ctx context.Context, habitRepo storage.HabitRepository, checkInRepo storage.CheckInRepository, logger internal.Logger, user *internal.User, id string) (*internal.CheckIn, error) {
	checkIn, err := checkInRepo.GetCheckIn(ctx, id)
	if err != nil {
		return nil, err
	}
	if checkIn.UserID != user.ID {
		return nil, storage.ErrNotFound
	}
	if err := checkInRepo.DeleteCheckIn(ctx, id); err != nil {
		return nil, err
	}
	if err := UpdateHabitStats(ctx, habitRepo, checkInRepo, logger, checkIn.HabitID); err != nil {
		return nil, err
	}
	return checkIn, nil
}

// UpdateHabitStats reloads the habit's full check-in set, recomputes the
// denormalized stats block and writes it back wholesale. A missing habit is
// logged and skipped: the triggering mutation already committed, so its
// absence is not an error here. Load/save failures propagate; the check-in
// mutation is not rolled back and stats stay stale until the next
// successful recomputation.
func UpdateHabitStats(ctx context.Context, habitRepo storage.HabitRepository, checkInRepo storage.CheckInRepository, logger internal.Logger, habitID string) error {
	habit, err := habitRepo.GetHabit(ctx, habitID)
	if errors.Is(err, storage.ErrNotFound) {
		logger.Warnf("habit not found for stats update: %s", habitID)
		return nil
	}
	if err != nil {
		return err
	}

	checkIns, err := checkInRepo.ListCheckInsByHabit(ctx, habit.ID)
	if err != nil {
		return err
	}

	return habitRepo.UpdateHabitStats(ctx, habit.ID, stats.Compute(checkIns, time.Now()))
}
