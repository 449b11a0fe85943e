package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Khaldybek/habit-tracker/internal"
	"github.com/Khaldybek/habit-tracker/internal/storage"
)

type FrequencyRequest struct {
	Type  string `json:"type" validate:"required,oneof=daily weekly monthly"`
	Days  []int  `json:"days,omitempty" validate:"omitempty,dive,gte=0,lte=6"`
	Times int    `json:"times,omitempty" validate:"omitempty,gte=1"`
}

type TargetRequest struct {
	Type  string  `json:"type" validate:"required,oneof=boolean number duration"`
	Value float64 `json:"value,omitempty" validate:"omitempty,gte=0"`
	Unit  string  `json:"unit,omitempty"`
}

type HabitRequest struct {
	Title           string           `json:"title" validate:"required"`
	Description     string           `json:"description,omitempty"`
	Icon            string           `json:"icon" validate:"required"`
	Color           string           `json:"color,omitempty"`
	Category        string           `json:"category" validate:"required,oneof=health productivity learning fitness mindfulness other"`
	Frequency       FrequencyRequest `json:"frequency" validate:"required"`
	Target          *TargetRequest   `json:"target,omitempty"`
	ReminderEnabled bool             `json:"reminderEnabled"`
	ReminderTime    string           `json:"reminderTime,omitempty" validate:"omitempty,datetime=15:04"`
	StartDate       *time.Time       `json:"startDate,omitempty"`
	EndDate         *time.Time       `json:"endDate,omitempty"`
	Priority        string           `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	Tags            []string         `json:"tags,omitempty"`
}

func ValidateHabitRequest(req *HabitRequest) error {
	return validate.Struct(req)
}

func CreateHabit(ctx context.Context, habitRepo storage.HabitRepository, user *internal.User, req *HabitRequest) (*internal.Habit, error) {
	now := time.Now()
	habit := &internal.Habit{
		ID:              uuid.NewString(),
		UserID:          user.ID,
		Title:           req.Title,
		Description:     req.Description,
		Icon:            req.Icon,
		Color:           req.Color,
		Category:        internal.Category(req.Category),
		Frequency:       internal.Frequency{Type: req.Frequency.Type, Days: req.Frequency.Days, Times: req.Frequency.Times},
		ReminderEnabled: req.ReminderEnabled,
		ReminderTime:    req.ReminderTime,
		StartDate:       now,
		EndDate:         req.EndDate,
		Priority:        "medium",
		Tags:            req.Tags,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if habit.Color == "" {
		habit.Color = "#4F46E5"
	}
	if req.StartDate != nil {
		habit.StartDate = *req.StartDate
	}
	if req.Priority != "" {
		habit.Priority = req.Priority
	}
	if req.Target != nil {
		habit.Target = &internal.Target{Type: req.Target.Type, Value: req.Target.Value, Unit: req.Target.Unit}
	}

	if err := habitRepo.SaveHabit(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

func UpdateHabit(ctx context.Context, habitRepo storage.HabitRepository, user *internal.User, id string, req *HabitRequest) (*internal.Habit, error) {
	habit, err := habitRepo.GetHabit(ctx, id)
	if err != nil {
		return nil, err
	}
	if habit.UserID != user.ID {
		return nil, storage.ErrNotFound
	}

	habit.Title = req.Title
	habit.Description = req.Description
	habit.Icon = req.Icon
	if req.Color != "" {
		habit.Color = req.Color
	}
	habit.Category = internal.Category(req.Category)
	habit.Frequency = internal.Frequency{Type: req.Frequency.Type, Days: req.Frequency.Days, Times: req.Frequency.Times}
	habit.ReminderEnabled = req.ReminderEnabled
	habit.ReminderTime = req.ReminderTime
	if req.StartDate != nil {
		habit.StartDate = *req.StartDate
	}
	habit.EndDate = req.EndDate
	if req.Priority != "" {
		habit.Priority = req.Priority
	}
	habit.Tags = req.Tags
	habit.Target = nil
	if req.Target != nil {
		habit.Target = &internal.Target{Type: req.Target.Type, Value: req.Target.Value, Unit: req.Target.Unit}
	}
	habit.UpdatedAt = time.Now()

	if err := habitRepo.UpdateHabit(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

// ArchiveHabit flags a habit as archived without touching its history.
func ArchiveHabit(ctx context.Context, habitRepo storage.HabitRepository, user *internal.User, id string) (*internal.Habit, error) {
	habit, err := habitRepo.GetHabit(ctx, id)
	if err != nil {
		return nil, err
	}
	if habit.UserID != user.ID {
		return nil, storage.ErrNotFound
	}
	habit.Archived = true
	habit.UpdatedAt = time.Now()
	if err := habitRepo.UpdateHabit(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

// DeleteHabit removes a habit and its check-ins.
func DeleteHabit(ctx context.Context, habitRepo storage.HabitRepository, checkInRepo storage.CheckInRepository, user *internal.User, id string) error {
	habit, err := habitRepo.GetHabit(ctx, id)
	if err != nil {
		return err
	}
	if habit.UserID != user.ID {
		return storage.ErrNotFound
	}
	if err := checkInRepo.DeleteCheckInsByHabit(ctx, id); err != nil {
		return err
	}
	return habitRepo.DeleteHabit(ctx, id)
}
