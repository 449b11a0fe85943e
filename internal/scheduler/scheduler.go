// Package scheduler runs per-habit reminder jobs. It is bookkeeping around
// a cron runner: one entry per reminder-enabled habit, keyed by habit id.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/Khaldybek/habit-tracker/internal"
	"github.com/Khaldybek/habit-tracker/internal/service"
	"github.com/Khaldybek/habit-tracker/internal/storage"
)

type Scheduler struct {
	cron          *cron.Cron
	jobs          map[string]cron.EntryID // habit id -> cron entry
	mu            sync.Mutex
	habits        storage.HabitRepository
	notifications storage.NotificationRepository
	logger        internal.Logger
}

func New(habits storage.HabitRepository, notifications storage.NotificationRepository, logger internal.Logger) *Scheduler {
	return &Scheduler{
		cron:          cron.New(),
		jobs:          make(map[string]cron.EntryID),
		habits:        habits,
		notifications: notifications,
		logger:        logger,
	}
}

// Start schedules reminders for all reminder-enabled habits and starts the
// cron runner.
func (s *Scheduler) Start(ctx context.Context) error {
	habits, err := s.habits.ListReminderHabits(ctx)
	if err != nil {
		return err
	}
	for i := range habits {
		if err := s.ScheduleHabitReminder(&habits[i]); err != nil {
			s.logger.Errorf("failed to schedule reminder for habit %s: %v", habits[i].ID, err)
		}
	}
	s.cron.Start()
	s.logger.Infof("scheduled reminders for %d habits", len(habits))
	return nil
}

func parseReminderTime(reminderTime string) (hour, minute int, err error) {
	parts := strings.SplitN(reminderTime, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("reminder time must be HH:MM, got %q", reminderTime)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return hour, minute, nil
}

// ScheduleHabitReminder registers (or replaces) the daily reminder job for
// one habit at its reminder time.
func (s *Scheduler) ScheduleHabitReminder(habit *internal.Habit) error {
	if habit.ReminderTime == "" {
		s.logger.Warnf("no reminder time set for habit %s", habit.ID)
		return nil
	}
	hour, minute, err := parseReminderTime(habit.ReminderTime)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, ok := s.jobs[habit.ID]; ok {
		s.cron.Remove(entryID)
		delete(s.jobs, habit.ID)
	}

	habitID := habit.ID
	spec := fmt.Sprintf("%d %d * * *", minute, hour)
	entryID, err := s.cron.AddFunc(spec, func() { s.runReminder(habitID) })
	if err != nil {
		return err
	}
	s.jobs[habit.ID] = entryID
	s.logger.Infof("scheduled reminder for habit %s at %s", habit.ID, habit.ReminderTime)
	return nil
}

// runReminder re-reads the habit before firing so a disabled or deleted
// habit unschedules itself instead of notifying.
func (s *Scheduler) runReminder(habitID string) {
	ctx := context.Background()
	habit, err := s.habits.GetHabit(ctx, habitID)
	if err != nil || !habit.ReminderEnabled || habit.Archived {
		s.RemoveHabitReminder(habitID)
		return
	}
	if err := service.NotifyReminder(ctx, s.notifications, habit); err != nil {
		s.logger.Errorf("error in reminder job for habit %s: %v", habitID, err)
	}
}

// UpdateHabitReminder reconciles the job map with the habit's current
// reminder settings.
func (s *Scheduler) UpdateHabitReminder(habit *internal.Habit) error {
	if habit.ReminderEnabled && !habit.Archived && habit.ReminderTime != "" {
		return s.ScheduleHabitReminder(habit)
	}
	s.RemoveHabitReminder(habit.ID)
	return nil
}

func (s *Scheduler) RemoveHabitReminder(habitID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entryID, ok := s.jobs[habitID]; ok {
		s.cron.Remove(entryID)
		delete(s.jobs, habitID)
		s.logger.Infof("removed reminder for habit %s", habitID)
	}
}

// Jobs reports how many reminder jobs are currently registered.
func (s *Scheduler) Jobs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cron.Stop()
	s.jobs = make(map[string]cron.EntryID)
}
