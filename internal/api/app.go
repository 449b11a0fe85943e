package api

import (
	"github.com/Khaldybek/habit-tracker/internal"
	"github.com/Khaldybek/habit-tracker/internal/scheduler"
	"github.com/Khaldybek/habit-tracker/internal/storage"
)

// App is what handlers need from the application: a logger, the
// repositories, and the reminder scheduler.
type App interface {
	Logger() internal.Logger
	HabitRepo() storage.HabitRepository
	CheckInRepo() storage.CheckInRepository
	NotificationRepo() storage.NotificationRepository
	Reminders() *scheduler.Scheduler
}

type Application struct {
	Log       internal.Logger
	Repos     *storage.Repositories
	Scheduler *scheduler.Scheduler
}

func (a *Application) Logger() internal.Logger { return a.Log }

func (a *Application) HabitRepo() storage.HabitRepository { return a.Repos.Habits }

func (a *Application) CheckInRepo() storage.CheckInRepository { return a.Repos.CheckIns }

func (a *Application) NotificationRepo() storage.NotificationRepository {
	return a.Repos.Notifications
}

func (a *Application) Reminders() *scheduler.Scheduler { return a.Scheduler }
