package storage

import "github.com/Khaldybek/habit-tracker/internal"

type Repositories struct {
	Habits        HabitRepository
	CheckIns      CheckInRepository
	Notifications NotificationRepository
}

func NewFileRepositories(habitsFile, checkInsFile, notificationsFile string, logger internal.Logger) (*Repositories, *FileStorage, error) {
	storage, err := NewFileStorage(habitsFile, checkInsFile, notificationsFile, logger)
	if err != nil {
		return nil, nil, err
	}
	return &Repositories{Habits: storage, CheckIns: storage, Notifications: storage}, storage, nil
}

func NewPostgresRepositories(dsn string, logger internal.Logger) (*Repositories, error) {
	storage, err := NewPostgresStorage(dsn, logger)
	if err != nil {
		return nil, err
	}
	return &Repositories{Habits: storage, CheckIns: storage, Notifications: storage}, nil
}
