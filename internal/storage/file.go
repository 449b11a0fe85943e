package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/Khaldybek/habit-tracker/internal"
)

// FileStorage keeps everything in memory behind a RW mutex and persists to
// JSON files through debounced background save workers.
type FileStorage struct {
	habits          map[string]*internal.Habit
	userHabitIndex  map[string][]*internal.Habit // userID -> habits (newest first)
	checkIns        map[string]*internal.CheckIn
	habitCheckIndex map[string][]*internal.CheckIn // habitID -> check-ins (date descending)
	userCheckIndex  map[string][]*internal.CheckIn // userID -> check-ins (date descending)
	checkInByDay    map[string]*internal.CheckIn   // userID|habitID|date -> check-in
	notifications   map[string]*internal.Notification
	userNotifIndex  map[string][]*internal.Notification // userID -> notifications (newest first)

	mu sync.RWMutex

	habitsFile        string
	checkInsFile      string
	notificationsFile string

	saveHabitsChan   chan struct{}
	saveCheckInsChan chan struct{}
	saveNotifsChan   chan struct{}
	shutdownChan     chan struct{}
	saveDelay        time.Duration
	logger           internal.Logger
}

func NewFileStorage(habitsFile, checkInsFile, notificationsFile string, logger internal.Logger) (*FileStorage, error) {
	s := &FileStorage{
		habits:            make(map[string]*internal.Habit),
		userHabitIndex:    make(map[string][]*internal.Habit),
		checkIns:          make(map[string]*internal.CheckIn),
		habitCheckIndex:   make(map[string][]*internal.CheckIn),
		userCheckIndex:    make(map[string][]*internal.CheckIn),
		checkInByDay:      make(map[string]*internal.CheckIn),
		notifications:     make(map[string]*internal.Notification),
		userNotifIndex:    make(map[string][]*internal.Notification),
		habitsFile:        habitsFile,
		checkInsFile:      checkInsFile,
		notificationsFile: notificationsFile,
		saveHabitsChan:    make(chan struct{}, 1),
		saveCheckInsChan:  make(chan struct{}, 1),
		saveNotifsChan:    make(chan struct{}, 1),
		shutdownChan:      make(chan struct{}),
		saveDelay:         500 * time.Millisecond,
		logger:            logger,
	}

	if err := s.loadHabits(); err != nil {
		logger.Errorf("storage: failed to load habits: %v", err)
		return nil, err
	}
	if err := s.loadCheckIns(); err != nil {
		logger.Errorf("storage: failed to load check-ins: %v", err)
		return nil, err
	}
	if err := s.loadNotifications(); err != nil {
		logger.Errorf("storage: failed to load notifications: %v", err)
		return nil, err
	}

	go s.saveWorker(s.saveHabitsChan, s.saveHabits, "habits")
	go s.saveWorker(s.saveCheckInsChan, s.saveCheckIns, "check-ins")
	go s.saveWorker(s.saveNotifsChan, s.saveNotifications, "notifications")

	return s, nil
}

func dayKey(userID, habitID, date string) string {
	return userID + "|" + habitID + "|" + date
}

func decodeFile[T any](path string) ([]*T, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var items []*T
	if err := json.NewDecoder(file).Decode(&items); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	return items, nil
}

func (s *FileStorage) loadHabits() error {
	habits, err := decodeFile[internal.Habit](s.habitsFile)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range habits {
		s.habits[h.ID] = h
		s.userHabitIndex[h.UserID] = append(s.userHabitIndex[h.UserID], h)
	}
	for userID := range s.userHabitIndex {
		sort.Slice(s.userHabitIndex[userID], func(i, j int) bool {
			return s.userHabitIndex[userID][i].CreatedAt.After(s.userHabitIndex[userID][j].CreatedAt)
		})
	}
	return nil
}

func (s *FileStorage) loadCheckIns() error {
	checkIns, err := decodeFile[internal.CheckIn](s.checkInsFile)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range checkIns {
		s.checkIns[c.ID] = c
		s.habitCheckIndex[c.HabitID] = append(s.habitCheckIndex[c.HabitID], c)
		s.userCheckIndex[c.UserID] = append(s.userCheckIndex[c.UserID], c)
		s.checkInByDay[dayKey(c.UserID, c.HabitID, c.Date)] = c
	}
	for habitID := range s.habitCheckIndex {
		sortCheckInsDesc(s.habitCheckIndex[habitID])
	}
	for userID := range s.userCheckIndex {
		sortCheckInsDesc(s.userCheckIndex[userID])
	}
	return nil
}

func (s *FileStorage) loadNotifications() error {
	notifications, err := decodeFile[internal.Notification](s.notificationsFile)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range notifications {
		s.notifications[n.ID] = n
		s.userNotifIndex[n.UserID] = append(s.userNotifIndex[n.UserID], n)
	}
	for userID := range s.userNotifIndex {
		sort.Slice(s.userNotifIndex[userID], func(i, j int) bool {
			return s.userNotifIndex[userID][i].CreatedAt.After(s.userNotifIndex[userID][j].CreatedAt)
		})
	}
	return nil
}

func sortCheckInsDesc(checkIns []*internal.CheckIn) {
	sort.Slice(checkIns, func(i, j int) bool {
		return checkIns[i].Date > checkIns[j].Date
	})
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

func (s *FileStorage) saveHabits() error {
	s.mu.RLock()
	habits := make([]*internal.Habit, 0, len(s.habits))
	for _, h := range s.habits {
		habits = append(habits, h)
	}
	s.mu.RUnlock()
	return atomicWriteFileJSON(s.habitsFile, habits)
}

func (s *FileStorage) saveCheckIns() error {
	s.mu.RLock()
	checkIns := make([]*internal.CheckIn, 0, len(s.checkIns))
	for _, c := range s.checkIns {
		checkIns = append(checkIns, c)
	}
	s.mu.RUnlock()
	return atomicWriteFileJSON(s.checkInsFile, checkIns)
}

func (s *FileStorage) saveNotifications() error {
	s.mu.RLock()
	notifications := make([]*internal.Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		notifications = append(notifications, n)
	}
	s.mu.RUnlock()
	return atomicWriteFileJSON(s.notificationsFile, notifications)
}

// saveWorker batches save operations to avoid frequent disk writes.
func (s *FileStorage) saveWorker(signal chan struct{}, save func() error, what string) {
	timer := time.NewTimer(s.saveDelay)
	defer timer.Stop()

	for {
		select {
		case <-signal:
			timer.Reset(s.saveDelay)
		case <-timer.C:
			if err := save(); err != nil {
				s.logger.Errorf("storage: error saving %s: %v", what, err)
			}
		case <-s.shutdownChan:
			return
		}
	}
}

func signalSave(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func (s *FileStorage) Close() error {
	close(s.shutdownChan)

	// Save pending data synchronously on shutdown
	if err := s.saveHabits(); err != nil {
		return err
	}
	if err := s.saveCheckIns(); err != nil {
		return err
	}
	return s.saveNotifications()
}

// --- HabitRepository ---

func (s *FileStorage) SaveHabit(ctx context.Context, habit *internal.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.habits[habit.ID] = habit
	s.userHabitIndex[habit.UserID] = append([]*internal.Habit{habit}, s.userHabitIndex[habit.UserID]...)
	signalSave(s.saveHabitsChan)
	return nil
}

func (s *FileStorage) UpdateHabit(ctx context.Context, habit *internal.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.habits[habit.ID]
	if !ok {
		return ErrNotFound
	}
	*existing = *habit
	signalSave(s.saveHabitsChan)
	return nil
}

func (s *FileStorage) GetHabit(ctx context.Context, id string) (*internal.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.habits[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *h
	return &out, nil
}

func (s *FileStorage) ListHabits(ctx context.Context, userID string) ([]internal.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	habitsPtr := s.userHabitIndex[userID]
	habits := make([]internal.Habit, len(habitsPtr))
	for i, h := range habitsPtr {
		habits[i] = *h
	}
	return habits, nil
}

func (s *FileStorage) ListReminderHabits(ctx context.Context) ([]internal.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var habits []internal.Habit
	for _, h := range s.habits {
		if h.ReminderEnabled && !h.Archived {
			habits = append(habits, *h)
		}
	}
	return habits, nil
}

func (s *FileStorage) UpdateHabitStats(ctx context.Context, id string, stats internal.HabitStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.habits[id]
	if !ok {
		return ErrNotFound
	}
	h.Stats = stats
	h.UpdatedAt = time.Now()
	signalSave(s.saveHabitsChan)
	return nil
}

func (s *FileStorage) DeleteHabit(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.habits[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.habits, id)
	s.userHabitIndex[h.UserID] = removeHabit(s.userHabitIndex[h.UserID], id)
	signalSave(s.saveHabitsChan)
	return nil
}

func removeHabit(habits []*internal.Habit, id string) []*internal.Habit {
	for i, h := range habits {
		if h.ID == id {
			return append(habits[:i], habits[i+1:]...)
		}
	}
	return habits
}

// --- CheckInRepository ---

func (s *FileStorage) SaveCheckIn(ctx context.Context, checkIn *internal.CheckIn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := dayKey(checkIn.UserID, checkIn.HabitID, checkIn.Date)
	if _, exists := s.checkInByDay[key]; exists {
		return ErrDuplicateCheckIn
	}

	s.checkIns[checkIn.ID] = checkIn
	s.checkInByDay[key] = checkIn
	s.habitCheckIndex[checkIn.HabitID] = insertCheckIn(s.habitCheckIndex[checkIn.HabitID], checkIn)
	s.userCheckIndex[checkIn.UserID] = insertCheckIn(s.userCheckIndex[checkIn.UserID], checkIn)
	signalSave(s.saveCheckInsChan)
	return nil
}

// insertCheckIn keeps the index sorted by date descending.
func insertCheckIn(checkIns []*internal.CheckIn, checkIn *internal.CheckIn) []*internal.CheckIn {
	for i, existing := range checkIns {
		if existing.Date < checkIn.Date {
			return append(checkIns[:i], append([]*internal.CheckIn{checkIn}, checkIns[i:]...)...)
		}
	}
	return append(checkIns, checkIn)
}

func (s *FileStorage) UpdateCheckIn(ctx context.Context, checkIn *internal.CheckIn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.checkIns[checkIn.ID]
	if !ok {
		return ErrNotFound
	}
	if existing.Date != checkIn.Date {
		newKey := dayKey(checkIn.UserID, checkIn.HabitID, checkIn.Date)
		if other, exists := s.checkInByDay[newKey]; exists && other.ID != checkIn.ID {
			return ErrDuplicateCheckIn
		}
		delete(s.checkInByDay, dayKey(existing.UserID, existing.HabitID, existing.Date))
		s.checkInByDay[newKey] = existing
	}
	*existing = *checkIn
	sortCheckInsDesc(s.habitCheckIndex[existing.HabitID])
	sortCheckInsDesc(s.userCheckIndex[existing.UserID])
	signalSave(s.saveCheckInsChan)
	return nil
}

func (s *FileStorage) GetCheckIn(ctx context.Context, id string) (*internal.CheckIn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.checkIns[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *c
	return &out, nil
}

func (s *FileStorage) ListCheckInsByHabit(ctx context.Context, habitID string) ([]internal.CheckIn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyCheckIns(s.habitCheckIndex[habitID]), nil
}

func (s *FileStorage) ListCheckInsByUser(ctx context.Context, userID string) ([]internal.CheckIn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyCheckIns(s.userCheckIndex[userID]), nil
}

func copyCheckIns(checkInsPtr []*internal.CheckIn) []internal.CheckIn {
	checkIns := make([]internal.CheckIn, len(checkInsPtr))
	for i, c := range checkInsPtr {
		checkIns[i] = *c
	}
	return checkIns
}

func (s *FileStorage) DeleteCheckIn(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.checkIns[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.checkIns, id)
	delete(s.checkInByDay, dayKey(c.UserID, c.HabitID, c.Date))
	s.habitCheckIndex[c.HabitID] = removeCheckIn(s.habitCheckIndex[c.HabitID], id)
	s.userCheckIndex[c.UserID] = removeCheckIn(s.userCheckIndex[c.UserID], id)
	signalSave(s.saveCheckInsChan)
	return nil
}

func (s *FileStorage) DeleteCheckInsByHabit(ctx context.Context, habitID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.habitCheckIndex[habitID] {
		delete(s.checkIns, c.ID)
		delete(s.checkInByDay, dayKey(c.UserID, c.HabitID, c.Date))
		s.userCheckIndex[c.UserID] = removeCheckIn(s.userCheckIndex[c.UserID], c.ID)
	}
	delete(s.habitCheckIndex, habitID)
	signalSave(s.saveCheckInsChan)
	return nil
}

func removeCheckIn(checkIns []*internal.CheckIn, id string) []*internal.CheckIn {
	for i, c := range checkIns {
		if c.ID == id {
			return append(checkIns[:i], checkIns[i+1:]...)
		}
	}
	return checkIns
}

// --- NotificationRepository ---

func (s *FileStorage) SaveNotification(ctx context.Context, n *internal.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[n.ID] = n
	s.userNotifIndex[n.UserID] = append([]*internal.Notification{n}, s.userNotifIndex[n.UserID]...)
	signalSave(s.saveNotifsChan)
	return nil
}

func (s *FileStorage) ListNotifications(ctx context.Context, userID string, read *bool, offset, limit int) ([]internal.Notification, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []*internal.Notification
	for _, n := range s.userNotifIndex[userID] {
		if read != nil && n.Read != *read {
			continue
		}
		matched = append(matched, n)
	}
	total := len(matched)
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	notifications := make([]internal.Notification, 0, end-offset)
	for _, n := range matched[offset:end] {
		notifications = append(notifications, *n)
	}
	return notifications, total, nil
}

func (s *FileStorage) MarkNotificationRead(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return ErrNotFound
	}
	n.Read = true
	signalSave(s.saveNotifsChan)
	return nil
}

func (s *FileStorage) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.userNotifIndex[userID] {
		n.Read = true
	}
	signalSave(s.saveNotifsChan)
	return nil
}

func (s *FileStorage) DeleteNotification(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.notifications, id)
	for i, existing := range s.userNotifIndex[n.UserID] {
		if existing.ID == id {
			s.userNotifIndex[n.UserID] = append(s.userNotifIndex[n.UserID][:i], s.userNotifIndex[n.UserID][i+1:]...)
			break
		}
	}
	signalSave(s.saveNotifsChan)
	return nil
}

func (s *FileStorage) UnreadCount(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, n := range s.userNotifIndex[userID] {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

// --- Compile-time assertions ---
var _ HabitRepository = (*FileStorage)(nil)
var _ CheckInRepository = (*FileStorage)(nil)
var _ NotificationRepository = (*FileStorage)(nil)
