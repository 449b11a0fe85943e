package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Khaldybek/habit-tracker/internal"
)

type PostgresStorage struct {
	pool   *pgxpool.Pool
	logger internal.Logger
}

func NewPostgresStorage(dsn string, logger internal.Logger) (*PostgresStorage, error) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	return &PostgresStorage{pool: pool, logger: logger}, nil
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// --- HabitRepository ---

const habitColumns = `id, user_id, title, description, icon, color, category, frequency, target,
	reminder_enabled, reminder_time, start_date, end_date, archived, priority, tags,
	total_check_ins, completed_check_ins, completion_rate, current_streak, longest_streak,
	created_at, updated_at`

func scanHabit(row pgx.Row) (*internal.Habit, error) {
	var h internal.Habit
	err := row.Scan(&h.ID, &h.UserID, &h.Title, &h.Description, &h.Icon, &h.Color, &h.Category,
		&h.Frequency, &h.Target, &h.ReminderEnabled, &h.ReminderTime, &h.StartDate, &h.EndDate,
		&h.Archived, &h.Priority, &h.Tags,
		&h.Stats.TotalCheckIns, &h.Stats.CompletedCheckIns, &h.Stats.CompletionRate,
		&h.Stats.CurrentStreak, &h.Stats.LongestStreak,
		&h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (p *PostgresStorage) SaveHabit(ctx context.Context, h *internal.Habit) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO habits (`+habitColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)`,
		h.ID, h.UserID, h.Title, h.Description, h.Icon, h.Color, h.Category, h.Frequency, h.Target,
		h.ReminderEnabled, h.ReminderTime, h.StartDate, h.EndDate, h.Archived, h.Priority, h.Tags,
		h.Stats.TotalCheckIns, h.Stats.CompletedCheckIns, h.Stats.CompletionRate,
		h.Stats.CurrentStreak, h.Stats.LongestStreak, h.CreatedAt, h.UpdatedAt)
	if err != nil {
		p.logger.Errorf("failed to insert habit: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) UpdateHabit(ctx context.Context, h *internal.Habit) error {
	tag, err := p.pool.Exec(ctx, `UPDATE habits SET title=$2, description=$3, icon=$4, color=$5,
		category=$6, frequency=$7, target=$8, reminder_enabled=$9, reminder_time=$10,
		start_date=$11, end_date=$12, archived=$13, priority=$14, tags=$15, updated_at=$16
		WHERE id=$1`,
		h.ID, h.Title, h.Description, h.Icon, h.Color, h.Category, h.Frequency, h.Target,
		h.ReminderEnabled, h.ReminderTime, h.StartDate, h.EndDate, h.Archived, h.Priority, h.Tags,
		h.UpdatedAt)
	if err != nil {
		p.logger.Errorf("failed to update habit: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStorage) GetHabit(ctx context.Context, id string) (*internal.Habit, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+habitColumns+` FROM habits WHERE id=$1`, id)
	h, err := scanHabit(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		p.logger.Errorf("failed to query habit: %v", err)
		return nil, err
	}
	return h, nil
}

func (p *PostgresStorage) listHabits(ctx context.Context, query string, args ...interface{}) ([]internal.Habit, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		p.logger.Errorf("failed to query habits: %v", err)
		return nil, err
	}
	defer rows.Close()

	var habits []internal.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			p.logger.Errorf("failed to scan habit: %v", err)
			return nil, err
		}
		habits = append(habits, *h)
	}
	return habits, rows.Err()
}

func (p *PostgresStorage) ListHabits(ctx context.Context, userID string) ([]internal.Habit, error) {
	return p.listHabits(ctx, `SELECT `+habitColumns+` FROM habits WHERE user_id=$1 ORDER BY created_at DESC`, userID)
}

func (p *PostgresStorage) ListReminderHabits(ctx context.Context) ([]internal.Habit, error) {
	return p.listHabits(ctx, `SELECT `+habitColumns+` FROM habits WHERE reminder_enabled AND NOT archived`)
}

func (p *PostgresStorage) UpdateHabitStats(ctx context.Context, id string, stats internal.HabitStats) error {
	tag, err := p.pool.Exec(ctx, `UPDATE habits SET total_check_ins=$2, completed_check_ins=$3,
		completion_rate=$4, current_streak=$5, longest_streak=$6, updated_at=now() WHERE id=$1`,
		id, stats.TotalCheckIns, stats.CompletedCheckIns, stats.CompletionRate,
		stats.CurrentStreak, stats.LongestStreak)
	if err != nil {
		p.logger.Errorf("failed to update habit stats: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStorage) DeleteHabit(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM habits WHERE id=$1`, id)
	if err != nil {
		p.logger.Errorf("failed to delete habit: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- CheckInRepository ---

const checkInColumns = `id, habit_id, user_id, date, status, note, mood, duration, location, created_at, updated_at`

func scanCheckIn(row pgx.Row) (*internal.CheckIn, error) {
	var c internal.CheckIn
	err := row.Scan(&c.ID, &c.HabitID, &c.UserID, &c.Date, &c.Status, &c.Note, &c.Mood,
		&c.Duration, &c.Location, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (p *PostgresStorage) SaveCheckIn(ctx context.Context, c *internal.CheckIn) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO check_ins (`+checkInColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		c.ID, c.HabitID, c.UserID, c.Date, float64(c.Status), c.Note, c.Mood, c.Duration,
		c.Location, c.CreatedAt, c.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateCheckIn
	}
	if err != nil {
		p.logger.Errorf("failed to insert check-in: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) UpdateCheckIn(ctx context.Context, c *internal.CheckIn) error {
	tag, err := p.pool.Exec(ctx, `UPDATE check_ins SET date=$2, status=$3, note=$4, mood=$5,
		duration=$6, location=$7, updated_at=$8 WHERE id=$1`,
		c.ID, c.Date, float64(c.Status), c.Note, c.Mood, c.Duration, c.Location, c.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateCheckIn
	}
	if err != nil {
		p.logger.Errorf("failed to update check-in: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStorage) GetCheckIn(ctx context.Context, id string) (*internal.CheckIn, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+checkInColumns+` FROM check_ins WHERE id=$1`, id)
	c, err := scanCheckIn(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		p.logger.Errorf("failed to query check-in: %v", err)
		return nil, err
	}
	return c, nil
}

func (p *PostgresStorage) listCheckIns(ctx context.Context, query string, args ...interface{}) ([]internal.CheckIn, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		p.logger.Errorf("failed to query check-ins: %v", err)
		return nil, err
	}
	defer rows.Close()

	var checkIns []internal.CheckIn
	for rows.Next() {
		c, err := scanCheckIn(rows)
		if err != nil {
			p.logger.Errorf("failed to scan check-in: %v", err)
			return nil, err
		}
		checkIns = append(checkIns, *c)
	}
	return checkIns, rows.Err()
}

func (p *PostgresStorage) ListCheckInsByHabit(ctx context.Context, habitID string) ([]internal.CheckIn, error) {
	return p.listCheckIns(ctx, `SELECT `+checkInColumns+` FROM check_ins WHERE habit_id=$1 ORDER BY date DESC`, habitID)
}

func (p *PostgresStorage) ListCheckInsByUser(ctx context.Context, userID string) ([]internal.CheckIn, error) {
	return p.listCheckIns(ctx, `SELECT `+checkInColumns+` FROM check_ins WHERE user_id=$1 ORDER BY date DESC`, userID)
}

func (p *PostgresStorage) DeleteCheckIn(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM check_ins WHERE id=$1`, id)
	if err != nil {
		p.logger.Errorf("failed to delete check-in: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStorage) DeleteCheckInsByHabit(ctx context.Context, habitID string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM check_ins WHERE habit_id=$1`, habitID)
	if err != nil {
		p.logger.Errorf("failed to delete check-ins for habit: %v", err)
	}
	return err
}

// --- NotificationRepository ---

func (p *PostgresStorage) SaveNotification(ctx context.Context, n *internal.Notification) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO notifications (id, user_id, type, title, message, data, read, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		n.ID, n.UserID, n.Type, n.Title, n.Message, n.Data, n.Read, n.CreatedAt)
	if err != nil {
		p.logger.Errorf("failed to insert notification: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) ListNotifications(ctx context.Context, userID string, read *bool, offset, limit int) ([]internal.Notification, int, error) {
	where := `WHERE user_id=$1`
	args := []interface{}{userID}
	if read != nil {
		where += ` AND read=$2`
		args = append(args, *read)
	}

	var total int
	if err := p.pool.QueryRow(ctx, `SELECT count(*) FROM notifications `+where, args...).Scan(&total); err != nil {
		p.logger.Errorf("failed to count notifications: %v", err)
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 10
	}
	query := fmt.Sprintf(`SELECT id, user_id, type, title, message, data, read, created_at FROM notifications %s ORDER BY created_at DESC OFFSET $%d LIMIT $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, offset, limit)

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		p.logger.Errorf("failed to query notifications: %v", err)
		return nil, 0, err
	}
	defer rows.Close()

	var notifications []internal.Notification
	for rows.Next() {
		var n internal.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Data, &n.Read, &n.CreatedAt); err != nil {
			p.logger.Errorf("failed to scan notification: %v", err)
			return nil, 0, err
		}
		notifications = append(notifications, n)
	}
	return notifications, total, rows.Err()
}

func (p *PostgresStorage) MarkNotificationRead(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `UPDATE notifications SET read=true WHERE id=$1`, id)
	if err != nil {
		p.logger.Errorf("failed to mark notification read: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStorage) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	_, err := p.pool.Exec(ctx, `UPDATE notifications SET read=true WHERE user_id=$1 AND NOT read`, userID)
	if err != nil {
		p.logger.Errorf("failed to mark notifications read: %v", err)
	}
	return err
}

func (p *PostgresStorage) DeleteNotification(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM notifications WHERE id=$1`, id)
	if err != nil {
		p.logger.Errorf("failed to delete notification: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStorage) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := p.pool.QueryRow(ctx, `SELECT count(*) FROM notifications WHERE user_id=$1 AND NOT read`, userID).Scan(&count)
	if err != nil {
		p.logger.Errorf("failed to count unread notifications: %v", err)
		return 0, err
	}
	return count, nil
}

// --- Compile-time assertions ---
var _ HabitRepository = (*PostgresStorage)(nil)
var _ CheckInRepository = (*PostgresStorage)(nil)
var _ NotificationRepository = (*PostgresStorage)(nil)
