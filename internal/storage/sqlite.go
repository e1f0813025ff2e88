package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"lookup_bot/internal/model"
	"lookup_bot/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// AddTimer inserts a timer, allocating the smallest unused per-owner user
// timer ID inside a transaction. Freed IDs are reused.
func (s *SQLite) AddTimer(ctx context.Context, t *model.Timer) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx,
		`SELECT user_timer_id FROM timers WHERE user_id = ? ORDER BY user_timer_id`, t.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("query timer ids: %w", err)
	}
	var used []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan timer id: %w", err)
		}
		used = append(used, id)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return fmt.Errorf("iterate timer ids: %w", err)
	}
	_ = rows.Close()

	next := int64(1)
	for _, id := range used {
		if id != next {
			break
		}
		next++
	}
	t.UserTimerID = next

	now := time.Now().UTC().Format(timeLayout)
	res, err := tx.ExecContext(ctx,
		`INSERT INTO timers (user_timer_id, user_id, chat_id, text, fire_at, fire_at_human, repeat_seconds, jump_link, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserTimerID, t.OwnerID, t.ChatID, t.Text, t.FireAt, t.FireAtHuman,
		nullableRepeat(t.RepeatSec), t.JumpLink, now,
	)
	if err != nil {
		return fmt.Errorf("insert timer: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	t.ID = id
	t.CreatedAt, _ = time.Parse(timeLayout, now)

	return tx.Commit()
}

// GetTimer returns one timer by owner and per-owner ID.
func (s *SQLite) GetTimer(ctx context.Context, ownerID, userTimerID int64) (*model.Timer, error) {
	row := s.db.QueryRowContext(ctx,
		selectTimers+` WHERE user_id = ? AND user_timer_id = ?`, ownerID, userTimerID,
	)
	t, err := scanTimer(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// RemoveTimer deletes one timer. Removing an absent timer is a no-op.
func (s *SQLite) RemoveTimer(ctx context.Context, ownerID, userTimerID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM timers WHERE user_id = ? AND user_timer_id = ?`, ownerID, userTimerID,
	)
	if err != nil {
		return fmt.Errorf("delete timer: %w", err)
	}
	return nil
}

// RemoveAllTimers deletes every timer of an owner.
func (s *SQLite) RemoveAllTimers(ctx context.Context, ownerID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM timers WHERE user_id = ?`, ownerID)
	if err != nil {
		return fmt.Errorf("delete timers: %w", err)
	}
	return nil
}

// ReplaceTimer rewrites the record keyed by (owner, user timer ID).
func (s *SQLite) ReplaceTimer(ctx context.Context, t *model.Timer) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE timers SET chat_id = ?, text = ?, fire_at = ?, fire_at_human = ?, repeat_seconds = ?, jump_link = ?
		 WHERE user_id = ? AND user_timer_id = ?`,
		t.ChatID, t.Text, t.FireAt, t.FireAtHuman, nullableRepeat(t.RepeatSec), t.JumpLink,
		t.OwnerID, t.UserTimerID,
	)
	if err != nil {
		return fmt.Errorf("update timer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTimers returns an owner's timers in insertion order.
func (s *SQLite) ListTimers(ctx context.Context, ownerID int64) ([]model.Timer, error) {
	rows, err := s.db.QueryContext(ctx,
		selectTimers+` WHERE user_id = ? ORDER BY id`, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query timers: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanTimers(rows)
}

// DueTimers returns all timers with fire_at <= now, earliest first.
func (s *SQLite) DueTimers(ctx context.Context, now int64) ([]model.Timer, error) {
	rows, err := s.db.QueryContext(ctx,
		selectTimers+` WHERE fire_at <= ? ORDER BY fire_at, id`, now,
	)
	if err != nil {
		return nil, fmt.Errorf("query due timers: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanTimers(rows)
}

const selectTimers = `SELECT id, user_timer_id, user_id, chat_id, text, fire_at, fire_at_human, repeat_seconds, jump_link, created_at FROM timers`

func nullableRepeat(sec int64) any {
	if sec == 0 {
		return nil
	}
	return sec
}

type scannable interface {
	Scan(dest ...any) error
}

func scanTimer(row scannable) (*model.Timer, error) {
	var t model.Timer
	var repeat sql.NullInt64
	var created sql.NullString
	err := row.Scan(&t.ID, &t.UserTimerID, &t.OwnerID, &t.ChatID, &t.Text,
		&t.FireAt, &t.FireAtHuman, &repeat, &t.JumpLink, &created)
	if err != nil {
		return nil, err
	}
	if repeat.Valid {
		t.RepeatSec = repeat.Int64
	}
	if created.Valid {
		t.CreatedAt, _ = time.Parse(timeLayout, created.String)
	}
	return &t, nil
}

func scanTimers(rows *sql.Rows) ([]model.Timer, error) {
	var timers []model.Timer
	for rows.Next() {
		t, err := scanTimer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan timer: %w", err)
		}
		timers = append(timers, *t)
	}
	return timers, rows.Err()
}
