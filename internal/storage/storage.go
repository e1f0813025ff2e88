// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"
	"errors"

	"lookup_bot/internal/model"
)

// ErrNotFound is returned when a timer does not exist.
var ErrNotFound = errors.New("timer not found")

// Storage is the interface for all persistence operations. It is the sole
// authority for timer state; readers get snapshots, writers serialize
// through transactions.
type Storage interface {
	// AddTimer persists a timer, allocating the smallest unused per-owner
	// user timer ID. The timer's ID fields are populated.
	AddTimer(ctx context.Context, t *model.Timer) error
	// GetTimer returns one timer by owner and per-owner ID.
	GetTimer(ctx context.Context, ownerID, userTimerID int64) (*model.Timer, error)
	// RemoveTimer deletes one timer. Idempotent.
	RemoveTimer(ctx context.Context, ownerID, userTimerID int64) error
	// RemoveAllTimers deletes every timer of an owner. Idempotent.
	RemoveAllTimers(ctx context.Context, ownerID int64) error
	// ReplaceTimer rewrites the stored record keyed by (owner, user timer ID).
	ReplaceTimer(ctx context.Context, t *model.Timer) error
	// ListTimers returns an owner's timers in insertion order.
	ListTimers(ctx context.Context, ownerID int64) ([]model.Timer, error)
	// DueTimers returns all timers with fire_at <= now, earliest first.
	DueTimers(ctx context.Context, now int64) ([]model.Timer, error)

	Close() error
}
