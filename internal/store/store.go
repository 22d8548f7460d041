// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/ashureev/lingo-tutor/internal/domain"
)

// ErrBusy wraps SQLite lock contention errors.
var ErrBusy = errors.New("database is busy")

// MistakeLog records and retrieves mistakes scoped by session identifier.
type MistakeLog interface {
	// RecordMistake inserts one mistake row. Nothing is retried on failure.
	RecordMistake(ctx context.Context, sessionID, incorrect, corrected, explanation, category string) error

	// FetchMistakes returns the session's mistakes in insertion order.
	FetchMistakes(ctx context.Context, sessionID string) ([]domain.Mistake, error)
}

// SessionStore persists UI session state between requests.
type SessionStore interface {
	// GetSession returns the current session for an owner, or nil if none exists.
	GetSession(ctx context.Context, owner string) (*domain.Session, error)

	// SaveSession creates or replaces the owner's current session.
	SaveSession(ctx context.Context, session *domain.Session) error

	// DeleteSession removes the owner's session state. Mistakes are kept.
	DeleteSession(ctx context.Context, owner string) error

	// CleanupExpiredSessions removes session state not updated within ttl.
	CleanupExpiredSessions(ctx context.Context, ttl time.Duration) (int64, error)
}

// Repository is the full persistence surface.
type Repository interface {
	MistakeLog
	SessionStore

	// EnsureSchema creates missing tables. Safe to call on every start.
	EnsureSchema(ctx context.Context) error

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database.
	Close() error
}
