package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ashureev/lingo-tutor/internal/domain"
	"github.com/ashureev/lingo-tutor/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

var _ Repository = (*SQLiteStore)(nil)

// NewSQLite opens the database file and ensures the schema exists.
func NewSQLite(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection, acquired and released per operation.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	s := &SQLiteStore{db: db}
	if err := s.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

// Connect acquires a scoped connection. Callers must Close it.
func (s *SQLiteStore) Connect(ctx context.Context) (*sql.Conn, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", classify(err))
	}
	return conn, nil
}

func (s *SQLiteStore) withConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := s.Connect(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			slog.Warn("failed to release database connection", "error", closeErr)
		}
	}()
	return fn(conn)
}

// EnsureSchema creates the mistakes and tutor_sessions tables if absent.
func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS mistakes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		incorrect_text TEXT,
		corrected_text TEXT,
		explanation TEXT,
		category TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_mistakes_session ON mistakes(session_id, id);

	CREATE TABLE IF NOT EXISTS tutor_sessions (
		owner TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		state_json TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tutor_sessions_updated ON tutor_sessions(updated_at);
	`
	return s.withConn(ctx, func(conn *sql.Conn) error {
		if _, err := conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("create schema: %w", classify(err))
		}
		return nil
	})
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// RecordMistake inserts one mistake row for the session.
func (s *SQLiteStore) RecordMistake(ctx context.Context, sessionID, incorrect, corrected, explanation, category string) error {
	query := `
	INSERT INTO mistakes (session_id, incorrect_text, corrected_text, explanation, category)
	VALUES (?, ?, ?, ?, ?)`

	return s.withConn(ctx, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, query,
			sessionID, incorrect, corrected, explanation, domain.NormalizeCategory(category),
		)
		if err != nil {
			return fmt.Errorf("insert mistake: %w", classify(err))
		}
		return nil
	})
}

// FetchMistakes returns the session's mistakes ordered by id.
func (s *SQLiteStore) FetchMistakes(ctx context.Context, sessionID string) ([]domain.Mistake, error) {
	query := `
		SELECT id, session_id, created_at, incorrect_text,
		       corrected_text, explanation, category
		FROM mistakes WHERE session_id = ? ORDER BY id`

	mistakes := []domain.Mistake{}
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query, sessionID)
		if err != nil {
			return fmt.Errorf("query mistakes: %w", classify(err))
		}
		defer func() {
			if closeErr := rows.Close(); closeErr != nil {
				slog.Warn("failed to close mistake rows", "error", closeErr)
			}
		}()

		for rows.Next() {
			var m domain.Mistake
			var createdAt int64
			var incorrect, corrected, explanation, category sql.NullString

			if err := rows.Scan(
				&m.ID, &m.SessionID, &createdAt, &incorrect,
				&corrected, &explanation, &category,
			); err != nil {
				return fmt.Errorf("scan mistake row: %w", err)
			}

			m.CreatedAt = time.Unix(createdAt, 0)
			m.IncorrectText = incorrect.String
			m.CorrectedText = corrected.String
			m.Explanation = explanation.String
			m.Category = domain.NormalizeCategory(category.String)
			mistakes = append(mistakes, m)
		}

		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate mistakes: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mistakes, nil
}

// GetSession retrieves the owner's current session state.
func (s *SQLiteStore) GetSession(ctx context.Context, owner string) (*domain.Session, error) {
	query := `SELECT state_json FROM tutor_sessions WHERE owner = ?`

	var session *domain.Session
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		var stateJSON string
		err := conn.QueryRowContext(ctx, query, owner).Scan(&stateJSON)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("scan session: %w", classify(err))
		}

		var decoded domain.Session
		if err := json.Unmarshal([]byte(stateJSON), &decoded); err != nil {
			return fmt.Errorf("decode session state: %w", err)
		}
		decoded.Owner = owner
		session = &decoded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// SaveSession creates or replaces the owner's session state.
func (s *SQLiteStore) SaveSession(ctx context.Context, session *domain.Session) error {
	if session == nil || session.Owner == "" {
		return fmt.Errorf("save session: owner is required")
	}

	stateJSON, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}

	query := `
		INSERT INTO tutor_sessions (owner, session_id, state_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(owner) DO UPDATE SET
			session_id = excluded.session_id,
			state_json = excluded.state_json,
			created_at = CASE WHEN tutor_sessions.session_id = excluded.session_id
				THEN tutor_sessions.created_at ELSE excluded.created_at END,
			updated_at = excluded.updated_at`

	return s.withConn(ctx, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, query,
			session.Owner, session.ID, string(stateJSON),
			session.CreatedAt.Unix(), time.Now().Unix(),
		)
		if err != nil {
			return fmt.Errorf("upsert session: %w", classify(err))
		}
		return nil
	})
}

// DeleteSession removes the owner's session state.
func (s *SQLiteStore) DeleteSession(ctx context.Context, owner string) error {
	return s.withConn(ctx, func(conn *sql.Conn) error {
		if _, err := conn.ExecContext(ctx, `DELETE FROM tutor_sessions WHERE owner = ?`, owner); err != nil {
			return fmt.Errorf("delete session: %w", classify(err))
		}
		return nil
	})
}

// CleanupExpiredSessions removes session state older than ttl.
func (s *SQLiteStore) CleanupExpiredSessions(ctx context.Context, ttl time.Duration) (int64, error) {
	threshold := time.Now().Add(-ttl).Unix()

	var removed int64
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		result, err := conn.ExecContext(ctx, `DELETE FROM tutor_sessions WHERE updated_at < ?`, threshold)
		if err != nil {
			return fmt.Errorf("cleanup expired sessions: %w", classify(err))
		}
		removed, err = result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}
		return nil
	})
	return removed, err
}

// classify tags lock contention with ErrBusy so callers can tell it apart.
func classify(err error) error {
	if shared.IsSQLiteConflictError(err) {
		return fmt.Errorf("%w: %w", ErrBusy, err)
	}
	return err
}
