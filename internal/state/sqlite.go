package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// ErrNotFound is returned when a translation ID is unknown.
var ErrNotFound = errors.New("translation not found")

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite state store instance.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// NewSQLiteStoreWithDB wraps an already open database. The schema is
// expected to be migrated.
func NewSQLiteStoreWithDB(db *sql.DB, logger *slog.Logger) *SQLiteStore {
	s := NewSQLiteStore(logger)
	s.db = db
	return s
}

// Open opens a connection to the SQLite database, creating its directory
// when needed. Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create state directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across queries.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// RecordTranslation stores t, assigning an ID and start time when unset.
func (s *SQLiteStore) RecordTranslation(ctx context.Context, t *Translation) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if t.ID == "" {
		t.ID = generateID()
	}
	if t.StartedAt.IsZero() {
		t.StartedAt = time.Now().UTC()
	}

	s.logger.Debug("recording translation", slog.String("id", t.ID), slog.String("status", string(t.Status)))

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO translations
			(id, input_path, output_path, status, statements, ctes, hoisted, error, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Input, t.Output, string(t.Status), t.Statements, t.CTEs, t.Hoisted,
		nullString(t.Error), t.StartedAt.UnixMilli(), t.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to record translation: %w", err)
	}
	return nil
}

const selectTranslation = `SELECT id, input_path, output_path, status, statements, ctes, hoisted, error, started_at, duration_ms
	FROM translations`

// ListTranslations returns the most recent translations, newest first.
// A limit of zero or less returns all of them.
func (s *SQLiteStore) ListTranslations(ctx context.Context, limit int) ([]*Translation, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, selectTranslation+` ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list translations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Translation
	for rows.Next() {
		t, err := scanTranslation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan translation: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list translations: %w", err)
	}
	return out, nil
}

// GetTranslation retrieves a translation by ID.
func (s *SQLiteStore) GetTranslation(ctx context.Context, id string) (*Translation, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	t, err := scanTranslation(s.db.QueryRowContext(ctx, selectTranslation+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get translation: %w", err)
	}
	return t, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTranslation(row scanner) (*Translation, error) {
	var (
		t          Translation
		status     string
		errMsg     sql.NullString
		startedAt  int64
		durationMS int64
	)
	if err := row.Scan(&t.ID, &t.Input, &t.Output, &status, &t.Statements, &t.CTEs, &t.Hoisted,
		&errMsg, &startedAt, &durationMS); err != nil {
		return nil, err
	}
	t.Status = Status(status)
	t.Error = errMsg.String
	t.StartedAt = time.UnixMilli(startedAt).UTC()
	t.Duration = time.Duration(durationMS) * time.Millisecond
	return &t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
