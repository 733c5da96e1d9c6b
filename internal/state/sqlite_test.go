package state

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/transql/internal/testutil"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "state", "history.db"), testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_OpenMigrates(t *testing.T) {
	store := setupTestStore(t)

	version, err := store.GetMigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	// Migrating twice is a no-op.
	require.NoError(t, store.Migrate())
}

func TestSQLiteStore_InMemory(t *testing.T) {
	store := NewSQLiteStore(nil)
	require.NoError(t, store.Open(":memory:"))
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Migrate())
	require.NoError(t, store.RecordTranslation(context.Background(), &Translation{
		Input: "a.sql", Output: "b.sql", Status: StatusSuccess,
	}))

	list, err := store.ListTranslations(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSQLiteStore_RecordAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	started := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)

	rec := &Translation{
		Input:      "in/report.sql",
		Output:     "out/report.sql",
		Status:     StatusSuccess,
		Statements: 2,
		CTEs:       5,
		Hoisted:    1,
		StartedAt:  started,
		Duration:   42 * time.Millisecond,
	}
	require.NoError(t, store.RecordTranslation(ctx, rec))
	require.NotEmpty(t, rec.ID, "ID should be assigned")

	got, err := store.GetTranslation(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestSQLiteStore_FailedRunKeepsError(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	rec := &Translation{
		Input:  "broken.sql",
		Output: "broken.out.sql",
		Status: StatusFailed,
		Error:  "error translating SQL: sort: cycle detected: a -> b -> a",
	}
	require.NoError(t, store.RecordTranslation(ctx, rec))
	assert.False(t, rec.StartedAt.IsZero(), "start time should default to now")

	got, err := store.GetTranslation(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, rec.Error, got.Error)
}

func TestSQLiteStore_ListTranslations(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"first.sql", "second.sql", "third.sql"} {
		require.NoError(t, store.RecordTranslation(ctx, &Translation{
			Input:     name,
			Output:    name + ".out",
			Status:    StatusSuccess,
			StartedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	tests := []struct {
		name     string
		limit    int
		expected []string
	}{
		{"all", 0, []string{"third.sql", "second.sql", "first.sql"}},
		{"limited", 2, []string{"third.sql", "second.sql"}},
		{"limit above count", 10, []string{"third.sql", "second.sql", "first.sql"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := store.ListTranslations(ctx, tt.limit)
			require.NoError(t, err)

			inputs := make([]string, len(list))
			for i, rec := range list {
				inputs[i] = rec.Input
			}
			assert.Equal(t, tt.expected, inputs)
		})
	}
}

func TestSQLiteStore_GetUnknown(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetTranslation(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore(nil)
	ctx := context.Background()

	assert.Error(t, store.RecordTranslation(ctx, &Translation{}))
	_, err := store.ListTranslations(ctx, 1)
	assert.Error(t, err)
	_, err = store.GetTranslation(ctx, "x")
	assert.Error(t, err)
	assert.Error(t, store.Migrate())
	assert.NoError(t, store.Close())
}

func newMockStore(t *testing.T) (*SQLiteStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteStoreWithDB(db, testutil.NewTestLogger(t)), mock
}

func TestSQLiteStore_RecordError(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO translations").WillReturnError(errors.New("disk I/O error"))

	err := store.RecordTranslation(context.Background(), &Translation{Input: "a.sql", Status: StatusSuccess})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to record translation")
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_ListErrors(t *testing.T) {
	columns := []string{"id", "input_path", "output_path", "status", "statements", "ctes", "hoisted", "error", "started_at", "duration_ms"}

	t.Run("query fails", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery("SELECT id, input_path").WillReturnError(errors.New("database is locked"))

		_, err := store.ListTranslations(context.Background(), 5)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database is locked")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("bad row", func(t *testing.T) {
		store, mock := newMockStore(t)
		rows := sqlmock.NewRows(columns).
			AddRow("id-1", "a.sql", "b.sql", "success", "not-a-number", 0, 0, nil, int64(0), int64(0))
		mock.ExpectQuery("SELECT id, input_path").WithArgs(5).WillReturnRows(rows)

		_, err := store.ListTranslations(context.Background(), 5)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to scan translation")
	})

	t.Run("row conversion", func(t *testing.T) {
		store, mock := newMockStore(t)
		started := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
		rows := sqlmock.NewRows(columns).
			AddRow("id-1", "a.sql", "b.sql", "failed", 1, 2, 3, "boom", started.UnixMilli(), int64(1500))
		mock.ExpectQuery("SELECT id, input_path").WithArgs(-1).WillReturnRows(rows)

		list, err := store.ListTranslations(context.Background(), 0)
		require.NoError(t, err)
		require.Len(t, list, 1)

		assert.Equal(t, &Translation{
			ID:         "id-1",
			Input:      "a.sql",
			Output:     "b.sql",
			Status:     StatusFailed,
			Statements: 1,
			CTEs:       2,
			Hoisted:    3,
			Error:      "boom",
			StartedAt:  started,
			Duration:   1500 * time.Millisecond,
		}, list[0])
	})
}
