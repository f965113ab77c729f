package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/playground/userstats/internal/core/ports"
	"github.com/playground/userstats/internal/infrastructure/db/dbtest"
)

func openTestDB(t *testing.T) *RecordRepository {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRecordRepository(db)
}

func TestRecordRepository_Contract(t *testing.T) {
	dbtest.RunRecordRepositoryContract(t, func(t *testing.T) ports.RecordRepository {
		return openTestDB(t)
	})
}

func TestOpen_MigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")

	db, err := Open(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(context.Background(), path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(1) FROM schema_migrations`).Scan(&n))
	require.Equal(t, 1, n)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(context.Background(), "  ")
	require.Error(t, err)
}
