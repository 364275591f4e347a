package repository

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/expense-tracker/pkg/db"
)

func newSQLiteRepo(t *testing.T) *SQLiteUserRepository {
	t.Helper()
	store, err := db.OpenSQLite(filepath.Join(t.TempDir(), "users.db"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(store.Close)
	require.NoError(t, store.RunMigrations())
	return NewSQLiteUserRepository(store.DB)
}

func TestSQLiteUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)

	u, err := repo.Create(ctx, "alice", "alice@example.com", "hash")
	require.NoError(t, err)
	assert.Positive(t, u.ID)

	_, err = repo.Create(ctx, "ALICE", "other@example.com", "hash")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
	_, err = repo.Create(ctx, "bob", "Alice@Example.com", "hash")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	got, err := repo.GetByUsername(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.Equal(t, u.CreatedAt.UnixNano(), got.CreatedAt.UnixNano())

	got, err = repo.GetByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)

	_, err = repo.GetByID(ctx, u.ID+100)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
