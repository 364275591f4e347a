package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	u, err := repo.Create(ctx, "alice", "alice@example.com", "hash")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)

	_, err = repo.Create(ctx, "ALICE", "other@example.com", "hash")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
	_, err = repo.Create(ctx, "bob", "Alice@Example.com", "hash")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	got, err := repo.GetByUsername(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = repo.GetByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = repo.GetByID(ctx, 42)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestPostgresUserRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresUserRepository(mock)
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("alice", "alice@example.com", "hash").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(5), created))
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("alice", "alice@example.com", "hash").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	u, err := repo.Create(context.Background(), "alice", "alice@example.com", "hash")
	require.NoError(t, err)
	assert.Equal(t, int64(5), u.ID)
	assert.Equal(t, created, u.CreatedAt)

	_, err = repo.Create(context.Background(), "alice", "alice@example.com", "hash")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_Lookups(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresUserRepository(mock)
	columns := []string{"id", "username", "email", "password_hash", "created_at"}
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`WHERE LOWER\(email\) = LOWER\(\$1\)`).
		WithArgs("Alice@Example.com").
		WillReturnRows(pgxmock.NewRows(columns).AddRow(int64(5), "alice", "alice@example.com", "hash", created))
	mock.ExpectQuery(`WHERE id = \$1`).
		WithArgs(int64(9)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`WHERE LOWER\(username\) = LOWER\(\$1\)`).
		WithArgs("bob").
		WillReturnError(errors.New("connection reset"))

	u, err := repo.GetByEmail(context.Background(), "Alice@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = repo.GetByID(context.Background(), 9)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = repo.GetByUsername(context.Background(), "bob")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserNotFound)
	assert.Contains(t, err.Error(), "failed to get user")

	assert.NoError(t, mock.ExpectationsWereMet())
}
