package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Ensure SQLiteUserRepository implements UserRepository
var _ UserRepository = (*SQLiteUserRepository)(nil)

// SQLiteUserRepository implements UserRepository on a SQLite file. The
// username and email columns are declared COLLATE NOCASE, so plain equality
// is case-insensitive.
type SQLiteUserRepository struct {
	db *sql.DB
}

// NewSQLiteUserRepository creates a new SQLite user repository
func NewSQLiteUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

// Create inserts a new account
func (r *SQLiteUserRepository) Create(ctx context.Context, username, email, passwordHash string) (*User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`

	u := &User{Username: username, Email: email, PasswordHash: passwordHash, CreatedAt: time.Now().UTC()}
	err := r.db.QueryRowContext(ctx, query, username, email, passwordHash, u.CreatedAt.UnixNano()).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

// GetByID retrieves an account by ID
func (r *SQLiteUserRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	return r.getOne(ctx, `WHERE id = ?`, id)
}

// GetByUsername retrieves an account by username, ignoring case
func (r *SQLiteUserRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.getOne(ctx, `WHERE username = ?`, username)
}

// GetByEmail retrieves an account by email, ignoring case
func (r *SQLiteUserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, `WHERE email = ?`, email)
}

func (r *SQLiteUserRepository) getOne(ctx context.Context, where string, arg any) (*User, error) {
	query := `SELECT id, username, email, password_hash, created_at FROM users ` + where

	u := &User{}
	var createdAt int64
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	u.CreatedAt = time.Unix(0, createdAt).UTC()
	return u, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
