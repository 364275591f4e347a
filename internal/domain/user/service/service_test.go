package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/expense-tracker/internal/domain/user/repository"
)

func newTestService() *UserService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewUserService(repository.NewMemoryUserRepository(), logger, bcrypt.MinCost)
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"too short", "short", true},
		{"minimum length", "12345678", false},
		{"long passphrase", "correct horse battery staple", false},
		{"over bcrypt limit", strings.Repeat("a", 73), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrWeakPassword)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("password123", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)
	assert.True(t, ComparePassword(hash, "password123"))
	assert.False(t, ComparePassword(hash, "password124"))
}

func TestUserService_Register(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterParams{Username: " alice ", Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "password123", u.PasswordHash)

	tests := []struct {
		name   string
		params RegisterParams
		want   error
	}{
		{"duplicate username", RegisterParams{Username: "Alice", Email: "a2@example.com", Password: "password123"}, repository.ErrUserAlreadyExists},
		{"duplicate email", RegisterParams{Username: "alice2", Email: "ALICE@example.com", Password: "password123"}, repository.ErrUserAlreadyExists},
		{"short username", RegisterParams{Username: "al", Email: "al@example.com", Password: "password123"}, ErrInvalidUsername},
		{"bad email", RegisterParams{Username: "carol", Email: "carol-at-example", Password: "password123"}, ErrInvalidEmail},
		{"display name email", RegisterParams{Username: "carol", Email: "Carol <carol@example.com>", Password: "password123"}, ErrInvalidEmail},
		{"weak password", RegisterParams{Username: "carol", Email: "carol@example.com", Password: "123"}, ErrWeakPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.params)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUserService_Authenticate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterParams{Username: "alice", Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	byName, err := svc.Authenticate(ctx, "ALICE", "password123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	byEmail, err := svc.Authenticate(ctx, "alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = svc.Authenticate(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	got, err := svc.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)
}
