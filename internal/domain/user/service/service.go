// Package service provides account registration and authentication.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/expense-tracker/internal/domain/user/repository"
)

var (
	// ErrInvalidCredentials is returned for an unknown login or a wrong password
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidUsername is returned for usernames that are too short, too long or contain "@"
	ErrInvalidUsername = errors.New("username must be 3 to 64 characters without @")
	// ErrInvalidEmail is returned for malformed email addresses
	ErrInvalidEmail = errors.New("email address is not valid")
)

// RegisterParams contains the required data for user registration.
type RegisterParams struct {
	Username string
	Email    string
	Password string
}

// UserService coordinates account business logic.
type UserService struct {
	repo       repository.UserRepository
	logger     *slog.Logger
	bcryptCost int
}

// NewUserService constructs a new UserService. A zero cost uses bcrypt.DefaultCost.
func NewUserService(repo repository.UserRepository, logger *slog.Logger, bcryptCost int) *UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{repo: repo, logger: logger, bcryptCost: bcryptCost}
}

// Register creates a new account after checking the username, email and
// password policy. Taken usernames or emails yield ErrUserAlreadyExists.
func (s *UserService) Register(ctx context.Context, params RegisterParams) (*repository.User, error) {
	username := strings.TrimSpace(params.Username)
	email := strings.TrimSpace(params.Email)

	if len(username) < 3 || len(username) > 64 || strings.Contains(username, "@") {
		return nil, ErrInvalidUsername
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, ErrInvalidEmail
	}
	if err := ValidatePassword(params.Password); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return nil, repository.ErrUserAlreadyExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, repository.ErrUserAlreadyExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	hash, err := HashPassword(params.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Create(ctx, username, email, hash)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered", slog.Int64("user_id", user.ID))
	return user, nil
}

// Authenticate checks credentials. login may be a username or an email.
func (s *UserService) Authenticate(ctx context.Context, login, password string) (*repository.User, error) {
	login = strings.TrimSpace(login)

	var (
		user *repository.User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = s.repo.GetByEmail(ctx, login)
	} else {
		user, err = s.repo.GetByUsername(ctx, login)
	}
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !ComparePassword(user.PasswordHash, password) {
		s.logger.DebugContext(ctx, "password mismatch", slog.Int64("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetByID retrieves an account by ID
func (s *UserService) GetByID(ctx context.Context, id int64) (*repository.User, error) {
	return s.repo.GetByID(ctx, id)
}
