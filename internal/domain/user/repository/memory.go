package repository

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Ensure MemoryUserRepository implements UserRepository
var _ UserRepository = (*MemoryUserRepository)(nil)

// MemoryUserRepository keeps accounts in process memory
type MemoryUserRepository struct {
	mu     sync.RWMutex
	users  map[int64]User
	nextID int64
}

// NewMemoryUserRepository creates an empty in-memory store
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[int64]User)}
}

// Create inserts a new account, rejecting a taken username or email
func (m *MemoryUserRepository) Create(ctx context.Context, username, email, passwordHash string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Username, username) || strings.EqualFold(u.Email, email) {
			return nil, ErrUserAlreadyExists
		}
	}

	m.nextID++
	u := User{
		ID:           m.nextID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	m.users[u.ID] = u
	return &u, nil
}

// GetByID retrieves an account by ID
func (m *MemoryUserRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

// GetByUsername retrieves an account by username, ignoring case
func (m *MemoryUserRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return m.find(func(u User) bool { return strings.EqualFold(u.Username, username) })
}

// GetByEmail retrieves an account by email, ignoring case
func (m *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return m.find(func(u User) bool { return strings.EqualFold(u.Email, email) })
}

func (m *MemoryUserRepository) find(match func(User) bool) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}
