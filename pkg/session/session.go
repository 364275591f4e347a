// Package session stores the authenticated user id in a signed cookie.
package session

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
)

const userIDKey = "user_id"

// ErrNoSession is returned when the request carries no authenticated session
var ErrNoSession = errors.New("no authenticated session")

// Options configures the session cookie
type Options struct {
	Secret string
	Name   string
	MaxAge int
	Secure bool
}

// Manager reads and writes the session cookie
type Manager struct {
	store *sessions.CookieStore
	name  string
}

// NewManager creates a cookie-backed session manager
func NewManager(opts Options) *Manager {
	store := sessions.NewCookieStore([]byte(opts.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   opts.MaxAge,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{store: store, name: opts.Name}
}

// Login records the user id in the session cookie
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, userID int64) error {
	s, err := m.store.Get(r, m.name)
	if err != nil && s == nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	s.Values[userIDKey] = userID
	if err := s.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// UserID returns the authenticated user id of the request
func (m *Manager) UserID(r *http.Request) (int64, error) {
	s, err := m.store.Get(r, m.name)
	if err != nil {
		return 0, ErrNoSession
	}
	id, ok := s.Values[userIDKey].(int64)
	if !ok || id <= 0 {
		return 0, ErrNoSession
	}
	return id, nil
}

// Logout expires the session cookie
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	s, err := m.store.Get(r, m.name)
	if err != nil && s == nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	delete(s.Values, userIDKey)
	s.Options.MaxAge = -1
	if err := s.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
