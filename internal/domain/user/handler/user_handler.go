package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/FACorreiaa/expense-tracker/internal/domain/user/repository"
	"github.com/FACorreiaa/expense-tracker/internal/domain/user/service"
	"github.com/FACorreiaa/expense-tracker/pkg/httpjson"
	"github.com/FACorreiaa/expense-tracker/pkg/middleware"
	"github.com/FACorreiaa/expense-tracker/pkg/session"
)

// UserService is the subset of service.UserService used by the handler
type UserService interface {
	Register(ctx context.Context, params service.RegisterParams) (*repository.User, error)
	Authenticate(ctx context.Context, login, password string) (*repository.User, error)
	GetByID(ctx context.Context, id int64) (*repository.User, error)
}

// UserHandler serves account registration and the session endpoints.
type UserHandler struct {
	service  UserService
	sessions *session.Manager
	logger   *slog.Logger
}

// NewUserHandler constructs a new handler.
func NewUserHandler(svc UserService, sessions *session.Manager, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		service:  svc,
		sessions: sessions,
		logger:   logger,
	}
}

// Register mounts the routes. auth guards /api/me; throttle guards the
// credential endpoints and may be nil.
func (h *UserHandler) Register(mux *http.ServeMux, auth, throttle middleware.Middleware) {
	if throttle == nil {
		throttle = func(next http.Handler) http.Handler { return next }
	}
	mux.Handle("POST /api/register", throttle(http.HandlerFunc(h.register)))
	mux.Handle("POST /api/login", throttle(http.HandlerFunc(h.login)))
	mux.HandleFunc("POST /api/logout", h.logout)
	mux.Handle("GET /api/me", auth(http.HandlerFunc(h.me)))
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *repository.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

func (h *UserHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.Register(r.Context(), service.RegisterParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	switch {
	case errors.Is(err, service.ErrInvalidUsername):
		httpjson.FieldError(w, http.StatusBadRequest, "username", err.Error())
		return
	case errors.Is(err, service.ErrInvalidEmail):
		httpjson.FieldError(w, http.StatusBadRequest, "email", err.Error())
		return
	case errors.Is(err, service.ErrWeakPassword):
		httpjson.FieldError(w, http.StatusBadRequest, "password", err.Error())
		return
	case errors.Is(err, repository.ErrUserAlreadyExists):
		httpjson.Error(w, http.StatusConflict, "username or email already taken")
		return
	case err != nil:
		h.internal(w, r, "registration failed", err)
		return
	}

	if err := h.sessions.Login(w, r, user.ID); err != nil {
		h.internal(w, r, "failed to start session", err)
		return
	}
	httpjson.Write(w, http.StatusCreated, toUserResponse(user))
}

func (h *UserHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Login, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		httpjson.Error(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		h.internal(w, r, "login failed", err)
		return
	}

	if err := h.sessions.Login(w, r, user.ID); err != nil {
		h.internal(w, r, "failed to start session", err)
		return
	}
	httpjson.Write(w, http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(w, r); err != nil {
		h.internal(w, r, "failed to end session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) me(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	user, err := h.service.GetByID(r.Context(), userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		// account removed while the session was still valid
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if err != nil {
		h.internal(w, r, "failed to load user", err)
		return
	}
	httpjson.Write(w, http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) internal(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg, slog.Any("error", err))
	httpjson.Error(w, http.StatusInternalServerError, "internal error")
}
