package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/FACorreiaa/expense-tracker/internal/domain/expense/handler"
	"github.com/FACorreiaa/expense-tracker/internal/domain/expense/repository"
	"github.com/FACorreiaa/expense-tracker/internal/domain/expense/service"
	userhandler "github.com/FACorreiaa/expense-tracker/internal/domain/user/handler"
	userrepo "github.com/FACorreiaa/expense-tracker/internal/domain/user/repository"
	userservice "github.com/FACorreiaa/expense-tracker/internal/domain/user/service"

	"github.com/FACorreiaa/expense-tracker/pkg/config"
	"github.com/FACorreiaa/expense-tracker/pkg/db"
	"github.com/FACorreiaa/expense-tracker/pkg/metrics"
	"github.com/FACorreiaa/expense-tracker/pkg/middleware"
	"github.com/FACorreiaa/expense-tracker/pkg/session"
)

// bcrypt cost for new password hashes
const passwordCost = 12

// Dependencies holds all application dependencies
type Dependencies struct {
	Config  *config.Config
	DB      *db.DB
	SQLite  *db.SQLite
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// Repositories
	ExpenseRepo repository.ExpenseRepository
	Catalog     repository.CategoryCatalog
	UserRepo    userrepo.UserRepository

	// Services
	ExpenseService *service.Service
	UserService    *userservice.UserService
	Sessions       *session.Manager

	// Handlers
	ExpenseHandler *handler.ExpenseHandler
	UserHandler    *userhandler.UserHandler

	passwordCost int
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:       cfg,
		Logger:       logger,
		Metrics:      metrics.New(),
		passwordCost: passwordCost,
	}

	// Initialize database
	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	// Initialize repositories
	if err := deps.initRepositories(); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init repositories: %w", err)
	}

	// Initialize services
	if err := deps.initServices(); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	// Initialize handlers
	if err := deps.initHandlers(); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init handlers: %w", err)
	}

	logger.Info("all dependencies initialized successfully",
		slog.String("store_backend", cfg.Store.Backend))

	return deps, nil
}

// initDatabase initializes the database connection and runs migrations.
// The memory backend has no database.
func (d *Dependencies) initDatabase() error {
	switch d.Config.Store.Backend {
	case config.BackendMemory:
		d.Logger.Warn("using in-memory store, data is lost on shutdown")
		return nil
	case config.BackendSQLite:
		return d.initSQLite()
	}

	database, err := db.Connect(d.Config.Database, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	// Run migrations
	if err := d.DB.RunMigrations(); err != nil {
		d.DB.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

func (d *Dependencies) initSQLite() error {
	store, err := db.OpenSQLite(d.Config.Store.SQLitePath, d.Logger)
	if err != nil {
		return err
	}
	if err := store.RunMigrations(); err != nil {
		store.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	d.SQLite = store
	return nil
}

// initRepositories initializes all repository layer dependencies
func (d *Dependencies) initRepositories() error {
	switch d.Config.Store.Backend {
	case config.BackendMemory:
		d.ExpenseRepo = repository.NewMemoryExpenseRepository()
		d.Catalog = repository.NewStaticCategoryCatalog(repository.DefaultCategories...)
		d.UserRepo = userrepo.NewMemoryUserRepository()
	case config.BackendPostgres:
		d.ExpenseRepo = repository.NewPostgresExpenseRepository(d.DB.Pool)
		d.Catalog = repository.NewPostgresCategoryCatalog(d.DB.Pool)
		d.UserRepo = userrepo.NewPostgresUserRepository(d.DB.Pool)
	case config.BackendSQLite:
		d.ExpenseRepo = repository.NewSQLiteExpenseRepository(d.SQLite.DB)
		d.Catalog = repository.NewSQLiteCategoryCatalog(d.SQLite.DB)
		d.UserRepo = userrepo.NewSQLiteUserRepository(d.SQLite.DB)
	default:
		return fmt.Errorf("unknown store backend %q", d.Config.Store.Backend)
	}

	d.Logger.Info("repositories initialized")
	return nil
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() error {
	if len(d.Config.Session.Secret) == 0 {
		return fmt.Errorf("session secret is required")
	}

	d.ExpenseService = service.NewService(
		d.ExpenseRepo,
		d.Catalog,
		d.Logger,
		service.WithMetrics(d.Metrics),
		service.WithRecentLimit(d.Config.Dashboard.RecentLimit),
	)

	d.UserService = userservice.NewUserService(d.UserRepo, d.Logger, d.passwordCost)

	d.Sessions = session.NewManager(session.Options{
		Secret: d.Config.Session.Secret,
		Name:   d.Config.Session.Name,
		MaxAge: d.Config.Session.MaxAge,
		Secure: d.Config.Session.Secure,
	})

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() error {
	d.ExpenseHandler = handler.NewExpenseHandler(d.ExpenseService, d.Config.Dashboard.Currency, d.Logger)
	d.UserHandler = userhandler.NewUserHandler(d.UserService, d.Sessions, d.Logger)

	d.Logger.Info("handlers initialized")
	return nil
}

// Routes builds the API handler with the full middleware chain. Observe sits
// closest to the mux so it sees the matched route pattern.
func (d *Dependencies) Routes() http.Handler {
	mux := http.NewServeMux()
	auth := middleware.RequireUser(d.Sessions)

	// credential endpoints get a tighter bucket than the rest of the API
	credentials := middleware.NewRateLimiter(1, 5)

	d.ExpenseHandler.Register(mux, auth)
	d.UserHandler.Register(mux, auth, credentials.Middleware())
	mux.HandleFunc("GET /healthz", d.health)

	server := d.Config.Server
	return middleware.Chain(mux,
		middleware.Recover(d.Logger),
		middleware.RequestID(),
		middleware.CORS(server.AllowedOrigins),
		middleware.NewRateLimiter(server.RateLimitPerSecond, server.RateLimitBurst).Middleware(),
		middleware.Observe(d.Logger, d.Metrics),
	)
}

func (d *Dependencies) health(w http.ResponseWriter, r *http.Request) {
	var err error
	switch {
	case d.DB != nil:
		err = d.DB.Pool.Ping(r.Context())
	case d.SQLite != nil:
		err = d.SQLite.DB.PingContext(r.Context())
	}
	if err != nil {
		d.Logger.WarnContext(r.Context(), "health check failed", slog.Any("error", err))
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.DB != nil {
		d.DB.Close()
	}
	if d.SQLite != nil {
		d.SQLite.Close()
	}
	d.Logger.Info("cleanup completed")
}
