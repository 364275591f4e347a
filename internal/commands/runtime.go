package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/expense-tracker/internal/domain/expense/repository"
	"github.com/FACorreiaa/expense-tracker/internal/domain/expense/service"
	userrepo "github.com/FACorreiaa/expense-tracker/internal/domain/user/repository"
	userservice "github.com/FACorreiaa/expense-tracker/internal/domain/user/service"
	"github.com/FACorreiaa/expense-tracker/pkg/config"
	"github.com/FACorreiaa/expense-tracker/pkg/db"
	"github.com/FACorreiaa/expense-tracker/pkg/logger"
)

// runtime is what a subcommand needs to talk to the store
type runtime struct {
	cfg     *config.Config
	logger  *slog.Logger
	db      *db.DB
	sqlite  *db.SQLite
	service *service.Service
	users   *userservice.UserService
}

// opener builds a runtime for one command invocation
type opener func(cmd *cobra.Command, opts *globalOptions) (*runtime, error)

// openRuntime reads the environment, applies the --backend override and
// connects to the configured store. The session settings the API server
// requires are not checked.
func openRuntime(cmd *cobra.Command, opts *globalOptions) (*runtime, error) {
	cfg := config.Read()
	if opts.backend != "" {
		cfg.Store.Backend = opts.backend
	}
	if err := cfg.Store.Validate(); err != nil {
		return nil, err
	}

	log := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Log.Level, "text")
	rt := &runtime{cfg: cfg, logger: log}

	var (
		repo    repository.ExpenseRepository
		catalog repository.CategoryCatalog
		users   userrepo.UserRepository
	)
	switch cfg.Store.Backend {
	case config.BackendMemory:
		repo = repository.NewMemoryExpenseRepository()
		catalog = repository.NewStaticCategoryCatalog(repository.DefaultCategories...)
		users = userrepo.NewMemoryUserRepository()
	case config.BackendSQLite:
		store, err := db.OpenSQLite(cfg.Store.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		// the file is usable without a separate migrate step
		if err := store.RunMigrations(); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		rt.sqlite = store
		repo = repository.NewSQLiteExpenseRepository(store.DB)
		catalog = repository.NewSQLiteCategoryCatalog(store.DB)
		users = userrepo.NewSQLiteUserRepository(store.DB)
	default:
		database, err := db.Connect(cfg.Database, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		rt.db = database
		repo = repository.NewPostgresExpenseRepository(database.Pool)
		catalog = repository.NewPostgresCategoryCatalog(database.Pool)
		users = userrepo.NewPostgresUserRepository(database.Pool)
	}

	rt.service = service.NewService(repo, catalog, log, service.WithRecentLimit(cfg.Dashboard.RecentLimit))
	rt.users = userservice.NewUserService(users, log, 0)
	return rt, nil
}

// Close releases the database handles, if any
func (rt *runtime) Close() {
	if rt.db != nil {
		rt.db.Close()
	}
	if rt.sqlite != nil {
		rt.sqlite.Close()
	}
}
