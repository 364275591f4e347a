// Package service provides the expense operations exposed to handlers and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/expense-tracker/internal/domain/expense/repository"
	"github.com/FACorreiaa/expense-tracker/pkg/metrics"
)

// DefaultRecentLimit is the number of recent expenses shown on the dashboard
const DefaultRecentLimit = 5

const tracerName = "github.com/FACorreiaa/expense-tracker/internal/domain/expense/service"

// Service validates input and delegates to the expense repository. It keeps
// no state between calls; every read goes to the store.
type Service struct {
	repo        repository.ExpenseRepository
	catalog     repository.CategoryCatalog
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	recentLimit int
}

// Option configures a Service
type Option func(*Service)

// WithMetrics records operation counts and latencies
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithRecentLimit sets how many recent expenses Dashboard returns
func WithRecentLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.recentLimit = n
		}
	}
}

// NewService creates a new expense service
func NewService(repo repository.ExpenseRepository, catalog repository.CategoryCatalog, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		repo:        repo,
		catalog:     catalog,
		logger:      logger,
		tracer:      otel.Tracer(tracerName),
		recentLimit: DefaultRecentLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add validates a draft and stores it for the owner
func (s *Service) Add(ctx context.Context, ownerID int64, draft Draft) (expense *repository.Expense, err error) {
	ctx, op := s.start(ctx, "add", ownerID)
	defer func() { op.end(err) }()

	fields, err := s.prepare(ctx, draft)
	if err != nil {
		return nil, err
	}

	expense, err = s.repo.Create(ctx, ownerID, fields)
	if err != nil {
		return nil, unavailable(err)
	}

	s.logger.InfoContext(ctx, "expense added",
		slog.Int64("owner_id", ownerID),
		slog.Int64("expense_id", expense.ID),
		slog.String("category", expense.Category),
	)
	return expense, nil
}

// Update replaces the editable fields of an owned expense. It returns false
// when the expense does not exist or belongs to someone else.
func (s *Service) Update(ctx context.Context, id, ownerID int64, draft Draft) (updated bool, err error) {
	ctx, op := s.start(ctx, "update", ownerID)
	defer func() { op.end(err) }()

	fields, err := s.prepare(ctx, draft)
	if err != nil {
		return false, err
	}

	updated, err = s.repo.Update(ctx, id, ownerID, fields)
	if err != nil {
		return false, unavailable(err)
	}
	if !updated {
		op.notFound()
	}
	return updated, nil
}

// Delete removes an owned expense. It returns false when nothing matched.
func (s *Service) Delete(ctx context.Context, id, ownerID int64) (deleted bool, err error) {
	ctx, op := s.start(ctx, "delete", ownerID)
	defer func() { op.end(err) }()

	deleted, err = s.repo.Delete(ctx, id, ownerID)
	if err != nil {
		return false, unavailable(err)
	}
	if !deleted {
		op.notFound()
	}
	return deleted, nil
}

// FindByID returns an owned expense, or nil when absent
func (s *Service) FindByID(ctx context.Context, id, ownerID int64) (expense *repository.Expense, err error) {
	ctx, op := s.start(ctx, "find", ownerID)
	defer func() { op.end(err) }()

	expense, err = s.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, unavailable(err)
	}
	if expense == nil {
		op.notFound()
	}
	return expense, nil
}

// Categories lists the catalog in alphabetical order
func (s *Service) Categories(ctx context.Context) (names []string, err error) {
	ctx, op := s.start(ctx, "categories", 0)
	defer func() { op.end(err) }()

	names, err = s.catalog.ListAll(ctx)
	if err != nil {
		return nil, unavailable(err)
	}
	return names, nil
}

// List returns the owner's expenses matching params, newest first
func (s *Service) List(ctx context.Context, ownerID int64, params ListParams) (expenses []repository.Expense, err error) {
	ctx, op := s.start(ctx, "list", ownerID)
	defer func() { op.end(err) }()

	filter := repository.NewFilter(ownerID, params.From, params.To, params.Category)
	op.span.SetAttributes(attribute.Bool("filter.category", filter.HasCategory()))

	expenses, err = s.repo.List(ctx, filter)
	if err != nil {
		return nil, unavailable(err)
	}
	return expenses, nil
}

// Recent returns the owner's latest limit expenses
func (s *Service) Recent(ctx context.Context, ownerID int64, limit int) (expenses []repository.Expense, err error) {
	ctx, op := s.start(ctx, "recent", ownerID)
	defer func() { op.end(err) }()

	if limit <= 0 {
		return nil, invalid("limit", "limit must be a positive integer", ErrInvalidLimit)
	}

	expenses, err = s.repo.Recent(ctx, ownerID, limit)
	if err != nil {
		return nil, unavailable(err)
	}
	return expenses, nil
}

// Total sums all of the owner's expenses
func (s *Service) Total(ctx context.Context, ownerID int64) (total decimal.Decimal, err error) {
	ctx, op := s.start(ctx, "total", ownerID)
	defer func() { op.end(err) }()

	total, err = s.repo.Total(ctx, ownerID)
	if err != nil {
		return decimal.Zero, unavailable(err)
	}
	return total, nil
}

// CategoryBreakdown sums the owner's expenses per category
func (s *Service) CategoryBreakdown(ctx context.Context, ownerID int64) (breakdown []repository.CategoryTotal, err error) {
	ctx, op := s.start(ctx, "category_breakdown", ownerID)
	defer func() { op.end(err) }()

	breakdown, err = s.repo.CategoryBreakdown(ctx, ownerID)
	if err != nil {
		return nil, unavailable(err)
	}
	return breakdown, nil
}

// MonthlySummary sums the owner's expenses per month
func (s *Service) MonthlySummary(ctx context.Context, ownerID int64) (months []repository.MonthTotal, err error) {
	ctx, op := s.start(ctx, "monthly_summary", ownerID)
	defer func() { op.end(err) }()

	months, err = s.repo.MonthlySummary(ctx, ownerID)
	if err != nil {
		return nil, unavailable(err)
	}
	return months, nil
}

// Dashboard returns every aggregate view plus the latest expenses, all read
// from the same snapshot.
func (s *Service) Dashboard(ctx context.Context, ownerID int64) (dashboard *repository.Dashboard, err error) {
	ctx, op := s.start(ctx, "dashboard", ownerID)
	defer func() { op.end(err) }()

	dashboard, err = s.repo.Dashboard(ctx, ownerID, s.recentLimit)
	if err != nil {
		return nil, unavailable(err)
	}
	return dashboard, nil
}

// prepare runs field validation, then resolves the category against the catalog
func (s *Service) prepare(ctx context.Context, draft Draft) (repository.Fields, error) {
	fields, err := validateDraft(draft)
	if err != nil {
		return repository.Fields{}, err
	}

	names, err := s.catalog.ListAll(ctx)
	if err != nil {
		return repository.Fields{}, unavailable(err)
	}
	if fields.Category, err = resolveCategory(fields.Category, names); err != nil {
		return repository.Fields{}, err
	}
	return fields, nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

// operation tracks one service call for tracing, metrics and logging
type operation struct {
	svc     *Service
	name    string
	ownerID int64
	span    trace.Span
	started time.Time
	outcome string
}

func (s *Service) start(ctx context.Context, name string, ownerID int64) (context.Context, *operation) {
	ctx, span := s.tracer.Start(ctx, "expense."+name, trace.WithAttributes(
		attribute.Int64("owner.id", ownerID),
	))
	return ctx, &operation{
		svc:     s,
		name:    name,
		ownerID: ownerID,
		span:    span,
		started: time.Now(),
		outcome: metrics.OutcomeOK,
	}
}

func (o *operation) notFound() {
	o.outcome = metrics.OutcomeNotFound
}

func (o *operation) end(err error) {
	defer o.span.End()

	var v *ValidationError
	switch {
	case err == nil:
	case errors.As(err, &v):
		o.outcome = metrics.OutcomeInvalid
		o.svc.logger.Debug("expense input rejected",
			slog.String("operation", o.name),
			slog.String("field", v.Field),
			slog.String("reason", v.Reason),
		)
	default:
		o.outcome = metrics.OutcomeError
		o.span.RecordError(err)
		o.span.SetStatus(codes.Error, err.Error())
		o.svc.logger.Error("expense operation failed",
			slog.String("operation", o.name),
			slog.Int64("owner_id", o.ownerID),
			slog.Any("error", err),
		)
	}

	o.svc.metrics.ObserveOperation(o.name, o.outcome, time.Since(o.started))
}
