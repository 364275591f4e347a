package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// Pool is the subset of *pgxpool.Pool used by the Postgres repositories
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// querier is satisfied by both Pool and pgx.Tx
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const expenseColumns = `id, user_id, amount::text, category, description, expense_date, created_at`

const expenseOrder = ` ORDER BY expense_date DESC, created_at DESC, id DESC`

// snapshotTx reads several aggregates from one consistent snapshot
var snapshotTx = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}

// Ensure PostgresExpenseRepository implements ExpenseRepository
var _ ExpenseRepository = (*PostgresExpenseRepository)(nil)

// PostgresExpenseRepository implements ExpenseRepository using PostgreSQL
type PostgresExpenseRepository struct {
	pool Pool
}

// NewPostgresExpenseRepository creates a new PostgreSQL expense repository
func NewPostgresExpenseRepository(pool Pool) *PostgresExpenseRepository {
	return &PostgresExpenseRepository{pool: pool}
}

// Create inserts a new expense; id and created_at are assigned by the database
func (r *PostgresExpenseRepository) Create(ctx context.Context, userID int64, fields Fields) (*Expense, error) {
	query := `
		INSERT INTO expenses (user_id, amount, category, description, expense_date)
		VALUES ($1, $2::numeric, $3, $4, $5)
		RETURNING id, created_at`

	e := &Expense{
		UserID:      userID,
		Amount:      fields.Amount,
		Category:    fields.Category,
		Description: fields.Description,
		ExpenseDate: DateOnly(fields.ExpenseDate),
	}

	err := r.pool.QueryRow(ctx, query,
		userID,
		fields.Amount.String(),
		fields.Category,
		fields.Description,
		e.ExpenseDate,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}
	return e, nil
}

// Update overwrites the editable fields of an owned expense.
// It returns false when no row matched (id, userID).
func (r *PostgresExpenseRepository) Update(ctx context.Context, id, userID int64, fields Fields) (bool, error) {
	query := `
		UPDATE expenses
		SET amount = $1::numeric, category = $2, description = $3, expense_date = $4
		WHERE id = $5 AND user_id = $6`

	result, err := r.pool.Exec(ctx, query,
		fields.Amount.String(),
		fields.Category,
		fields.Description,
		DateOnly(fields.ExpenseDate),
		id,
		userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update expense: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// Delete removes an owned expense. It returns false when no row matched.
func (r *PostgresExpenseRepository) Delete(ctx context.Context, id, userID int64) (bool, error) {
	query := `DELETE FROM expenses WHERE id = $1 AND user_id = $2`
	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete expense: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// GetByID retrieves an owned expense, or nil when absent
func (r *PostgresExpenseRepository) GetByID(ctx context.Context, id, userID int64) (*Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1 AND user_id = $2`

	rows, err := r.pool.Query(ctx, query, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	expenses, err := collectExpenses(rows)
	if err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return nil, nil
	}
	return &expenses[0], nil
}

// List returns the owner's expenses matching the filter
func (r *PostgresExpenseRepository) List(ctx context.Context, filter Filter) ([]Expense, error) {
	where, args := filter.where()
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE ` + where + expenseOrder

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return collectExpenses(rows)
}

// Recent returns the owner's latest expenses, limited by the database
func (r *PostgresExpenseRepository) Recent(ctx context.Context, userID int64, limit int) ([]Expense, error) {
	return recent(ctx, r.pool, userID, limit)
}

// Total sums every amount of the owner; zero when there are no rows
func (r *PostgresExpenseRepository) Total(ctx context.Context, userID int64) (decimal.Decimal, error) {
	return total(ctx, r.pool, userID)
}

// CategoryBreakdown sums amounts per category, largest first, ties by name
func (r *PostgresExpenseRepository) CategoryBreakdown(ctx context.Context, userID int64) ([]CategoryTotal, error) {
	return categoryBreakdown(ctx, r.pool, userID)
}

// MonthlySummary sums amounts per expense month for the 12 latest months with data
func (r *PostgresExpenseRepository) MonthlySummary(ctx context.Context, userID int64) ([]MonthTotal, error) {
	return monthlySummary(ctx, r.pool, userID)
}

// Dashboard reads every aggregate inside one read-only repeatable-read
// transaction so the views agree with each other.
func (r *PostgresExpenseRepository) Dashboard(ctx context.Context, userID int64, recentLimit int) (*Dashboard, error) {
	tx, err := r.pool.BeginTx(ctx, snapshotTx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	d := &Dashboard{}
	if d.Total, err = total(ctx, tx, userID); err != nil {
		return nil, err
	}
	if d.Categories, err = categoryBreakdown(ctx, tx, userID); err != nil {
		return nil, err
	}
	if d.Months, err = monthlySummary(ctx, tx, userID); err != nil {
		return nil, err
	}
	if d.Recent, err = recent(ctx, tx, userID, recentLimit); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return d, nil
}

func recent(ctx context.Context, q querier, userID int64, limit int) ([]Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE user_id = $1` + expenseOrder + ` LIMIT $2`

	rows, err := q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent expenses: %w", err)
	}
	return collectExpenses(rows)
}

func total(ctx context.Context, q querier, userID int64) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0)::text FROM expenses WHERE user_id = $1`

	var raw string
	if err := q.QueryRow(ctx, query, userID).Scan(&raw); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum expenses: %w", err)
	}
	return parseAmount(raw)
}

func categoryBreakdown(ctx context.Context, q querier, userID int64) ([]CategoryTotal, error) {
	query := `
		SELECT category, SUM(amount)::text AS total
		FROM expenses
		WHERE user_id = $1
		GROUP BY category
		ORDER BY SUM(amount) DESC, category ASC`

	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query category breakdown: %w", err)
	}
	defer rows.Close()

	breakdown := []CategoryTotal{}
	for rows.Next() {
		var category, raw string
		if err := rows.Scan(&category, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		sum, err := parseAmount(raw)
		if err != nil {
			return nil, err
		}
		breakdown = append(breakdown, CategoryTotal{Category: category, Total: sum})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read category breakdown: %w", err)
	}
	return breakdown, nil
}

func monthlySummary(ctx context.Context, q querier, userID int64) ([]MonthTotal, error) {
	query := `
		SELECT to_char(expense_date, 'YYYY-MM') AS month, SUM(amount)::text AS total
		FROM expenses
		WHERE user_id = $1
		GROUP BY month
		ORDER BY month DESC
		LIMIT $2`

	rows, err := q.Query(ctx, query, userID, MonthlySummaryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly summary: %w", err)
	}
	defer rows.Close()

	summary := []MonthTotal{}
	for rows.Next() {
		var month, raw string
		if err := rows.Scan(&month, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan month total: %w", err)
		}
		sum, err := parseAmount(raw)
		if err != nil {
			return nil, err
		}
		summary = append(summary, MonthTotal{Month: month, Total: sum})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read monthly summary: %w", err)
	}
	return summary, nil
}

// collectExpenses scans and closes rows. Missing required columns are
// reported as ErrDataIntegrity rather than defaulted.
func collectExpenses(rows pgx.Rows) ([]Expense, error) {
	defer rows.Close()

	expenses := []Expense{}
	for rows.Next() {
		var (
			e           Expense
			amount      *string
			category    *string
			description *string
			expenseDate *time.Time
			createdAt   *time.Time
		)
		if err := rows.Scan(&e.ID, &e.UserID, &amount, &category, &description, &expenseDate, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}

		switch {
		case amount == nil:
			return nil, integrityError(e.ID, "amount")
		case category == nil:
			return nil, integrityError(e.ID, "category")
		case expenseDate == nil:
			return nil, integrityError(e.ID, "expense_date")
		case createdAt == nil:
			return nil, integrityError(e.ID, "created_at")
		}

		parsed, err := parseAmount(*amount)
		if err != nil {
			return nil, err
		}
		e.Amount = parsed
		e.Category = *category
		if description != nil {
			e.Description = *description
		}
		e.ExpenseDate = DateOnly(*expenseDate)
		e.CreatedAt = *createdAt

		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read expenses: %w", err)
	}
	return expenses, nil
}

func integrityError(id int64, column string) error {
	return fmt.Errorf("%w: expense %d has no %s", ErrDataIntegrity, id, column)
}

func parseAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: unreadable amount %q", ErrDataIntegrity, raw)
	}
	return d, nil
}
