package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// sqliteDateLayout is the stored form of expense_date; it sorts as text
const sqliteDateLayout = "2006-01-02"

// sqlQuerier is satisfied by both *sql.DB and *sql.Tx
type sqlQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Ensure SQLiteExpenseRepository implements ExpenseRepository
var _ ExpenseRepository = (*SQLiteExpenseRepository)(nil)

// SQLiteExpenseRepository implements ExpenseRepository on a SQLite file.
// Amounts are stored as exact decimal text, so aggregates are summed in Go
// over the owner's rows rather than with SQL SUM, which would go through
// floating point.
type SQLiteExpenseRepository struct {
	db *sql.DB
}

// NewSQLiteExpenseRepository creates a repository on an opened SQLite handle
func NewSQLiteExpenseRepository(db *sql.DB) *SQLiteExpenseRepository {
	return &SQLiteExpenseRepository{db: db}
}

// Create inserts a new expense. created_at is taken from the clock but never
// falls behind the newest stored row, so insertion order is preserved even
// when the clock stalls.
func (r *SQLiteExpenseRepository) Create(ctx context.Context, userID int64, fields Fields) (*Expense, error) {
	query := `
		INSERT INTO expenses (user_id, amount, category, description, expense_date, created_at)
		VALUES (?, ?, ?, ?, ?, MAX(?, COALESCE((SELECT MAX(created_at) FROM expenses), 0) + 1))
		RETURNING id, created_at`

	e := &Expense{
		UserID:      userID,
		Amount:      fields.Amount,
		Category:    fields.Category,
		Description: fields.Description,
		ExpenseDate: DateOnly(fields.ExpenseDate),
	}

	var createdAt int64
	err := r.db.QueryRowContext(ctx, query,
		userID,
		fields.Amount.String(),
		fields.Category,
		fields.Description,
		e.ExpenseDate.Format(sqliteDateLayout),
		time.Now().UnixNano(),
	).Scan(&e.ID, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}
	e.CreatedAt = time.Unix(0, createdAt).UTC()
	return e, nil
}

// Update overwrites the editable fields of an owned expense
func (r *SQLiteExpenseRepository) Update(ctx context.Context, id, userID int64, fields Fields) (bool, error) {
	query := `
		UPDATE expenses
		SET amount = ?, category = ?, description = ?, expense_date = ?
		WHERE id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, query,
		fields.Amount.String(),
		fields.Category,
		fields.Description,
		DateOnly(fields.ExpenseDate).Format(sqliteDateLayout),
		id,
		userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update expense: %w", err)
	}
	return affected(result)
}

// Delete removes an owned expense
func (r *SQLiteExpenseRepository) Delete(ctx context.Context, id, userID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete expense: %w", err)
	}
	return affected(result)
}

// GetByID retrieves an owned expense, or nil when absent
func (r *SQLiteExpenseRepository) GetByID(ctx context.Context, id, userID int64) (*Expense, error) {
	query := `SELECT ` + sqliteColumns + ` FROM expenses WHERE id = ? AND user_id = ?`

	expenses, err := querySQLite(ctx, r.db, query, id, userID)
	if err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return nil, nil
	}
	return &expenses[0], nil
}

// List returns the owner's expenses matching the filter
func (r *SQLiteExpenseRepository) List(ctx context.Context, filter Filter) ([]Expense, error) {
	where, args := sqliteWhere(filter)
	return querySQLite(ctx, r.db, `SELECT `+sqliteColumns+` FROM expenses WHERE `+where+expenseOrder, args...)
}

// Recent returns the owner's latest expenses
func (r *SQLiteExpenseRepository) Recent(ctx context.Context, userID int64, limit int) ([]Expense, error) {
	return sqliteRecent(ctx, r.db, userID, limit)
}

// Total sums every amount of the owner
func (r *SQLiteExpenseRepository) Total(ctx context.Context, userID int64) (decimal.Decimal, error) {
	owned, err := sqliteOwned(ctx, r.db, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return sumAmounts(owned), nil
}

// CategoryBreakdown sums amounts per category, largest first, ties by name
func (r *SQLiteExpenseRepository) CategoryBreakdown(ctx context.Context, userID int64) ([]CategoryTotal, error) {
	owned, err := sqliteOwned(ctx, r.db, userID)
	if err != nil {
		return nil, err
	}
	return groupByCategory(owned), nil
}

// MonthlySummary sums amounts per month for the 12 latest months with data
func (r *SQLiteExpenseRepository) MonthlySummary(ctx context.Context, userID int64) ([]MonthTotal, error) {
	owned, err := sqliteOwned(ctx, r.db, userID)
	if err != nil {
		return nil, err
	}
	return groupByMonth(owned), nil
}

// Dashboard reads the owner's rows and the recent list inside one
// transaction, which SQLite isolates from concurrent writers.
func (r *SQLiteExpenseRepository) Dashboard(ctx context.Context, userID int64, recentLimit int) (*Dashboard, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	owned, err := sqliteOwned(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := sqliteRecent(ctx, tx, userID, recentLimit)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &Dashboard{
		Total:      sumAmounts(owned),
		Categories: groupByCategory(owned),
		Months:     groupByMonth(owned),
		Recent:     recent,
	}, nil
}

// SQLiteCategoryCatalog reads category names from the categories table
type SQLiteCategoryCatalog struct {
	db *sql.DB
}

// NewSQLiteCategoryCatalog creates a catalog backed by SQLite
func NewSQLiteCategoryCatalog(db *sql.DB) *SQLiteCategoryCatalog {
	return &SQLiteCategoryCatalog{db: db}
}

// ListAll returns every category name in alphabetical order
func (c *SQLiteCategoryCatalog) ListAll(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT name FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}
	return names, nil
}

const sqliteColumns = `id, user_id, amount, category, description, expense_date, created_at`

func sqliteRecent(ctx context.Context, q sqlQuerier, userID int64, limit int) ([]Expense, error) {
	query := `SELECT ` + sqliteColumns + ` FROM expenses WHERE user_id = ?` + expenseOrder + ` LIMIT ?`
	return querySQLite(ctx, q, query, userID, limit)
}

func sqliteOwned(ctx context.Context, q sqlQuerier, userID int64) ([]Expense, error) {
	return querySQLite(ctx, q, `SELECT `+sqliteColumns+` FROM expenses WHERE user_id = ?`, userID)
}

// sqliteWhere renders the filter with ? placeholders and text dates
func sqliteWhere(f Filter) (string, []any) {
	conds := []string{"user_id = ?"}
	args := []any{f.UserID}

	if f.From != nil {
		conds = append(conds, "expense_date >= ?")
		args = append(args, f.From.Format(sqliteDateLayout))
	}
	if f.To != nil {
		conds = append(conds, "expense_date <= ?")
		args = append(args, f.To.Format(sqliteDateLayout))
	}
	if f.HasCategory() {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	return strings.Join(conds, " AND "), args
}

// querySQLite runs query and scans every row; NULL in a required column is
// reported as ErrDataIntegrity.
func querySQLite(ctx context.Context, q sqlQuerier, query string, args ...any) ([]Expense, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	expenses := []Expense{}
	for rows.Next() {
		var (
			e                                       Expense
			amount, category, description, dateText sql.NullString
			createdAt                               sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.UserID, &amount, &category, &description, &dateText, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}

		switch {
		case !amount.Valid:
			return nil, integrityError(e.ID, "amount")
		case !category.Valid:
			return nil, integrityError(e.ID, "category")
		case !dateText.Valid:
			return nil, integrityError(e.ID, "expense_date")
		case !createdAt.Valid:
			return nil, integrityError(e.ID, "created_at")
		}

		if e.Amount, err = parseAmount(amount.String); err != nil {
			return nil, err
		}
		date, err := time.Parse(sqliteDateLayout, dateText.String)
		if err != nil {
			return nil, fmt.Errorf("%w: unreadable expense_date %q", ErrDataIntegrity, dateText.String)
		}
		e.ExpenseDate = date
		e.Category = category.String
		e.Description = description.String
		e.CreatedAt = time.Unix(0, createdAt.Int64).UTC()

		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read expenses: %w", err)
	}
	return expenses, nil
}

func affected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}
