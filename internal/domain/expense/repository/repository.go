// Package repository provides storage and query operations for expenses.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// MonthlySummaryLimit caps the number of months returned by MonthlySummary
const MonthlySummaryLimit = 12

// MonthKeyLayout formats the month key of a MonthTotal, e.g. "2024-03"
const MonthKeyLayout = "2006-01"

// ErrDataIntegrity is returned when a stored row lacks a required column
var ErrDataIntegrity = errors.New("expense row failed integrity check")

// Expense is a single spending entry owned by one user
type Expense struct {
	ID          int64
	UserID      int64
	Amount      decimal.Decimal
	Category    string
	Description string
	ExpenseDate time.Time // UTC midnight
	CreatedAt   time.Time
}

// Fields holds the user-editable columns of an expense
type Fields struct {
	Amount      decimal.Decimal
	Category    string
	Description string
	ExpenseDate time.Time
}

// CategoryTotal is one entry of a category breakdown
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

// MonthTotal is one entry of a monthly summary
type MonthTotal struct {
	Month string
	Total decimal.Decimal
}

// Dashboard bundles the aggregate views read from a single snapshot
type Dashboard struct {
	Total      decimal.Decimal
	Categories []CategoryTotal
	Months     []MonthTotal
	Recent     []Expense
}

// ExpenseRepository defines the interface for expense persistence and queries.
// Every method is scoped to one owner; rows of other owners are never visible.
type ExpenseRepository interface {
	// Record operations
	Create(ctx context.Context, userID int64, fields Fields) (*Expense, error)
	Update(ctx context.Context, id, userID int64, fields Fields) (bool, error)
	Delete(ctx context.Context, id, userID int64) (bool, error)
	GetByID(ctx context.Context, id, userID int64) (*Expense, error)

	// Scans, ordered by expense date DESC, created at DESC, id DESC
	List(ctx context.Context, filter Filter) ([]Expense, error)
	Recent(ctx context.Context, userID int64, limit int) ([]Expense, error)

	// Aggregates
	Total(ctx context.Context, userID int64) (decimal.Decimal, error)
	CategoryBreakdown(ctx context.Context, userID int64) ([]CategoryTotal, error)
	MonthlySummary(ctx context.Context, userID int64) ([]MonthTotal, error)
	Dashboard(ctx context.Context, userID int64, recentLimit int) (*Dashboard, error)
}

// CategoryCatalog lists the valid category names in alphabetical order
type CategoryCatalog interface {
	ListAll(ctx context.Context) ([]string, error)
}

// DateOnly drops the clock part of t, keeping its calendar date in UTC
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MonthKey returns the "YYYY-MM" key of an expense date
func MonthKey(t time.Time) string {
	return t.Format(MonthKeyLayout)
}
