package repository

import (
	"fmt"
	"strings"
	"time"
)

// AllCategories is the wildcard category value; it matches case-insensitively
const AllCategories = "All"

// Filter is the normalized predicate of an expense scan.
// A nil bound is open; an empty Category matches every category.
// From after To is kept as given and simply matches nothing.
type Filter struct {
	UserID   int64
	From     *time.Time
	To       *time.Time
	Category string
}

// NewFilter builds a Filter from optional criteria. Dates are reduced to
// their calendar day, and a blank or "All" category becomes the wildcard.
func NewFilter(userID int64, from, to *time.Time, category string) Filter {
	f := Filter{UserID: userID}

	if from != nil {
		d := DateOnly(*from)
		f.From = &d
	}
	if to != nil {
		d := DateOnly(*to)
		f.To = &d
	}

	category = strings.TrimSpace(category)
	if !IsWildcardCategory(category) {
		f.Category = category
	}
	return f
}

// IsWildcardCategory reports whether a category filter value means "no restriction"
func IsWildcardCategory(category string) bool {
	category = strings.TrimSpace(category)
	return category == "" || strings.EqualFold(category, AllCategories)
}

// HasCategory reports whether the filter restricts the category
func (f Filter) HasCategory() bool {
	return f.Category != ""
}

// Matches evaluates the predicate against a single expense
func (f Filter) Matches(e Expense) bool {
	if e.UserID != f.UserID {
		return false
	}
	date := DateOnly(e.ExpenseDate)
	if f.From != nil && date.Before(*f.From) {
		return false
	}
	if f.To != nil && date.After(*f.To) {
		return false
	}
	if f.HasCategory() && e.Category != f.Category {
		return false
	}
	return true
}

// where renders the predicate as a parameterized SQL condition. Only fixed
// fragments are written into the SQL text; every value travels as an argument.
func (f Filter) where() (string, []any) {
	conds := []string{"user_id = $1"}
	args := []any{f.UserID}

	if f.From != nil {
		args = append(args, *f.From)
		conds = append(conds, fmt.Sprintf("expense_date >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		conds = append(conds, fmt.Sprintf("expense_date <= $%d", len(args)))
	}
	if f.HasCategory() {
		args = append(args, f.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}

	return strings.Join(conds, " AND "), args
}
