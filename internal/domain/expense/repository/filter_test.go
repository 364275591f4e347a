package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}

func TestNewFilter_CategoryWildcard(t *testing.T) {
	tests := []struct {
		name     string
		category string
		want     string
	}{
		{"empty", "", ""},
		{"blank", "   ", ""},
		{"All", "All", ""},
		{"all lowercase", "all", ""},
		{"ALL uppercase", "ALL", ""},
		{"specific", "Food", "Food"},
		{"specific trimmed", " Food ", "Food"},
		{"contains all", "Allowance", "Allowance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFilter(1, nil, nil, tt.category)
			assert.Equal(t, tt.want, f.Category)
			assert.Equal(t, tt.want != "", f.HasCategory())
		})
	}
}

func TestNewFilter_NormalizesDates(t *testing.T) {
	from := time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC)
	f := NewFilter(1, &from, nil, "")

	assert.Equal(t, day(2024, 3, 1), *f.From)
	assert.Nil(t, f.To)
}

func TestFilter_Matches(t *testing.T) {
	e := Expense{UserID: 7, Category: "Food", ExpenseDate: day(2024, 3, 15)}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"owner only", NewFilter(7, nil, nil, ""), true},
		{"other owner", NewFilter(8, nil, nil, ""), false},
		{"from inclusive", NewFilter(7, ptr(day(2024, 3, 15)), nil, ""), true},
		{"from after", NewFilter(7, ptr(day(2024, 3, 16)), nil, ""), false},
		{"to inclusive", NewFilter(7, nil, ptr(day(2024, 3, 15)), ""), true},
		{"to before", NewFilter(7, nil, ptr(day(2024, 3, 14)), ""), false},
		{"inside range", NewFilter(7, ptr(day(2024, 3, 1)), ptr(day(2024, 3, 31)), "Food"), true},
		{"inverted range", NewFilter(7, ptr(day(2024, 3, 31)), ptr(day(2024, 3, 1)), ""), false},
		{"category mismatch", NewFilter(7, nil, nil, "Travel"), false},
		{"category is case sensitive", NewFilter(7, nil, nil, "food"), false},
		{"wildcard", NewFilter(7, nil, nil, "aLL"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(e))
		})
	}
}

func TestFilter_Where(t *testing.T) {
	from := day(2024, 1, 1)
	to := day(2024, 1, 31)

	tests := []struct {
		name     string
		filter   Filter
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "owner only",
			filter:   NewFilter(3, nil, nil, "All"),
			wantSQL:  "user_id = $1",
			wantArgs: []any{int64(3)},
		},
		{
			name:     "to and category",
			filter:   NewFilter(3, nil, &to, "Food"),
			wantSQL:  "user_id = $1 AND expense_date <= $2 AND category = $3",
			wantArgs: []any{int64(3), to, "Food"},
		},
		{
			name:     "all criteria",
			filter:   NewFilter(3, &from, &to, "Food'; DROP TABLE expenses; --"),
			wantSQL:  "user_id = $1 AND expense_date >= $2 AND expense_date <= $3 AND category = $4",
			wantArgs: []any{int64(3), from, to, "Food'; DROP TABLE expenses; --"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := tt.filter.where()
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
