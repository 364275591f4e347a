package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Ensure MemoryExpenseRepository implements ExpenseRepository
var _ ExpenseRepository = (*MemoryExpenseRepository)(nil)

// MemoryExpenseRepository implements ExpenseRepository in process memory.
// Reads hold the read lock for the whole computation, so every call sees a
// single snapshot; writes are serialized.
type MemoryExpenseRepository struct {
	mu          sync.RWMutex
	expenses    map[int64]Expense
	nextID      int64
	lastCreated time.Time
	now         func() time.Time
}

// NewMemoryExpenseRepository creates an empty in-memory store
func NewMemoryExpenseRepository() *MemoryExpenseRepository {
	return &MemoryExpenseRepository{
		expenses: make(map[int64]Expense),
		now:      time.Now,
	}
}

// WithClock replaces the clock used for created_at, for tests
func (m *MemoryExpenseRepository) WithClock(now func() time.Time) *MemoryExpenseRepository {
	m.now = now
	return m
}

// Create stores a new expense with the next id. created_at is strictly
// increasing across inserts even when the clock does not advance.
func (m *MemoryExpenseRepository) Create(ctx context.Context, userID int64, fields Fields) (*Expense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	created := m.now().UTC()
	if !created.After(m.lastCreated) {
		created = m.lastCreated.Add(time.Microsecond)
	}
	m.lastCreated = created
	m.nextID++

	e := Expense{
		ID:          m.nextID,
		UserID:      userID,
		Amount:      fields.Amount,
		Category:    fields.Category,
		Description: fields.Description,
		ExpenseDate: DateOnly(fields.ExpenseDate),
		CreatedAt:   created,
	}
	m.expenses[e.ID] = e
	return &e, nil
}

// Update overwrites the editable fields of an owned expense
func (m *MemoryExpenseRepository) Update(ctx context.Context, id, userID int64, fields Fields) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.expenses[id]
	if !ok || e.UserID != userID {
		return false, nil
	}
	e.Amount = fields.Amount
	e.Category = fields.Category
	e.Description = fields.Description
	e.ExpenseDate = DateOnly(fields.ExpenseDate)
	m.expenses[id] = e
	return true, nil
}

// Delete removes an owned expense
func (m *MemoryExpenseRepository) Delete(ctx context.Context, id, userID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.expenses[id]
	if !ok || e.UserID != userID {
		return false, nil
	}
	delete(m.expenses, id)
	return true, nil
}

// GetByID retrieves an owned expense, or nil when absent
func (m *MemoryExpenseRepository) GetByID(ctx context.Context, id, userID int64) (*Expense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.expenses[id]
	if !ok || e.UserID != userID {
		return nil, nil
	}
	return &e, nil
}

// List returns the owner's expenses matching the filter
func (m *MemoryExpenseRepository) List(ctx context.Context, filter Filter) ([]Expense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.scan(filter, 0), nil
}

// Recent returns the owner's latest expenses
func (m *MemoryExpenseRepository) Recent(ctx context.Context, userID int64, limit int) ([]Expense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.scan(Filter{UserID: userID}, limit), nil
}

// Total sums every amount of the owner
func (m *MemoryExpenseRepository) Total(ctx context.Context, userID int64) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return sumAmounts(m.owned(userID)), nil
}

// CategoryBreakdown sums amounts per category, largest first, ties by name
func (m *MemoryExpenseRepository) CategoryBreakdown(ctx context.Context, userID int64) ([]CategoryTotal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return groupByCategory(m.owned(userID)), nil
}

// MonthlySummary sums amounts per month for the 12 latest months with data
func (m *MemoryExpenseRepository) MonthlySummary(ctx context.Context, userID int64) ([]MonthTotal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return groupByMonth(m.owned(userID)), nil
}

// Dashboard computes every view under one read lock
func (m *MemoryExpenseRepository) Dashboard(ctx context.Context, userID int64, recentLimit int) (*Dashboard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	owned := m.owned(userID)
	return &Dashboard{
		Total:      sumAmounts(owned),
		Categories: groupByCategory(owned),
		Months:     groupByMonth(owned),
		Recent:     m.scan(Filter{UserID: userID}, recentLimit),
	}, nil
}

// scan must be called with the lock held. limit <= 0 means no limit.
func (m *MemoryExpenseRepository) scan(filter Filter, limit int) []Expense {
	out := []Expense{}
	for _, e := range m.expenses {
		if filter.Matches(e) {
			out = append(out, e)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.ExpenseDate.Equal(b.ExpenseDate) {
			return a.ExpenseDate.After(b.ExpenseDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// owned must be called with the lock held
func (m *MemoryExpenseRepository) owned(userID int64) []Expense {
	out := []Expense{}
	for _, e := range m.expenses {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}
