package repository

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/expense-tracker/pkg/db"
)

// newSQLiteStore opens a migrated database holding owners 1 and 2
func newSQLiteStore(t *testing.T) *sql.DB {
	t.Helper()
	store, err := db.OpenSQLite(filepath.Join(t.TempDir(), "expenses.db"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(store.Close)
	require.NoError(t, store.RunMigrations())

	for _, name := range []string{"alice", "bob"} {
		_, err := store.DB.Exec(`INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, 'x', 0)`,
			name, name+"@example.com")
		require.NoError(t, err)
	}
	return store.DB
}

func sqliteCreate(t *testing.T, repo *SQLiteExpenseRepository, userID int64, amount, category string, date time.Time) *Expense {
	t.Helper()
	e, err := repo.Create(context.Background(), userID, Fields{
		Amount:      dec(amount),
		Category:    category,
		ExpenseDate: date,
	})
	require.NoError(t, err)
	return e
}

func TestSQLite_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteExpenseRepository(newSQLiteStore(t))

	a := sqliteCreate(t, repo, 1, "10.10", "Food", day(2024, 3, 1))
	b := sqliteCreate(t, repo, 1, "20", "Food", day(2024, 3, 1))
	assert.Greater(t, b.ID, a.ID)
	assert.True(t, b.CreatedAt.After(a.CreatedAt))

	got, err := repo.GetByID(ctx, a.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "10.1", got.Amount.String())
	assert.Equal(t, day(2024, 3, 1), got.ExpenseDate)
	assert.Equal(t, a.CreatedAt, got.CreatedAt)

	got, err = repo.GetByID(ctx, a.ID, 2)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLite_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteExpenseRepository(newSQLiteStore(t))
	e := sqliteCreate(t, repo, 1, "10", "Food", day(2024, 3, 1))

	fields := Fields{Amount: dec("12.5"), Category: "Bills", Description: "power", ExpenseDate: day(2024, 2, 1)}
	ok, err := repo.Update(ctx, e.ID, 2, fields)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Update(ctx, e.ID, 1, fields)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetByID(ctx, e.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "power", got.Description)
	assert.Equal(t, e.CreatedAt, got.CreatedAt)

	ok, err = repo.Delete(ctx, e.ID, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Delete(ctx, e.ID, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Delete(ctx, e.ID, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLite_ListFilterAndRecent(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteExpenseRepository(newSQLiteStore(t))
	jan := sqliteCreate(t, repo, 1, "1", "Food", day(2024, 1, 31))
	feb := sqliteCreate(t, repo, 1, "2", "Bills", day(2024, 2, 1))
	mar := sqliteCreate(t, repo, 1, "3", "Food", day(2024, 3, 1))
	mar2 := sqliteCreate(t, repo, 1, "4", "Food", day(2024, 3, 1))
	sqliteCreate(t, repo, 2, "5", "Food", day(2024, 3, 1))

	tests := []struct {
		name   string
		filter Filter
		want   []int64
	}{
		{"no filter", NewFilter(1, nil, nil, "All"), []int64{mar2.ID, mar.ID, feb.ID, jan.ID}},
		{"inclusive bounds", NewFilter(1, ptr(day(2024, 1, 31)), ptr(day(2024, 2, 1)), ""), []int64{feb.ID, jan.ID}},
		{"category and range", NewFilter(1, ptr(day(2024, 2, 1)), nil, "Food"), []int64{mar2.ID, mar.ID}},
		{"inverted range", NewFilter(1, ptr(day(2024, 3, 1)), ptr(day(2024, 1, 1)), ""), []int64{}},
		{"other owner", NewFilter(3, nil, nil, ""), []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}

	recent, err := repo.Recent(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{mar2.ID, mar.ID}, ids(recent))
}

func TestSQLite_AggregatesAreExact(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteExpenseRepository(newSQLiteStore(t))
	sqliteCreate(t, repo, 1, "0.10", "Food", day(2024, 1, 5))
	sqliteCreate(t, repo, 1, "0.20", "Food", day(2024, 1, 6))
	sqliteCreate(t, repo, 1, "0.30", "Travel", day(2024, 2, 1))
	sqliteCreate(t, repo, 1, "20.20", "Bills", day(2024, 3, 1))
	sqliteCreate(t, repo, 2, "1000", "Food", day(2024, 3, 1))

	total, err := repo.Total(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "20.8", total.String())

	breakdown, err := repo.CategoryBreakdown(ctx, 1)
	require.NoError(t, err)
	require.Len(t, breakdown, 3)
	assert.Equal(t, "Bills", breakdown[0].Category)
	// Food and Travel tie at 0.30 and are ordered by name
	assert.Equal(t, "Food", breakdown[1].Category)
	assert.True(t, breakdown[1].Total.Equal(dec("0.3")))
	assert.Equal(t, "Travel", breakdown[2].Category)

	months, err := repo.MonthlySummary(ctx, 1)
	require.NoError(t, err)
	require.Len(t, months, 3)
	assert.Equal(t, "2024-03", months[0].Month)
	assert.Equal(t, "2024-01", months[2].Month)

	d, err := repo.Dashboard(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, d.Total.Equal(total))
	assert.Equal(t, breakdown, d.Categories)
	assert.Equal(t, months, d.Months)
	assert.Len(t, d.Recent, 2)
}

func TestSQLite_EmptyOwner(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteExpenseRepository(newSQLiteStore(t))

	d, err := repo.Dashboard(ctx, 1, 5)
	require.NoError(t, err)
	assert.True(t, d.Total.IsZero())
	assert.NotNil(t, d.Categories)
	assert.Empty(t, d.Categories)
	assert.Empty(t, d.Months)
	assert.Empty(t, d.Recent)
}

func TestSQLite_CorruptAmountIsIntegrityError(t *testing.T) {
	store := newSQLiteStore(t)
	repo := NewSQLiteExpenseRepository(store)
	e := sqliteCreate(t, repo, 1, "10", "Food", day(2024, 1, 1))

	_, err := store.Exec(`UPDATE expenses SET amount = 'ten' WHERE id = ?`, e.ID)
	require.NoError(t, err)

	_, err = repo.Total(context.Background(), 1)
	assert.ErrorIs(t, err, ErrDataIntegrity)
}

func TestSQLite_UnknownOwnerViolatesForeignKey(t *testing.T) {
	repo := NewSQLiteExpenseRepository(newSQLiteStore(t))
	_, err := repo.Create(context.Background(), 99, Fields{Amount: dec("1"), Category: "Food", ExpenseDate: day(2024, 1, 1)})
	assert.Error(t, err)
}

func TestSQLite_ConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteExpenseRepository(newSQLiteStore(t))

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(ctx, 1, Fields{Amount: dec("1"), Category: "Food", ExpenseDate: day(2024, 1, 1)})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	total, err := repo.Total(ctx, 1)
	require.NoError(t, err)
	assert.True(t, total.Equal(dec("20")))
}

func TestSQLiteCategoryCatalog(t *testing.T) {
	names, err := NewSQLiteCategoryCatalog(newSQLiteStore(t)).ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultCategories, names)
}
