package repository

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Aggregation over already-loaded rows, used by the stores that cannot sum
// exact decimals in their query language.

// Summarize computes the total, category breakdown and monthly summary of
// the given rows. Recent is left empty.
func Summarize(expenses []Expense) *Dashboard {
	return &Dashboard{
		Total:      sumAmounts(expenses),
		Categories: groupByCategory(expenses),
		Months:     groupByMonth(expenses),
		Recent:     []Expense{},
	}
}

func sumAmounts(expenses []Expense) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range expenses {
		sum = sum.Add(e.Amount)
	}
	return sum
}

// groupByCategory sums per category, largest first, ties by name
func groupByCategory(expenses []Expense) []CategoryTotal {
	sums := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		sums[e.Category] = sums[e.Category].Add(e.Amount)
	}

	out := make([]CategoryTotal, 0, len(sums))
	for category, total := range sums {
		out = append(out, CategoryTotal{Category: category, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// groupByMonth sums per expense month, newest first, capped at MonthlySummaryLimit
func groupByMonth(expenses []Expense) []MonthTotal {
	sums := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		key := MonthKey(e.ExpenseDate)
		sums[key] = sums[key].Add(e.Amount)
	}

	out := make([]MonthTotal, 0, len(sums))
	for month, total := range sums {
		out = append(out, MonthTotal{Month: month, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Month > out[j].Month
	})

	if len(out) > MonthlySummaryLimit {
		out = out[:MonthlySummaryLimit]
	}
	return out
}
