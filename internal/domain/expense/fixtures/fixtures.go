// Package fixtures generates realistic expense data for demos and tests.
package fixtures

import (
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/expense-tracker/internal/domain/expense/repository"
)

// amount ranges per category, in whole currency units
var ranges = map[string][2]float64{
	"Bills":         {30, 250},
	"Education":     {10, 400},
	"Entertainment": {5, 80},
	"Food":          {3, 60},
	"Health":        {10, 150},
	"Other":         {1, 100},
	"Shopping":      {5, 300},
	"Transport":     {2, 50},
	"Travel":        {50, 900},
}

// Generator produces expense fields drawn from a seeded faker, so the same
// seed always yields the same data.
type Generator struct {
	faker      *gofakeit.Faker
	categories []string
}

// NewGenerator creates a generator. With no categories it uses the default catalog.
func NewGenerator(seed int64, categories ...string) *Generator {
	if len(categories) == 0 {
		categories = repository.DefaultCategories
	}
	return &Generator{
		faker:      gofakeit.New(seed),
		categories: categories,
	}
}

// Fields returns one random expense dated within [from, to]
func (g *Generator) Fields(from, to time.Time) repository.Fields {
	category := g.faker.RandomString(g.categories)

	bounds, ok := ranges[category]
	if !ok {
		bounds = [2]float64{1, 100}
	}
	amount := decimal.NewFromFloat(g.faker.Price(bounds[0], bounds[1])).Round(2)
	if !amount.IsPositive() {
		amount = decimal.New(1, -2)
	}

	return repository.Fields{
		Amount:      amount,
		Category:    category,
		Description: g.description(category),
		ExpenseDate: repository.DateOnly(g.faker.DateRange(from, to)),
	}
}

// Months returns perMonth expenses for each of the n months ending with the
// month of end, oldest month first.
func (g *Generator) Months(end time.Time, n, perMonth int) []repository.Fields {
	out := make([]repository.Fields, 0, n*perMonth)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)

	for i := n - 1; i >= 0; i-- {
		start := last.AddDate(0, -i, 0)
		stop := start.AddDate(0, 1, -1)
		for j := 0; j < perMonth; j++ {
			out = append(out, g.Fields(start, stop))
		}
	}
	return out
}

func (g *Generator) description(category string) string {
	switch category {
	case "Food":
		return g.faker.Dinner()
	case "Travel":
		return g.faker.City()
	case "Transport":
		return g.faker.Car().Brand
	case "Shopping":
		return g.faker.Company()
	case "Entertainment":
		return g.faker.HipsterWord()
	default:
		if g.faker.Bool() {
			return ""
		}
		return g.faker.Sentence(4)
	}
}
