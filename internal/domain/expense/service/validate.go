package service

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/expense-tracker/internal/domain/expense/repository"
	"github.com/FACorreiaa/expense-tracker/pkg/money"
)

// DateLayout is the accepted format of expense dates and filter bounds
const DateLayout = "2006-01-02"

// Amounts fit NUMERIC(12,2): at most two fractional digits and ten integer digits.
const (
	AmountScale      = 2
	maxAmountInput   = 32
	maxIntegerDigits = 10
)

var maxAmount = decimal.New(1, maxIntegerDigits)

// Draft is an expense as entered by a user, before validation
type Draft struct {
	Amount      string
	Category    string
	Description string
	Date        string
}

// ListParams are the optional criteria of a listing. Nil dates are open
// bounds; an empty or "All" category lists every category.
type ListParams struct {
	From     *time.Time
	To       *time.Time
	Category string
}

// ParseListParams builds ListParams from raw query values. Blank dates are
// treated as absent.
func ParseListParams(from, to, category string) (ListParams, error) {
	p := ListParams{Category: category}

	var err error
	if p.From, err = parseOptionalDate("from", from); err != nil {
		return ListParams{}, err
	}
	if p.To, err = parseOptionalDate("to", to); err != nil {
		return ListParams{}, err
	}
	return p, nil
}

// validateDraft checks the shape of a draft. Category membership is checked
// separately because it needs the catalog.
func validateDraft(d Draft) (repository.Fields, error) {
	if len(d.Amount) > maxAmountInput {
		return repository.Fields{}, invalid("amount", "amount is too long", ErrInvalidAmount)
	}
	amount, err := money.ParseAmount(d.Amount)
	if err != nil {
		return repository.Fields{}, invalid("amount", "amount must be a plain decimal number", ErrInvalidAmount)
	}
	if !amount.IsPositive() {
		return repository.Fields{}, invalid("amount", "amount must be greater than zero", ErrInvalidAmount)
	}
	if !amount.Equal(amount.Round(AmountScale)) {
		return repository.Fields{}, invalid("amount", "amount may have at most two decimal places", ErrInvalidAmount)
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return repository.Fields{}, invalid("amount", "amount must be less than 10000000000", ErrInvalidAmount)
	}

	date, err := parseDate("date", d.Date)
	if err != nil {
		return repository.Fields{}, err
	}

	category := strings.TrimSpace(d.Category)
	if category == "" {
		return repository.Fields{}, invalid("category", "category is required", ErrMissingCategory)
	}

	return repository.Fields{
		Amount:      amount,
		Category:    category,
		Description: strings.TrimSpace(d.Description),
		ExpenseDate: date,
	}, nil
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, invalid(field, field+" must be a calendar date in YYYY-MM-DD form", ErrInvalidDate)
	}
	return t, nil
}

func parseOptionalDate(field, value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := parseDate(field, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
