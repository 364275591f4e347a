// Package money parses user-entered amounts into exact decimals and formats
// decimal totals for display using ISO-4217 currency rules.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Common currency codes (ISO-4217)
const (
	USD = "USD" // US Dollar
	EUR = "EUR" // Euro
	GBP = "GBP" // British Pound
	JPY = "JPY" // Japanese Yen (no decimal places)
)

var (
	// ErrEmptyAmount is returned by ParseAmount for blank input
	ErrEmptyAmount = errors.New("amount is empty")
	// ErrExponent is returned by ParseAmount for scientific notation such as "1e3"
	ErrExponent = errors.New("amount must be written without an exponent")
)

// ParseAmount parses a user-entered amount such as "1,234.56" or "$ 12.30".
// The result keeps every digit of the input; nothing is rounded. Exponent
// forms are rejected since they expand to arbitrarily many digits.
func ParseAmount(amount string) (decimal.Decimal, error) {
	amount = strings.TrimSpace(amount)
	amount = strings.ReplaceAll(amount, " ", "")

	for _, sym := range []string{"$", "€", "£", "¥"} {
		amount = strings.ReplaceAll(amount, sym, "")
	}
	amount = strings.ReplaceAll(amount, ",", "")

	if amount == "" {
		return decimal.Zero, ErrEmptyAmount
	}
	if strings.ContainsAny(amount, "eE") {
		return decimal.Zero, ErrExponent
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount: %w", err)
	}
	return d, nil
}

// Display formats an amount for humans, e.g. "$1,234.56" or "€35.75".
// Unknown currency codes fall back to USD formatting. Amounts with more
// fractional digits than the currency allows are rounded half away from zero.
func Display(amount decimal.Decimal, currencyCode string) string {
	currency := money.GetCurrency(strings.ToUpper(currencyCode))
	if currency == nil {
		currency = money.GetCurrency(USD)
	}

	minor := amount.Shift(int32(currency.Fraction)).Round(0).IntPart()
	return money.New(minor, currency.Code).Display()
}

// String renders an amount as a plain decimal with two fractional digits,
// e.g. "35.75". Used for CSV and JSON output where a fixed scale is expected.
func String(amount decimal.Decimal) string {
	return amount.StringFixedBank(2)
}
