// Package currency converts between amounts typed by a person, in major
// units, and the integer minor units the ledger stores.
package currency

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Default is the currency used when none is configured.
const Default = "IDR"

// Ledgers have always held whole rupiah, shown as Rp1,234,567. go-money
// defines IDR with two minor digits and Indonesian separators.
func init() {
	money.AddCurrency(Default, "Rp", "$1", ".", ",", 0)
}

var (
	ErrUnknownCurrency = errors.New("unknown currency")
	ErrInvalidAmount   = errors.New("invalid amount")
)

// Lookup returns the currency definition for an ISO 4217 code.
func Lookup(code string) (*money.Currency, error) {
	c := money.GetCurrency(strings.ToUpper(code))
	if c == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}
	return c, nil
}

// Parse reads a non-negative amount in major units, such as "1000",
// "12.50" or "1,000", and returns it in minor units of code. Amounts with
// more decimal places than the currency allows are rejected, not rounded.
func Parse(s, code string) (int64, error) {
	c, err := Lookup(code)
	if err != nil {
		return 0, err
	}

	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, s)
	}

	minor := d.Shift(int32(c.Fraction))
	if !minor.IsInteger() {
		return 0, fmt.Errorf("%w: %q has more than %d decimal places", ErrInvalidAmount, s, c.Fraction)
	}
	if !minor.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: %q is too large", ErrInvalidAmount, s)
	}

	return minor.IntPart(), nil
}

// Format renders minor units of code with the currency's symbol, thousands
// separators and sign, e.g. -$1,234.56.
func Format(amount int64, code string) string {
	return money.New(amount, strings.ToUpper(code)).Display()
}
