package ledgerstate

import (
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/xerrors"
)

const (
	// Fixed8Decimals is the number of implied decimals of a Fixed8.
	Fixed8Decimals = 8

	fixed8Factor = 100000000
)

// Fixed8 is an amount with 8 implied decimal places, the unit in which the ledger stores asset values.
type Fixed8 int64

var (
	maxFixed8 = decimal.New(math.MaxInt64, 0)
	minFixed8 = decimal.New(math.MinInt64, 0)
)

// NewFixed8 returns the Fixed8 that represents the given amount of whole units.
func NewFixed8(units int64) Fixed8 {
	return Fixed8(units * fixed8Factor)
}

// Fixed8FromDecimal converts a decimal into a Fixed8. Values with more than 8 decimals or outside the int64 range are
// rejected.
func Fixed8FromDecimal(d decimal.Decimal) (Fixed8, error) {
	shifted := d.Shift(Fixed8Decimals)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, xerrors.Errorf("%s has more than %d decimals: %w", d, Fixed8Decimals, ErrInvalidAmount)
	}
	if shifted.GreaterThan(maxFixed8) || shifted.LessThan(minFixed8) {
		return 0, xerrors.Errorf("%s is out of range: %w", d, ErrInvalidAmount)
	}

	return Fixed8(shifted.IntPart()), nil
}

// Fixed8FromString parses a decimal string like "1.5".
func Fixed8FromString(s string) (Fixed8, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, xerrors.Errorf("failed to parse amount %q (%v): %w", s, err, ErrInvalidAmount)
	}

	return Fixed8FromDecimal(d)
}

// Fixed8FromFloat64 converts a float into a Fixed8, rounding to 8 decimals.
func Fixed8FromFloat64(f float64) Fixed8 {
	return Fixed8(decimal.NewFromFloat(f).Shift(Fixed8Decimals).Round(0).IntPart())
}

// Add returns the sum of both amounts. A sum outside the range of a Fixed8 fails with ErrInvalidAmount.
func (f Fixed8) Add(other Fixed8) (Fixed8, error) {
	sum := f + other
	if (other > 0 && sum < f) || (other < 0 && sum > f) {
		return 0, xerrors.Errorf("%s + %s overflows: %w", f, other, ErrInvalidAmount)
	}

	return sum, nil
}

// Decimal returns the amount as a decimal.
func (f Fixed8) Decimal() decimal.Decimal {
	return decimal.New(int64(f), -Fixed8Decimals)
}

// String returns the shortest decimal representation of the amount.
func (f Fixed8) String() string {
	return f.Decimal().String()
}

// MarshalJSON encodes the amount as a JSON number.
func (f Fixed8) MarshalJSON() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalJSON accepts JSON numbers and quoted decimal strings.
func (f *Fixed8) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return xerrors.Errorf("failed to parse amount %s (%v): %w", data, err, ErrInvalidAmount)
	}

	value, err := Fixed8FromDecimal(d)
	if err != nil {
		return err
	}
	*f = value

	return nil
}
