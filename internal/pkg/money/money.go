// Package money converts between user-entered prices and whole currency units.
package money

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyPrice     = errors.New("price is required")
	ErrMalformed      = errors.New("price is not a number")
	ErrFractional     = errors.New("price must be a whole amount")
	ErrNonPositive    = errors.New("price must be positive")
	ErrOverflow       = errors.New("amount out of range")
	thousandsStripper = strings.NewReplacer(".", "", " ", "", "\u00a0", "")
)

// ParsePrice reads a price typed with "." thousands separators and an optional "," decimal part,
// e.g. "10.000", "Rp 12.500" or "7500".
func ParsePrice(input string) (int64, error) {
	s := strings.TrimSpace(input)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "Rp"), "rp")
	s = thousandsStripper.Replace(s)
	if s == "" {
		return 0, ErrEmptyPrice
	}
	s = strings.Replace(s, ",", ".", 1)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrMalformed
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, ErrFractional
	}
	if !d.IsPositive() {
		return 0, ErrNonPositive
	}
	return d.IntPart(), nil
}

var (
	maxAmount = decimal.NewFromInt(math.MaxInt64)
	minAmount = decimal.NewFromInt(math.MinInt64)
)

// Multiply returns price times qty or ErrOverflow when the product does not fit an int64.
func Multiply(price int64, qty int) (int64, error) {
	return fit(decimal.NewFromInt(price).Mul(decimal.NewFromInt(int64(qty))))
}

// Sum adds the amounts or returns ErrOverflow when the total does not fit an int64.
func Sum(amounts ...int64) (int64, error) {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromInt(a))
	}
	return fit(total)
}

func fit(d decimal.Decimal) (int64, error) {
	if d.GreaterThan(maxAmount) || d.LessThan(minAmount) {
		return 0, ErrOverflow
	}
	return d.IntPart(), nil
}

// FormatRupiah renders amount as "Rp 23.000".
func FormatRupiah(amount int64) string {
	digits := decimal.NewFromInt(amount).Abs().StringFixed(0)

	var b strings.Builder
	if amount < 0 {
		b.WriteByte('-')
	}
	b.WriteString("Rp ")
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return b.String()
}
