// Package core defines the household domain model and its integer-cents
// money arithmetic.
//
// All monetary values are held as int64 cents. Division and ratio scaling
// round half away from zero; whenever a value is split into parts that must
// reconcile, the last part is produced by subtraction so the parts always sum
// exactly to the whole.
package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in integer cents.
type Money struct {
	Cents int64
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }
func (m Money) Neg() Money        { return Money{Cents: -m.Cents} }
func (m Money) IsZero() bool      { return m.Cents == 0 }
func (m Money) IsPositive() bool  { return m.Cents > 0 }

// DivRound divides the amount into n parts and returns the rounded size of
// one part (half away from zero). Callers that need the parts to sum back to
// the whole must derive the final part by subtraction.
func (m Money) DivRound(n int64) Money {
	if n == 0 {
		return Money{}
	}
	return Money{Cents: roundDiv(m.Cents, n)}
}

// MulRatio scales the amount by a float ratio, rounding half away from zero.
// A tiny epsilon counters binary representation error on exact halves.
func (m Money) MulRatio(ratio float64) Money {
	return Money{Cents: RoundHalfAway(float64(m.Cents) * ratio)}
}

// MulDiv returns m×num/den with a single rounding step, keeping the
// computation in integer arithmetic. Returns zero when den is zero.
func (m Money) MulDiv(num, den Money) Money {
	if den.Cents == 0 {
		return Money{}
	}
	return Money{Cents: roundDiv(m.Cents*num.Cents, den.Cents)}
}

// RoundHalfAway rounds a float to the nearest integer, ties away from zero,
// after nudging the value by an epsilon to absorb float representation drift.
func RoundHalfAway(v float64) int64 {
	if v >= 0 {
		return int64(math.Floor(v + 0.5 + 1e-9))
	}
	return -int64(math.Floor(-v + 0.5 + 1e-9))
}

// roundDiv divides a by b rounding half away from zero, in pure integer
// arithmetic.
func roundDiv(a, b int64) int64 {
	if b < 0 {
		a, b = -a, -b
	}
	if a >= 0 {
		return (a + b/2) / b
	}
	return -((-a + b/2) / b)
}

// ParseDecimalToCents converts a decimal string to cents with half-up
// rounding on the third decimal place. Both dot and comma separators are
// accepted; only positive amounts are valid.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracCents += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// FormatCurrency renders an amount for display: "R$ 1.234,56".
// Calculations never consume this output.
func FormatCurrency(m Money) string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := cents / 100
	frac := cents % 100

	digits := strconv.FormatInt(whole, 10)
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return fmt.Sprintf("%sR$ %s,%02d", sign, b.String(), frac)
}
