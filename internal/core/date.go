package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidMonthKey = errors.New("invalid month key")
)

// Date is a plain calendar date. Month keys and dates are local calendar
// values; no timezone arithmetic is ever applied.
type Date struct {
	Year  int
	Month int // 1-12
	Day   int // 1-31
}

// MonthKey identifies a calendar month ("YYYY-MM").
type MonthKey struct {
	Year  int
	Month int // 1-12
}

func NewDate(year, month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	var d Date
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return d, ErrInvalidDate
	}
	if _, err := fmt.Sscanf(s, "%04d-%02d-%02d", &d.Year, &d.Month, &d.Day); err != nil {
		return d, ErrInvalidDate
	}
	if err := d.Validate(); err != nil {
		return Date{}, err
	}
	return d, nil
}

func (d Date) Validate() error {
	if d.Year < 1 {
		return ErrInvalidDate
	}
	if d.Month < 1 || d.Month > 12 {
		return ErrInvalidDate
	}
	if d.Day < 1 || d.Day > 31 {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// MonthKey returns the month this date falls in.
func (d Date) MonthKey() MonthKey {
	return MonthKey{Year: d.Year, Month: d.Month}
}

// ParseMonthKey parses a "YYYY-MM" string. A key that does not parse is a
// caller error; the engine only ever receives parsed keys.
func ParseMonthKey(s string) (MonthKey, error) {
	var k MonthKey
	if len(s) != 7 || s[4] != '-' {
		return k, ErrInvalidMonthKey
	}
	if _, err := fmt.Sscanf(s, "%04d-%02d", &k.Year, &k.Month); err != nil {
		return k, ErrInvalidMonthKey
	}
	if k.Year < 1 || k.Month < 1 || k.Month > 12 {
		return MonthKey{}, ErrInvalidMonthKey
	}
	return k, nil
}

func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, k.Month)
}

// Index is the absolute month count, so month distances are plain
// subtractions.
func (k MonthKey) Index() int {
	return k.Year*12 + (k.Month - 1)
}

// Sub returns how many months k lies after o (negative when before).
func (k MonthKey) Sub(o MonthKey) int {
	return k.Index() - o.Index()
}

// AddMonths returns the key n months later (or earlier for negative n).
func (k MonthKey) AddMonths(n int) MonthKey {
	idx := k.Index() + n
	y := idx / 12
	m := idx%12 + 1
	if m < 1 {
		m += 12
		y--
	}
	return MonthKey{Year: y, Month: m}
}

// Contains reports whether the date falls inside this month.
func (k MonthKey) Contains(d Date) bool {
	return d.Year == k.Year && d.Month == k.Month
}
