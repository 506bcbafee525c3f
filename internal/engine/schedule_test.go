package engine

import (
	"testing"

	"contas/internal/core"
)

func installmentExpense(totalCents int64, installments int, start core.Date) core.Expense {
	return core.Expense{
		Type:         core.ExpenseCommon,
		Description:  "Parcelado",
		TotalValue:   core.Money{Cents: totalCents},
		Date:         start,
		Installments: installments,
		PaidBy:       core.Person1,
		SplitMethod:  core.SplitProportional,
	}
}

func TestInMonth(t *testing.T) {
	start := core.NewDate(2025, 3, 10)
	fixed := core.Expense{Type: core.ExpenseFixed, TotalValue: core.Money{Cents: 1000}, Date: start}
	inst := installmentExpense(30000, 3, start)

	cases := []struct {
		name  string
		e     core.Expense
		month core.MonthKey
		want  bool
	}{
		{"fixed before start", fixed, core.MonthKey{Year: 2025, Month: 2}, false},
		{"fixed at start", fixed, core.MonthKey{Year: 2025, Month: 3}, true},
		{"fixed years later", fixed, core.MonthKey{Year: 2030, Month: 1}, true},
		{"installment before start", inst, core.MonthKey{Year: 2025, Month: 2}, false},
		{"installment first", inst, core.MonthKey{Year: 2025, Month: 3}, true},
		{"installment last", inst, core.MonthKey{Year: 2025, Month: 5}, true},
		{"installment past end", inst, core.MonthKey{Year: 2025, Month: 6}, false},
	}
	for _, tc := range cases {
		if got := InMonth(tc.e, tc.month); got != tc.want {
			t.Fatalf("%s: InMonth = %v; want %v", tc.name, got, tc.want)
		}
	}
}

func TestMonthlyValueInstallmentsSumToTotal(t *testing.T) {
	// Remainder must be absorbed by the final installment, never lost.
	cases := []struct {
		totalCents   int64
		installments int
	}{
		{100000, 3}, // 1000.00 / 3
		{100000, 7},
		{99999, 2},
		{1, 3},
		{100001, 12},
		{35000, 10},
	}
	for _, tc := range cases {
		e := installmentExpense(tc.totalCents, tc.installments, core.NewDate(2025, 1, 15))
		var sum int64
		for i := 0; i < tc.installments; i++ {
			month := core.MonthKey{Year: 2025, Month: 1}.AddMonths(i)
			sum += MonthlyValue(e, month).Cents
		}
		if sum != tc.totalCents {
			t.Fatalf("total %d over %d installments: sum = %d", tc.totalCents, tc.installments, sum)
		}
	}
}

func TestMonthlyValueStandardAndLast(t *testing.T) {
	e := installmentExpense(100000, 3, core.NewDate(2025, 1, 1))
	if got := MonthlyValue(e, core.MonthKey{Year: 2025, Month: 1}).Cents; got != 33333 {
		t.Fatalf("first installment = %d; want 33333", got)
	}
	if got := MonthlyValue(e, core.MonthKey{Year: 2025, Month: 2}).Cents; got != 33333 {
		t.Fatalf("second installment = %d; want 33333", got)
	}
	if got := MonthlyValue(e, core.MonthKey{Year: 2025, Month: 3}).Cents; got != 33334 {
		t.Fatalf("last installment = %d; want 33334", got)
	}
}

func TestMonthlyValueFixed(t *testing.T) {
	e := core.Expense{
		Type:       core.ExpenseFixed,
		TotalValue: core.Money{Cents: 250000},
		Date:       core.NewDate(2025, 1, 5),
		MonthOverrides: map[string]core.Money{
			"2025-03": {Cents: 310000},
		},
	}
	// Fixed expenses are never divided by elapsed months.
	if got := MonthlyValue(e, core.MonthKey{Year: 2025, Month: 6}).Cents; got != 250000 {
		t.Fatalf("fixed monthly = %d; want 250000", got)
	}
	if got := MonthlyValue(e, core.MonthKey{Year: 2025, Month: 3}).Cents; got != 310000 {
		t.Fatalf("override month = %d; want 310000", got)
	}
}

func TestMonthlyValueSingleInstallment(t *testing.T) {
	e := installmentExpense(12345, 1, core.NewDate(2025, 4, 2))
	if got := MonthlyValue(e, core.MonthKey{Year: 2025, Month: 4}).Cents; got != 12345 {
		t.Fatalf("single installment = %d; want 12345", got)
	}
}

func TestInstallmentInfo(t *testing.T) {
	e := installmentExpense(30000, 3, core.NewDate(2025, 3, 1))
	info := InstallmentInfo(e, core.MonthKey{Year: 2025, Month: 4})
	if info == nil || info.Current != 2 || info.Total != 3 {
		t.Fatalf("unexpected info %+v", info)
	}

	fixed := core.Expense{Type: core.ExpenseFixed, TotalValue: core.Money{Cents: 100}, Date: core.NewDate(2025, 1, 1)}
	if InstallmentInfo(fixed, core.MonthKey{Year: 2025, Month: 2}) != nil {
		t.Fatalf("fixed expense should have no installment info")
	}
	single := installmentExpense(100, 1, core.NewDate(2025, 1, 1))
	if InstallmentInfo(single, core.MonthKey{Year: 2025, Month: 1}) != nil {
		t.Fatalf("single installment should have no installment info")
	}
}
