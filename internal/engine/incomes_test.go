package engine

import (
	"testing"

	"contas/internal/core"
)

func TestResolveMonthIncomeLegacySalary(t *testing.T) {
	couple := core.CoupleInfo{
		Salary1: core.Money{Cents: 700000},
		Salary2: core.Money{Cents: 300000},
	}
	month := core.MonthKey{Year: 2025, Month: 5}

	p1 := ResolveMonthIncome(couple, core.Person1, nil, month)
	if p1.Salary.Cents != 700000 || p1.Total.Cents != 700000 {
		t.Fatalf("legacy salary not synthesized: %+v", p1)
	}
	if len(p1.Entries) != 1 || !p1.Entries[0].Virtual {
		t.Fatalf("expected one virtual entry, got %+v", p1.Entries)
	}
}

func TestResolveMonthIncomeRecurringList(t *testing.T) {
	couple := core.CoupleInfo{
		// Legacy scalar must be ignored when the list is present.
		Salary1: core.Money{Cents: 111111},
		Person1RecurringIncomes: []core.RecurringIncome{
			{ID: "a", Description: "Salário Empresa", Value: core.Money{Cents: 500000}},
			{ID: "b", Description: "Freela", Value: core.Money{Cents: 100000}},
		},
	}
	month := core.MonthKey{Year: 2025, Month: 5}

	p1 := ResolveMonthIncome(couple, core.Person1, nil, month)
	if p1.Salary.Cents != 600000 {
		t.Fatalf("salary = %d; want 600000", p1.Salary.Cents)
	}
}

func TestResolveMonthIncomeRealRowSuppressesVirtual(t *testing.T) {
	couple := core.CoupleInfo{
		Person1RecurringIncomes: []core.RecurringIncome{
			{ID: "a", Description: "Salário Empresa", Value: core.Money{Cents: 500000}},
		},
	}
	month := core.MonthKey{Year: 2025, Month: 5}
	incomes := []core.Income{
		{
			Description: "  salário   empresa ", // matches despite case and spacing
			Value:       core.Money{Cents: 520000},
			Date:        core.NewDate(2025, 5, 5),
			Category:    core.SalaryCategory,
			PaidBy:      core.Person1,
		},
	}

	p1 := ResolveMonthIncome(couple, core.Person1, incomes, month)
	// The real row replaces the virtual entry entirely; it does not add.
	if p1.Salary.Cents != 520000 {
		t.Fatalf("salary = %d; want 520000", p1.Salary.Cents)
	}

	// A different month keeps the virtual entry.
	other := ResolveMonthIncome(couple, core.Person1, incomes, core.MonthKey{Year: 2025, Month: 6})
	if other.Salary.Cents != 500000 {
		t.Fatalf("other month salary = %d; want 500000", other.Salary.Cents)
	}
}

func TestResolveMonthIncomeNonSalaryRowsAdd(t *testing.T) {
	couple := core.CoupleInfo{
		Person1RecurringIncomes: []core.RecurringIncome{
			{ID: "a", Description: "Salário", Value: core.Money{Cents: 500000}},
		},
	}
	month := core.MonthKey{Year: 2025, Month: 5}
	incomes := []core.Income{
		{Description: "Venda usados", Value: core.Money{Cents: 15000}, Date: core.NewDate(2025, 5, 12), Category: "Extra", PaidBy: core.Person1},
		{Description: "Presente", Value: core.Money{Cents: 5000}, Date: core.NewDate(2025, 5, 20), Category: "Extra", PaidBy: core.Person2},
	}

	p1 := ResolveMonthIncome(couple, core.Person1, incomes, month)
	if p1.Salary.Cents != 500000 || p1.Other.Cents != 15000 || p1.Total.Cents != 515000 {
		t.Fatalf("unexpected income %+v", p1)
	}
}

func TestSalaryRatio1(t *testing.T) {
	cases := []struct {
		s1, s2 int64
		want   float64
	}{
		{700000, 300000, 0.7},
		{0, 0, 0.5},
		{500000, 500000, 0.5},
		{100000, 0, 1.0},
	}
	for _, tc := range cases {
		got := SalaryRatio1(core.Money{Cents: tc.s1}, core.Money{Cents: tc.s2})
		if got != tc.want {
			t.Fatalf("SalaryRatio1(%d, %d) = %v; want %v", tc.s1, tc.s2, got, tc.want)
		}
	}
}

func TestBaselineSalaryRatio1(t *testing.T) {
	couple := core.CoupleInfo{
		Person1RecurringIncomes: []core.RecurringIncome{
			{Description: "Salário", Value: core.Money{Cents: 600000}},
		},
		Salary2: core.Money{Cents: 400000},
	}
	if got := BaselineSalaryRatio1(couple); got != 0.6 {
		t.Fatalf("BaselineSalaryRatio1 = %v; want 0.6", got)
	}
}
