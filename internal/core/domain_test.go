package core

import "testing"

func TestNormalizeDescription(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Salário Empresa", "salário empresa"},
		{"  salário   EMPRESA  ", "salário empresa"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeDescription(tc.in); got != tc.want {
			t.Fatalf("NormalizeDescription(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestPersonOther(t *testing.T) {
	if Person1.Other() != Person2 || Person2.Other() != Person1 {
		t.Fatalf("Other() should swap the couple")
	}
	if PersonNone.Other() != PersonNone {
		t.Fatalf("Other() of none should be none")
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Type:         ExpenseCommon,
		Description:  "Mercado",
		TotalValue:   Money{Cents: 10000},
		Date:         NewDate(2025, 1, 10),
		Installments: 1,
		PaidBy:       Person1,
		SplitMethod:  SplitProportional,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Expense{
		{Type: "WRONG", Description: "x", TotalValue: Money{Cents: 1}, Date: NewDate(2025, 1, 1), Installments: 1},
		{Type: ExpenseCommon, Description: "", TotalValue: Money{Cents: 1}, Date: NewDate(2025, 1, 1), Installments: 1},
		{Type: ExpenseCommon, Description: "x", TotalValue: Money{Cents: 0}, Date: NewDate(2025, 1, 1), Installments: 1},
		{Type: ExpenseCommon, Description: "x", TotalValue: Money{Cents: 1}, Date: NewDate(2025, 1, 1), Installments: 0},
		{Type: ExpenseCommon, Description: "x", TotalValue: Money{Cents: 1}, Date: NewDate(2025, 1, 1), Installments: 1,
			SplitMethod: SplitCustom, SplitPercentage1: 120},
		{Type: ExpenseCommon, Description: "x", TotalValue: Money{Cents: 100}, Date: NewDate(2025, 1, 1), Installments: 1,
			SplitMethod: SplitCustom, SpecificValueP1: Money{Cents: 80}, SpecificValueP2: Money{Cents: 30}},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}

	// Fixed expenses ignore installments entirely.
	fixed := Expense{
		Type:        ExpenseFixed,
		Description: "Aluguel",
		TotalValue:  Money{Cents: 250000},
		Date:        NewDate(2025, 1, 5),
		PaidBy:      Person2,
	}
	if err := fixed.Validate(); err != nil {
		t.Fatalf("fixed expense should not require installments: %v", err)
	}
}

func TestGoalTransactionValidate(t *testing.T) {
	good := GoalTransaction{GoalID: "g1", Type: GoalDeposit, Value: Money{Cents: 100}, Person: Person1, Date: NewDate(2025, 2, 1)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []GoalTransaction{
		{GoalID: "", Type: GoalDeposit, Value: Money{Cents: 1}, Person: Person1, Date: NewDate(2025, 2, 1)},
		{GoalID: "g", Type: "transfer", Value: Money{Cents: 1}, Person: Person1, Date: NewDate(2025, 2, 1)},
		{GoalID: "g", Type: GoalWithdraw, Value: Money{Cents: -1}, Person: Person1, Date: NewDate(2025, 2, 1)},
		{GoalID: "g", Type: GoalDeposit, Value: Money{Cents: 1}, Person: PersonNone, Date: NewDate(2025, 2, 1)},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTripPayerPerson(t *testing.T) {
	if p, ok := TripPaidByPerson1.Person(); !ok || p != Person1 {
		t.Fatalf("unexpected mapping for person1")
	}
	if _, ok := TripPaidByFund.Person(); ok {
		t.Fatalf("fund is not a person")
	}
}
