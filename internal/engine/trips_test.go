package engine

import (
	"testing"

	"contas/internal/core"
)

func TestCalculateTripSettlementPooledFund(t *testing.T) {
	trip := core.Trip{
		ID:             "t1",
		Name:           "Praia",
		ProportionType: core.TripSplitProportional,
		Expenses: []core.TripExpense{
			{Description: "Hotel", Value: core.Money{Cents: 150000}, PaidBy: core.TripPaidByPerson1},
			{Description: "Comida", Value: core.Money{Cents: 50000}, PaidBy: core.TripPaidByFund},
		},
		Deposits: []core.TripDeposit{
			{Person: core.Person1, Value: core.Money{Cents: 100000}},
			{Person: core.Person2, Value: core.Money{Cents: 100000}},
		},
	}

	s := CalculateTripSettlement(trip, 0.5)

	if s.TotalExpenses.Cents != 200000 {
		t.Fatalf("total expenses = %d; want 200000", s.TotalExpenses.Cents)
	}
	if s.FundBalance.Cents != 150000 {
		t.Fatalf("fund balance = %d; want 150000", s.FundBalance.Cents)
	}
	if s.Responsibility1.Cents != 100000 || s.Responsibility2.Cents != 100000 {
		t.Fatalf("responsibilities = %d/%d", s.Responsibility1.Cents, s.Responsibility2.Cents)
	}
	// Person1 paid 1500 directly plus a 1000 deposit; person2 deposited 1000.
	if s.TotalGiven1.Cents != 250000 || s.TotalGiven2.Cents != 100000 {
		t.Fatalf("given = %d/%d", s.TotalGiven1.Cents, s.TotalGiven2.Cents)
	}
	if s.Balance1.Cents != -150000 || s.Balance2.Cents != 0 {
		t.Fatalf("balances = %d/%d; want -150000/0", s.Balance1.Cents, s.Balance2.Cents)
	}
	if s.WhoOwes != core.PersonNone || s.AmountToSettle.Cents != 0 {
		t.Fatalf("settlement = %s %d; want none", s.WhoOwes, s.AmountToSettle.Cents)
	}
}

func TestCalculateTripSettlementCustomPercentage(t *testing.T) {
	trip := core.Trip{
		ID:                "t2",
		ProportionType:    core.TripSplitCustom,
		CustomPercentage1: 70,
		Expenses: []core.TripExpense{
			{Description: "Hotel", Value: core.Money{Cents: 100000}, PaidBy: core.TripPaidByPerson2},
		},
	}

	// The salary ratio must be ignored when the trip carries its own split.
	s := CalculateTripSettlement(trip, 0.5)

	if s.Responsibility1.Cents != 70000 || s.Responsibility2.Cents != 30000 {
		t.Fatalf("responsibilities = %d/%d; want 70000/30000", s.Responsibility1.Cents, s.Responsibility2.Cents)
	}
	if s.WhoOwes != core.Person1 || s.AmountToSettle.Cents != 70000 {
		t.Fatalf("settlement = %s %d; want person1 70000", s.WhoOwes, s.AmountToSettle.Cents)
	}
}

// The two responsibilities always reconstruct the exact expense total,
// whatever the ratio does to the division.
func TestTripResponsibilitiesSumToTotal(t *testing.T) {
	cases := []struct {
		totalCents int64
		ratio      float64
	}{
		{99999, 0.5},
		{100001, 0.3333},
		{1, 0.7},
		{77777, 0.1234},
	}
	for _, tc := range cases {
		trip := core.Trip{
			ProportionType: core.TripSplitProportional,
			Expenses: []core.TripExpense{
				{Description: "Tudo", Value: core.Money{Cents: tc.totalCents}, PaidBy: core.TripPaidByPerson1},
			},
		}
		s := CalculateTripSettlement(trip, tc.ratio)
		if sum := s.Responsibility1.Cents + s.Responsibility2.Cents; sum != tc.totalCents {
			t.Fatalf("ratio %v over %d: responsibilities sum = %d", tc.ratio, tc.totalCents, sum)
		}
	}
}

func TestCalculateTripSettlementDepositCoversShare(t *testing.T) {
	trip := core.Trip{
		ProportionType: core.TripSplitProportional,
		Expenses: []core.TripExpense{
			{Description: "Passagens", Value: core.Money{Cents: 80000}, PaidBy: core.TripPaidByFund},
		},
		Deposits: []core.TripDeposit{
			{Person: core.Person1, Value: core.Money{Cents: 80000}},
		},
	}

	s := CalculateTripSettlement(trip, 0.5)

	// Person2 never paid anything: owes their full 400 share.
	if s.WhoOwes != core.Person2 || s.AmountToSettle.Cents != 40000 {
		t.Fatalf("settlement = %s %d; want person2 40000", s.WhoOwes, s.AmountToSettle.Cents)
	}
	if s.FundBalance.Cents != 0 {
		t.Fatalf("fund balance = %d; want 0", s.FundBalance.Cents)
	}
}

func TestCalculateTripSettlementEmptyTrip(t *testing.T) {
	s := CalculateTripSettlement(core.Trip{ID: "t3", ProportionType: core.TripSplitProportional}, 0.5)
	if s.TotalExpenses.Cents != 0 || s.WhoOwes != core.PersonNone {
		t.Fatalf("empty trip settlement = %+v", s)
	}
}
