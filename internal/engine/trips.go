package engine

import (
	"contas/internal/core"
)

// TripSettlement mirrors the monthly settlement at trip scope: no month
// scoping, one pooled fund built from deposits and drawn down by fund-paid
// expenses. The fund balance is reported but never re-apportioned back into
// responsibility.
type TripSettlement struct {
	TripID string

	TotalExpenses core.Money
	PaidBy1       core.Money
	PaidBy2       core.Money
	PaidByFund    core.Money

	TotalDeposits core.Money
	Deposits1     core.Money
	Deposits2     core.Money
	FundBalance   core.Money

	Responsibility1 core.Money
	Responsibility2 core.Money
	TotalGiven1     core.Money
	TotalGiven2     core.Money

	Balance1       core.Money
	Balance2       core.Money
	WhoOwes        core.Person
	AmountToSettle core.Money
}

// CalculateTripSettlement settles a single trip. Responsibility follows the
// trip's custom percentage when set, otherwise the supplied household salary
// ratio. A deposit into the fund counts as having paid your share in
// advance. Expenses paid from the fund reduce the fund balance but are not
// attributed to either person.
func CalculateTripSettlement(trip core.Trip, p1SalaryRatio float64) TripSettlement {
	s := TripSettlement{TripID: trip.ID}

	for _, e := range trip.Expenses {
		s.TotalExpenses = s.TotalExpenses.Add(e.Value)
		switch e.PaidBy {
		case core.TripPaidByPerson1:
			s.PaidBy1 = s.PaidBy1.Add(e.Value)
		case core.TripPaidByPerson2:
			s.PaidBy2 = s.PaidBy2.Add(e.Value)
		case core.TripPaidByFund:
			s.PaidByFund = s.PaidByFund.Add(e.Value)
		}
	}

	for _, d := range trip.Deposits {
		s.TotalDeposits = s.TotalDeposits.Add(d.Value)
		switch d.Person {
		case core.Person1:
			s.Deposits1 = s.Deposits1.Add(d.Value)
		case core.Person2:
			s.Deposits2 = s.Deposits2.Add(d.Value)
		}
	}
	s.FundBalance = s.TotalDeposits.Sub(s.PaidByFund)

	ratio1 := p1SalaryRatio
	if trip.ProportionType == core.TripSplitCustom {
		ratio1 = trip.CustomPercentage1 / 100
	}
	s.Responsibility1 = s.TotalExpenses.MulRatio(ratio1)
	s.Responsibility2 = s.TotalExpenses.Sub(s.Responsibility1)

	s.TotalGiven1 = s.PaidBy1.Add(s.Deposits1)
	s.TotalGiven2 = s.PaidBy2.Add(s.Deposits2)

	s.Balance1 = s.Responsibility1.Sub(s.TotalGiven1)
	s.Balance2 = s.Responsibility2.Sub(s.TotalGiven2)
	s.WhoOwes, s.AmountToSettle = SettleTwoParty(s.Responsibility1, s.Responsibility2, s.TotalGiven1, s.TotalGiven2)

	return s
}
