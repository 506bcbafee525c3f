package engine

import (
	"contas/internal/core"
)

// MonthlySummary is the settlement of one household month: what each person
// earned, what each is responsible for, what each actually paid, and the
// single net transfer that squares the month. Pure value object, never
// persisted by the engine itself.
type MonthlySummary struct {
	Month core.MonthKey

	Income1      PersonIncome
	Income2      PersonIncome
	SalaryRatio1 float64

	TypeTotals     map[core.ExpenseType]core.Money
	CategoryTotals map[string]core.Money

	Responsibility1 core.Money
	Responsibility2 core.Money
	Paid1           core.Money
	Paid2           core.Money
	PersonalTotal1  core.Money
	PersonalTotal2  core.Money

	// Expenses with no payer recorded; a data-quality signal, not an error.
	UnspecifiedPaidByCount int

	Balance1       core.Money
	Balance2       core.Money
	WhoTransfers   core.Person
	TransferAmount core.Money

	Goals             []GoalStats
	TotalGoalSavings  core.Money
	GoalContribution1 core.Money
	GoalContribution2 core.Money
	GoalsRealized1    core.Money
	GoalsRealized2    core.Money

	Remaining1 core.Money
	Remaining2 core.Money
}

// CalculateSummary aggregates a month's incomes, expenses and goal activity
// into its settlement. Inputs are read-only snapshots; ordering of the
// slices does not affect the result.
func CalculateSummary(
	expenses []core.Expense,
	incomes []core.Income,
	couple core.CoupleInfo,
	month core.MonthKey,
	goals []core.SavingsGoal,
	goalTxs []core.GoalTransaction,
) MonthlySummary {
	s := MonthlySummary{
		Month:          month,
		TypeTotals:     make(map[core.ExpenseType]core.Money),
		CategoryTotals: make(map[string]core.Money),
	}

	s.Income1 = ResolveMonthIncome(couple, core.Person1, incomes, month)
	s.Income2 = ResolveMonthIncome(couple, core.Person2, incomes, month)
	s.SalaryRatio1 = SalaryRatio1(s.Income1.Salary, s.Income2.Salary)

	for _, e := range expenses {
		if !InMonth(e, month) {
			continue
		}
		monthly := MonthlyValue(e, month)

		if e.Type.IsPersonal() {
			// Personal expenses never enter the settlement or the paid
			// tallies, only the owner's personal total.
			if e.Type == core.ExpensePersonalP1 {
				s.PersonalTotal1 = s.PersonalTotal1.Add(monthly)
			} else {
				s.PersonalTotal2 = s.PersonalTotal2.Add(monthly)
			}
			continue
		}

		if e.Type.IsReimbursement() {
			if e.ReimbursementStatus == core.ReimbursementSettled {
				continue
			}
			// One-sided: the payer's counterpart owes the full amount.
			switch e.PaidBy {
			case core.Person1:
				s.Responsibility2 = s.Responsibility2.Add(monthly)
			case core.Person2:
				s.Responsibility1 = s.Responsibility1.Add(monthly)
			}
			s.TypeTotals[e.Type] = s.TypeTotals[e.Type].Add(monthly)
		} else {
			s.TypeTotals[e.Type] = s.TypeTotals[e.Type].Add(monthly)
			if e.Category != "" {
				s.CategoryTotals[e.Category] = s.CategoryTotals[e.Category].Add(monthly)
			}
			share1, share2 := splitShared(e, monthly, s.SalaryRatio1)
			s.Responsibility1 = s.Responsibility1.Add(share1)
			s.Responsibility2 = s.Responsibility2.Add(share2)
		}

		switch e.PaidBy {
		case core.Person1:
			s.Paid1 = s.Paid1.Add(monthly)
		case core.Person2:
			s.Paid2 = s.Paid2.Add(monthly)
		default:
			s.UnspecifiedPaidByCount++
		}
	}

	s.Balance1 = s.Responsibility1.Sub(s.Paid1)
	s.Balance2 = s.Responsibility2.Sub(s.Paid2)
	s.WhoTransfers, s.TransferAmount = SettleTwoParty(s.Responsibility1, s.Responsibility2, s.Paid1, s.Paid2)

	txsByGoal := make(map[string][]core.GoalTransaction)
	for _, tx := range goalTxs {
		txsByGoal[tx.GoalID] = append(txsByGoal[tx.GoalID], tx)
	}
	for _, g := range goals {
		stats := CalculateGoalStats(g, txsByGoal[g.ID], month)
		s.Goals = append(s.Goals, stats)
		s.TotalGoalSavings = s.TotalGoalSavings.Add(stats.Balance)
		if !g.IsCompleted {
			// Completed goals stop accruing planned responsibility.
			s.GoalContribution1 = s.GoalContribution1.Add(g.MonthlyContributionP1)
			s.GoalContribution2 = s.GoalContribution2.Add(g.MonthlyContributionP2)
		}
		s.GoalsRealized1 = s.GoalsRealized1.Add(stats.MonthDeposit1)
		s.GoalsRealized2 = s.GoalsRealized2.Add(stats.MonthDeposit2)
	}

	s.Remaining1 = s.Income1.Total.Sub(s.Responsibility1).Sub(s.PersonalTotal1).Sub(s.GoalContribution1)
	s.Remaining2 = s.Income2.Total.Sub(s.Responsibility2).Sub(s.PersonalTotal2).Sub(s.GoalContribution2)

	return s
}

// splitShared divides a shared expense's monthly value between the couple.
// Custom fixed carve-outs are scaled from the expense total to the monthly
// value in one integer rounding step; the remainder is split by custom
// percentage, hard 50/50 for EQUAL, or the salary ratio. The second share is
// always the exact remainder, so the shares sum to the monthly value to the
// cent.
func splitShared(e core.Expense, monthly core.Money, salaryRatio1 float64) (core.Money, core.Money) {
	isCustom := e.SplitMethod == core.SplitCustom

	var spec1, spec2 core.Money
	if isCustom {
		spec1 = monthly.MulDiv(e.SpecificValueP1, e.TotalValue)
		spec2 = monthly.MulDiv(e.SpecificValueP2, e.TotalValue)
	}
	shared := monthly.Sub(spec1).Sub(spec2)

	var ratio1 float64
	switch {
	case isCustom:
		ratio1 = e.SplitPercentage1 / 100
	case e.Type == core.ExpenseEqual:
		ratio1 = 0.5
	default:
		ratio1 = salaryRatio1
	}

	share1 := shared.MulRatio(ratio1)
	share2 := shared.Sub(share1)
	return spec1.Add(share1), spec2.Add(share2)
}
