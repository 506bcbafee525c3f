package engine

import (
	"math"

	"contas/internal/core"
)

// GoalStats is the derived state of a savings goal at a point in time, plus
// the deposits realized in a given month for "this month so far" display.
type GoalStats struct {
	GoalID        string
	Balance       core.Money
	Balance1      core.Money
	Balance2      core.Money
	Progress      float64 // percent, clamped to [0,100]
	IsCompleted   bool
	MonthDeposit1 core.Money
	MonthDeposit2 core.Money
}

// GoalBalance folds the transaction history into the current balance:
// deposits add, withdrawals subtract. The balance is never stored; it is
// always derived from the append-only history, so it cannot drift from the
// audit trail. The fold is order-independent under exact cents arithmetic.
func GoalBalance(txs []core.GoalTransaction) core.Money {
	var balance core.Money
	for _, tx := range txs {
		switch tx.Type {
		case core.GoalDeposit:
			balance = balance.Add(tx.Value)
		case core.GoalWithdraw:
			balance = balance.Sub(tx.Value)
		}
	}
	return balance
}

// IndividualGoalBalance is GoalBalance restricted to one person's entries.
func IndividualGoalBalance(txs []core.GoalTransaction, person core.Person) core.Money {
	var own []core.GoalTransaction
	for _, tx := range txs {
		if tx.Person == person {
			own = append(own, tx)
		}
	}
	return GoalBalance(own)
}

// GoalProgress returns the percentage of the target reached, rounded to two
// decimals and clamped to [0,100]. A non-positive target yields 0 rather
// than a division error.
func GoalProgress(goal core.SavingsGoal, balance core.Money) float64 {
	if goal.TargetValue.Cents <= 0 {
		return 0
	}
	pct := float64(balance.Cents) / float64(goal.TargetValue.Cents) * 100
	pct = math.Round(pct*100) / 100
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// CalculateGoalStats derives a goal's full stats from its transactions. The
// month parameter scopes the realized-deposit tallies, typically the current
// calendar month.
func CalculateGoalStats(goal core.SavingsGoal, txs []core.GoalTransaction, month core.MonthKey) GoalStats {
	stats := GoalStats{
		GoalID:   goal.ID,
		Balance:  GoalBalance(txs),
		Balance1: IndividualGoalBalance(txs, core.Person1),
		Balance2: IndividualGoalBalance(txs, core.Person2),
	}
	stats.Progress = GoalProgress(goal, stats.Balance)
	stats.IsCompleted = stats.Progress >= 100

	for _, tx := range txs {
		if tx.Type != core.GoalDeposit || !month.Contains(tx.Date) {
			continue
		}
		switch tx.Person {
		case core.Person1:
			stats.MonthDeposit1 = stats.MonthDeposit1.Add(tx.Value)
		case core.Person2:
			stats.MonthDeposit2 = stats.MonthDeposit2.Add(tx.Value)
		}
	}
	return stats
}
