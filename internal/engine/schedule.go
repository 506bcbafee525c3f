// Package engine is the pure settlement calculator for the household ledger.
//
// Every function is side-effect free and operates on immutable snapshots of
// the domain records: month scoping of recurring and installment expenses,
// income reconciliation, the monthly household settlement, savings-goal
// balances and the trip fund settlement. Callers are responsible for passing
// a consistent snapshot; the engine keeps no state of its own.
package engine

import (
	"contas/internal/core"
)

// Installment is the display position of an installment expense inside its
// covered month range, 1-indexed.
type Installment struct {
	Current int
	Total   int
}

// InMonth reports whether an expense instance applies to the given month.
// Fixed kinds recur forever from their start month; installment kinds cover
// exactly Installments consecutive months.
func InMonth(e core.Expense, month core.MonthKey) bool {
	diff := month.Sub(e.Date.MonthKey())
	if e.Type.IsFixed() {
		return diff >= 0
	}
	return diff >= 0 && diff < e.Installments
}

// MonthlyValue returns the money amount the expense contributes to the given
// month. Fixed kinds contribute their full value (or a month override),
// never a division by elapsed months. Installment kinds contribute the
// rounded standard slice, except the last month, which absorbs the rounding
// remainder so all slices sum exactly to the total.
func MonthlyValue(e core.Expense, month core.MonthKey) core.Money {
	if e.Type.IsFixed() {
		if v, ok := e.MonthOverrides[month.String()]; ok {
			return v
		}
		return e.TotalValue
	}
	if e.Installments <= 1 {
		return e.TotalValue
	}
	standard := e.TotalValue.DivRound(int64(e.Installments))
	diff := month.Sub(e.Date.MonthKey())
	if diff == e.Installments-1 {
		return e.TotalValue.Sub(core.Money{Cents: standard.Cents * int64(e.Installments-1)})
	}
	return standard
}

// InstallmentInfo returns the 1-indexed installment position for display, or
// nil for fixed kinds and single-installment expenses.
func InstallmentInfo(e core.Expense, month core.MonthKey) *Installment {
	if e.Type.IsFixed() || e.Installments <= 1 {
		return nil
	}
	diff := month.Sub(e.Date.MonthKey())
	return &Installment{Current: diff + 1, Total: e.Installments}
}
