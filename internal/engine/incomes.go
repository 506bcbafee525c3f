package engine

import (
	"contas/internal/core"
)

// EffectiveIncome is one resolved income entry for a person and month, after
// recurring virtual entries and real rows have been reconciled.
type EffectiveIncome struct {
	Description string
	Value       core.Money
	Category    string
	Virtual     bool // synthesized from CoupleInfo, not a stored row
}

// PersonIncome aggregates a person's resolved income for one month.
type PersonIncome struct {
	Entries []EffectiveIncome
	Salary  core.Money
	Other   core.Money
	Total   core.Money
}

// ResolveMonthIncome reconciles one person's income for a month.
//
// The effective recurring list is the person's configured recurring incomes,
// or a single legacy entry synthesized from the scalar salary when the list
// is empty. A recurring entry is suppressed when a real salary row for the
// same person and month matches its description (case and whitespace
// insensitive): the real row replaces the virtual one for that month, it
// does not add to it.
func ResolveMonthIncome(couple core.CoupleInfo, person core.Person, incomes []core.Income, month core.MonthKey) PersonIncome {
	recurring := couple.Person1RecurringIncomes
	legacySalary := couple.Salary1
	legacyDesc := couple.Salary1Description
	if person == core.Person2 {
		recurring = couple.Person2RecurringIncomes
		legacySalary = couple.Salary2
		legacyDesc = couple.Salary2Description
	}
	if len(recurring) == 0 && legacySalary.IsPositive() {
		if legacyDesc == "" {
			legacyDesc = core.SalaryCategory
		}
		recurring = []core.RecurringIncome{{Description: legacyDesc, Value: legacySalary}}
	}

	var out PersonIncome

	// Real rows for this person and month, split salary vs other.
	salaryDescs := make(map[string]bool)
	for _, in := range incomes {
		if in.PaidBy != person || !month.Contains(in.Date) {
			continue
		}
		if in.Category == core.SalaryCategory {
			salaryDescs[core.NormalizeDescription(in.Description)] = true
			out.Salary = out.Salary.Add(in.Value)
		} else {
			out.Other = out.Other.Add(in.Value)
		}
		out.Entries = append(out.Entries, EffectiveIncome{
			Description: in.Description,
			Value:       in.Value,
			Category:    in.Category,
		})
	}

	// Surviving virtual entries.
	for _, r := range recurring {
		if salaryDescs[core.NormalizeDescription(r.Description)] {
			continue
		}
		out.Salary = out.Salary.Add(r.Value)
		out.Entries = append(out.Entries, EffectiveIncome{
			Description: r.Description,
			Value:       r.Value,
			Category:    core.SalaryCategory,
			Virtual:     true,
		})
	}

	out.Total = out.Salary.Add(out.Other)
	return out
}

// SalaryRatio1 is person1's share of the combined monthly salary, the default
// weight for proportional splitting. Equal split when no salary data exists.
func SalaryRatio1(salary1, salary2 core.Money) float64 {
	combined := salary1.Cents + salary2.Cents
	if combined == 0 {
		return 0.5
	}
	return float64(salary1.Cents) / float64(combined)
}

// BaselineSalaryRatio1 computes the household salary ratio from configuration
// alone, without a month's real income rows. Used where no month scope
// exists, such as trip settlements.
func BaselineSalaryRatio1(couple core.CoupleInfo) float64 {
	return SalaryRatio1(configuredSalary(couple, core.Person1), configuredSalary(couple, core.Person2))
}

func configuredSalary(couple core.CoupleInfo, person core.Person) core.Money {
	recurring := couple.Person1RecurringIncomes
	legacy := couple.Salary1
	if person == core.Person2 {
		recurring = couple.Person2RecurringIncomes
		legacy = couple.Salary2
	}
	if len(recurring) == 0 {
		return legacy
	}
	var sum core.Money
	for _, r := range recurring {
		sum = sum.Add(r.Value)
	}
	return sum
}
