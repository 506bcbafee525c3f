package core

import (
	"errors"
	"strings"
)

const (
	Person1    Person = "person1"
	Person2    Person = "person2"
	PersonNone Person = ""
)

const (
	ExpenseFixed              ExpenseType = "FIXED"
	ExpenseCommon             ExpenseType = "COMMON"
	ExpenseEqual              ExpenseType = "EQUAL"
	ExpenseReimbursement      ExpenseType = "REIMBURSEMENT"
	ExpenseReimbursementFixed ExpenseType = "REIMBURSEMENT_FIXED"
	ExpensePersonalP1         ExpenseType = "PERSONAL_P1"
	ExpensePersonalP2         ExpenseType = "PERSONAL_P2"
)

const (
	SplitProportional SplitMethod = "proportional"
	SplitCustom       SplitMethod = "custom"
)

const (
	ReimbursementOpen    ReimbursementStatus = "open"
	ReimbursementSettled ReimbursementStatus = "settled"
)

const (
	GoalDeposit  GoalTransactionType = "deposit"
	GoalWithdraw GoalTransactionType = "withdraw"
)

const (
	TripPaidByPerson1 TripPayer = "person1"
	TripPaidByPerson2 TripPayer = "person2"
	TripPaidByFund    TripPayer = "fund"
)

const (
	TripSplitProportional TripProportionType = "proportional"
	TripSplitCustom       TripProportionType = "custom"
)

// SalaryCategory marks income rows that compete with recurring virtual
// incomes for the same person and month.
const SalaryCategory = "Salário"

type (
	Person              string
	ExpenseType         string
	SplitMethod         string
	ReimbursementStatus string
	GoalTransactionType string
	TripPayer           string
	TripProportionType  string

	// Expense is a shared or personal expense. Installments are only
	// meaningful for non-FIXED kinds; MonthOverrides only for FIXED kinds.
	Expense struct {
		ID                  string
		Type                ExpenseType
		Description         string
		TotalValue          Money
		Date                Date
		Installments        int
		PaidBy              Person
		Category            string
		SplitMethod         SplitMethod
		SplitPercentage1    float64
		SpecificValueP1     Money
		SpecificValueP2     Money
		ReimbursementStatus ReimbursementStatus
		MonthOverrides      map[string]Money // month key -> value
	}

	// Income is a dated money entry attributed to one person.
	Income struct {
		ID          string
		Description string
		Value       Money
		Date        Date
		Category    string
		PaidBy      Person
	}

	// RecurringIncome is a virtual income injected into every month unless a
	// matching real salary row suppresses it.
	RecurringIncome struct {
		ID          string
		Description string
		Value       Money
	}

	// CoupleInfo is the household configuration. The legacy scalar salaries
	// are only used when the recurring income lists are empty.
	CoupleInfo struct {
		Person1Name             string
		Person2Name             string
		Salary1                 Money
		Salary2                 Money
		Salary1Description      string
		Salary2Description      string
		Person1RecurringIncomes []RecurringIncome
		Person2RecurringIncomes []RecurringIncome
	}

	// SavingsGoal holds planned contributions; its realized state lives in
	// the GoalTransaction history, never in a mutable balance field.
	SavingsGoal struct {
		ID                    string
		Name                  string
		TargetValue           Money
		MonthlyContributionP1 Money
		MonthlyContributionP2 Money
		IsCompleted           bool
	}

	// GoalTransaction is an append-only ledger entry for a savings goal.
	GoalTransaction struct {
		ID     string
		GoalID string
		Type   GoalTransactionType
		Value  Money
		Person Person
		Date   Date
	}

	TripExpense struct {
		ID          string
		Description string
		Value       Money
		PaidBy      TripPayer
	}

	TripDeposit struct {
		ID     string
		Person Person
		Value  Money
	}

	// Trip owns its expenses and deposits; settlement is scoped to the trip,
	// not to a calendar month.
	Trip struct {
		ID                string
		Name              string
		ProportionType    TripProportionType
		CustomPercentage1 float64
		Expenses          []TripExpense
		Deposits          []TripDeposit
	}
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrEmptyDescription    = errors.New("empty description")
	ErrInvalidExpenseType  = errors.New("invalid expense type")
	ErrInvalidInstallments = errors.New("invalid installments")
	ErrInvalidSplit        = errors.New("invalid split percentage")
	ErrInvalidPerson       = errors.New("invalid person")
	ErrInvalidTransaction  = errors.New("invalid goal transaction")
	ErrDescriptionTooLong  = errors.New("description too long (max 200 characters)")
	ErrSplitExceedsTotal   = errors.New("specific values exceed total value")
)

// NormalizeDescription lowercases and collapses whitespace so that recurring
// virtual incomes and real salary rows can be matched loosely.
func NormalizeDescription(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func (p Person) Valid() bool {
	return p == Person1 || p == Person2
}

// Other returns the counterpart in the two-person household.
func (p Person) Other() Person {
	switch p {
	case Person1:
		return Person2
	case Person2:
		return Person1
	}
	return PersonNone
}

func (t ExpenseType) Valid() bool {
	switch t {
	case ExpenseFixed, ExpenseCommon, ExpenseEqual, ExpenseReimbursement,
		ExpenseReimbursementFixed, ExpensePersonalP1, ExpensePersonalP2:
		return true
	}
	return false
}

// IsFixed reports whether the expense kind recurs forever from its start date.
func (t ExpenseType) IsFixed() bool {
	return t == ExpenseFixed || t == ExpenseReimbursementFixed
}

func (t ExpenseType) IsReimbursement() bool {
	return t == ExpenseReimbursement || t == ExpenseReimbursementFixed
}

func (t ExpenseType) IsPersonal() bool {
	return t == ExpensePersonalP1 || t == ExpensePersonalP2
}

func (e Expense) Validate() error {
	if !e.Type.Valid() {
		return ErrInvalidExpenseType
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if err := e.TotalValue.Validate(); err != nil {
		return err
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if !e.Type.IsFixed() && e.Installments < 1 {
		return ErrInvalidInstallments
	}
	if e.SplitMethod == SplitCustom {
		if e.SplitPercentage1 < 0 || e.SplitPercentage1 > 100 {
			return ErrInvalidSplit
		}
		if e.SpecificValueP1.Cents < 0 || e.SpecificValueP2.Cents < 0 {
			return ErrInvalidAmount
		}
		if e.SpecificValueP1.Cents+e.SpecificValueP2.Cents > e.TotalValue.Cents {
			return ErrSplitExceedsTotal
		}
	}
	return nil
}

func (i Income) Validate() error {
	if len(strings.TrimSpace(i.Description)) == 0 {
		return ErrEmptyDescription
	}
	if err := i.Value.Validate(); err != nil {
		return err
	}
	if err := i.Date.Validate(); err != nil {
		return err
	}
	if !i.PaidBy.Valid() {
		return ErrInvalidPerson
	}
	return nil
}

func (g SavingsGoal) Validate() error {
	if len(strings.TrimSpace(g.Name)) == 0 {
		return ErrEmptyDescription
	}
	if g.TargetValue.Cents < 0 || g.MonthlyContributionP1.Cents < 0 || g.MonthlyContributionP2.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t GoalTransaction) Validate() error {
	if t.GoalID == "" {
		return ErrInvalidTransaction
	}
	if t.Type != GoalDeposit && t.Type != GoalWithdraw {
		return ErrInvalidTransaction
	}
	if t.Value.Cents < 0 {
		return ErrInvalidAmount
	}
	if !t.Person.Valid() {
		return ErrInvalidPerson
	}
	return t.Date.Validate()
}

func (t Trip) Validate() error {
	if len(strings.TrimSpace(t.Name)) == 0 {
		return ErrEmptyDescription
	}
	if t.ProportionType == TripSplitCustom {
		if t.CustomPercentage1 < 0 || t.CustomPercentage1 > 100 {
			return ErrInvalidSplit
		}
	}
	for _, e := range t.Expenses {
		if e.Value.Cents < 0 {
			return ErrInvalidAmount
		}
	}
	for _, d := range t.Deposits {
		if d.Value.Cents < 0 {
			return ErrInvalidAmount
		}
		if !d.Person.Valid() {
			return ErrInvalidPerson
		}
	}
	return nil
}

// Person returns the person behind a trip payer, or false for the fund.
func (p TripPayer) Person() (Person, bool) {
	switch p {
	case TripPaidByPerson1:
		return Person1, true
	case TripPaidByPerson2:
		return Person2, true
	}
	return PersonNone, false
}
