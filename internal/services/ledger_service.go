// Package services orchestrates ledger operations across SQLite, AMQP and
// the summary cache. The HTTP layer and the worker both talk to the ledger
// through here.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"contas/internal/amqp"
	"contas/internal/cache"
	"contas/internal/core"
	"contas/internal/engine"
	"contas/internal/storage"
)

// LedgerService owns the write path (validate, persist, publish, invalidate)
// and computes monthly summaries on demand.
type LedgerService struct {
	storage      *storage.Repository
	amqpClient   *amqp.Client
	summaryCache cache.Cache[string]
}

// NewLedgerService wires the service. amqpClient and summaryCache may be nil;
// events and caching are then skipped.
func NewLedgerService(storage *storage.Repository, amqpClient *amqp.Client, summaryCache cache.Cache[string]) *LedgerService {
	return &LedgerService{
		storage:      storage,
		amqpClient:   amqpClient,
		summaryCache: summaryCache,
	}
}

// AddExpense validates and persists an expense, then signals the change.
func (s *LedgerService) AddExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if e.SplitMethod == "" {
		e.SplitMethod = core.SplitProportional
	}
	if !e.Type.IsFixed() && e.Installments == 0 {
		e.Installments = 1
	}
	if e.Type.IsReimbursement() && e.ReimbursementStatus == "" {
		e.ReimbursementStatus = core.ReimbursementOpen
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	created, err := s.storage.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	s.expenseChanged(ctx, created)
	return created, nil
}

// DeleteExpense soft-deletes an expense and signals the change.
func (s *LedgerService) DeleteExpense(ctx context.Context, id string) error {
	e, err := s.storage.GetExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("load expense: %w", err)
	}
	if err := s.storage.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	s.expenseChanged(ctx, e)
	return nil
}

// SettleReimbursement marks a reimbursement expense as settled so it drops
// out of future summaries.
func (s *LedgerService) SettleReimbursement(ctx context.Context, id string) error {
	e, err := s.storage.GetExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("load expense: %w", err)
	}
	if !e.Type.IsReimbursement() {
		return core.ErrInvalidExpenseType
	}
	if err := s.storage.SetReimbursementStatus(ctx, id, core.ReimbursementSettled); err != nil {
		return fmt.Errorf("settle reimbursement: %w", err)
	}

	s.expenseChanged(ctx, e)
	return nil
}

// SetFixedExpenseMonthValue overrides a fixed expense's value for one month.
func (s *LedgerService) SetFixedExpenseMonthValue(ctx context.Context, id string, month core.MonthKey, value core.Money) error {
	e, err := s.storage.GetExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("load expense: %w", err)
	}
	if !e.Type.IsFixed() {
		return core.ErrInvalidExpenseType
	}
	if err := value.Validate(); err != nil {
		return err
	}
	if err := s.storage.SetExpenseMonthOverride(ctx, id, month.String(), value); err != nil {
		return err
	}

	s.ledgerChanged(ctx, month, amqp.EntityExpense)
	return nil
}

// AddIncome validates and persists a real income row.
func (s *LedgerService) AddIncome(ctx context.Context, in core.Income) (core.Income, error) {
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}

	created, err := s.storage.CreateIncome(ctx, in)
	if err != nil {
		return core.Income{}, fmt.Errorf("save income: %w", err)
	}

	s.ledgerChanged(ctx, in.Date.MonthKey(), amqp.EntityIncome)
	return created, nil
}

// DeleteIncome removes a real income row and signals the change.
func (s *LedgerService) DeleteIncome(ctx context.Context, id string) error {
	in, err := s.storage.GetIncome(ctx, id)
	if err != nil {
		return fmt.Errorf("load income: %w", err)
	}
	if err := s.storage.DeleteIncome(ctx, id); err != nil {
		return fmt.Errorf("delete income: %w", err)
	}

	s.ledgerChanged(ctx, in.Date.MonthKey(), amqp.EntityIncome)
	return nil
}

// CoupleInfo returns the stored household configuration.
func (s *LedgerService) CoupleInfo(ctx context.Context) (core.CoupleInfo, error) {
	return s.storage.GetCoupleInfo(ctx)
}

// SaveCoupleInfo replaces the household configuration. Every month depends
// on it, so the event carries no specific month; cached summaries age out
// via their TTL and the worker rewrites recent snapshots.
func (s *LedgerService) SaveCoupleInfo(ctx context.Context, couple core.CoupleInfo) error {
	if err := s.storage.SaveCoupleInfo(ctx, couple); err != nil {
		return fmt.Errorf("save couple info: %w", err)
	}

	s.publish(ctx, "", amqp.EntityCouple)
	return nil
}

// AddGoal validates and persists a savings goal.
func (s *LedgerService) AddGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}

	created, err := s.storage.CreateGoal(ctx, g)
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("save goal: %w", err)
	}

	s.publish(ctx, "", amqp.EntityGoal)
	return created, nil
}

// ListGoals returns all goals with their current stats for a month.
func (s *LedgerService) ListGoals(ctx context.Context, month core.MonthKey) ([]core.SavingsGoal, []engine.GoalStats, error) {
	goals, err := s.storage.ListGoals(ctx)
	if err != nil {
		return nil, nil, err
	}
	txs, err := s.storage.ListGoalTransactions(ctx)
	if err != nil {
		return nil, nil, err
	}

	txsByGoal := make(map[string][]core.GoalTransaction)
	for _, tx := range txs {
		txsByGoal[tx.GoalID] = append(txsByGoal[tx.GoalID], tx)
	}

	stats := make([]engine.GoalStats, len(goals))
	for i, g := range goals {
		stats[i] = engine.CalculateGoalStats(g, txsByGoal[g.ID], month)
	}
	return goals, stats, nil
}

// AddGoalTransaction appends a deposit or withdrawal and reconciles the
// goal's completion flag against the new balance.
func (s *LedgerService) AddGoalTransaction(ctx context.Context, t core.GoalTransaction) (core.GoalTransaction, error) {
	if err := t.Validate(); err != nil {
		return core.GoalTransaction{}, err
	}

	created, err := s.storage.CreateGoalTransaction(ctx, t)
	if err != nil {
		return core.GoalTransaction{}, fmt.Errorf("save goal transaction: %w", err)
	}

	if err := s.reconcileGoalCompletion(ctx, t.GoalID); err != nil {
		slog.WarnContext(ctx, "Failed to reconcile goal completion",
			"goal_id", t.GoalID, "error", err)
	}

	s.ledgerChanged(ctx, t.Date.MonthKey(), amqp.EntityGoalTx)
	return created, nil
}

func (s *LedgerService) reconcileGoalCompletion(ctx context.Context, goalID string) error {
	goals, err := s.storage.ListGoals(ctx)
	if err != nil {
		return err
	}
	var goal *core.SavingsGoal
	for i := range goals {
		if goals[i].ID == goalID {
			goal = &goals[i]
			break
		}
	}
	if goal == nil {
		return fmt.Errorf("goal %s not found", goalID)
	}

	txs, err := s.storage.ListGoalTransactionsByGoal(ctx, goalID)
	if err != nil {
		return err
	}

	balance := engine.GoalBalance(txs)
	completed := engine.GoalProgress(*goal, balance) >= 100
	if completed == goal.IsCompleted {
		return nil
	}

	slog.InfoContext(ctx, "Goal completion changed",
		"goal_id", goalID,
		"completed", completed,
		"balance_cents", balance.Cents)

	return s.storage.SetGoalCompleted(ctx, goalID, completed)
}

// CreateTrip validates and persists a trip.
func (s *LedgerService) CreateTrip(ctx context.Context, t core.Trip) (core.Trip, error) {
	if t.ProportionType == "" {
		t.ProportionType = core.TripSplitProportional
	}
	if err := t.Validate(); err != nil {
		return core.Trip{}, err
	}
	return s.storage.CreateTrip(ctx, t)
}

// AddTripExpense appends an expense to a trip.
func (s *LedgerService) AddTripExpense(ctx context.Context, tripID string, e core.TripExpense) (core.TripExpense, error) {
	if e.Value.Cents < 0 {
		return core.TripExpense{}, core.ErrInvalidAmount
	}
	if _, err := s.storage.GetTrip(ctx, tripID); err != nil {
		return core.TripExpense{}, err
	}
	return s.storage.AddTripExpense(ctx, tripID, e)
}

// AddTripDeposit appends a fund deposit to a trip.
func (s *LedgerService) AddTripDeposit(ctx context.Context, tripID string, d core.TripDeposit) (core.TripDeposit, error) {
	if d.Value.Cents < 0 {
		return core.TripDeposit{}, core.ErrInvalidAmount
	}
	if !d.Person.Valid() {
		return core.TripDeposit{}, core.ErrInvalidPerson
	}
	if _, err := s.storage.GetTrip(ctx, tripID); err != nil {
		return core.TripDeposit{}, err
	}
	return s.storage.AddTripDeposit(ctx, tripID, d)
}

// ListTrips returns all trips without their line items.
func (s *LedgerService) ListTrips(ctx context.Context) ([]core.Trip, error) {
	return s.storage.ListTrips(ctx)
}

// TripSettlement computes the pooled-fund settlement for one trip, using the
// household baseline salary ratio for proportional trips.
func (s *LedgerService) TripSettlement(ctx context.Context, tripID string) (engine.TripSettlement, error) {
	trip, err := s.storage.GetTrip(ctx, tripID)
	if err != nil {
		return engine.TripSettlement{}, err
	}
	couple, err := s.storage.GetCoupleInfo(ctx)
	if err != nil {
		return engine.TripSettlement{}, err
	}
	return engine.CalculateTripSettlement(trip, engine.BaselineSalaryRatio1(couple)), nil
}

// MonthSnapshot returns the worker-persisted settlement snapshot for a month,
// the cheap read path for months already closed out.
func (s *LedgerService) MonthSnapshot(ctx context.Context, month core.MonthKey) (storage.SummarySnapshot, error) {
	return s.storage.GetSummarySnapshot(ctx, month)
}

// MonthlySummary computes (or serves from cache) the settlement of one month.
func (s *LedgerService) MonthlySummary(ctx context.Context, month core.MonthKey) (engine.MonthlySummary, error) {
	key := summaryCacheKey(month)
	if s.summaryCache != nil {
		if payload, found := s.summaryCache.Get(ctx, key); found {
			var summary engine.MonthlySummary
			if err := json.Unmarshal([]byte(payload), &summary); err == nil {
				slog.DebugContext(ctx, "Summary cache hit", "month", month.String())
				return summary, nil
			}
			// Corrupt cache entry: drop it and recompute.
			s.summaryCache.Delete(ctx, key)
		}
	}

	summary, err := s.computeSummary(ctx, month)
	if err != nil {
		return engine.MonthlySummary{}, err
	}

	if s.summaryCache != nil {
		if payload, err := json.Marshal(summary); err == nil {
			s.summaryCache.Set(ctx, key, string(payload))
		}
	}
	return summary, nil
}

func (s *LedgerService) computeSummary(ctx context.Context, month core.MonthKey) (engine.MonthlySummary, error) {
	expenses, err := s.storage.ListExpenses(ctx)
	if err != nil {
		return engine.MonthlySummary{}, fmt.Errorf("load expenses: %w", err)
	}
	incomes, err := s.storage.ListIncomesByMonth(ctx, month)
	if err != nil {
		return engine.MonthlySummary{}, fmt.Errorf("load incomes: %w", err)
	}
	couple, err := s.storage.GetCoupleInfo(ctx)
	if err != nil {
		return engine.MonthlySummary{}, fmt.Errorf("load couple info: %w", err)
	}
	goals, err := s.storage.ListGoals(ctx)
	if err != nil {
		return engine.MonthlySummary{}, fmt.Errorf("load goals: %w", err)
	}
	goalTxs, err := s.storage.ListGoalTransactions(ctx)
	if err != nil {
		return engine.MonthlySummary{}, fmt.Errorf("load goal transactions: %w", err)
	}

	return engine.CalculateSummary(expenses, incomes, couple, month, goals, goalTxs), nil
}

// ledgerChanged invalidates the month's cached summary and publishes a
// ledger event.
func (s *LedgerService) ledgerChanged(ctx context.Context, month core.MonthKey, entity string) {
	if s.summaryCache != nil {
		s.summaryCache.Delete(ctx, summaryCacheKey(month))
	}
	s.publish(ctx, month.String(), entity)
}

// expenseChanged invalidates the cached summary of every month the expense
// contributes to, not just its start month. Installment expenses cover an
// exact range and get one event per covered month, so the worker refreshes
// snapshots even outside its recent window. Fixed expenses recur without end;
// their cached months are invalidated up to the present and a month-less
// event refreshes the worker's recent window.
func (s *LedgerService) expenseChanged(ctx context.Context, e core.Expense) {
	months := expenseMonths(e)
	if s.summaryCache != nil {
		for _, m := range months {
			s.summaryCache.Delete(ctx, summaryCacheKey(m))
		}
	}

	if e.Type.IsFixed() {
		s.publish(ctx, "", amqp.EntityExpense)
		return
	}
	for _, m := range months {
		s.publish(ctx, m.String(), amqp.EntityExpense)
	}
}

// expenseMonths enumerates the months an expense applies to: the installment
// range for installment kinds, start through the current month for fixed
// kinds.
func expenseMonths(e core.Expense) []core.MonthKey {
	start := e.Date.MonthKey()

	count := e.Installments
	if e.Type.IsFixed() {
		now := time.Now()
		current := core.MonthKey{Year: now.Year(), Month: int(now.Month())}
		count = current.Sub(start) + 1
	}
	if count < 1 {
		count = 1
	}

	months := make([]core.MonthKey, count)
	for i := range months {
		months[i] = start.AddMonths(i)
	}
	return months
}

func (s *LedgerService) publish(ctx context.Context, month, entity string) {
	if s.amqpClient == nil {
		return
	}
	// Events are advisory; a failed publish never fails the write.
	if err := s.amqpClient.PublishLedgerEvent(ctx, month, entity); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"month", month, "entity", entity, "error", err)
	}
}

func summaryCacheKey(month core.MonthKey) string {
	return "summary:" + month.String()
}
