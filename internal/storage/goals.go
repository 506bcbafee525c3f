package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"contas/internal/core"
)

// CreateGoal persists a savings goal and returns it with its assigned ID.
func (r *Repository) CreateGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO goals (id, name, target_value_cents,
			monthly_contribution_p1_cents, monthly_contribution_p2_cents, is_completed)
		VALUES (?, ?, ?, ?, ?, ?)`,
		g.ID, g.Name, g.TargetValue.Cents,
		g.MonthlyContributionP1.Cents, g.MonthlyContributionP2.Cents, g.IsCompleted)
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("create goal: %w", err)
	}

	slog.InfoContext(ctx, "Goal saved",
		"id", g.ID,
		"name", g.Name,
		"target_cents", g.TargetValue.Cents)

	return g, nil
}

// ListGoals returns all savings goals.
func (r *Repository) ListGoals(ctx context.Context) ([]core.SavingsGoal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, target_value_cents,
		       monthly_contribution_p1_cents, monthly_contribution_p2_cents, is_completed
		FROM goals ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []core.SavingsGoal
	for rows.Next() {
		var g core.SavingsGoal
		var target, c1, c2 int64
		if err := rows.Scan(&g.ID, &g.Name, &target, &c1, &c2, &g.IsCompleted); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		g.TargetValue = core.Money{Cents: target}
		g.MonthlyContributionP1 = core.Money{Cents: c1}
		g.MonthlyContributionP2 = core.Money{Cents: c2}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// SetGoalCompleted flips the completion flag once the balance reaches the
// target (or back, after a withdrawal).
func (r *Repository) SetGoalCompleted(ctx context.Context, id string, completed bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE goals SET is_completed = ? WHERE id = ?`, completed, id)
	if err != nil {
		return fmt.Errorf("set goal completed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CreateGoalTransaction appends a deposit or withdrawal to a goal's history.
func (r *Repository) CreateGoalTransaction(ctx context.Context, t core.GoalTransaction) (core.GoalTransaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO goal_transactions (id, goal_id, type, value_cents, person, date)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.GoalID, string(t.Type), t.Value.Cents, string(t.Person), t.Date.String())
	if err != nil {
		return core.GoalTransaction{}, fmt.Errorf("create goal transaction: %w", err)
	}

	slog.InfoContext(ctx, "Goal transaction saved",
		"id", t.ID,
		"goal_id", t.GoalID,
		"type", t.Type,
		"value_cents", t.Value.Cents,
		"person", t.Person)

	return t, nil
}

// ListGoalTransactions returns the full transaction history across all goals.
func (r *Repository) ListGoalTransactions(ctx context.Context) ([]core.GoalTransaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, goal_id, type, value_cents, person, date
		FROM goal_transactions ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("list goal transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.GoalTransaction
	for rows.Next() {
		var (
			t           core.GoalTransaction
			typ, person string
			cents       int64
			dateStr     string
		)
		if err := rows.Scan(&t.ID, &t.GoalID, &typ, &cents, &person, &dateStr); err != nil {
			return nil, fmt.Errorf("scan goal transaction: %w", err)
		}
		date, err := core.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse transaction date %q: %w", dateStr, err)
		}
		t.Type = core.GoalTransactionType(typ)
		t.Person = core.Person(person)
		t.Value = core.Money{Cents: cents}
		t.Date = date
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// ListGoalTransactionsByGoal returns one goal's transaction history.
func (r *Repository) ListGoalTransactionsByGoal(ctx context.Context, goalID string) ([]core.GoalTransaction, error) {
	all, err := r.ListGoalTransactions(ctx)
	if err != nil {
		return nil, err
	}
	var txs []core.GoalTransaction
	for _, t := range all {
		if t.GoalID == goalID {
			txs = append(txs, t)
		}
	}
	return txs, nil
}
