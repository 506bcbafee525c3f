package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"contas/internal/core"
)

// CreateExpense persists an expense and returns it with its assigned ID.
func (r *Repository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (
			id, type, description, total_value_cents, date, installments,
			paid_by, category, split_method, split_percentage1,
			specific_value_p1_cents, specific_value_p2_cents, reimbursement_status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.Type), e.Description, e.TotalValue.Cents, e.Date.String(),
		e.Installments, string(e.PaidBy), e.Category, string(e.SplitMethod),
		e.SplitPercentage1, e.SpecificValueP1.Cents, e.SpecificValueP2.Cents,
		string(e.ReimbursementStatus))
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	for month, value := range e.MonthOverrides {
		if err := r.SetExpenseMonthOverride(ctx, e.ID, month, value); err != nil {
			return core.Expense{}, err
		}
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", e.ID,
		"type", e.Type,
		"description", e.Description,
		"total_cents", e.TotalValue.Cents)

	return e, nil
}

// ListExpenses returns all non-deleted expenses with their month overrides.
func (r *Repository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, description, total_value_cents, date, installments,
		       paid_by, category, split_method, split_percentage1,
		       specific_value_p1_cents, specific_value_p2_cents, reimbursement_status
		FROM expenses
		WHERE deleted = 0
		ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	overrides, err := r.loadMonthOverrides(ctx)
	if err != nil {
		return nil, err
	}
	for i := range expenses {
		if ov, ok := overrides[expenses[i].ID]; ok {
			expenses[i].MonthOverrides = ov
		}
	}

	return expenses, nil
}

// GetExpense retrieves a single non-deleted expense by ID.
func (r *Repository) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, type, description, total_value_cents, date, installments,
		       paid_by, category, split_method, split_percentage1,
		       specific_value_p1_cents, specific_value_p2_cents, reimbursement_status
		FROM expenses
		WHERE id = ? AND deleted = 0`, id)

	e, err := scanExpense(row)
	if err != nil {
		return core.Expense{}, err
	}

	overrides, err := r.loadMonthOverridesFor(ctx, id)
	if err != nil {
		return core.Expense{}, err
	}
	e.MonthOverrides = overrides

	return e, nil
}

// DeleteExpense soft-deletes an expense; past months keep their history only
// through snapshots, the live ledger stops seeing the row.
func (r *Repository) DeleteExpense(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE expenses SET deleted = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}

	slog.InfoContext(ctx, "Expense soft-deleted", "id", id)
	return nil
}

// SetExpenseMonthOverride upserts a fixed expense's per-month value.
func (r *Repository) SetExpenseMonthOverride(ctx context.Context, id string, month string, value core.Money) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expense_month_overrides (expense_id, month, value_cents)
		VALUES (?, ?, ?)
		ON CONFLICT (expense_id, month) DO UPDATE SET value_cents = excluded.value_cents`,
		id, month, value.Cents)
	if err != nil {
		return fmt.Errorf("set month override: %w", err)
	}
	return nil
}

// SetReimbursementStatus updates an open reimbursement, typically to settled.
func (r *Repository) SetReimbursementStatus(ctx context.Context, id string, status core.ReimbursementStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET reimbursement_status = ? WHERE id = ? AND deleted = 0`,
		string(status), id)
	if err != nil {
		return fmt.Errorf("set reimbursement status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}

	slog.InfoContext(ctx, "Reimbursement status updated", "id", id, "status", status)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e                      core.Expense
		typ, paidBy            string
		splitMethod, reimburse string
		totalCents             int64
		spec1, spec2           int64
		dateStr                string
	)
	err := row.Scan(&e.ID, &typ, &e.Description, &totalCents, &dateStr,
		&e.Installments, &paidBy, &e.Category, &splitMethod, &e.SplitPercentage1,
		&spec1, &spec2, &reimburse)
	if err != nil {
		return core.Expense{}, fmt.Errorf("scan expense: %w", err)
	}

	date, err := core.ParseDate(dateStr)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse expense date %q: %w", dateStr, err)
	}

	e.Type = core.ExpenseType(typ)
	e.PaidBy = core.Person(paidBy)
	e.SplitMethod = core.SplitMethod(splitMethod)
	e.ReimbursementStatus = core.ReimbursementStatus(reimburse)
	e.TotalValue = core.Money{Cents: totalCents}
	e.SpecificValueP1 = core.Money{Cents: spec1}
	e.SpecificValueP2 = core.Money{Cents: spec2}
	e.Date = date
	return e, nil
}

func (r *Repository) loadMonthOverrides(ctx context.Context) (map[string]map[string]core.Money, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT expense_id, month, value_cents FROM expense_month_overrides`)
	if err != nil {
		return nil, fmt.Errorf("load month overrides: %w", err)
	}
	defer rows.Close()

	overrides := make(map[string]map[string]core.Money)
	for rows.Next() {
		var expenseID, month string
		var cents int64
		if err := rows.Scan(&expenseID, &month, &cents); err != nil {
			return nil, fmt.Errorf("scan month override: %w", err)
		}
		if overrides[expenseID] == nil {
			overrides[expenseID] = make(map[string]core.Money)
		}
		overrides[expenseID][month] = core.Money{Cents: cents}
	}
	return overrides, rows.Err()
}

func (r *Repository) loadMonthOverridesFor(ctx context.Context, expenseID string) (map[string]core.Money, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT month, value_cents FROM expense_month_overrides WHERE expense_id = ?`, expenseID)
	if err != nil {
		return nil, fmt.Errorf("load month overrides: %w", err)
	}
	defer rows.Close()

	var overrides map[string]core.Money
	for rows.Next() {
		var month string
		var cents int64
		if err := rows.Scan(&month, &cents); err != nil {
			return nil, fmt.Errorf("scan month override: %w", err)
		}
		if overrides == nil {
			overrides = make(map[string]core.Money)
		}
		overrides[month] = core.Money{Cents: cents}
	}
	return overrides, rows.Err()
}
