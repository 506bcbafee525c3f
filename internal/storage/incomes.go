package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"contas/internal/core"
)

// CreateIncome persists a real income row.
func (r *Repository) CreateIncome(ctx context.Context, in core.Income) (core.Income, error) {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO incomes (id, description, value_cents, date, category, paid_by)
		VALUES (?, ?, ?, ?, ?, ?)`,
		in.ID, in.Description, in.Value.Cents, in.Date.String(), in.Category, string(in.PaidBy))
	if err != nil {
		return core.Income{}, fmt.Errorf("create income: %w", err)
	}

	slog.InfoContext(ctx, "Income saved",
		"id", in.ID,
		"description", in.Description,
		"value_cents", in.Value.Cents,
		"paid_by", in.PaidBy)

	return in, nil
}

// ListIncomesByMonth returns the real income rows dated inside a month.
func (r *Repository) ListIncomesByMonth(ctx context.Context, month core.MonthKey) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, description, value_cents, date, category, paid_by
		FROM incomes
		WHERE date LIKE ? || '%'
		ORDER BY date, id`, month.String())
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var incomes []core.Income
	for rows.Next() {
		var (
			in      core.Income
			cents   int64
			dateStr string
			paidBy  string
		)
		if err := rows.Scan(&in.ID, &in.Description, &cents, &dateStr, &in.Category, &paidBy); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		date, err := core.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse income date %q: %w", dateStr, err)
		}
		in.Value = core.Money{Cents: cents}
		in.Date = date
		in.PaidBy = core.Person(paidBy)
		incomes = append(incomes, in)
	}
	return incomes, rows.Err()
}

// GetIncome loads a single income row.
func (r *Repository) GetIncome(ctx context.Context, id string) (core.Income, error) {
	var (
		in      core.Income
		cents   int64
		dateStr string
		paidBy  string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, description, value_cents, date, category, paid_by
		FROM incomes WHERE id = ?`, id).Scan(
		&in.ID, &in.Description, &cents, &dateStr, &in.Category, &paidBy)
	if err != nil {
		return core.Income{}, fmt.Errorf("get income: %w", err)
	}
	date, err := core.ParseDate(dateStr)
	if err != nil {
		return core.Income{}, fmt.Errorf("parse income date %q: %w", dateStr, err)
	}
	in.Value = core.Money{Cents: cents}
	in.Date = date
	in.PaidBy = core.Person(paidBy)
	return in, nil
}

// DeleteIncome removes an income row.
func (r *Repository) DeleteIncome(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM incomes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetCoupleInfo loads the household configuration, including recurring income
// lists. Returns a zero value when nothing was saved yet.
func (r *Repository) GetCoupleInfo(ctx context.Context) (core.CoupleInfo, error) {
	var couple core.CoupleInfo
	var s1, s2 int64

	err := r.db.QueryRowContext(ctx, `
		SELECT person1_name, person2_name, salary1_cents, salary2_cents,
		       salary1_description, salary2_description
		FROM couple_info WHERE id = 1`).Scan(
		&couple.Person1Name, &couple.Person2Name, &s1, &s2,
		&couple.Salary1Description, &couple.Salary2Description)
	if errors.Is(err, sql.ErrNoRows) {
		return core.CoupleInfo{}, nil
	}
	if err != nil {
		return core.CoupleInfo{}, fmt.Errorf("get couple info: %w", err)
	}
	couple.Salary1 = core.Money{Cents: s1}
	couple.Salary2 = core.Money{Cents: s2}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, person, description, value_cents FROM recurring_incomes ORDER BY id`)
	if err != nil {
		return core.CoupleInfo{}, fmt.Errorf("list recurring incomes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ri core.RecurringIncome
		var person string
		var cents int64
		if err := rows.Scan(&ri.ID, &person, &ri.Description, &cents); err != nil {
			return core.CoupleInfo{}, fmt.Errorf("scan recurring income: %w", err)
		}
		ri.Value = core.Money{Cents: cents}
		switch core.Person(person) {
		case core.Person1:
			couple.Person1RecurringIncomes = append(couple.Person1RecurringIncomes, ri)
		case core.Person2:
			couple.Person2RecurringIncomes = append(couple.Person2RecurringIncomes, ri)
		}
	}
	return couple, rows.Err()
}

// SaveCoupleInfo upserts the household configuration and replaces the
// recurring income lists wholesale, inside one transaction.
func (r *Repository) SaveCoupleInfo(ctx context.Context, couple core.CoupleInfo) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save couple info: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO couple_info (id, person1_name, person2_name, salary1_cents,
			salary2_cents, salary1_description, salary2_description)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			person1_name = excluded.person1_name,
			person2_name = excluded.person2_name,
			salary1_cents = excluded.salary1_cents,
			salary2_cents = excluded.salary2_cents,
			salary1_description = excluded.salary1_description,
			salary2_description = excluded.salary2_description`,
		couple.Person1Name, couple.Person2Name,
		couple.Salary1.Cents, couple.Salary2.Cents,
		couple.Salary1Description, couple.Salary2Description)
	if err != nil {
		return fmt.Errorf("upsert couple info: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM recurring_incomes`); err != nil {
		return fmt.Errorf("clear recurring incomes: %w", err)
	}

	insert := func(person core.Person, list []core.RecurringIncome) error {
		for _, ri := range list {
			id := ri.ID
			if id == "" {
				id = uuid.NewString()
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO recurring_incomes (id, person, description, value_cents)
				VALUES (?, ?, ?, ?)`,
				id, string(person), ri.Description, ri.Value.Cents)
			if err != nil {
				return fmt.Errorf("insert recurring income: %w", err)
			}
		}
		return nil
	}
	if err := insert(core.Person1, couple.Person1RecurringIncomes); err != nil {
		return err
	}
	if err := insert(core.Person2, couple.Person2RecurringIncomes); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit couple info: %w", err)
	}

	slog.InfoContext(ctx, "Couple info saved",
		"person1", couple.Person1Name,
		"person2", couple.Person2Name,
		"recurring_p1", len(couple.Person1RecurringIncomes),
		"recurring_p2", len(couple.Person2RecurringIncomes))

	return nil
}
