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

var ErrTripNotFound = errors.New("trip not found")

// CreateTrip persists a trip together with any initial expenses and deposits.
func (r *Repository) CreateTrip(ctx context.Context, t core.Trip) (core.Trip, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Trip{}, fmt.Errorf("begin create trip: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO trips (id, name, proportion_type, custom_percentage1)
		VALUES (?, ?, ?, ?)`,
		t.ID, t.Name, string(t.ProportionType), t.CustomPercentage1)
	if err != nil {
		return core.Trip{}, fmt.Errorf("create trip: %w", err)
	}

	for i := range t.Expenses {
		if t.Expenses[i].ID == "" {
			t.Expenses[i].ID = uuid.NewString()
		}
		e := t.Expenses[i]
		_, err := tx.ExecContext(ctx, `
			INSERT INTO trip_expenses (id, trip_id, description, value_cents, paid_by)
			VALUES (?, ?, ?, ?, ?)`,
			e.ID, t.ID, e.Description, e.Value.Cents, string(e.PaidBy))
		if err != nil {
			return core.Trip{}, fmt.Errorf("create trip expense: %w", err)
		}
	}

	for i := range t.Deposits {
		if t.Deposits[i].ID == "" {
			t.Deposits[i].ID = uuid.NewString()
		}
		d := t.Deposits[i]
		_, err := tx.ExecContext(ctx, `
			INSERT INTO trip_deposits (id, trip_id, person, value_cents)
			VALUES (?, ?, ?, ?)`,
			d.ID, t.ID, string(d.Person), d.Value.Cents)
		if err != nil {
			return core.Trip{}, fmt.Errorf("create trip deposit: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return core.Trip{}, fmt.Errorf("commit trip: %w", err)
	}

	slog.InfoContext(ctx, "Trip saved",
		"id", t.ID,
		"name", t.Name,
		"expenses", len(t.Expenses),
		"deposits", len(t.Deposits))

	return t, nil
}

// GetTrip loads a trip with all its expenses and deposits.
func (r *Repository) GetTrip(ctx context.Context, id string) (core.Trip, error) {
	var t core.Trip
	var proportion string

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, proportion_type, custom_percentage1
		FROM trips WHERE id = ?`, id).Scan(&t.ID, &t.Name, &proportion, &t.CustomPercentage1)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Trip{}, ErrTripNotFound
	}
	if err != nil {
		return core.Trip{}, fmt.Errorf("get trip: %w", err)
	}
	t.ProportionType = core.TripProportionType(proportion)

	expRows, err := r.db.QueryContext(ctx, `
		SELECT id, description, value_cents, paid_by
		FROM trip_expenses WHERE trip_id = ? ORDER BY id`, id)
	if err != nil {
		return core.Trip{}, fmt.Errorf("list trip expenses: %w", err)
	}
	defer expRows.Close()

	for expRows.Next() {
		var e core.TripExpense
		var cents int64
		var paidBy string
		if err := expRows.Scan(&e.ID, &e.Description, &cents, &paidBy); err != nil {
			return core.Trip{}, fmt.Errorf("scan trip expense: %w", err)
		}
		e.Value = core.Money{Cents: cents}
		e.PaidBy = core.TripPayer(paidBy)
		t.Expenses = append(t.Expenses, e)
	}
	if err := expRows.Err(); err != nil {
		return core.Trip{}, err
	}

	depRows, err := r.db.QueryContext(ctx, `
		SELECT id, person, value_cents
		FROM trip_deposits WHERE trip_id = ? ORDER BY id`, id)
	if err != nil {
		return core.Trip{}, fmt.Errorf("list trip deposits: %w", err)
	}
	defer depRows.Close()

	for depRows.Next() {
		var d core.TripDeposit
		var cents int64
		var person string
		if err := depRows.Scan(&d.ID, &person, &cents); err != nil {
			return core.Trip{}, fmt.Errorf("scan trip deposit: %w", err)
		}
		d.Value = core.Money{Cents: cents}
		d.Person = core.Person(person)
		t.Deposits = append(t.Deposits, d)
	}
	return t, depRows.Err()
}

// ListTrips returns all trips without their expense and deposit lists.
func (r *Repository) ListTrips(ctx context.Context) ([]core.Trip, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, proportion_type, custom_percentage1 FROM trips ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()

	var trips []core.Trip
	for rows.Next() {
		var t core.Trip
		var proportion string
		if err := rows.Scan(&t.ID, &t.Name, &proportion, &t.CustomPercentage1); err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		t.ProportionType = core.TripProportionType(proportion)
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// AddTripExpense appends an expense to an existing trip.
func (r *Repository) AddTripExpense(ctx context.Context, tripID string, e core.TripExpense) (core.TripExpense, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO trip_expenses (id, trip_id, description, value_cents, paid_by)
		VALUES (?, ?, ?, ?, ?)`,
		e.ID, tripID, e.Description, e.Value.Cents, string(e.PaidBy))
	if err != nil {
		return core.TripExpense{}, fmt.Errorf("add trip expense: %w", err)
	}
	return e, nil
}

// AddTripDeposit appends a fund deposit to an existing trip.
func (r *Repository) AddTripDeposit(ctx context.Context, tripID string, d core.TripDeposit) (core.TripDeposit, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO trip_deposits (id, trip_id, person, value_cents)
		VALUES (?, ?, ?, ?)`,
		d.ID, tripID, string(d.Person), d.Value.Cents)
	if err != nil {
		return core.TripDeposit{}, fmt.Errorf("add trip deposit: %w", err)
	}
	return d, nil
}
