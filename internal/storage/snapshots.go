package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"contas/internal/core"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

// SummarySnapshot is a worker-computed monthly summary, stored as JSON for
// cheap reads and as an audit trail of past settlements.
type SummarySnapshot struct {
	Month      core.MonthKey
	Payload    []byte
	ComputedAt time.Time
}

// SaveSummarySnapshot upserts the snapshot for a month.
func (r *Repository) SaveSummarySnapshot(ctx context.Context, month core.MonthKey, payload []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO summary_snapshots (month, payload, computed_at)
		VALUES (?, ?, ?)
		ON CONFLICT (month) DO UPDATE SET
			payload = excluded.payload,
			computed_at = excluded.computed_at`,
		month.String(), string(payload), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save summary snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Summary snapshot saved",
		"month", month.String(),
		"payload_bytes", len(payload))

	return nil
}

// GetSummarySnapshot returns the stored snapshot for a month.
func (r *Repository) GetSummarySnapshot(ctx context.Context, month core.MonthKey) (SummarySnapshot, error) {
	var payload, computedAt string

	err := r.db.QueryRowContext(ctx,
		`SELECT payload, computed_at FROM summary_snapshots WHERE month = ?`,
		month.String()).Scan(&payload, &computedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return SummarySnapshot{}, ErrSnapshotNotFound
	}
	if err != nil {
		return SummarySnapshot{}, fmt.Errorf("get summary snapshot: %w", err)
	}

	ts, err := time.Parse(time.RFC3339, computedAt)
	if err != nil {
		return SummarySnapshot{}, fmt.Errorf("parse snapshot timestamp: %w", err)
	}

	return SummarySnapshot{Month: month, Payload: []byte(payload), ComputedAt: ts}, nil
}
