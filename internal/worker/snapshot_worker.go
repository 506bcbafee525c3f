// Package worker recomputes and persists monthly settlement snapshots when
// the ledger changes, and optionally exports them to a spreadsheet.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"contas/internal/amqp"
	"contas/internal/core"
	"contas/internal/engine"
	"contas/internal/services"
	"contas/internal/storage"
)

// SnapshotWorker consumes ledger events and keeps summary snapshots current.
type SnapshotWorker struct {
	storage  *storage.Repository
	ledger   *services.LedgerService
	exporter Exporter
	months   int
}

// Exporter pushes a settled summary to an external destination.
type Exporter interface {
	AppendSummary(ctx context.Context, s engine.MonthlySummary) error
}

// NewSnapshotWorker wires the worker. exporter may be nil; months is how many
// recent months a month-less event refreshes.
func NewSnapshotWorker(storage *storage.Repository, ledger *services.LedgerService, exporter Exporter, months int) *SnapshotWorker {
	if months < 1 {
		months = 1
	}
	return &SnapshotWorker{
		storage:  storage,
		ledger:   ledger,
		exporter: exporter,
		months:   months,
	}
}

// HandleLedgerEvent processes one ledger event from AMQP.
func (w *SnapshotWorker) HandleLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	slog.InfoContext(ctx, "Processing ledger event",
		"month", msg.Month,
		"entity", msg.Entity)

	if msg.Month == "" {
		// Couple or goal configuration changed: refresh the recent window.
		return w.RecomputeRecent(ctx)
	}

	month, err := core.ParseMonthKey(msg.Month)
	if err != nil {
		// Malformed month keys never resolve on retry; returning an error
		// would requeue the message forever, so drop it.
		slog.ErrorContext(ctx, "Dropping ledger event with malformed month",
			"month", msg.Month, "entity", msg.Entity, "error", err)
		return nil
	}
	return w.recomputeMonth(ctx, month)
}

// RecomputeRecent refreshes snapshots for the current month and the window
// of months before it, concurrently.
func (w *SnapshotWorker) RecomputeRecent(ctx context.Context) error {
	now := time.Now()
	current := core.MonthKey{Year: now.Year(), Month: int(now.Month())}

	months := make([]core.MonthKey, w.months)
	for i := range months {
		months[i] = current.AddMonths(-i)
	}
	return w.RecomputeMonths(ctx, months)
}

// RecomputeMonths refreshes snapshots for the given months concurrently.
func (w *SnapshotWorker) RecomputeMonths(ctx context.Context, months []core.MonthKey) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, month := range months {
		g.Go(func() error {
			return w.recomputeMonth(gctx, month)
		})
	}
	return g.Wait()
}

func (w *SnapshotWorker) recomputeMonth(ctx context.Context, month core.MonthKey) error {
	summary, err := w.ledger.MonthlySummary(ctx, month)
	if err != nil {
		return fmt.Errorf("compute summary for %s: %w", month, err)
	}

	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary for %s: %w", month, err)
	}
	if err := w.storage.SaveSummarySnapshot(ctx, month, payload); err != nil {
		return fmt.Errorf("persist snapshot for %s: %w", month, err)
	}

	if w.exporter != nil {
		if err := w.exporter.AppendSummary(ctx, summary); err != nil {
			// The snapshot is saved; export failures are logged, not retried
			// through the queue.
			slog.ErrorContext(ctx, "Failed to export summary",
				"month", month.String(), "error", err)
		}
	}

	slog.InfoContext(ctx, "Snapshot recomputed",
		"month", month.String(),
		"who_transfers", summary.WhoTransfers,
		"transfer_cents", summary.TransferAmount.Cents)

	return nil
}
