package worker

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"contas/internal/amqp"
	"contas/internal/core"
	"contas/internal/engine"
	"contas/internal/services"
	"contas/internal/storage"
)

type captureExporter struct {
	months []string
}

func (c *captureExporter) AppendSummary(_ context.Context, s engine.MonthlySummary) error {
	c.months = append(c.months, s.Month.String())
	return nil
}

func newTestWorker(t *testing.T, exporter Exporter) (*SnapshotWorker, *storage.Repository, *services.LedgerService) {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "contas.db"))
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	ledger := services.NewLedgerService(repo, nil, nil)
	return NewSnapshotWorker(repo, ledger, exporter, 3), repo, ledger
}

func TestHandleLedgerEventWritesSnapshot(t *testing.T) {
	ctx := context.Background()
	exporter := &captureExporter{}
	w, repo, ledger := newTestWorker(t, exporter)
	month := core.MonthKey{Year: 2025, Month: 6}

	if err := ledger.SaveCoupleInfo(ctx, core.CoupleInfo{
		Person1Name: "Ana", Person2Name: "Bruno",
		Salary1: core.Money{Cents: 500000},
		Salary2: core.Money{Cents: 500000},
	}); err != nil {
		t.Fatalf("SaveCoupleInfo: %v", err)
	}
	if _, err := ledger.AddExpense(ctx, core.Expense{
		Type:        core.ExpenseCommon,
		Description: "Mercado",
		TotalValue:  core.Money{Cents: 100000},
		Date:        core.NewDate(2025, 6, 3),
		PaidBy:      core.Person1,
	}); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}

	msg := amqp.NewLedgerEventMessage("2025-06", amqp.EntityExpense)
	if err := w.HandleLedgerEvent(ctx, msg); err != nil {
		t.Fatalf("HandleLedgerEvent: %v", err)
	}

	snap, err := repo.GetSummarySnapshot(ctx, month)
	if err != nil {
		t.Fatalf("GetSummarySnapshot: %v", err)
	}
	var summary engine.MonthlySummary
	if err := json.Unmarshal(snap.Payload, &summary); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if summary.WhoTransfers != core.Person2 || summary.TransferAmount.Cents != 50000 {
		t.Fatalf("snapshot settlement = %s %d", summary.WhoTransfers, summary.TransferAmount.Cents)
	}

	if len(exporter.months) != 1 || exporter.months[0] != "2025-06" {
		t.Fatalf("exported months = %v", exporter.months)
	}
}

func TestHandleLedgerEventBadMonth(t *testing.T) {
	w, _, _ := newTestWorker(t, nil)

	// A malformed month can never succeed on redelivery; the handler must
	// swallow it so the consumer acks instead of requeuing it forever.
	msg := amqp.NewLedgerEventMessage("junho", amqp.EntityExpense)
	if err := w.HandleLedgerEvent(context.Background(), msg); err != nil {
		t.Fatalf("malformed month should be dropped, got %v", err)
	}
}

func TestRecomputeMonths(t *testing.T) {
	ctx := context.Background()
	w, repo, _ := newTestWorker(t, nil)

	months := []core.MonthKey{
		{Year: 2025, Month: 4},
		{Year: 2025, Month: 5},
		{Year: 2025, Month: 6},
	}
	if err := w.RecomputeMonths(ctx, months); err != nil {
		t.Fatalf("RecomputeMonths: %v", err)
	}

	for _, m := range months {
		if _, err := repo.GetSummarySnapshot(ctx, m); err != nil {
			t.Fatalf("snapshot missing for %s: %v", m, err)
		}
	}
}
