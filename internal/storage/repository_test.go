package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"orderdash/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "orders.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleLines() []core.OrderLine {
	at := time.Date(2025, 7, 11, 14, 30, 0, 0, time.UTC)
	return []core.OrderLine{
		{OrderNumber: "1001", OrderDate: at, Status: core.StatusCompleted, Subtotal: core.Money{Cents: 125050}, ItemName: "Seeds", BillingCity: "Pune"},
		{OrderNumber: "1001", OrderDate: at, Status: core.StatusCompleted, Subtotal: core.Money{Cents: 30000}, ItemName: "Spray", BillingCity: "Pune"},
		{OrderNumber: "1002", OrderDate: at.AddDate(0, -2, 0), Status: "On hold", Subtotal: core.Money{Cents: -500}, ItemName: "", BillingCity: "Nashik"},
	}
}

func TestLatestSnapshot_Empty(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.LatestSnapshot(context.Background())
	if !errors.Is(err, core.ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}
}

func TestSaveAndLoadSnapshot(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	var progress []int
	id, err := repo.SaveSnapshot(ctx, "orders.xlsx", sampleLines(), func(done int) { progress = append(progress, done) })
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if id <= 0 {
		t.Fatalf("unexpected id %d", id)
	}
	if len(progress) != 3 || progress[2] != 3 {
		t.Fatalf("progress callbacks: %v", progress)
	}

	snap, err := repo.LatestSnapshot(ctx)
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if snap.ID != id || snap.Source != "orders.xlsx" {
		t.Fatalf("unexpected snapshot meta: %+v", snap)
	}
	if snap.ImportedAt.IsZero() {
		t.Fatal("imported_at not stored")
	}
	want := sampleLines()
	if len(snap.Lines) != len(want) {
		t.Fatalf("lines: got %d want %d", len(snap.Lines), len(want))
	}
	for i := range want {
		got := snap.Lines[i]
		if got.OrderNumber != want[i].OrderNumber || !got.OrderDate.Equal(want[i].OrderDate) ||
			got.Status != want[i].Status || got.Subtotal != want[i].Subtotal ||
			got.ItemName != want[i].ItemName || got.BillingCity != want[i].BillingCity {
			t.Fatalf("line %d: got %+v want %+v", i, got, want[i])
		}
		if got.PeriodLabel != core.PeriodLabel(want[i].OrderDate) {
			t.Fatalf("line %d period label: %q", i, got.PeriodLabel)
		}
	}
}

func TestLatestSnapshot_ReturnsNewest(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.SaveSnapshot(ctx, "first", sampleLines(), nil); err != nil {
		t.Fatalf("save first: %v", err)
	}
	second, err := repo.SaveSnapshot(ctx, "second", sampleLines()[:1], nil)
	if err != nil {
		t.Fatalf("save second: %v", err)
	}
	snap, err := repo.LatestSnapshot(ctx)
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if snap.ID != second || snap.Source != "second" || len(snap.Lines) != 1 {
		t.Fatalf("expected second snapshot, got id=%d source=%s lines=%d", snap.ID, snap.Source, len(snap.Lines))
	}
}

func TestPruneSnapshots(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := repo.SaveSnapshot(ctx, "import", sampleLines(), nil); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	removed, err := repo.PruneSnapshots(ctx, 2)
	if err != nil {
		t.Fatalf("PruneSnapshots: %v", err)
	}
	if removed != 3 {
		t.Fatalf("removed: got %d want 3", removed)
	}
	infos, err := repo.ListSnapshots(ctx, 10)
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(infos) != 2 || infos[0].ID <= infos[1].ID || infos[0].Rows != 3 {
		t.Fatalf("unexpected remaining snapshots: %+v", infos)
	}

	var orphans int
	if err := repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM order_lines WHERE import_id < ?`, infos[1].ID).Scan(&orphans); err != nil {
		t.Fatalf("count orphans: %v", err)
	}
	if orphans != 0 {
		t.Fatalf("order lines of pruned imports left behind: %d", orphans)
	}

	// Fewer imports than the retention: nothing to do.
	removed, err = repo.PruneSnapshots(ctx, 10)
	if err != nil || removed != 0 {
		t.Fatalf("expected no-op prune, got removed=%d err=%v", removed, err)
	}
	// Disabled retention.
	removed, err = repo.PruneSnapshots(ctx, 0)
	if err != nil || removed != 0 {
		t.Fatalf("expected disabled prune, got removed=%d err=%v", removed, err)
	}
}
