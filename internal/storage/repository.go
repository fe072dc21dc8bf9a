package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"orderdash/internal/core"

	_ "modernc.org/sqlite"
)

// Snapshot is one imported dataset: the import metadata plus every order line
// in source order.
type Snapshot struct {
	ID         int64
	Source     string
	ImportedAt time.Time
	Lines      []core.OrderLine
}

// SnapshotInfo is the metadata of an import without its lines.
type SnapshotInfo struct {
	ID         int64
	Source     string
	Rows       int
	ImportedAt time.Time
}

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveSnapshot stores lines as a new import in one transaction and returns its
// id. onRow, when set, is called after each stored line with the running count.
func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, source string, lines []core.OrderLine, onRow func(done int)) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	importedAt := r.now().Format(time.RFC3339Nano)
	id, err := q.CreateImport(ctx, source, int64(len(lines)), importedAt)
	if err != nil {
		return 0, fmt.Errorf("create import: %w", err)
	}

	for i, l := range lines {
		err := q.InsertOrderLine(ctx, OrderLineRow{
			ImportID:      id,
			Position:      int64(i),
			OrderNumber:   l.OrderNumber,
			OrderDate:     l.OrderDate.Format(time.RFC3339Nano),
			Status:        string(l.Status),
			SubtotalCents: l.Subtotal.Cents,
			ItemName:      l.ItemName,
			BillingCity:   l.BillingCity,
		})
		if err != nil {
			return 0, fmt.Errorf("insert order line %d: %w", i+1, err)
		}
		if onRow != nil {
			onRow(i + 1)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot saved to SQLite",
		"snapshot_id", id,
		"source", source,
		"rows", len(lines))
	return id, nil
}

// LatestSnapshot returns the newest import with its lines, or core.ErrNoSnapshot.
func (r *SQLiteRepository) LatestSnapshot(ctx context.Context) (Snapshot, error) {
	imp, err := r.queries.GetLatestImport(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, core.ErrNoSnapshot
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("get latest import: %w", err)
	}

	rows, err := r.queries.GetOrderLines(ctx, imp.ID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("get order lines for import %d: %w", imp.ID, err)
	}

	lines := make([]core.OrderLine, len(rows))
	for i, row := range rows {
		date, err := time.Parse(time.RFC3339Nano, row.OrderDate)
		if err != nil {
			return Snapshot{}, fmt.Errorf("import %d line %d: %w", imp.ID, row.Position+1, core.ErrInvalidDate)
		}
		lines[i] = core.OrderLine{
			OrderNumber: row.OrderNumber,
			OrderDate:   date,
			Status:      core.Status(row.Status),
			Subtotal:    core.Money{Cents: row.SubtotalCents},
			ItemName:    row.ItemName,
			BillingCity: row.BillingCity,
			PeriodLabel: core.PeriodLabel(date),
		}
	}

	return Snapshot{
		ID:         imp.ID,
		Source:     imp.Source,
		ImportedAt: parseTimestamp(imp.ImportedAt),
		Lines:      lines,
	}, nil
}

// ListSnapshots returns up to limit imports, newest first.
func (r *SQLiteRepository) ListSnapshots(ctx context.Context, limit int) ([]SnapshotInfo, error) {
	imps, err := r.queries.ListImports(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	out := make([]SnapshotInfo, len(imps))
	for i, imp := range imps {
		out[i] = SnapshotInfo{
			ID:         imp.ID,
			Source:     imp.Source,
			Rows:       int(imp.RowCount),
			ImportedAt: parseTimestamp(imp.ImportedAt),
		}
	}
	return out, nil
}

// PruneSnapshots keeps the newest keep imports and deletes the rest. It
// returns how many imports were removed. keep < 1 disables pruning.
func (r *SQLiteRepository) PruneSnapshots(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	oldestKept, err := q.GetNthNewestImportID(ctx, int64(keep-1))
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("find retention boundary: %w", err)
	}
	if err := q.DeleteOrderLinesBefore(ctx, oldestKept); err != nil {
		return 0, fmt.Errorf("delete order lines: %w", err)
	}
	removed, err := q.DeleteImportsBefore(ctx, oldestKept)
	if err != nil {
		return 0, fmt.Errorf("delete imports: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit prune: %w", err)
	}

	if removed > 0 {
		slog.InfoContext(ctx, "Pruned old snapshots", "removed", removed, "kept", keep)
	}
	return removed, nil
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
