package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"orderdash/internal/core"
	"orderdash/internal/report"
	"orderdash/internal/sheets"
)

// SnapshotWriter stores imported datasets. storage.SQLiteRepository satisfies it.
type SnapshotWriter interface {
	SaveSnapshot(ctx context.Context, source string, lines []core.OrderLine, onRow func(done int)) (int64, error)
	PruneSnapshots(ctx context.Context, keep int) (int64, error)
}

// EventPublisher announces stored snapshots. amqp.Client satisfies it.
type EventPublisher interface {
	PublishDatasetImported(ctx context.Context, snapshotID int64, rows int, source string) error
}

// ImportResult summarizes one import.
type ImportResult struct {
	SnapshotID int64
	Rows       int
	Periods    []string
	Pruned     int64
	Published  bool
}

// ImportService moves an order table into the snapshot store.
type ImportService struct {
	store     SnapshotWriter
	publisher EventPublisher
	retention int
}

// NewImportService wires the store and an optional publisher. A retention
// below 1 keeps every snapshot.
func NewImportService(store SnapshotWriter, publisher EventPublisher, retention int) *ImportService {
	return &ImportService{store: store, publisher: publisher, retention: retention}
}

// Import reads, normalizes and stores one table. A table that does not match
// the order schema is rejected before anything is written. onRow receives
// (stored, total) after each stored line and may be nil.
func (s *ImportService) Import(ctx context.Context, reader sheets.TableReader, source string, onRow func(done, total int)) (ImportResult, error) {
	table, err := reader.ReadTable(ctx)
	if err != nil {
		return ImportResult{}, fmt.Errorf("read %s: %w", source, err)
	}
	ds, err := report.Normalize(table)
	if err != nil {
		return ImportResult{}, fmt.Errorf("normalize %s: %w", source, err)
	}

	lines := ds.Lines()
	var progress func(int)
	if onRow != nil {
		total := len(lines)
		progress = func(done int) { onRow(done, total) }
	}

	id, err := s.store.SaveSnapshot(ctx, source, lines, progress)
	if err != nil {
		return ImportResult{}, fmt.Errorf("save snapshot: %w", err)
	}
	res := ImportResult{SnapshotID: id, Rows: len(lines), Periods: ds.Periods()}

	if s.retention > 0 {
		pruned, err := s.store.PruneSnapshots(ctx, s.retention)
		if err != nil {
			// The new snapshot is stored; old ones are removed next time.
			slog.WarnContext(ctx, "Failed to prune old snapshots", "error", err, "retention", s.retention)
		}
		res.Pruned = pruned
	}

	if s.publisher == nil {
		slog.InfoContext(ctx, "AMQP client not available, skipping dataset imported message", "snapshot_id", id)
		return res, nil
	}
	if err := s.publisher.PublishDatasetImported(ctx, id, res.Rows, source); err != nil {
		// Don't fail the import - the snapshot is saved and pollers will find it
		slog.ErrorContext(ctx, "Failed to publish dataset imported message", "snapshot_id", id, "error", err)
		return res, nil
	}
	res.Published = true
	return res, nil
}

// Close releases the store and publisher when they hold resources.
func (s *ImportService) Close() error {
	var errs []error
	if c, ok := s.store.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	return errors.Join(errs...)
}
