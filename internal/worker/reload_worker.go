package worker

import (
	"context"
	"fmt"
	"log/slog"

	"orderdash/internal/amqp"
)

// Reloader swaps in a freshly loaded dataset. services.DatasetService
// satisfies it.
type Reloader interface {
	Reload(ctx context.Context) error
	Generation() uint64
}

// ReloadWorker reacts to dataset imported events by reloading the dashboard
// dataset.
type ReloadWorker struct {
	reloader Reloader
}

func NewReloadWorker(reloader Reloader) *ReloadWorker {
	return &ReloadWorker{reloader: reloader}
}

// HandleDatasetImported reloads the dataset for one imported snapshot. An
// error makes the consumer requeue the message.
func (w *ReloadWorker) HandleDatasetImported(ctx context.Context, msg *amqp.DatasetImportedMessage) error {
	slog.InfoContext(ctx, "Processing dataset imported message",
		"snapshot_id", msg.SnapshotID,
		"rows", msg.Rows,
		"source", msg.Source)

	if err := w.reloader.Reload(ctx); err != nil {
		return fmt.Errorf("reload after snapshot %d: %w", msg.SnapshotID, err)
	}

	slog.InfoContext(ctx, "Dataset reloaded",
		"snapshot_id", msg.SnapshotID,
		"generation", w.reloader.Generation())
	return nil
}
