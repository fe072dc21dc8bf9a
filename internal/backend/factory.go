package backend

import (
	"context"
	"fmt"
	"log/slog"

	"orderdash/internal/report"
	"orderdash/internal/sheets"
	"orderdash/internal/sheets/csvfile"
	gsheet "orderdash/internal/sheets/google"
	"orderdash/internal/sheets/memory"
	"orderdash/internal/sheets/xlsx"
	"orderdash/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateSource implements Factory.CreateSource
func (f *DefaultFactory) CreateSource(ctx context.Context, config Config) (*SourceResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if config.Type == SQLiteBackend {
		return f.createSQLiteSource(config)
	}

	reader, err := f.CreateReader(ctx, config)
	if err != nil {
		return nil, err
	}
	return &SourceResult{
		Source:  NewTableSource(reader, Describe(config)),
		Cleanup: nil, // table readers hold no resources between loads
	}, nil
}

// CreateReader implements Factory.CreateReader
func (f *DefaultFactory) CreateReader(ctx context.Context, config Config) (sheets.TableReader, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case XLSXBackend:
		f.logger.Info("Initialized xlsx reader", "file", config.OrdersFile, "sheet", config.OrdersSheet)
		return xlsx.New(config.OrdersFile, config.OrdersSheet), nil
	case CSVBackend:
		f.logger.Info("Initialized csv reader", "file", config.OrdersFile)
		return csvfile.New(config.OrdersFile), nil
	case SheetsBackend:
		return f.createSheetsReader(ctx, config)
	case MemoryBackend:
		dataDir := config.DataDirectory
		if dataDir == "" {
			dataDir = "data" // Default directory
		}
		f.logger.Info("Initialized memory backend", "data_directory", dataDir)
		return memory.NewFromFiles(dataDir), nil
	case SQLiteBackend:
		return nil, fmt.Errorf("sqlite backend has no raw table; import from xlsx, csv, sheets or memory")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteSource(config Config) (*SourceResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &SourceResult{
		Source:  NewSnapshotSource(repo),
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsReader(ctx context.Context, config Config) (sheets.TableReader, error) {
	cli, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		SheetName:       config.GoogleSheetName,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CredentialsFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend", "sheet", config.GoogleSheetName)
	return cli, nil
}

// Describe returns the source name used in logs and import records.
func Describe(config Config) string {
	switch config.Type {
	case XLSXBackend:
		return fmt.Sprintf("xlsx:%s#%s", config.OrdersFile, config.OrdersSheet)
	case CSVBackend:
		return "csv:" + config.OrdersFile
	case SheetsBackend:
		return fmt.Sprintf("sheets:%s#%s", config.GoogleSpreadsheetID, config.GoogleSheetName)
	case SQLiteBackend:
		return "sqlite:" + config.SQLiteDBPath
	default:
		return config.Type.String()
	}
}

// TableSource normalizes a raw table on every load.
type TableSource struct {
	reader sheets.TableReader
	name   string
}

func NewTableSource(reader sheets.TableReader, name string) *TableSource {
	return &TableSource{reader: reader, name: name}
}

func (s *TableSource) Load(ctx context.Context) (*report.Dataset, error) {
	table, err := s.reader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.name, err)
	}
	ds, err := report.Normalize(table)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", s.name, err)
	}
	return ds, nil
}

func (s *TableSource) Describe() string { return s.name }

// SnapshotStore is the part of the SQLite repository the snapshot source needs.
type SnapshotStore interface {
	LatestSnapshot(ctx context.Context) (storage.Snapshot, error)
}

// SnapshotSource rebuilds the dataset from the newest stored import.
type SnapshotSource struct {
	store SnapshotStore
}

func NewSnapshotSource(store SnapshotStore) *SnapshotSource {
	return &SnapshotSource{store: store}
}

func (s *SnapshotSource) Load(ctx context.Context) (*report.Dataset, error) {
	snap, err := s.store.LatestSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load latest snapshot: %w", err)
	}
	slog.DebugContext(ctx, "Loaded snapshot", "snapshot_id", snap.ID, "source", snap.Source, "rows", len(snap.Lines))
	return report.NewDataset(snap.Lines), nil
}

func (s *SnapshotSource) Describe() string { return "sqlite snapshot" }
