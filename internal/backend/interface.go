package backend

import (
	"context"

	"orderdash/internal/report"
	"orderdash/internal/sheets"
)

// Source loads a complete, normalized dataset. Every call reads the backing
// store again; callers decide when to reload.
type Source interface {
	Load(ctx context.Context) (*report.Dataset, error)
	// Describe names the source in logs and import records.
	Describe() string
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// SourceResult contains the source instance and optional cleanup function
type SourceResult struct {
	Source  Source
	Cleanup CleanupFunc
}

// Factory creates sources and table readers based on configuration
type Factory interface {
	// CreateSource creates the dataset source for the dashboard.
	CreateSource(ctx context.Context, config Config) (*SourceResult, error)
	// CreateReader creates the raw table reader for table backends
	// (xlsx, csv, sheets, memory). The sqlite backend has no raw table.
	CreateReader(ctx context.Context, config Config) (sheets.TableReader, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// File specific
	OrdersFile  string
	OrdersSheet string

	// SQLite specific
	SQLiteDBPath string

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Memory backend specific
	DataDirectory string
}

// BackendType represents the type of backend
type BackendType string

const (
	XLSXBackend   BackendType = "xlsx"
	CSVBackend    BackendType = "csv"
	SheetsBackend BackendType = "sheets"
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case XLSXBackend, CSVBackend, SheetsBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// HasTable reports whether the backend reads a raw order table.
func (bt BackendType) HasTable() bool {
	return bt.IsValid() && bt != SQLiteBackend
}
