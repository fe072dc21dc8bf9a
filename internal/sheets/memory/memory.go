package memory

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"orderdash/internal/core"
	ports "orderdash/internal/sheets"
	"orderdash/internal/sheets/csvfile"
)

// SeedFile is the demo export looked up by NewFromFiles.
const SeedFile = "seed_orders.csv"

// Store is an in-memory order table.
type Store struct {
	mu    sync.Mutex
	table core.RawTable
}

var _ ports.TableReader = (*Store)(nil)

func New(table core.RawTable) *Store {
	return &Store{table: cloneTable(table)}
}

// NewFromFiles seeds the store from base/seed_orders.csv. A missing or
// unreadable file gives the built-in demo table.
func NewFromFiles(base string) *Store {
	f, err := os.Open(filepath.Join(base, SeedFile))
	if err == nil {
		defer f.Close()
		if table, err := csvfile.Parse(f); err == nil && len(table.Header) > 0 {
			return New(table)
		}
	}
	return New(DemoTable())
}

// ReadTable returns a copy of the stored table.
func (s *Store) ReadTable(_ context.Context) (core.RawTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTable(s.table), nil
}

// Replace swaps the stored table.
func (s *Store) Replace(table core.RawTable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = cloneTable(table)
}

// Append adds data rows.
func (s *Store) Append(rows ...[]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.table.Rows = append(s.table.Rows, append([]string(nil), r...))
	}
}

// DemoTable is a small export covering every tracked status over two months.
func DemoTable() core.RawTable {
	return core.RawTable{
		Header: core.RequiredColumns(),
		Rows: [][]string{
			{"1001", "2025-06-03 10:15:00", "Completed", "1200", "Tomato Seeds", "Pune"},
			{"1001", "2025-06-03 10:15:00", "Completed", "450", "Neem Oil", "Pune"},
			{"1002", "2025-06-11 16:40:00", "Refunded", "899", "Drip Kit", "Nashik"},
			{"1003", "2025-06-28 09:05:00", "Cancelled", "300", "Tomato Seeds", "Satara"},
			{"1004", "2025-07-02 12:00:00", "Processing", "2400", "Drip Kit", "Pune"},
			{"1005", "2025-07-02 18:20:00", "Completed", "650", "Chilli Seeds", "Kolhapur"},
			{"1005", "2025-07-02 18:20:00", "Completed", "450", "Neem Oil", "Kolhapur"},
			{"1006", "2025-07-09 08:45:00", "Completed", "1200", "Tomato Seeds", "Nashik"},
		},
	}
}

func cloneTable(t core.RawTable) core.RawTable {
	out := core.RawTable{Header: append([]string(nil), t.Header...)}
	if t.Rows != nil {
		out.Rows = make([][]string, len(t.Rows))
		for i, r := range t.Rows {
			out.Rows[i] = append([]string(nil), r...)
		}
	}
	return out
}
