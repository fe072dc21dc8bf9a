package sheets

import (
	"context"
	"errors"
	"strings"

	"orderdash/internal/core"
)

// Ports for inbound table adapters.
type (
	// TableReader returns the header row and data rows of one order export.
	// Cells are returned as display strings; interpretation is left to
	// report.Normalize.
	TableReader interface {
		ReadTable(ctx context.Context) (core.RawTable, error)
	}
)

var ErrSheetNotFound = errors.New("sheet not found")

// SplitHeader turns a value matrix whose first row is the header into a RawTable.
func SplitHeader(values [][]string) core.RawTable {
	if len(values) == 0 {
		return core.RawTable{}
	}
	return core.RawTable{Header: values[0], Rows: values[1:]}
}

// ColumnOf returns the position of name in header, ignoring case and
// surrounding spaces, or -1.
func ColumnOf(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}
