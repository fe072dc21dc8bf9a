// Package csvfile reads an order export saved as CSV.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"orderdash/internal/core"
	ports "orderdash/internal/sheets"
)

type Reader struct {
	path string
}

var _ ports.TableReader = (*Reader)(nil)

func New(path string) *Reader { return &Reader{path: path} }

func (r *Reader) ReadTable(ctx context.Context) (core.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return core.RawTable{}, err
	}
	f, err := os.Open(r.path)
	if err != nil {
		return core.RawTable{}, fmt.Errorf("open %s: %w", r.path, err)
	}
	defer f.Close()
	table, err := Parse(f)
	if err != nil {
		return core.RawTable{}, fmt.Errorf("read %s: %w", r.path, err)
	}
	return table, nil
}

// Parse reads a header row followed by records. Records may have fewer or
// more fields than the header. A UTF-8 byte order mark before the header is
// dropped.
func Parse(in io.Reader) (core.RawTable, error) {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return core.RawTable{}, err
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return ports.SplitHeader(records), nil
}
