// Package xlsx reads the order export workbook.
package xlsx

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"orderdash/internal/core"
	ports "orderdash/internal/sheets"
)

const DefaultSheet = "Orders"

// Reader loads one worksheet of an .xlsx file.
type Reader struct {
	path  string
	sheet string
}

var _ ports.TableReader = (*Reader)(nil)

func New(path, sheet string) *Reader {
	if strings.TrimSpace(sheet) == "" {
		sheet = DefaultSheet
	}
	return &Reader{path: path, sheet: sheet}
}

// ReadTable opens the workbook and returns the sheet as raw strings. Cells are
// read unformatted so numbers keep full precision; order dates stored as
// Excel serials are rewritten as RFC 3339 timestamps.
func (r *Reader) ReadTable(ctx context.Context) (core.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return core.RawTable{}, err
	}
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return core.RawTable{}, fmt.Errorf("open workbook %s: %w", r.path, err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(r.sheet)
	if err != nil || idx < 0 {
		return core.RawTable{}, fmt.Errorf("%w: %q in %s", ports.ErrSheetNotFound, r.sheet, r.path)
	}

	rows, err := f.GetRows(r.sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return core.RawTable{}, fmt.Errorf("read sheet %q: %w", r.sheet, err)
	}
	table := ports.SplitHeader(rows)

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}
	col := ports.ColumnOf(table.Header, core.ColOrderDate)
	if col >= 0 {
		converted := 0
		for _, row := range table.Rows {
			if col >= len(row) {
				continue
			}
			if v, ok := serialToTimestamp(row[col], date1904); ok {
				row[col] = v
				converted++
			}
		}
		slog.DebugContext(ctx, "Converted Excel serial dates", "sheet", r.sheet, "count", converted)
	}
	return table, nil
}

// serialToTimestamp converts an Excel date serial to RFC 3339. Cells that are
// not plain numbers are left for the date parser.
func serialToTimestamp(cell string, date1904 bool) (string, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || f <= 0 {
		return "", false
	}
	t, err := excelize.ExcelDateToTime(f, date1904)
	if err != nil {
		return "", false
	}
	return t.Round(time.Second).UTC().Format(time.RFC3339), true
}
