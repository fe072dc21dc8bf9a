package report

import (
	"strings"
	"time"

	"orderdash/internal/core"
)

// dateLayouts are tried in order; layouts without a zone parse as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"January 2, 2006 3:04 pm",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParseOrderDate parses an order date cell.
func ParseOrderDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, core.ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, core.ErrInvalidDate
}

// Normalize validates the table against the order schema and converts every
// row to a core.OrderLine with its period label. It fails on the first bad
// row with a *core.DataFormatError; no row is dropped or coerced. Rows where
// every cell is blank are spreadsheet padding, not order lines, and are skipped.
func Normalize(table core.RawTable) (*Dataset, error) {
	idx, err := columnIndex(table.Header)
	if err != nil {
		return nil, err
	}

	lines := make([]core.OrderLine, 0, len(table.Rows))
	for i, row := range table.Rows {
		if isBlank(row) {
			continue
		}
		rowNum := i + 1

		rawDate := cell(row, idx[core.ColOrderDate])
		date, err := ParseOrderDate(rawDate)
		if err != nil {
			return nil, &core.DataFormatError{Row: rowNum, Column: core.ColOrderDate, Value: rawDate, Err: err}
		}
		rawAmount := cell(row, idx[core.ColSubtotal])
		amount, err := core.ParseAmount(rawAmount)
		if err != nil {
			return nil, &core.DataFormatError{Row: rowNum, Column: core.ColSubtotal, Value: rawAmount, Err: err}
		}

		lines = append(lines, core.OrderLine{
			OrderNumber: cell(row, idx[core.ColOrderNumber]),
			OrderDate:   date,
			Status:      core.Status(cell(row, idx[core.ColOrderStatus])),
			Subtotal:    amount,
			ItemName:    cell(row, idx[core.ColItemName]),
			BillingCity: cell(row, idx[core.ColBillingCity]),
			PeriodLabel: core.PeriodLabel(date),
		})
	}
	return build(lines), nil
}

// columnIndex maps each required column to its position in header.
func columnIndex(header []string) (map[string]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := pos[key]; !dup {
			pos[key] = i
		}
	}
	idx := make(map[string]int, len(core.RequiredColumns()))
	var missing []string
	for _, col := range core.RequiredColumns() {
		i, ok := pos[strings.ToLower(col)]
		if !ok {
			missing = append(missing, col)
			continue
		}
		idx[col] = i
	}
	if len(missing) > 0 {
		return nil, &core.DataFormatError{Column: strings.Join(missing, ", "), Err: core.ErrMissingColumn}
	}
	return idx, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
