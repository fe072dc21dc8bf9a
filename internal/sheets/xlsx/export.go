package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"orderdash/internal/core"
	"orderdash/internal/report"
)

// Sheet names of an exported report workbook.
const (
	SummarySheet = "Summary"
	DailySheet   = "Daily Sales"
	ItemsSheet   = "By Item"
	CitiesSheet  = "By City"
)

// WriteReport saves b as a workbook with one sheet per table. Amounts are
// written as numbers in currency units so they stay usable in formulas.
func WriteReport(path, title string, b core.MetricBundle) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	summary := [][]interface{}{
		{title},
		{"Period", b.Period},
		{"Dates", report.FormatRange(b.Range)},
		{"Lines", b.Lines},
		{"Orders", b.Orders},
		{},
		{"Status", "Orders", "Value"},
	}
	for _, k := range b.Statuses {
		summary = append(summary, []interface{}{string(k.Status), k.Orders, k.Value.Float()})
	}
	avg := interface{}(report.NoData)
	if b.AvgItems.Valid {
		avg = b.AvgItems.Value
	}
	summary = append(summary, []interface{}{}, []interface{}{"Average Items per Order", avg})
	if err := writeRows(f, SummarySheet, summary); err != nil {
		return err
	}

	daily := [][]interface{}{{"Day", "Sales"}}
	for _, d := range b.DailySales {
		daily = append(daily, []interface{}{d.Day.Format("2006-01-02"), d.Amount.Float()})
	}
	if err := newSheet(f, DailySheet, daily); err != nil {
		return err
	}

	if err := newSheet(f, ItemsSheet, breakdownRows("Item Name", b.OrdersByItem, b.SalesByItem)); err != nil {
		return err
	}
	if err := newSheet(f, CitiesSheet, breakdownRows("City (Billing)", b.OrdersByCity, b.SalesByCity)); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// breakdownRows lays counts and sales side by side, each in its own order.
func breakdownRows(key string, counts []core.NameCount, sales []core.NameAmount) [][]interface{} {
	rows := [][]interface{}{{key, "Order Count", "", key, "Total Sales"}}
	n := max(len(counts), len(sales))
	for i := 0; i < n; i++ {
		row := make([]interface{}, 5)
		if i < len(counts) {
			row[0], row[1] = counts[i].Name, counts[i].Count
		}
		if i < len(sales) {
			row[3], row[4] = sales[i].Name, sales[i].Amount.Float()
		}
		rows = append(rows, row)
	}
	return rows
}

func newSheet(f *excelize.File, name string, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	return writeRows(f, name, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
