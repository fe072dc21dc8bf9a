package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/samber/lo"

	"orderdash/internal/core"
)

// Export is the JSON form of a metric bundle.
type Export struct {
	Period           string         `json:"period"`
	Lines            int            `json:"lines"`
	Orders           int            `json:"orders"`
	Statuses         []ExportStatus `json:"statuses"`
	AvgItemsPerOrder *float64       `json:"avg_items_per_order"`
	DateRange        *ExportRange   `json:"date_range"`
	DailySales       []ExportAmount `json:"daily_sales"`
	OrdersByItem     []ExportCount  `json:"orders_by_item"`
	SalesByItem      []ExportAmount `json:"sales_by_item"`
	OrdersByCity     []ExportCount  `json:"orders_by_city"`
	SalesByCity      []ExportAmount `json:"sales_by_city"`
}

type ExportStatus struct {
	Status     string  `json:"status"`
	Orders     int     `json:"orders"`
	ValueCents int64   `json:"value_cents"`
	Value      float64 `json:"value"`
}

type ExportRange struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

type ExportCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ExportAmount is a named amount; daily rows use the day as name.
type ExportAmount struct {
	Name        string  `json:"name"`
	AmountCents int64   `json:"amount_cents"`
	Amount      float64 `json:"amount"`
}

// ToExport converts b. Undefined values become JSON null and empty tables
// become empty arrays.
func ToExport(b core.MetricBundle) Export {
	e := Export{
		Period: b.Period,
		Lines:  b.Lines,
		Orders: b.Orders,
		Statuses: lo.Map(b.Statuses, func(k core.StatusKPI, _ int) ExportStatus {
			return ExportStatus{Status: string(k.Status), Orders: k.Orders, ValueCents: k.Value.Cents, Value: k.Value.Float()}
		}),
		DailySales: lo.Map(b.DailySales, func(d core.DailyTotal, _ int) ExportAmount {
			return exportAmount(d.Day.Format("2006-01-02"), d.Amount)
		}),
		OrdersByItem: exportCounts(b.OrdersByItem),
		SalesByItem:  exportAmounts(b.SalesByItem),
		OrdersByCity: exportCounts(b.OrdersByCity),
		SalesByCity:  exportAmounts(b.SalesByCity),
	}
	if b.AvgItems.Valid {
		v := b.AvgItems.Value
		e.AvgItemsPerOrder = &v
	}
	if b.Range.Valid {
		e.DateRange = &ExportRange{
			Min: b.Range.Min.Format("2006-01-02T15:04:05Z07:00"),
			Max: b.Range.Max.Format("2006-01-02T15:04:05Z07:00"),
		}
	}
	return e
}

func exportAmount(name string, m core.Money) ExportAmount {
	return ExportAmount{Name: name, AmountCents: m.Cents, Amount: m.Float()}
}

func exportCounts(rows []core.NameCount) []ExportCount {
	return lo.Map(rows, func(r core.NameCount, _ int) ExportCount {
		return ExportCount{Name: r.Name, Count: r.Count}
	})
}

func exportAmounts(rows []core.NameAmount) []ExportAmount {
	return lo.Map(rows, func(r core.NameAmount, _ int) ExportAmount {
		return exportAmount(r.Name, r.Amount)
	})
}

// WriteJSON writes b as indented JSON.
func WriteJSON(w io.Writer, b core.MetricBundle) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ToExport(b))
}

// WriteText writes b as a plain text report headed by title.
func WriteText(w io.Writer, title, currency string, b core.MetricBundle) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "%s\n", title)
	fmt.Fprintf(tw, "Period:\t%s\n", b.Period)
	fmt.Fprintf(tw, "Dates:\t%s\n", FormatRange(b.Range))
	fmt.Fprintf(tw, "Lines / orders:\t%s / %s\n\n", FormatCount(int64(b.Lines)), FormatCount(int64(b.Orders)))

	for _, k := range b.Statuses {
		label := StatusLabel(k.Status)
		fmt.Fprintf(tw, "%s Orders\t%s\t%s Value\t%s\n",
			label, FormatCount(int64(k.Orders)), label, FormatMoney(currency, k.Value))
	}
	fmt.Fprintf(tw, "Average Items per Order\t%s\n", FormatAverage(b.AvgItems))

	writeCounts(tw, "Orders by Item Name", b.OrdersByItem)
	writeAmounts(tw, currency, "Total Sales Value by Item Name", b.SalesByItem)
	writeCounts(tw, "Orders by City (Billing)", b.OrdersByCity)
	writeAmounts(tw, currency, "Total Sales Value by City (Billing)", b.SalesByCity)

	fmt.Fprintf(tw, "\nDaily Sales Value Trend\n")
	if len(b.DailySales) == 0 {
		fmt.Fprintf(tw, "  %s\n", NoData)
	}
	for _, d := range b.DailySales {
		fmt.Fprintf(tw, "  %s\t%s\n", d.Day.Format(DisplayDate), FormatMoney(currency, d.Amount))
	}
	return tw.Flush()
}

func writeCounts(w io.Writer, title string, rows []core.NameCount) {
	fmt.Fprintf(w, "\n%s\n", title)
	if len(rows) == 0 {
		fmt.Fprintf(w, "  %s\n", NoData)
	}
	for _, r := range rows {
		fmt.Fprintf(w, "  %s\t%s\n", r.Name, FormatCount(int64(r.Count)))
	}
}

func writeAmounts(w io.Writer, currency, title string, rows []core.NameAmount) {
	fmt.Fprintf(w, "\n%s\n", title)
	if len(rows) == 0 {
		fmt.Fprintf(w, "  %s\n", NoData)
	}
	for _, r := range rows {
		fmt.Fprintf(w, "  %s\t%s\n", r.Name, FormatMoney(currency, r.Amount))
	}
}
