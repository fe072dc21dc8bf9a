package report

import "orderdash/internal/core"

// ComputeMetrics runs filter and every aggregation for period and packages the
// result. It is a pure function of its two arguments: the same dataset and
// period always give an identical bundle. A period with no lines yields zero
// counts, empty tables, an invalid average and an invalid date range.
func ComputeMetrics(d *Dataset, period string) core.MetricBundle {
	lines := Filter(d, period)
	return core.MetricBundle{
		Period:       period,
		Lines:        len(lines),
		Orders:       distinctOrders(lines),
		Statuses:     StatusKPIs(lines),
		AvgItems:     AvgItemsPerOrder(lines),
		DailySales:   DailySales(lines),
		OrdersByItem: OrdersBy(lines, ByItem),
		SalesByItem:  SalesBy(lines, ByItem),
		OrdersByCity: OrdersBy(lines, ByCity),
		SalesByCity:  SalesBy(lines, ByCity),
		Range:        DateRangeOf(lines),
	}
}
