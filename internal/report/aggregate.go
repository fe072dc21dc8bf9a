package report

import (
	"sort"

	"github.com/samber/lo"

	"orderdash/internal/core"
)

// Dimension extracts a grouping key from an order line.
type Dimension = func(core.OrderLine) string

var (
	ByItem Dimension = func(l core.OrderLine) string { return l.ItemName }
	ByCity Dimension = func(l core.OrderLine) string { return l.BillingCity }
)

// StatusKPIs computes, for every tracked status, the distinct order count and
// the line-level subtotal sum. The two deliberately use different grains: an
// order with two lines counts once but contributes both subtotals.
func StatusKPIs(lines []core.OrderLine) []core.StatusKPI {
	out := make([]core.StatusKPI, 0, len(core.TrackedStatuses()))
	for _, s := range core.TrackedStatuses() {
		sel := lo.Filter(lines, func(l core.OrderLine, _ int) bool { return l.Status == s })
		out = append(out, core.StatusKPI{
			Status: s,
			Orders: distinctOrders(sel),
			Value:  sumSubtotal(sel),
		})
	}
	return out
}

// AvgItemsPerOrder is the mean, over distinct orders, of the number of
// distinct item names on each order. Invalid when lines is empty.
func AvgItemsPerOrder(lines []core.OrderLine) core.Average {
	byOrder := lo.GroupBy(withKey(lines, orderNumber), orderNumber)
	if len(byOrder) == 0 {
		return core.Average{}
	}
	total := 0
	for _, group := range byOrder {
		total += distinct(group, ByItem)
	}
	return core.Average{Value: float64(total) / float64(len(byOrder)), Valid: true}
}

// DailySales sums subtotals per calendar day, ascending by day. Days without
// orders are absent.
func DailySales(lines []core.OrderLine) []core.DailyTotal {
	byDay := lo.GroupBy(lines, func(l core.OrderLine) string {
		return l.OrderDate.Format("2006-01-02")
	})
	out := make([]core.DailyTotal, 0, len(byDay))
	for _, group := range byDay {
		out = append(out, core.DailyTotal{Day: core.Day(group[0].OrderDate), Amount: sumSubtotal(group)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

// OrdersBy counts distinct orders per key of dim, ascending by count.
func OrdersBy(lines []core.OrderLine, dim Dimension) []core.NameCount {
	groups := lo.GroupBy(withKey(lines, dim), dim)
	out := make([]core.NameCount, 0, len(groups))
	for name, group := range groups {
		out = append(out, core.NameCount{Name: name, Count: distinctOrders(group)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count < out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// SalesBy sums subtotals per key of dim, ascending by amount.
func SalesBy(lines []core.OrderLine, dim Dimension) []core.NameAmount {
	groups := lo.GroupBy(withKey(lines, dim), dim)
	out := make([]core.NameAmount, 0, len(groups))
	for name, group := range groups {
		out = append(out, core.NameAmount{Name: name, Amount: sumSubtotal(group)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents < out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// DateRangeOf returns the earliest and latest order date of lines.
func DateRangeOf(lines []core.OrderLine) core.DateRange {
	if len(lines) == 0 {
		return core.DateRange{}
	}
	r := core.DateRange{Min: lines[0].OrderDate, Max: lines[0].OrderDate, Valid: true}
	for _, l := range lines[1:] {
		if l.OrderDate.Before(r.Min) {
			r.Min = l.OrderDate
		}
		if l.OrderDate.After(r.Max) {
			r.Max = l.OrderDate
		}
	}
	return r
}

func orderNumber(l core.OrderLine) string { return l.OrderNumber }

func distinctOrders(lines []core.OrderLine) int {
	return distinct(lines, orderNumber)
}

// distinct counts the non-blank distinct keys of lines.
func distinct(lines []core.OrderLine, key func(core.OrderLine) string) int {
	keys := lo.FilterMap(lines, func(l core.OrderLine, _ int) (string, bool) {
		k := key(l)
		return k, k != ""
	})
	return len(lo.Uniq(keys))
}

// withKey drops lines whose key is blank. Blank keys behave like missing
// spreadsheet cells: they are never a distinct value and never form a group.
func withKey(lines []core.OrderLine, key func(core.OrderLine) string) []core.OrderLine {
	return lo.Filter(lines, func(l core.OrderLine, _ int) bool { return key(l) != "" })
}

func sumSubtotal(lines []core.OrderLine) core.Money {
	return lo.Reduce(lines, func(acc core.Money, l core.OrderLine, _ int) core.Money {
		return acc.Add(l.Subtotal)
	}, core.Money{})
}
