package core

import "time"

// StatusKPI holds the two headline numbers for one order status.
// Orders counts distinct order numbers; Value sums every line's subtotal.
type StatusKPI struct {
	Status Status
	Orders int
	Value  Money
}

// NameCount is one row of a distinct-order count breakdown.
type NameCount struct {
	Name  string
	Count int
}

// NameAmount is one row of a sales breakdown.
type NameAmount struct {
	Name   string
	Amount Money
}

// DailyTotal is the subtotal sum of one calendar day.
type DailyTotal struct {
	Day    time.Time
	Amount Money
}

// Average is a mean that may be undefined ("no data").
type Average struct {
	Value float64
	Valid bool
}

// DateRange is the min/max order date of a set; Valid is false for an empty set.
type DateRange struct {
	Min   time.Time
	Max   time.Time
	Valid bool
}

// MetricBundle is everything the dashboard renders for one period.
type MetricBundle struct {
	Period     string
	Lines      int
	Orders     int
	Statuses   []StatusKPI
	AvgItems   Average
	DailySales []DailyTotal

	OrdersByItem []NameCount
	SalesByItem  []NameAmount
	OrdersByCity []NameCount
	SalesByCity  []NameAmount

	Range DateRange
}

// Status returns the KPI for s; untracked statuses yield a zero KPI.
func (b MetricBundle) Status(s Status) StatusKPI {
	for _, k := range b.Statuses {
		if k.Status == s {
			return k
		}
	}
	return StatusKPI{Status: s}
}

// IsEmpty reports whether the filtered set had no lines.
func (b MetricBundle) IsEmpty() bool { return b.Lines == 0 }
