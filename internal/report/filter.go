package report

import (
	"github.com/samber/lo"

	"orderdash/internal/core"
)

// Filter returns the lines of period, or all lines for core.AllPeriods.
// The result is a new slice in load order; an unmatched period yields an
// empty slice, never an error.
func Filter(d *Dataset, period string) []core.OrderLine {
	if period == core.AllPeriods {
		return d.Lines()
	}
	if d == nil {
		return []core.OrderLine{}
	}
	return lo.Filter(d.lines, func(l core.OrderLine, _ int) bool {
		return l.PeriodLabel == period
	})
}
