// Package report turns a raw order table into the metrics shown on the
// dashboard: normalize once, then filter and aggregate per request.
//
// Every function here is pure. A *Dataset is immutable once built and is
// safe to share between goroutines.
package report

import (
	"sort"

	"github.com/samber/lo"

	"orderdash/internal/core"
)

// Dataset is a normalized, read-only set of order lines.
type Dataset struct {
	lines   []core.OrderLine
	periods []string
}

// NewDataset copies lines and recomputes every period label from its order date.
func NewDataset(lines []core.OrderLine) *Dataset {
	cp := make([]core.OrderLine, len(lines))
	copy(cp, lines)
	for i := range cp {
		cp[i].PeriodLabel = core.PeriodLabel(cp[i].OrderDate)
	}
	return build(cp)
}

// build takes ownership of lines.
func build(lines []core.OrderLine) *Dataset {
	periods := lo.Uniq(lo.Map(lines, func(l core.OrderLine, _ int) string { return l.PeriodLabel }))
	// Plain string order, the same order the selector has always shown.
	sort.Strings(periods)
	return &Dataset{lines: lines, periods: periods}
}

// Len returns the number of order lines.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.lines)
}

// Lines returns a copy of every order line in load order.
func (d *Dataset) Lines() []core.OrderLine {
	if d == nil {
		return []core.OrderLine{}
	}
	out := make([]core.OrderLine, len(d.lines))
	copy(out, d.lines)
	return out
}

// Periods returns the distinct period labels, ascending.
func (d *Dataset) Periods() []string {
	if d == nil {
		return []string{}
	}
	return append([]string{}, d.periods...)
}

// HasPeriod reports whether p is "All" or a label present in the dataset.
func (d *Dataset) HasPeriod(p string) bool {
	if p == core.AllPeriods {
		return true
	}
	if d == nil {
		return false
	}
	i := sort.SearchStrings(d.periods, p)
	return i < len(d.periods) && d.periods[i] == p
}

// ListPeriods returns the selector options: "All" followed by every period label.
func ListPeriods(d *Dataset) []string {
	return append([]string{core.AllPeriods}, d.Periods()...)
}
