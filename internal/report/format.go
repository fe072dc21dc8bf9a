package report

import (
	"fmt"
	"strconv"
	"strings"

	"orderdash/internal/core"
)

// NoData is shown where a value is undefined for an empty period.
const NoData = "no data"

// DisplayDate is the layout of the date range line.
const DisplayDate = "Jan 02, 2006"

// FormatCount renders n with comma thousands separators.
func FormatCount(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(s[:lead])
	for i := lead; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatMoney renders whole units with the currency prefix, e.g. "Rs 12,345".
// Fractions are truncated, as on the KPI cards.
func FormatMoney(currency string, m core.Money) string {
	if currency == "" {
		return FormatCount(m.Units())
	}
	return currency + " " + FormatCount(m.Units())
}

// FormatAverage renders a to two decimals, or NoData.
func FormatAverage(a core.Average) string {
	if !a.Valid {
		return NoData
	}
	return fmt.Sprintf("%.2f", a.Value)
}

// FormatRange renders "Jan 02, 2006 to Jan 09, 2006", or NoData.
func FormatRange(r core.DateRange) string {
	if !r.Valid {
		return NoData
	}
	return r.Min.Format(DisplayDate) + " to " + r.Max.Format(DisplayDate)
}

// StatusLabel is the card title prefix for a tracked status.
func StatusLabel(s core.Status) string {
	if s == core.StatusRefunded {
		return "Refund"
	}
	return string(s)
}
