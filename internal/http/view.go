package http

import (
	"strings"
	"time"

	"github.com/samber/lo"

	"orderdash/internal/core"
	"orderdash/internal/report"
)

type periodOption struct {
	Value    string
	Selected bool
}

type card struct {
	Label string
	Value string
	Class string
}

// dashboardView is the data of dashboard.html.
type dashboardView struct {
	Title      string
	Period     string
	Periods    []periodOption
	DateRange  string
	CountCards []card
	ValueCards []card
	AvgItems   string
	Empty      bool
	NoData     string
	Lines      string
	Orders     string
	LoadedAt   string
}

type errorView struct {
	Title    string
	Heading  string
	Message  string
	ShowHome bool
}

func newDashboardView(title, currency string, periods []string, b core.MetricBundle, loadedAt time.Time) dashboardView {
	v := dashboardView{
		Title:  title,
		Period: b.Period,
		Periods: lo.Map(periods, func(p string, _ int) periodOption {
			return periodOption{Value: p, Selected: p == b.Period}
		}),
		DateRange: report.FormatRange(b.Range),
		AvgItems:  report.FormatAverage(b.AvgItems),
		Empty:     b.IsEmpty(),
		NoData:    report.NoData,
		Lines:     report.FormatCount(int64(b.Lines)),
		Orders:    report.FormatCount(int64(b.Orders)),
		LoadedAt:  loadedAt.Format(report.DisplayDate + " 15:04 MST"),
	}
	for _, k := range b.Statuses {
		label := report.StatusLabel(k.Status)
		class := strings.ToLower(string(k.Status))
		v.CountCards = append(v.CountCards, card{
			Label: label + " Orders",
			Value: report.FormatCount(int64(k.Orders)),
			Class: class,
		})
		v.ValueCards = append(v.ValueCards, card{
			Label: label + " Value",
			Value: report.FormatMoney(currency, k.Value),
			Class: class,
		})
	}
	return v
}

// metricsResponse is the body of /api/metrics.
type metricsResponse struct {
	Generation uint64 `json:"generation"`
	report.Export
}

type periodsResponse struct {
	Periods    []string `json:"periods"`
	Generation uint64   `json:"generation"`
}

type errorResponse struct {
	Error string `json:"error"`
}
