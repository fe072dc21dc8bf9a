package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"orderdash/internal/backend"
	"orderdash/internal/cache"
	"orderdash/internal/core"
	applog "orderdash/internal/log"
	"orderdash/internal/report"
	"orderdash/internal/services"
	"orderdash/internal/sheets/memory"
)

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{Level: slog.LevelError, Output: io.Discard})
}

func newTestServer(t *testing.T) (*Server, *services.DatasetService) {
	t.Helper()
	src := backend.NewTableSource(memory.New(memory.DemoTable()), "memory")
	svc := services.NewDatasetService(src, cache.NewLRUCache[core.MetricBundle](10, time.Minute))
	if err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("load dataset: %v", err)
	}
	srv := NewServer(":0", svc, Options{Title: "Ecommerce Orders Analysis", Currency: "Rs"}, quietLogger())
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, svc
}

func get(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = "203.0.113.10:4000"
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestDashboard_AllPeriods(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := get(t, srv, "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	for _, want := range []string{
		"Ecommerce Orders Analysis",
		"Jun 03, 2025 to Jul 09, 2025",
		"Completed Orders",
		"Refund Value",
		"Rs 3,950",
		`<option value="All" selected>All</option>`,
		"July 2025",
		"Average Items per Order",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("security headers missing")
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("request id header missing")
	}
}

func TestDashboard_SelectedPeriod(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := get(t, srv, "/?period=June+2025")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `<option value="June 2025" selected>`) {
		t.Error("June 2025 should be selected")
	}
	if !strings.Contains(body, "Jun 03, 2025 to Jun 28, 2025") {
		t.Error("date range should cover June only")
	}
}

func TestDashboard_UnknownPeriod(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := get(t, srv, "/?period=March+1999")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Unknown period") {
		t.Error("error page should explain the unknown period")
	}
}

func TestDashboard_NotLoaded(t *testing.T) {
	svc := services.NewDatasetService(backend.NewTableSource(memory.New(memory.DemoTable()), "memory"), nil)
	srv := NewServer(":0", svc, Options{Title: "T", Currency: "Rs"}, quietLogger())
	defer srv.Shutdown(context.Background())

	if rr := get(t, srv, "/"); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("dashboard status = %d, want 503", rr.Code)
	}
	if rr := get(t, srv, "/api/metrics"); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("metrics status = %d, want 503", rr.Code)
	}
	if rr := get(t, srv, "/readyz"); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz status = %d, want 503", rr.Code)
	}
	if rr := get(t, srv, "/healthz"); rr.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", rr.Code)
	}
}

func TestAPIPeriods(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := get(t, srv, "/api/periods")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var got periodsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []string{"All", "July 2025", "June 2025"}
	if strings.Join(got.Periods, "|") != strings.Join(want, "|") {
		t.Errorf("periods = %v, want %v", got.Periods, want)
	}
	if got.Generation != 1 {
		t.Errorf("generation = %d, want 1", got.Generation)
	}
}

func TestAPIMetrics(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := get(t, srv, "/api/metrics?period=July+2025")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	var got metricsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Period != "July 2025" || got.Orders != 3 || got.Lines != 4 {
		t.Errorf("bundle = period %q, %d orders, %d lines", got.Period, got.Orders, got.Lines)
	}
	if got.Statuses[0].Status != "Completed" || got.Statuses[0].Orders != 2 || got.Statuses[0].ValueCents != 230000 {
		t.Errorf("completed = %+v", got.Statuses[0])
	}
	if got.AvgItemsPerOrder == nil {
		t.Error("average should be present")
	}
}

func TestAPIMetrics_UnknownPeriod(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := get(t, srv, "/api/metrics?period=nope")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	var got errorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(got.Error, "unknown period") {
		t.Errorf("error = %q", got.Error)
	}
}

func TestAPI_RateLimited(t *testing.T) {
	src := backend.NewTableSource(memory.New(memory.DemoTable()), "memory")
	svc := services.NewDatasetService(src, nil)
	if err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	srv := NewServer(":0", svc, Options{Title: "T", APIRequestsPerMinute: 2}, quietLogger())
	defer srv.Shutdown(context.Background())

	for i := 0; i < 2; i++ {
		if rr := get(t, srv, "/api/periods"); rr.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i+1, rr.Code)
		}
	}
	if rr := get(t, srv, "/api/periods"); rr.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rr.Code)
	}
	// The page itself is not limited.
	if rr := get(t, srv, "/"); rr.Code != http.StatusOK {
		t.Errorf("dashboard status = %d", rr.Code)
	}
}

func TestHealthReadyAndStats(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := get(t, srv, "/readyz")
	if rr.Code != http.StatusOK {
		t.Fatalf("readyz status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"generation":1`) {
		t.Errorf("readyz should report the generation: %s", rr.Body.String())
	}

	get(t, srv, "/api/metrics?period=nope")
	rr = get(t, srv, "/metrics")
	if !strings.Contains(rr.Body.String(), "dataset_generation 1") {
		t.Errorf("stats missing generation: %s", rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "dataset_lines 8\n") {
		t.Errorf("stats missing line count: %s", rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "http_requests_total") {
		t.Error("stats missing request counter")
	}
}

func TestStaticAssets(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := get(t, srv, "/static/app.js")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if rr.Header().Get("Cache-Control") == "" {
		t.Error("static assets should be cacheable")
	}
	// Ranked rows are ascending, so bar charts must flip the category axis.
	if !strings.Contains(rr.Body.String(), "reverse: true") {
		t.Error("horizontal bar charts should draw the largest row on top")
	}
}

func TestUnknownPathIs404(t *testing.T) {
	srv, _ := newTestServer(t)
	if rr := get(t, srv, "/nope"); rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{services.ErrUnknownPeriod, http.StatusNotFound},
		{services.ErrNotLoaded, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestNewDashboardView_Empty(t *testing.T) {
	v := newDashboardView("T", "Rs", []string{"All"}, report.ComputeMetrics(nil, "All"), time.Time{})
	if !v.Empty || v.AvgItems != report.NoData || v.DateRange != report.NoData {
		t.Errorf("empty view = %+v", v)
	}
	if len(v.CountCards) != 4 || v.ValueCards[3].Label != "Refund Value" || v.ValueCards[3].Value != "Rs 0" {
		t.Errorf("cards = %+v / %+v", v.CountCards, v.ValueCards)
	}
}
