package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"orderdash/internal/core"
	applog "orderdash/internal/log"
	"orderdash/internal/report"
	"orderdash/internal/services"
)

// periodParam reads ?period=, defaulting to every period.
func periodParam(r *http.Request) string {
	p := strings.TrimSpace(r.URL.Query().Get("period"))
	if p == "" {
		return core.AllPeriods
	}
	return p
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrUnknownPeriod):
		return http.StatusNotFound
	case errors.Is(err, services.ErrNotLoaded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.templates == nil {
		s.events.LogError(ctx, "Templates not loaded", errors.New("no templates"), applog.ComponentTemplate, applog.OpRender, nil)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	period := periodParam(r)
	b, err := s.data.Metrics(ctx, period)
	if err != nil {
		status := statusFor(err)
		if status >= 500 {
			s.events.LogError(ctx, "Dashboard metrics failed", err, applog.ComponentReport, applog.OpCompute, applog.NewFields().WithDataset(period, s.data.Generation()))
		}
		s.renderError(w, r, status, err)
		return
	}
	periods, err := s.data.Periods()
	if err != nil {
		s.renderError(w, r, statusFor(err), err)
		return
	}

	view := newDashboardView(s.opts.Title, s.opts.Currency, periods, b, s.data.LoadedAt())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "dashboard.html", view); err != nil {
		s.events.LogError(ctx, "Dashboard template execution failed", err, applog.ComponentTemplate, applog.OpRender, nil)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	s.events.LogMetricsServed(ctx, period, s.data.Generation(), b.Lines)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, err error) {
	view := errorView{Title: s.opts.Title, ShowHome: status == http.StatusNotFound}
	switch status {
	case http.StatusNotFound:
		view.Heading = "Unknown period"
		view.Message = fmt.Sprintf("%q is not a period of the loaded orders.", periodParam(r))
	case http.StatusServiceUnavailable:
		view.Heading = "Data not available"
		view.Message = "The order data has not been loaded yet. Try again shortly."
	default:
		view.Heading = "Something went wrong"
		view.Message = "The dashboard could not be computed."
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if execErr := s.templates.ExecuteTemplate(w, "error.html", view); execErr != nil {
		s.logger.ErrorContext(r.Context(), "Error template execution failed", applog.FieldError, execErr, "cause", err)
	}
}

func (s *Server) handlePeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := s.data.Periods()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, periodsResponse{Periods: periods, Generation: s.data.Generation()})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	period := periodParam(r)
	b, err := s.data.Metrics(r.Context(), period)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, metricsResponse{Generation: s.data.Generation(), Export: report.ToExport(b)})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= 500 {
		s.events.LogError(r.Context(), "API request failed", err, applog.ComponentReport, applog.OpCompute, nil)
		if status == http.StatusInternalServerError {
			msg = "internal error"
		}
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady reports ready once templates are parsed and a dataset is loaded
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	code := http.StatusOK
	checks := map[string]any{}

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if s.data.Ready() {
		checks["dataset"] = map[string]any{
			"status":     "ok",
			"generation": s.data.Generation(),
			"loaded_at":  s.data.LoadedAt().Format(time.RFC3339),
		}
	} else {
		checks["dataset"] = "not_loaded"
		status, code = "not_ready", http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleStats exposes counters in Prometheus text format
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	tm := s.tracer.GetMetrics()

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", tm.TotalRequests)

	fmt.Fprintf(w, "# HELP http_server_errors_total Responses with a 5xx status\n")
	fmt.Fprintf(w, "# TYPE http_server_errors_total counter\n")
	fmt.Fprintf(w, "http_server_errors_total %d\n\n", tm.ServerErrors)

	fmt.Fprintf(w, "# HELP rate_limit_rejected_total Requests refused by the API rate limiter\n")
	fmt.Fprintf(w, "# TYPE rate_limit_rejected_total counter\n")
	fmt.Fprintf(w, "rate_limit_rejected_total %d\n\n", s.limiter.Rejected())

	fmt.Fprintf(w, "# HELP dataset_generation Version of the dataset being served\n")
	fmt.Fprintf(w, "# TYPE dataset_generation gauge\n")
	fmt.Fprintf(w, "dataset_generation %d\n\n", s.data.Generation())

	fmt.Fprintf(w, "# HELP dataset_lines Order lines in the dataset being served\n")
	fmt.Fprintf(w, "# TYPE dataset_lines gauge\n")
	fmt.Fprintf(w, "dataset_lines %d\n\n", s.data.Lines())

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", time.Since(s.started).Seconds())
}
