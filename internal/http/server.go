package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"orderdash/internal/core"
	applog "orderdash/internal/log"
	"orderdash/internal/middleware/ratelimit"
	"orderdash/internal/middleware/security"
	"orderdash/internal/middleware/trace"
	appweb "orderdash/web"
)

// MetricsProvider serves the current dataset. services.DatasetService
// satisfies it.
type MetricsProvider interface {
	Ready() bool
	Generation() uint64
	Lines() int
	LoadedAt() time.Time
	Periods() ([]string, error)
	Metrics(ctx context.Context, period string) (core.MetricBundle, error)
}

// Options configures the dashboard.
type Options struct {
	Title    string
	Currency string
	// APIRequestsPerMinute limits /api/ calls per client, 0 uses the default.
	APIRequestsPerMinute int
}

type Server struct {
	http.Server
	templates *template.Template
	data      MetricsProvider
	opts      Options
	logger    *applog.Logger
	events    *applog.StructuredLogger

	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	clientIP *security.ClientIPResolver
	started  time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates.
func NewServer(addr string, data MetricsProvider, opts Options, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		data:     data,
		opts:     opts,
		logger:   logger,
		events:   applog.NewStructuredLogger(logger),
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.APIRequestsPerMinute}),
		clientIP: security.NewClientIPResolver(),
		started:  time.Now(),
	}
	s.tracer = trace.NewMiddleware(logger, s.clientIP.ClientIP)

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Error("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	api := s.limiter.Middleware(s.clientIP.ClientIP)

	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.Handle("GET /api/periods", api(http.HandlerFunc(s.handlePeriods)))
	mux.Handle("GET /api/metrics", api(http.HandlerFunc(s.handleMetrics)))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleStats)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Server = http.Server{
		Addr:              addr,
		Handler:           applog.Middleware(logger)(s.tracer.Middleware(headers.Middleware(mux))),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
