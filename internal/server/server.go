// Package server exposes the tracker over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rnwolfe/streak/internal/config"
	"github.com/rnwolfe/streak/internal/history"
	"github.com/rnwolfe/streak/internal/tracker"
	"github.com/rnwolfe/streak/internal/version"
)

// Users resolves the {id} path segment to a stored user.
type Users interface {
	FindUser(ctx context.Context, ref string) (history.User, error)
}

// Pinger reports storage health. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Server routes HTTP requests to a Tracker.
type Server struct {
	tracker *tracker.Tracker
	users   Users
	cfg     config.ServerConfig

	now     func() time.Time
	logger  *slog.Logger
	pinger  Pinger
	reg     *prometheus.Registry
	limiter *limiter
	metrics *httpMetrics
}

// Option configures a Server.
type Option func(*Server)

// WithClock replaces the trusted clock used to timestamp events.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithPinger enables the storage check in /health.
func WithPinger(p Pinger) Option {
	return func(s *Server) { s.pinger = p }
}

// New builds a Server. Each Server has its own metrics registry.
func New(tr *tracker.Tracker, users Users, cfg config.ServerConfig, opts ...Option) *Server {
	s := &Server{
		tracker: tr,
		users:   users,
		cfg:     cfg,
		now:     time.Now,
		logger:  slog.New(slog.DiscardHandler),
		reg:     prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}

	rps, burst := cfg.RatePerSec, cfg.Burst
	if rps <= 0 {
		rps = config.DefaultRatePerSec
	}
	if burst <= 0 {
		burst = config.DefaultBurst
	}
	s.limiter = newLimiter(rps, burst)

	s.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	tracker.RegisterMetrics(s.reg)
	s.metrics = newHTTPMetrics(s.reg)
	return s
}

// Handler returns the full middleware-wrapped router.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	standard := r.PathPrefix("/").Subrouter()
	standard.Use(s.limiter.middleware)
	standard.Use(s.metrics.middleware)

	standard.Handle("/metrics", basicAuth(s.cfg.MetricsUser, s.cfg.MetricsPassword,
		promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))).Methods("GET")
	standard.HandleFunc("/health", s.health).Methods("GET")

	api := standard.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/users/{id}/activity", s.recordActivity).Methods("POST")
	api.HandleFunc("/users/{id}/streak", s.getStreak).Methods("GET")
	api.HandleFunc("/users/{id}/intervals", s.getIntervals).Methods("GET")

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.ExposedHeaders([]string{"Content-Length"}),
	)
	if s.cfg.TrustProxy {
		return handlers.ProxyHeaders(cors(r))
	}
	return cors(r)
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight
// requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := s.cfg.Addr
	if addr == "" {
		addr = config.DefaultAddr
	}
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go s.sweepVisitors(ctx)

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "version", version.Short())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("serving on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) sweepVisitors(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.limiter.sweep(now.Add(-visitorIdle))
		}
	}
}
