package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"

	"github.com/phishscan/phishscan/internal/checker"
	"github.com/phishscan/phishscan/internal/config"
	"github.com/phishscan/phishscan/internal/history"
	"github.com/phishscan/phishscan/internal/metrics"
)

// Server is the HTTP API server answering URL check requests.
type Server struct {
	cfg     *config.Config
	checker *checker.Checker
	store   *history.Store
	metrics *metrics.Metrics
	reg     *prometheus.Registry
	logger  *slog.Logger
	router  *mux.Router
	version string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHistory enables persisting every completed check to the store.
// Persistence is best-effort: a failed write logs and the response
// still goes out.
func WithHistory(store *history.Store) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithMetrics wires Prometheus instruments and the registry /metrics
// serves. Without this option the endpoint serves the default gatherer
// and check observations are dropped.
func WithMetrics(m *metrics.Metrics, reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.metrics = m
		s.reg = reg
	}
}

// WithVersion sets the version string reported by /health.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// NewServer creates the API server over a ready Checker.
// The checker must already hold a loaded classifier; a service that
// cannot classify must never start accepting requests.
func NewServer(cfg *config.Config, chk *checker.Checker, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("api: config must not be nil")
	}
	if chk == nil {
		return nil, errors.New("api: checker must not be nil")
	}

	s := &Server{
		cfg:     cfg,
		checker: chk,
		router:  mux.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	s.setupRoutes()
	return s, nil
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/check", s.handleCheck).Methods(http.MethodPost)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	s.router.Handle("/metrics", s.metrics.Handler(s.reg)).Methods(http.MethodGet)

	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.recoveryMiddleware)
}

// Handler returns the complete handler chain including CORS.
// Exposed for tests; Start uses it as the http.Server handler.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(s.router)
}

// Start runs the server until ctx is cancelled, then shuts it down
// gracefully. It returns nil on a clean shutdown.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddress,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Write timeout must outlast a full check with both reputation
		// lookups, or slow upstreams would truncate valid responses.
		WriteTimeout: s.cfg.CheckTimeout + 5*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP service listening", "address", s.cfg.ListenAddress)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		// Drain the listener goroutine; ErrServerClosed is the normal
		// result of Shutdown.
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
