package application

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/pipe-cutter/internal/api"
	"github.com/eugenenazirov/pipe-cutter/internal/config"
	"github.com/eugenenazirov/pipe-cutter/internal/cutting"
	"github.com/eugenenazirov/pipe-cutter/internal/metrics"
	"github.com/eugenenazirov/pipe-cutter/internal/planner"
	"github.com/eugenenazirov/pipe-cutter/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage storage.Storage
	plans   *storage.PlanStore
	planner *planner.Service
	metrics *metrics.Metrics
	handler *api.Handler
	router  http.Handler
	logger  *zap.Logger
	server  *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	store := storage.NewMemoryStorage()
	if err := store.SetSettings(storage.Settings{StockLength: cfg.StockLength, Policy: cfg.Policy}); err != nil {
		return nil, fmt.Errorf("failed to apply initial settings: %w", err)
	}

	plans := storage.NewPlanStore(cfg.PlanTTL)

	opts := []planner.Option{planner.WithMaxCuts(cfg.MaxCuts)}
	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
		opts = append(opts, planner.WithRecorder(m))
	}
	svc := planner.New(cutting.New(), store, plans, logger, opts...)

	handler := api.NewHandler(svc, store)
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	var metricsHandler http.Handler
	if m != nil {
		metricsHandler = m.Handler()
	}

	return &App{
		storage: store,
		plans:   plans,
		planner: svc,
		metrics: m,
		handler: handler,
		router:  apiRouter,
		logger:  logger,
		server:  NewServer(cfg, BuildRootHandler(apiRouter, metricsHandler)),
	}, nil
}

// BuildRootHandler mounts the API under /api/ and, when metricsHandler is non-nil,
// the Prometheus scrape endpoint at /metrics.
func BuildRootHandler(apiHandler, metricsHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	if metricsHandler != nil {
		mux.Handle("/metrics", metricsHandler)
	}
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("pipe-cutter: see /api/health\n"))
	}))
	return mux
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}
