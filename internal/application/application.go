package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/container-loader/internal/api"
	"github.com/eugenenazirov/container-loader/internal/config"
	"github.com/eugenenazirov/container-loader/internal/packing"
	"github.com/eugenenazirov/container-loader/internal/storage"
)

// serviceName is reported by the root index document.
const serviceName = "container-loader"

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage storage.Storage
	packer  packing.Packer
	handler *api.Handler
	router  http.Handler
	logger  *zap.Logger
	server  *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	store, err := storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
	}

	packer := NewPacker(cfg.Packing, logger)
	handler := api.NewHandler(packer, store, api.WithPackTimeout(cfg.Packing.Timeout))
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	return &App{
		storage: store,
		packer:  packer,
		handler: handler,
		router:  apiRouter,
		logger:  logger,
		server:  NewServer(cfg, BuildRootHandler(apiRouter)),
	}, nil
}

// NewPacker builds the greedy packer from the packing section of the configuration.
func NewPacker(cfg config.PackingConfig, logger *zap.Logger) packing.Packer {
	return packing.New(
		packing.WithPackingEfficiency(cfg.Efficiency),
		packing.WithFullThreshold(cfg.FullThreshold),
		packing.WithWeightLimitThreshold(cfg.WeightLimitThreshold),
		packing.WithLogger(logger.Named("packer")),
	)
}

// BuildRootHandler routes API requests and answers the bare root with a small
// index of the available endpoints.
func BuildRootHandler(apiHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(serviceIndex{
			Service: serviceName,
			Endpoints: []string{
				"GET /api/health",
				"POST /api/calculate",
				"GET /api/results",
				"GET /api/results/{id}",
				"GET /api/results/{id}/export",
				"GET /api/stats",
			},
		})
	}))
	return mux
}

type serviceIndex struct {
	Service   string   `json:"service"`
	Endpoints []string `json:"endpoints"`
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

// Close releases the result storage. Call it after the server has shut down.
func (a *App) Close() error {
	if err := a.storage.Close(); err != nil {
		return fmt.Errorf("close storage: %w", err)
	}
	return nil
}
