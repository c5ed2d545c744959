package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/container-loader/internal/application"
	"github.com/eugenenazirov/container-loader/internal/config"
	"github.com/eugenenazirov/container-loader/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("container-loader", "Container Loader - places boxes into a container with a greedy first-fit packer")
	overrides := registerFlags(kingpinApp)

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	cfg, err := config.Load(overrides.resolve())
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger, app.Close)
}

// flagValues holds raw flag values; sentinel defaults mark flags the user did
// not pass so they do not clobber YAML or environment settings.
type flagValues struct {
	configFile        *string
	port              *string
	logLevel          *string
	rateLimitRPS      *float64
	rateLimitBurst    *int
	packingEfficiency *float64
	packTimeout       *time.Duration
	storageDriver     *string
	storageDSN        *string
}

func registerFlags(app *kingpin.Application) *flagValues {
	return &flagValues{
		configFile:        app.Flag("config", "Path to YAML configuration file").String(),
		port:              app.Flag("port", "HTTP port exposed by the service").String(),
		logLevel:          app.Flag("log-level", "Log level (debug, info, warn, error)").String(),
		rateLimitRPS:      app.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64(),
		rateLimitBurst:    app.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int(),
		packingEfficiency: app.Flag("packing-efficiency", "Fraction of the volume bound used for default quantities").Default("-1").Float64(),
		packTimeout:       app.Flag("pack-timeout", "Maximum duration of a single calculation").Default("0s").Duration(),
		storageDriver:     app.Flag("storage-driver", "Result storage driver (memory, sqlite)").String(),
		storageDSN:        app.Flag("storage-dsn", "Data source name for the sqlite storage driver").String(),
	}
}

func (f *flagValues) resolve() *config.CLIOverrides {
	overrides := &config.CLIOverrides{
		ConfigFile: *f.configFile,
	}

	if *f.port != "" {
		overrides.Port = f.port
	}
	if *f.logLevel != "" {
		overrides.LogLevel = f.logLevel
	}
	if *f.rateLimitRPS >= 0 {
		overrides.RateLimitRPS = f.rateLimitRPS
	}
	if *f.rateLimitBurst >= 0 {
		overrides.RateLimitBurst = f.rateLimitBurst
	}
	if *f.packingEfficiency >= 0 {
		overrides.PackingEfficiency = f.packingEfficiency
	}
	if *f.packTimeout > 0 {
		overrides.PackTimeout = f.packTimeout
	}
	if *f.storageDriver != "" {
		overrides.StorageDriver = f.storageDriver
	}
	if *f.storageDSN != "" {
		overrides.StorageDSN = f.storageDSN
	}
	return overrides
}

// shutdown waits for a termination signal, drains the server and then calls
// release so storage is only closed once no handler can still use it.
func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger, release func() error) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}

	if release != nil {
		if err := release(); err != nil {
			logger.Error("failed to release resources", zap.Error(err))
		}
	}
}
