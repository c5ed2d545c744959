package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/container-loader/internal/packing"
	"github.com/eugenenazirov/container-loader/internal/storage"
)

const (
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
	defaultPackTimeout    = 30 * time.Second
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Port                 string
	LogLevel             string
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
	Packing              PackingConfig
	Storage              StorageConfig
}

// PackingConfig holds the packer tunables.
type PackingConfig struct {
	Efficiency           float64
	FullThreshold        float64
	WeightLimitThreshold float64
	Timeout              time.Duration
}

// StorageConfig selects where results are persisted.
type StorageConfig struct {
	Driver string
	DSN    string
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	Port                 string        `yaml:"port"`
	LogLevel             string        `yaml:"log_level"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging *bool         `yaml:"enable_request_logging"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
	Packing              yamlPacking   `yaml:"packing"`
	Storage              yamlStorage   `yaml:"storage"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

type yamlPacking struct {
	Efficiency           float64 `yaml:"efficiency"`
	FullThreshold        float64 `yaml:"full_threshold"`
	WeightLimitThreshold float64 `yaml:"weight_limit_threshold"`
	Timeout              string  `yaml:"timeout"`
}

type yamlStorage struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile        string
	Port              *string
	LogLevel          *string
	RateLimitRPS      *float64
	RateLimitBurst    *int
	PackingEfficiency *float64
	PackTimeout       *time.Duration
	StorageDriver     *string
	StorageDSN        *string
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	// Environment first so YAML can override it
	if err := applyEnvConfig(&cfg); err != nil {
		return Config{}, err
	}

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		LogLevel:             defaultLogLevel,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         45 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
		Packing: PackingConfig{
			Efficiency:           packing.DefaultPackingEfficiency,
			FullThreshold:        packing.DefaultFullThreshold,
			WeightLimitThreshold: packing.DefaultWeightLimitThreshold,
			Timeout:              defaultPackTimeout,
		},
		Storage: StorageConfig{
			Driver: storage.DriverMemory,
		},
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"shutdown_grace_period", yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod},
		{"read_header_timeout", yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout},
		{"write_timeout", yamlCfg.WriteTimeout, &cfg.WriteTimeout},
		{"idle_timeout", yamlCfg.IdleTimeout, &cfg.IdleTimeout},
		{"packing.timeout", yamlCfg.Packing.Timeout, &cfg.Packing.Timeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = parsed
	}

	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}

	if yamlCfg.RateLimit.RPS != nil && *yamlCfg.RateLimit.RPS >= 0 {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}
	if yamlCfg.RateLimit.Burst != nil && *yamlCfg.RateLimit.Burst >= 0 {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}

	if yamlCfg.Packing.Efficiency != 0 {
		cfg.Packing.Efficiency = yamlCfg.Packing.Efficiency
	}
	if yamlCfg.Packing.FullThreshold != 0 {
		cfg.Packing.FullThreshold = yamlCfg.Packing.FullThreshold
	}
	if yamlCfg.Packing.WeightLimitThreshold != 0 {
		cfg.Packing.WeightLimitThreshold = yamlCfg.Packing.WeightLimitThreshold
	}

	if yamlCfg.Storage.Driver != "" {
		cfg.Storage.Driver = yamlCfg.Storage.Driver
	}
	if yamlCfg.Storage.DSN != "" {
		cfg.Storage.DSN = yamlCfg.Storage.DSN
	}
	return nil
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) error {
	if port := env("PORT"); port != "" {
		cfg.Port = port
	}
	if level := env("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	if rps := env("RATE_LIMIT_RPS"); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}
	if burst := env("RATE_LIMIT_BURST"); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}

	if raw := env("PACKING_EFFICIENCY"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("PACKING_EFFICIENCY: invalid number %q", raw)
		}
		cfg.Packing.Efficiency = value
	}
	if raw := env("PACK_TIMEOUT"); raw != "" {
		value, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("PACK_TIMEOUT: %w", err)
		}
		cfg.Packing.Timeout = value
	}

	if driver := env("STORAGE_DRIVER"); driver != "" {
		cfg.Storage.Driver = driver
	}
	if dsn := env("STORAGE_DSN"); dsn != "" {
		cfg.Storage.DSN = dsn
	}
	return nil
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}
	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = *overrides.LogLevel
	}
	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}
	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}
	if overrides.PackingEfficiency != nil && *overrides.PackingEfficiency > 0 {
		cfg.Packing.Efficiency = *overrides.PackingEfficiency
	}
	if overrides.PackTimeout != nil && *overrides.PackTimeout > 0 {
		cfg.Packing.Timeout = *overrides.PackTimeout
	}
	if overrides.StorageDriver != nil && *overrides.StorageDriver != "" {
		cfg.Storage.Driver = *overrides.StorageDriver
	}
	if overrides.StorageDSN != nil && *overrides.StorageDSN != "" {
		cfg.Storage.DSN = *overrides.StorageDSN
	}
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	if !(cfg.Packing.Efficiency > 0 && cfg.Packing.Efficiency <= 1) {
		return fmt.Errorf("packing efficiency must be in (0, 1], got %v", cfg.Packing.Efficiency)
	}
	if !validPercent(cfg.Packing.FullThreshold) || !validPercent(cfg.Packing.WeightLimitThreshold) {
		return fmt.Errorf("packing thresholds must be in (0, 100]")
	}
	if cfg.Packing.Timeout <= 0 {
		return fmt.Errorf("pack timeout must be positive")
	}
	switch cfg.Storage.Driver {
	case storage.DriverMemory:
	case storage.DriverSQLite:
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return fmt.Errorf("storage dsn is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
	return nil
}

func validPercent(v float64) bool {
	return v > 0 && v <= 100
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
