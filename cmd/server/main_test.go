package main

import (
	"testing"
	"time"

	"github.com/alecthomas/kingpin/v2"
)

func TestFlagsOmittedLeaveOverridesUnset(t *testing.T) {
	app := kingpin.New("test", "")
	flags := registerFlags(app)
	if _, err := app.Parse(nil); err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	overrides := flags.resolve()
	if overrides.Port != nil || overrides.LogLevel != nil || overrides.RateLimitRPS != nil ||
		overrides.RateLimitBurst != nil || overrides.PackingEfficiency != nil || overrides.PackTimeout != nil ||
		overrides.StorageDriver != nil || overrides.StorageDSN != nil {
		t.Fatalf("expected no overrides, got %+v", overrides)
	}
}

func TestFlagsPopulateOverrides(t *testing.T) {
	app := kingpin.New("test", "")
	flags := registerFlags(app)
	args := []string{
		"--config", "cfg.yaml",
		"--port", "9000",
		"--log-level", "debug",
		"--rate-limit-rps", "0",
		"--rate-limit-burst", "0",
		"--packing-efficiency", "0.8",
		"--pack-timeout", "5s",
		"--storage-driver", "sqlite",
		"--storage-dsn", "results.db",
	}
	if _, err := app.Parse(args); err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	overrides := flags.resolve()
	if overrides.ConfigFile != "cfg.yaml" || *overrides.Port != "9000" || *overrides.LogLevel != "debug" {
		t.Fatalf("unexpected server overrides: %+v", overrides)
	}
	if *overrides.RateLimitRPS != 0 || *overrides.RateLimitBurst != 0 {
		t.Fatalf("expected explicit zero to disable rate limiting")
	}
	if *overrides.PackingEfficiency != 0.8 || *overrides.PackTimeout != 5*time.Second {
		t.Fatalf("unexpected packing overrides")
	}
	if *overrides.StorageDriver != "sqlite" || *overrides.StorageDSN != "results.db" {
		t.Fatalf("unexpected storage overrides")
	}
}
