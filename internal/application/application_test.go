package application

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/container-loader/internal/config"
	"github.com/eugenenazirov/container-loader/internal/packing"
	"github.com/eugenenazirov/container-loader/internal/storage"
)

func TestNewInitializesDependencies(t *testing.T) {
	cfg := baseTestConfig(":8085")
	logger := zaptest.NewLogger(t)

	app, err := New(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(func() {
		_ = app.Close()
	})

	if _, ok := app.storage.(*storage.MemoryStorage); !ok {
		t.Fatalf("expected memory storage, got %T", app.storage)
	}
	if app.server == nil || app.router == nil || app.handler == nil || app.packer == nil {
		t.Fatalf("expected server, router, handler, and packer to be initialized")
	}
	if app.Server() != app.server {
		t.Fatalf("Server accessor did not return underlying instance")
	}
}

func TestNewOpensSQLiteStorage(t *testing.T) {
	cfg := baseTestConfig(":0")
	cfg.Storage = config.StorageConfig{
		Driver: storage.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "results.db"),
	}

	app, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, ok := app.storage.(*storage.SQLiteStorage); !ok {
		t.Fatalf("expected sqlite storage, got %T", app.storage)
	}
	if err := app.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}

func TestNewReturnsErrorForUnknownDriver(t *testing.T) {
	cfg := baseTestConfig(":0")
	cfg.Storage.Driver = "postgres"

	if _, err := New(context.Background(), cfg, zaptest.NewLogger(t)); err == nil {
		t.Fatalf("expected error for unknown storage driver")
	}
}

func TestNewServerAppliesConfig(t *testing.T) {
	cfg := baseTestConfig("9090")
	handler := http.NewServeMux()

	server := NewServer(cfg, handler)
	if server.Addr != ":9090" {
		t.Fatalf("expected address :9090, got %s", server.Addr)
	}
	if server.Handler != handler {
		t.Fatalf("expected handler to be applied")
	}
	if server.ReadHeaderTimeout != cfg.ReadHeaderTimeout ||
		server.WriteTimeout != cfg.WriteTimeout ||
		server.IdleTimeout != cfg.IdleTimeout {
		t.Fatalf("server timeouts do not match configuration")
	}
}

func TestNewPackerAppliesThresholds(t *testing.T) {
	cfg := baseTestConfig(":0")
	cfg.Packing.FullThreshold = 40

	packer := NewPacker(cfg.Packing, zaptest.NewLogger(t))
	qty := 4
	res, err := packer.Pack(context.Background(),
		packing.Container{Length: 10, Width: 10, Height: 10},
		[]packing.BoxType{{Name: "cube", Length: 5, Width: 5, Height: 5, Quantity: &qty}},
	)
	if err != nil {
		t.Fatalf("Pack returned error: %v", err)
	}
	if !res.ContainerFull {
		t.Fatalf("expected 50%% utilization to count as full with a 40%% threshold")
	}
}

func TestBuildRootHandler(t *testing.T) {
	apiInvoked := false
	apiHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiInvoked = true
		w.WriteHeader(http.StatusNoContent)
	})
	handler := BuildRootHandler(apiHandler)

	t.Run("serves index", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		var body serviceIndex
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode index: %v", err)
		}
		if body.Service != serviceName || len(body.Endpoints) == 0 {
			t.Fatalf("unexpected index: %+v", body)
		}
	})

	t.Run("returns not found for unknown paths", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/unknown", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
	})

	t.Run("forwards api traffic", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent || !apiInvoked {
			t.Fatalf("expected API handler to be invoked, got %d", rec.Code)
		}
	})
}

func TestAppServesCalculations(t *testing.T) {
	app, err := New(context.Background(), baseTestConfig(":0"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(func() {
		_ = app.Close()
	})

	payload := `{"container":{"length":10,"width":10,"height":10},"boxes":[{"name":"cube","length":5,"width":5,"height":5,"quantity":8}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/calculate", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	app.Server().Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		TotalBoxes    int  `json:"total_boxes"`
		ContainerFull bool `json:"container_full"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.TotalBoxes != 8 || !body.ContainerFull {
		t.Fatalf("expected a full container of 8 boxes, got %+v", body)
	}
}

func baseTestConfig(port string) config.Config {
	return config.Config{
		Port:                 port,
		ShutdownGracePeriod:  50 * time.Millisecond,
		ReadHeaderTimeout:    20 * time.Millisecond,
		WriteTimeout:         30 * time.Millisecond,
		IdleTimeout:          40 * time.Millisecond,
		EnableRequestLogging: false,
		RateLimitRPS:         0,
		RateLimitBurst:       0,
		Packing: config.PackingConfig{
			Efficiency:           packing.DefaultPackingEfficiency,
			FullThreshold:        packing.DefaultFullThreshold,
			WeightLimitThreshold: packing.DefaultWeightLimitThreshold,
			Timeout:              time.Second,
		},
		Storage: config.StorageConfig{Driver: storage.DriverMemory},
	}
}
