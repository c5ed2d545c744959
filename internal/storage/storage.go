package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/eugenenazirov/container-loader/internal/packing"
)

// Supported storage drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

var (
	// ErrResultNotFound indicates no stored result has the requested id.
	ErrResultNotFound = errors.New("result not found")
	// ErrInvalidRecord indicates a record without an id was offered for storage.
	ErrInvalidRecord = errors.New("result record must have an id")
	// ErrDuplicateRecord indicates a record with the same id is already stored.
	ErrDuplicateRecord = errors.New("result record already exists")
	// ErrUnknownDriver indicates the configured storage driver is not supported.
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// Record is one stored packing calculation.
type Record struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Request   packing.Request `json:"request"`
	Result    packing.Result  `json:"result"`
}

// UtilizationStats aggregates one utilization figure across stored results.
type UtilizationStats struct {
	Average float64 `json:"average_utilization"`
	Max     float64 `json:"max_utilization"`
	Min     float64 `json:"min_utilization"`
}

// Stats aggregates every stored result.
type Stats struct {
	TotalCalculations int               `json:"total_calculations"`
	Space             UtilizationStats  `json:"space_stats"`
	Weight            *UtilizationStats `json:"weight_stats,omitempty"`
}

// Storage persists packing results.
type Storage interface {
	SaveResult(ctx context.Context, rec Record) error
	GetResult(ctx context.Context, id string) (Record, error)
	// ListResults returns up to limit records newest first, skipping offset,
	// along with the total number of stored records.
	ListResults(ctx context.Context, offset, limit int) ([]Record, int, error)
	Stats(ctx context.Context) (Stats, error)
	Close() error
}

// Open returns the Storage implementation named by driver.
func Open(ctx context.Context, driver, dsn string) (Storage, error) {
	switch driver {
	case "", DriverMemory:
		return NewMemoryStorage(), nil
	case DriverSQLite:
		store, err := NewSQLiteStorage(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// MemoryStorage keeps results in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu      sync.RWMutex
	records []Record
	byID    map[string]int
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		byID: make(map[string]int),
	}
}

// SaveResult appends the record.
func (s *MemoryStorage) SaveResult(_ context.Context, rec Record) error {
	if rec.ID == "" {
		return ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[rec.ID]; ok {
		return ErrDuplicateRecord
	}
	s.byID[rec.ID] = len(s.records)
	s.records = append(s.records, rec)
	return nil
}

// GetResult returns the record with the given id.
func (s *MemoryStorage) GetResult(_ context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byID[id]
	if !ok {
		return Record{}, ErrResultNotFound
	}
	return s.records[idx], nil
}

// ListResults returns a page of records, newest first.
func (s *MemoryStorage) ListResults(_ context.Context, offset, limit int) ([]Record, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.records)
	out := make([]Record, 0, max(0, min(limit, total)))
	for i := total - 1 - max(0, offset); i >= 0 && len(out) < limit; i-- {
		out = append(out, s.records[i])
	}
	return out, total, nil
}

// Stats aggregates utilization over every stored record.
func (s *MemoryStorage) Stats(_ context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{TotalCalculations: len(s.records)}
	if len(s.records) == 0 {
		return stats, nil
	}

	space := UtilizationStats{Max: math.Inf(-1), Min: math.Inf(1)}
	weight := space
	for _, rec := range s.records {
		accumulate(&space, rec.Result.SpaceUtilization)
		accumulate(&weight, rec.Result.WeightUtilization)
	}
	n := float64(len(s.records))
	space.Average = math.Round(space.Average / n)
	weight.Average = math.Round(weight.Average / n)

	stats.Space = space
	stats.Weight = &weight
	return stats, nil
}

// Close is a no-op for in-memory storage.
func (s *MemoryStorage) Close() error {
	return nil
}

// accumulate sums into Average; callers divide once all values are seen.
func accumulate(u *UtilizationStats, v float64) {
	u.Average += v
	u.Max = math.Max(u.Max, v)
	u.Min = math.Min(u.Min, v)
}
