package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS packing_results (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		request_json TEXT NOT NULL,
		result_json TEXT NOT NULL,
		total_boxes INTEGER NOT NULL,
		space_utilization REAL NOT NULL,
		weight_utilization REAL NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_packing_results_created ON packing_results(created_at)`,
}

// SQLiteStorage persists results in a SQLite database.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens (or creates) the database at dsn and ensures the
// schema exists.
func NewSQLiteStorage(ctx context.Context, dsn string) (*SQLiteStorage, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("sqlite dsn must not be empty")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection serialises writers and keeps ":memory:" databases
	// shared across calls.
	db.SetMaxOpenConns(1)

	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("initialize schema: %w", err)
		}
	}

	return &SQLiteStorage{db: db}, nil
}

// SaveResult inserts the record.
func (s *SQLiteStorage) SaveResult(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		return ErrInvalidRecord
	}

	reqJSON, err := json.Marshal(rec.Request)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	resJSON, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	var exists int
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM packing_results WHERE id = ?`, rec.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check existing result: %w", err)
	}
	if exists > 0 {
		return ErrDuplicateRecord
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO packing_results
			(id, created_at, request_json, result_json, total_boxes, space_utilization, weight_utilization)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.CreatedAt.UnixNano(),
		string(reqJSON),
		string(resJSON),
		rec.Result.TotalBoxes,
		rec.Result.SpaceUtilization,
		rec.Result.WeightUtilization,
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// GetResult returns the record with the given id.
func (s *SQLiteStorage) GetResult(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, request_json, result_json FROM packing_results WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrResultNotFound
	}
	return rec, err
}

// ListResults returns a page of records, newest first.
func (s *SQLiteStorage) ListResults(ctx context.Context, offset, limit int) ([]Record, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM packing_results`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count results: %w", err)
	}
	if limit <= 0 {
		return []Record{}, total, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, request_json, result_json FROM packing_results
		ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`, limit, max(0, offset))
	if err != nil {
		return nil, 0, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	out := make([]Record, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate results: %w", err)
	}
	return out, total, nil
}

// Stats aggregates utilization over every stored record.
func (s *SQLiteStorage) Stats(ctx context.Context) (Stats, error) {
	var (
		stats         Stats
		space, weight UtilizationStats
	)
	err := s.db.QueryRowContext(ctx, `SELECT
			COUNT(*),
			COALESCE(AVG(space_utilization), 0), COALESCE(MAX(space_utilization), 0), COALESCE(MIN(space_utilization), 0),
			COALESCE(AVG(weight_utilization), 0), COALESCE(MAX(weight_utilization), 0), COALESCE(MIN(weight_utilization), 0)
		FROM packing_results`).Scan(
		&stats.TotalCalculations,
		&space.Average, &space.Max, &space.Min,
		&weight.Average, &weight.Max, &weight.Min,
	)
	if err != nil {
		return Stats{}, fmt.Errorf("aggregate results: %w", err)
	}
	if stats.TotalCalculations == 0 {
		return stats, nil
	}

	space.Average = math.Round(space.Average)
	weight.Average = math.Round(weight.Average)
	stats.Space = space
	stats.Weight = &weight
	return stats, nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec       Record
		createdAt int64
		reqJSON   string
		resJSON   string
	)
	if err := row.Scan(&rec.ID, &createdAt, &reqJSON, &resJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("scan result: %w", err)
	}
	if err := json.Unmarshal([]byte(reqJSON), &rec.Request); err != nil {
		return Record{}, fmt.Errorf("decode request: %w", err)
	}
	if err := json.Unmarshal([]byte(resJSON), &rec.Result); err != nil {
		return Record{}, fmt.Errorf("decode result: %w", err)
	}
	rec.CreatedAt = time.Unix(0, createdAt).UTC()
	return rec, nil
}
