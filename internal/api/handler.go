package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/eugenenazirov/container-loader/internal/export"
	"github.com/eugenenazirov/container-loader/internal/packing"
	"github.com/eugenenazirov/container-loader/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const (
	defaultPageLimit   = 10
	maxPageLimit       = 100
	defaultPackTimeout = 30 * time.Second
)

// Handler wires packer and storage dependencies into HTTP handlers.
type Handler struct {
	packer  packing.Packer
	storage storage.Storage

	clock       func() time.Time
	newID       func() string
	packTimeout time.Duration
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithIDGenerator overrides how result ids are generated, primarily for tests.
func WithIDGenerator(newID func() string) HandlerOption {
	return func(h *Handler) {
		h.newID = newID
	}
}

// WithPackTimeout bounds how long a single calculation may run.
func WithPackTimeout(timeout time.Duration) HandlerOption {
	return func(h *Handler) {
		if timeout > 0 {
			h.packTimeout = timeout
		}
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(packer packing.Packer, store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		packer:  packer,
		storage: store,
		clock: func() time.Time {
			return time.Now().UTC()
		},
		newID:       uuid.NewString,
		packTimeout: defaultPackTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req packing.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.packTimeout)
	defer cancel()

	start := time.Now()
	result, packErr := h.packer.Pack(ctx, *req.Container, req.Boxes)
	elapsed := time.Since(start)

	if packErr != nil {
		if errors.Is(packErr, packing.ErrPackCanceled) {
			writeError(w, http.StatusServiceUnavailable, "Calculation timed out", packErr.Error(),
				"Reduce the number of boxes requested or raise the pack timeout")
			return
		}
		writeInternalError(w, packErr)
		return
	}

	rec := storage.Record{
		ID:        h.newID(),
		CreatedAt: h.clock(),
		Request:   req,
		Result:    result,
	}
	if err := h.storage.SaveResult(r.Context(), rec); err != nil {
		writeInternalError(w, fmt.Errorf("save result: %w", err))
		return
	}

	resp := calculateResponse{
		Result:            result,
		EfficiencyReport:  result.Efficiency(),
		ResultID:          rec.ID,
		CalculationTimeMs: elapsed.Milliseconds(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleListResults(w http.ResponseWriter, r *http.Request) {
	page := positiveQueryInt(r, "page", 1)
	limit := min(positiveQueryInt(r, "limit", defaultPageLimit), maxPageLimit)

	records, total, err := h.storage.ListResults(r.Context(), pageOffset(page, limit), limit)
	if err != nil {
		writeInternalError(w, err)
		return
	}

	totalPages := (total + limit - 1) / limit
	resp := listResultsResponse{
		Data: records,
		Pagination: pagination{
			CurrentPage:  page,
			TotalPages:   totalPages,
			TotalResults: total,
			HasNext:      page < totalPages,
			HasPrev:      page > 1,
		},
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetResult(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.lookupResult(w, r)
	if !ok {
		return
	}

	resp := resultResponse{
		Record:           rec,
		EfficiencyReport: rec.Result.Efficiency(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleExportResult(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.lookupResult(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, rec); err != nil {
		writeInternalError(w, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "packing-"+rec.ID+".xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.storage.Stats(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) lookupResult(w http.ResponseWriter, r *http.Request) (storage.Record, bool) {
	rec, err := h.storage.GetResult(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrResultNotFound) {
			writeError(w, http.StatusNotFound, "Result not found", err.Error())
			return storage.Record{}, false
		}
		writeInternalError(w, err)
		return storage.Record{}, false
	}
	return rec, true
}

// pageOffset saturates at math.MaxInt instead of wrapping for huge pages.
func pageOffset(page, limit int) int {
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}

func positiveQueryInt(r *http.Request, key string, fallback int) int {
	value, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type calculateResponse struct {
	packing.Result
	EfficiencyReport  packing.EfficiencyReport `json:"efficiency_report"`
	ResultID          string                   `json:"result_id"`
	CalculationTimeMs int64                    `json:"calculation_time_ms"`
}

type resultResponse struct {
	storage.Record
	EfficiencyReport packing.EfficiencyReport `json:"efficiency_report"`
}

type listResultsResponse struct {
	Data       []storage.Record `json:"data"`
	Pagination pagination       `json:"pagination"`
}

type pagination struct {
	CurrentPage  int  `json:"current_page"`
	TotalPages   int  `json:"total_pages"`
	TotalResults int  `json:"total_results"`
	HasNext      bool `json:"has_next"`
	HasPrev      bool `json:"has_prev"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
