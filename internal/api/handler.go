package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/eugenenazirov/pipe-cutter/internal/cutting"
	"github.com/eugenenazirov/pipe-cutter/internal/export"
	"github.com/eugenenazirov/pipe-cutter/internal/input"
	"github.com/eugenenazirov/pipe-cutter/internal/planner"
	"github.com/eugenenazirov/pipe-cutter/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const (
	maxJSONBodyBytes   = 1 << 20
	maxUploadBodyBytes = 10 << 20

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Handler wires the planner and settings storage into HTTP handlers.
type Handler struct {
	planner *planner.Service
	storage storage.Storage

	clock func() time.Time

	mu                sync.RWMutex
	settingsUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(svc *planner.Service, store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		planner: svc,
		storage: store,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.settingsUpdatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	settings, err := h.storage.GetSettings()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.settingsResponse(settings, ""))
}

func (h *Handler) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if err := h.storage.SetSettings(storage.Settings{StockLength: req.StockLength, Policy: cutting.Policy(req.Policy)}); err != nil {
		if errors.Is(err, storage.ErrInvalidSettings) {
			writeError(w, http.StatusBadRequest, "Invalid settings", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markSettingsUpdated()

	settings, err := h.storage.GetSettings()
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.settingsResponse(settings, "Settings updated successfully"))
}

func (h *Handler) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	cuts := req.Cuts
	if strings.TrimSpace(req.CutsText) != "" {
		parsed, err := input.ParseList(req.CutsText, h.planner.MaxCuts())
		if err != nil {
			writePlanError(w, err)
			return
		}
		cuts = append(cuts, parsed...)
	}
	if len(cuts) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid request", "cuts or cutsText must contain at least one length")
		return
	}

	h.plan(r.Context(), w, req.StockLength, req.Policy, cuts)
}

func (h *Handler) handleUploadPlan(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBodyBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "multipart form with a 'file' field is required")
		return
	}
	defer func() { _ = file.Close() }()

	cuts, err := input.Parse(header.Filename, file, h.planner.MaxCuts())
	if err != nil {
		writePlanError(w, err)
		return
	}

	var stockLength *float64
	if raw := strings.TrimSpace(r.FormValue("stockLength")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid stock length", fmt.Sprintf("stockLength %q is not a number", raw))
			return
		}
		stockLength = &v
	}

	h.plan(r.Context(), w, stockLength, r.FormValue("policy"), cuts)
}

func (h *Handler) plan(ctx context.Context, w http.ResponseWriter, stockLength *float64, rawPolicy string, cuts []float64) {
	req := planner.Request{Cuts: cuts}
	if stockLength != nil {
		if err := cutting.ValidateStockLength(*stockLength); err != nil {
			writePlanError(w, err)
			return
		}
		req.StockLength = *stockLength
	}
	if strings.TrimSpace(rawPolicy) != "" {
		policy, err := cutting.ParsePolicy(rawPolicy)
		if err != nil {
			writePlanError(w, err)
			return
		}
		req.Policy = policy
	}

	res, err := h.planner.Plan(ctx, req)
	if err != nil {
		writePlanError(w, err)
		return
	}

	resp := newPlanResponse(res.StoredPlan)
	resp.CalculationTimeMs = res.Elapsed.Milliseconds()
	w.Header().Set("Location", "/api/plans/"+res.ID)
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	stored, ok := h.lookupPlan(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newPlanResponse(stored))
}

func (h *Handler) handleExportExcel(w http.ResponseWriter, r *http.Request) {
	h.exportPlan(w, r, xlsxContentType, "xlsx", export.WriteExcel)
}

func (h *Handler) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	h.exportPlan(w, r, "application/pdf", "pdf", export.WritePDF)
}

func (h *Handler) exportPlan(w http.ResponseWriter, r *http.Request, contentType, ext string, write func(io.Writer, cutting.Plan) error) {
	stored, ok := h.lookupPlan(w, r)
	if !ok {
		return
	}

	buf := &bytes.Buffer{}
	if err := write(buf, stored.Plan); err != nil {
		writeInternalError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "cutting-plan-"+stored.ID+"."+ext))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) lookupPlan(w http.ResponseWriter, r *http.Request) (storage.StoredPlan, bool) {
	id := r.PathValue("id")
	stored, err := h.planner.Get(id)
	if err != nil {
		if errors.Is(err, storage.ErrPlanNotFound) {
			writeError(w, http.StatusNotFound, "Plan not found", fmt.Sprintf("no plan with id %q", id), "Plans expire after a while; submit the cut list again")
			return storage.StoredPlan{}, false
		}
		writeInternalError(w, err)
		return storage.StoredPlan{}, false
	}
	return stored, true
}

func (h *Handler) settingsResponse(settings storage.Settings, message string) settingsResponse {
	return settingsResponse{
		StockLength: settings.StockLength,
		Policy:      string(settings.Policy),
		MaxCuts:     h.planner.MaxCuts(),
		UpdatedAt:   h.currentSettingsUpdatedAt(),
		Message:     message,
	}
}

func (h *Handler) currentSettingsUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.settingsUpdatedAt
}

func (h *Handler) markSettingsUpdated() {
	h.mu.Lock()
	h.settingsUpdatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type settingsRequest struct {
	StockLength float64 `json:"stockLength"`
	Policy      string  `json:"policy"`
}

type settingsResponse struct {
	StockLength float64   `json:"stockLength"`
	Policy      string    `json:"policy"`
	MaxCuts     int       `json:"maxCuts"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Message     string    `json:"message,omitempty"`
}

type planRequest struct {
	StockLength *float64  `json:"stockLength"`
	Policy      string    `json:"policy"`
	Cuts        []float64 `json:"cuts"`
	CutsText    string    `json:"cutsText"`
}

type planResponse struct {
	ID                string        `json:"id"`
	CreatedAt         time.Time     `json:"createdAt"`
	StockLength       float64       `json:"stockLength"`
	Policy            string        `json:"policy"`
	Requests          []float64     `json:"requests"`
	NormalizedCuts    []float64     `json:"normalizedCuts"`
	Bars              []cutting.Bar `json:"bars"`
	BarCount          int           `json:"barCount"`
	TotalCutLength    float64       `json:"totalCutLength"`
	TotalWaste        float64       `json:"totalWaste"`
	Utilization       float64       `json:"utilization"`
	CalculationTimeMs int64         `json:"calculationTimeMs"`
}

func newPlanResponse(stored storage.StoredPlan) planResponse {
	p := stored.Plan
	return planResponse{
		ID:             stored.ID,
		CreatedAt:      stored.CreatedAt,
		StockLength:    p.StockLength,
		Policy:         string(p.Policy),
		Requests:       p.Requests,
		NormalizedCuts: p.Cuts,
		Bars:           p.Bars,
		BarCount:       p.BarCount(),
		TotalCutLength: p.TotalCutLength(),
		TotalWaste:     p.TotalWaste,
		Utilization:    p.Utilization(),
	}
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

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
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

func writePlanError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cutting.ErrInvalidStockLength):
		writeError(w, http.StatusBadRequest, "Invalid stock length", err.Error(), "Stock length must be greater than zero")
	case errors.Is(err, cutting.ErrInvalidCutRequest):
		writeError(w, http.StatusBadRequest, "Invalid cut request", err.Error(), "Every cut length must be a positive number")
	case errors.Is(err, cutting.ErrUnknownPolicy):
		writeError(w, http.StatusBadRequest, "Invalid policy", err.Error(), "Use best-fit or first-fit")
	case errors.Is(err, input.ErrNoCuts), errors.Is(err, input.ErrInvalidQuantity), errors.Is(err, input.ErrMalformedFile):
		writeError(w, http.StatusBadRequest, "Invalid cut list", err.Error())
	case errors.Is(err, input.ErrUnsupportedFormat):
		writeError(w, http.StatusUnsupportedMediaType, "Unsupported file", err.Error(), "Upload a .csv, .txt, or .xlsx file")
	case errors.Is(err, planner.ErrTooManyCuts), errors.Is(err, input.ErrTooManyLengths):
		writeError(w, http.StatusRequestEntityTooLarge, "Batch too large", err.Error(), "Split the cut list into smaller batches")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "Request cancelled", err.Error())
	default:
		writeInternalError(w, err)
	}
}
