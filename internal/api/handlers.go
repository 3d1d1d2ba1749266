// Package api exposes HTTP handlers for the carbon tracker.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/hlog"
	"github.com/samber/lo"

	"example.com/carbon/internal/auth"
	"example.com/carbon/internal/domain"
	"example.com/carbon/internal/emission"
	"example.com/carbon/internal/persistence"
)

const (
	maxPageSize      = 500
	maxBodyBytes     = 1 << 16
	nextCursorHeader = "X-Next-Cursor"
)

// Handler coordinates HTTP requests with the activity ledger.
type Handler struct {
	ledger   *domain.Ledger
	validate *validator.Validate
}

// NewHandler builds a Handler.
func NewHandler(ledger *domain.Ledger) *Handler {
	return &Handler{ledger: ledger, validate: newValidator()}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", root)
	mux.HandleFunc("/healthz", healthz)
	mux.HandleFunc("/api/activities", h.activities)
	mux.HandleFunc("/api/stats", h.stats)
	mux.HandleFunc("/api/rates", h.rates)
	mux.HandleFunc("/api/estimate", h.estimate)
}

func root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not_found", "no route for "+r.URL.Path)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Carbon Tracker Backend is Running!"))
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) activities(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createActivity(w, r)
	case http.MethodGet:
		h.listActivities(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) createActivity(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	var req CreateActivityRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", describeViolations(err))
		return
	}

	activity, err := h.ledger.Insert(r.Context(), domain.InsertActivityInput{
		UserID:   claims.Subject,
		Category: req.Category,
		Type:     req.Type,
		Value:    string(*req.Value),
	})
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, "validation_failed", verr.Error())
			return
		}
		hlog.FromRequest(r).Error().Err(err).Str("user_id", claims.Subject).Msg("failed to save activity")
		writeError(w, http.StatusInternalServerError, "server_error", "failed to save activity")
		return
	}

	hlog.FromRequest(r).Info().
		Str("activity_id", activity.ID).
		Str("category", activity.Category).
		Float64("carbon_emission", activity.CarbonEmission).
		Msg("activity logged")
	writeJSON(w, http.StatusCreated, toActivityView(*activity))
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	page := domain.Page{}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			if parsed > maxPageSize {
				parsed = maxPageSize
			}
			page.Limit = parsed
		}
	}

	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}
	page.Cursor = cursor

	activities, next, err := h.ledger.ListByUser(r.Context(), claims.Subject, page)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("user_id", claims.Subject).Msg("failed to fetch activities")
		writeError(w, http.StatusInternalServerError, "server_error", "failed to fetch activities")
		return
	}

	if token := persistence.EncodeCursor(next); token != "" {
		w.Header().Set(nextCursorHeader, token)
	}
	writeJSON(w, http.StatusOK, lo.Map(activities, func(a domain.Activity, _ int) ActivityView {
		return toActivityView(a)
	}))
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	stats, err := h.ledger.AggregateByUser(r.Context(), claims.Subject)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("user_id", claims.Subject).Msg("failed to fetch stats")
		writeError(w, http.StatusInternalServerError, "server_error", "failed to fetch stats")
		return
	}

	writeJSON(w, http.StatusOK, StatsResponse{Total: stats.Total, ByCategory: stats.ByCategory})
}

func (h *Handler) rates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	writeJSON(w, http.StatusOK, h.ledger.Estimator().Rates())
}

func (h *Handler) estimate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	query := r.URL.Query()
	category := query.Get("category")
	value := query.Get("value")
	if strings.TrimSpace(category) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "category is required")
		return
	}
	if strings.TrimSpace(value) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "value is required")
		return
	}

	quantity, parsed := emission.ParseQuantity(value)
	if parsed && quantity > emission.MaxQuantity {
		writeError(w, http.StatusBadRequest, "validation_failed", "value must not exceed 1e9")
		return
	}

	kind := query.Get("type")
	if strings.TrimSpace(kind) == "" {
		kind = emission.DefaultType
	}

	estimator := h.ledger.Estimator()
	resp := EstimateResponse{
		Category:       category,
		Type:           kind,
		Value:          value,
		CarbonEmission: estimator.Estimate(category, kind, value),
	}
	if rate, ok := estimator.Resolve(category, kind); ok {
		resp.Rate = &rate
		resp.Unit = estimator.Rates()[emission.NormalizeCategory(category)].Unit
		resp.Recognized = parsed
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

// writeJSON encodes payload fully before writing the status line.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(payload); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body.Bytes())
}
