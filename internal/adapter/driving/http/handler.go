package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/fittrack-app/fittrack/internal/application"
)

// defaultListLimit bounds session and weight history responses when the
// client does not pass an explicit limit.
const defaultListLimit = 50

// Handler is the HTTP driving adapter that serves the REST API. The server
// tracks a single configured owner, so no endpoint carries a user ID.
type Handler struct {
	dataSvc *application.DataService
	syncSvc *application.SyncService
	monitor onlineReporter
	ownerID string
	logger  *slog.Logger
}

// onlineReporter is the slice of the connectivity monitor the handler needs.
type onlineReporter interface {
	Online() bool
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	dataSvc *application.DataService,
	syncSvc *application.SyncService,
	monitor onlineReporter,
	ownerID string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		dataSvc: dataSvc,
		syncSvc: syncSvc,
		monitor: monitor,
		ownerID: ownerID,
		logger:  logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/profile", h.GetProfile)
	mux.HandleFunc("PUT /api/v1/profile", h.SaveProfile)
	mux.HandleFunc("GET /api/v1/sessions", h.ListSessions)
	mux.HandleFunc("POST /api/v1/sessions", h.AddSession)
	mux.HandleFunc("GET /api/v1/weights", h.ListWeights)
	mux.HandleFunc("POST /api/v1/weights", h.AddWeight)
	mux.HandleFunc("GET /api/v1/stats", h.GetStats)
	mux.HandleFunc("GET /api/v1/weather/{city}", h.GetWeather)
	mux.HandleFunc("GET /api/v1/sync/status", h.SyncStatus)
	mux.HandleFunc("POST /api/v1/sync", h.TriggerSync)
	mux.HandleFunc("DELETE /api/v1/data", h.ClearData)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// GetProfile returns the owner's profile with its freshness.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	snap, err := h.dataSvc.Profile(r.Context(), h.ownerID)
	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}
		h.logger.Error("failed to get profile", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(snap.Value, snap.Freshness))
}

// SaveProfile replaces the owner's profile. Offline saves succeed locally
// and are queued for sync.
func (h *Handler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var req SaveProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DisplayName == "" {
		writeError(w, http.StatusBadRequest, "display_name is required")
		return
	}

	profile := req.toModel()
	if err := h.dataSvc.SaveProfile(r.Context(), h.ownerID, profile); err != nil {
		h.logger.Error("failed to save profile", "error", err)
		writeError(w, http.StatusBadGateway, "profile saved locally but the remote service is unavailable")
		return
	}

	snap, err := h.dataSvc.Profile(r.Context(), h.ownerID)
	if err != nil {
		h.logger.Error("failed to reload saved profile", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(snap.Value, snap.Freshness))
}

// ListSessions returns recent activity sessions, newest first.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	snap, err := h.dataSvc.Sessions(r.Context(), h.ownerID, listLimit(r))
	if err != nil {
		h.logger.Error("failed to list sessions", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := SessionListResponse{
		Sessions:  make([]SessionResponse, 0, len(snap.Value)),
		Freshness: string(snap.Freshness),
	}
	for _, session := range snap.Value {
		resp.Sessions = append(resp.Sessions, toSessionResponse(session))
	}

	writeJSON(w, http.StatusOK, resp)
}

// AddSession logs a workout.
func (h *Handler) AddSession(w http.ResponseWriter, r *http.Request) {
	var req AddSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Activity == "" {
		writeError(w, http.StatusBadRequest, "activity is required")
		return
	}
	if req.DurationMin <= 0 {
		writeError(w, http.StatusBadRequest, "duration_min must be positive")
		return
	}

	session, err := h.dataSvc.AddSession(r.Context(), h.ownerID, req.toModel())
	if err != nil {
		h.logger.Error("failed to add session", "error", err)
		writeError(w, http.StatusBadGateway, "session saved locally but the remote service is unavailable")
		return
	}

	writeJSON(w, http.StatusCreated, toSessionResponse(session))
}

// ListWeights returns recent weight log entries, newest first.
func (h *Handler) ListWeights(w http.ResponseWriter, r *http.Request) {
	snap, err := h.dataSvc.WeightHistory(r.Context(), h.ownerID, listLimit(r))
	if err != nil {
		h.logger.Error("failed to list weight history", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := WeightListResponse{
		Entries:   make([]WeightResponse, 0, len(snap.Value)),
		Freshness: string(snap.Freshness),
	}
	for _, entry := range snap.Value {
		resp.Entries = append(resp.Entries, toWeightResponse(entry))
	}

	writeJSON(w, http.StatusOK, resp)
}

// AddWeight logs a weight entry.
func (h *Handler) AddWeight(w http.ResponseWriter, r *http.Request) {
	var req AddWeightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.WeightKg <= 0 {
		writeError(w, http.StatusBadRequest, "weight_kg must be positive")
		return
	}

	entry, err := h.dataSvc.AddWeight(r.Context(), h.ownerID, req.WeightKg, req.Notes)
	if err != nil {
		h.logger.Error("failed to add weight entry", "error", err)
		writeError(w, http.StatusBadGateway, "weight entry saved locally but the remote service is unavailable")
		return
	}

	writeJSON(w, http.StatusCreated, toWeightResponse(entry))
}

// GetStats returns the aggregated activity summary.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	snap, err := h.dataSvc.Stats(r.Context(), h.ownerID)
	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			writeError(w, http.StatusNotFound, "stats not available")
			return
		}
		h.logger.Error("failed to get stats", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toStatsResponse(snap.Value, snap.Freshness))
}

// GetWeather returns current conditions for the city in the path.
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	city := r.PathValue("city")

	snap, err := h.dataSvc.Weather(r.Context(), city)
	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			writeError(w, http.StatusNotFound, "weather not available")
			return
		}
		h.logger.Error("failed to get weather", "city", city, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toWeatherResponse(snap.Value, snap.Freshness))
}

// SyncStatus reports connectivity, pending queue depth, and cache health.
func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SyncStatusResponse{
		Online:        h.monitor.Online(),
		PendingItems:  h.dataSvc.PendingSyncCount(r.Context()),
		CacheDegraded: h.dataSvc.CacheDegraded(),
	})
}

// TriggerSync drains the sync queue immediately and reports how many queued
// mutations were applied.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	applied, err := h.syncSvc.SyncNow(r.Context())
	if err != nil {
		h.logger.Error("manual sync failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, SyncResponse{Applied: applied})
}

// ClearData wipes all locally cached records, including queued mutations.
func (h *Handler) ClearData(w http.ResponseWriter, r *http.Request) {
	if err := h.dataSvc.ClearLocalData(r.Context()); err != nil {
		h.logger.Error("failed to clear local data", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// listLimit parses the optional ?limit query parameter.
func listLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultListLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return defaultListLimit
	}
	return limit
}
