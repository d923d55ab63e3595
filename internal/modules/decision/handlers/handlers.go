// Package handlers provides HTTP handlers for estimator outputs.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/expenseoracle/oracle/internal/domain"
	"github.com/expenseoracle/oracle/internal/modules/health"
	"github.com/rs/zerolog"
)

// EstimatorService serves per-user estimator outputs
type EstimatorService interface {
	Forecast(ctx context.Context, userID int64) (domain.ForecastResult, error)
	HealthScore(ctx context.Context, userID int64) (domain.HealthResult, error)
	Anomalies(ctx context.Context, userID int64, threshold float64) ([]domain.AnomalyFinding, error)
	Decisions(ctx context.Context, userID int64) (domain.DecisionSnapshot, error)
	FinancialContext(ctx context.Context, userID int64) (health.Assessment, error)
}

// Handler handles estimator HTTP requests
type Handler struct {
	service EstimatorService
	log     zerolog.Logger
}

// NewHandler creates a new estimator handler
func NewHandler(service EstimatorService, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "decision").Logger(),
	}
}

// ForecastResponse wraps a forecast for one user
type ForecastResponse struct {
	UserID   int64                 `json:"user_id"`
	Forecast domain.ForecastResult `json:"forecast_analysis"`
}

// AnomaliesResponse lists flagged transactions for one user
type AnomaliesResponse struct {
	Anomalies []domain.AnomalyFinding `json:"anomalies"`
	UserID    int64                   `json:"user_id"`
	Found     int                     `json:"anomalies_found"`
}

// HealthScoreResponse is the health score with its financial context
type HealthScoreResponse struct {
	domain.HealthResult
	Context health.Assessment `json:"financial_context"`
	UserID  int64             `json:"user_id"`
}

// HandleGetForecast handles GET /api/ml/forecast?user_id=
func (h *Handler) HandleGetForecast(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	result, err := h.service.Forecast(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("Failed to forecast spending")
		http.Error(w, "Failed to forecast spending", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, ForecastResponse{UserID: userID, Forecast: result})
}

// HandleGetAnomalies handles GET /api/ml/anomalies?user_id=&threshold=
func (h *Handler) HandleGetAnomalies(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	threshold := 0.0
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			http.Error(w, "threshold must be a positive number", http.StatusBadRequest)
			return
		}
		threshold = parsed
	}

	anomalies, err := h.service.Anomalies(r.Context(), userID, threshold)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("Failed to detect anomalies")
		http.Error(w, "Failed to detect anomalies", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, AnomaliesResponse{
		UserID:    userID,
		Found:     len(anomalies),
		Anomalies: anomalies,
	})
}

// HandleGetHealthScore handles GET /api/ml/health-score?user_id=
func (h *Handler) HandleGetHealthScore(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	result, err := h.service.HealthScore(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("Failed to score financial health")
		http.Error(w, "Failed to score financial health", http.StatusInternalServerError)
		return
	}

	assessment, err := h.service.FinancialContext(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("Failed to assess financial context")
		http.Error(w, "Failed to score financial health", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, HealthScoreResponse{
		HealthResult: result,
		Context:      assessment,
		UserID:       userID,
	})
}

// HandleGetDecisions handles GET /api/ml/decisions?user_id=
func (h *Handler) HandleGetDecisions(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	snapshot, err := h.service.Decisions(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("Failed to evaluate decisions")
		http.Error(w, "Failed to evaluate decisions", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return 0, false
	}
	return userID, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
