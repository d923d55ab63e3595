// Package handlers provides HTTP handlers for model quality and analytics series.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/expenseoracle/oracle/internal/domain"
	"github.com/expenseoracle/oracle/internal/modules/forecasting"
	"github.com/expenseoracle/oracle/internal/modules/health"
	"github.com/expenseoracle/oracle/internal/modules/investment"
	"github.com/expenseoracle/oracle/internal/modules/metrics"
	"github.com/expenseoracle/oracle/internal/services"
	"github.com/rs/zerolog"
)

// UserDataLoader loads a user's expenses
type UserDataLoader interface {
	LoadUserData(ctx context.Context, userID int64) (services.UserData, error)
}

// DistributionProvider produces portfolio return densities
type DistributionProvider interface {
	Distributions(points int) map[domain.RiskTolerance][]investment.CurvePoint
}

// Inflation projection horizon bounds, in months
const (
	defaultProjectionMonths = 6
	maxProjectionMonths     = 24
)

// Handler handles metrics HTTP requests
type Handler struct {
	loader        UserDataLoader
	manager       *metrics.Manager
	distributions DistributionProvider
	log           zerolog.Logger
}

// NewHandler creates a new metrics handler
func NewHandler(loader UserDataLoader, manager *metrics.Manager, distributions DistributionProvider, log zerolog.Logger) *Handler {
	return &Handler{
		loader:        loader,
		manager:       manager,
		distributions: distributions,
		log:           log.With().Str("handler", "metrics").Logger(),
	}
}

// AnalyticsSeries are the chart series for one user
type AnalyticsSeries struct {
	ForecastVsActual   []metrics.SeriesPoint                            `json:"forecast_vs_actual"`
	WealthDistribution map[domain.RiskTolerance][]investment.CurvePoint `json:"wealth_probability_distribution"`
	// Latest monthly spend compounded at the default inflation rate
	InflationProjection []float64 `json:"inflation_projection"`
}

// AnalyticsResponse wraps the analytics series of one user
type AnalyticsResponse struct {
	Series AnalyticsSeries `json:"series"`
	UserID int64           `json:"user_id"`
}

// HandleGetModelMetrics handles GET /api/ml/model-metrics?user_id=
func (h *Handler) HandleGetModelMetrics(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	data, err := h.loader.LoadUserData(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("Failed to load user data")
		http.Error(w, "Failed to load user data", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, h.manager.CalculatePerformance(data.Expenses))
}

// HandleGetAnalytics handles GET /api/ml/analytics?user_id=&months=
func (h *Handler) HandleGetAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	months := defaultProjectionMonths
	if raw := r.URL.Query().Get("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxProjectionMonths {
			http.Error(w, "months must be between 1 and 24", http.StatusBadRequest)
			return
		}
		months = parsed
	}

	data, err := h.loader.LoadUserData(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("Failed to load user data")
		http.Error(w, "Failed to load user data", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, AnalyticsResponse{
		UserID: userID,
		Series: AnalyticsSeries{
			ForecastVsActual:    h.manager.ForecastVsActual(data.Expenses),
			WealthDistribution:  h.distributions.Distributions(investment.DefaultCurvePoints),
			InflationProjection: health.ProjectInflation(latestMonthlySpend(data.Expenses), health.DefaultInflationRate, months),
		},
	})
}

// latestMonthlySpend is the total of the most recent month with expenses, or 0
func latestMonthlySpend(expenses []domain.ExpenseRecord) float64 {
	totals := forecasting.MonthlyTotals(expenses)
	if len(totals) == 0 {
		return 0
	}
	return totals[len(totals)-1].Total.InexactFloat64()
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
