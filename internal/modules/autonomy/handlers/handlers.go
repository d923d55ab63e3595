// Package handlers provides HTTP handlers for autonomous actions.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/expenseoracle/oracle/internal/domain"
	"github.com/expenseoracle/oracle/internal/modules/autonomy"
	"github.com/expenseoracle/oracle/internal/services"
	"github.com/rs/zerolog"
)

// AutonomyService serves ranked actions and runs the autonomy loop
type AutonomyService interface {
	LoadUserData(ctx context.Context, userID int64) (services.UserData, error)
	AutonomousActions(ctx context.Context, userID int64) ([]domain.Action, error)
	RunAutonomy(ctx context.Context, userID int64) (autonomy.RunResult, error)
}

// Handler handles autonomy HTTP requests
type Handler struct {
	service AutonomyService
	log     zerolog.Logger
}

// NewHandler creates a new autonomy handler
func NewHandler(service AutonomyService, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "autonomy").Logger(),
	}
}

// ActionsResponse lists ranked actions for one user
type ActionsResponse struct {
	Actions     []domain.Action `json:"autonomous_actions"`
	UserID      int64           `json:"user_id"`
	TotalBudget float64         `json:"current_total_budget"`
}

// RunResponse is the outcome of a triggered autonomy run
type RunResponse struct {
	autonomy.RunResult
	UserID int64 `json:"user_id"`
}

// HandleGetActions handles GET /api/ml/autonomous-actions?user_id=
func (h *Handler) HandleGetActions(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	data, err := h.service.LoadUserData(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("Failed to load user data")
		http.Error(w, "Failed to load user data", http.StatusInternalServerError)
		return
	}

	actions, err := h.service.AutonomousActions(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("Failed to generate actions")
		http.Error(w, "Failed to generate actions", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, ActionsResponse{
		UserID:      userID,
		TotalBudget: data.MonthlyBudget,
		Actions:     actions,
	})
}

// HandleRunAutonomy handles POST /api/ml/autonomy/run?user_id=
func (h *Handler) HandleRunAutonomy(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	result, err := h.service.RunAutonomy(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("Autonomy run failed")
		http.Error(w, "Autonomy run failed", http.StatusInternalServerError)
		return
	}

	h.log.Info().Int64("user_id", userID).Int("actions", len(result.Actions)).Msg("Autonomy run triggered")
	h.writeJSON(w, http.StatusOK, RunResponse{RunResult: result, UserID: userID})
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
