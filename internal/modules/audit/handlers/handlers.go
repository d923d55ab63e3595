// Package handlers provides HTTP handlers for the autonomous action audit trail.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/expenseoracle/oracle/internal/domain"
	"github.com/rs/zerolog"
)

// Listing bounds for the audit trail
const (
	defaultLimit = 50
	maxLimit     = 500
)

// AuditLister reads the most recent audit records
type AuditLister interface {
	ListRecent(ctx context.Context, limit int) ([]domain.AuditRecord, error)
}

// Handler handles audit HTTP requests
type Handler struct {
	lister AuditLister
	log    zerolog.Logger
}

// NewHandler creates a new audit handler
func NewHandler(lister AuditLister, log zerolog.Logger) *Handler {
	return &Handler{
		lister: lister,
		log:    log.With().Str("handler", "audit").Logger(),
	}
}

// RecordView is an audit record with its payload left as JSON
type RecordView struct {
	CreatedAt  time.Time       `json:"created_at"`
	ID         string          `json:"id"`
	ActionType string          `json:"action_type"`
	Status     string          `json:"status"`
	Payload    json.RawMessage `json:"payload"`
}

// AuditResponse lists audit records newest first
type AuditResponse struct {
	Records []RecordView `json:"records"`
	Count   int          `json:"count"`
}

// HandleListAudit handles GET /api/ml/autonomy/audit?limit=
func (h *Handler) HandleListAudit(w http.ResponseWriter, r *http.Request) {
	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxLimit {
			http.Error(w, "limit must be between 1 and 500", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	records, err := h.lister.ListRecent(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list audit records")
		http.Error(w, "Failed to list audit records", http.StatusInternalServerError)
		return
	}

	views := make([]RecordView, 0, len(records))
	for _, rec := range records {
		view := RecordView{
			CreatedAt:  rec.CreatedAt,
			ID:         rec.ID,
			ActionType: rec.ActionType,
			Status:     rec.Status,
		}
		if json.Valid(rec.Payload) {
			view.Payload = json.RawMessage(rec.Payload)
		}
		views = append(views, view)
	}

	h.writeJSON(w, http.StatusOK, AuditResponse{Records: views, Count: len(views)})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
