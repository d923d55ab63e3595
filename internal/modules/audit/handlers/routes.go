package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers audit routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/autonomy/audit", h.HandleListAudit)
}
