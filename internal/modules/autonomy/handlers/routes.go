package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers autonomy routes on an /ml router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/autonomous-actions", h.HandleGetActions)
	r.Post("/autonomy/run", h.HandleRunAutonomy)
}
