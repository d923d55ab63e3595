package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers investment routes on an /ml router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/investment-simulator", h.HandleSimulate)
	r.Get("/investment-distributions", h.HandleDistributions)
}
