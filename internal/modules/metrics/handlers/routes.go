package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers metrics routes on an /ml router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/model-metrics", h.HandleGetModelMetrics)
	r.Get("/analytics", h.HandleGetAnalytics)
}
