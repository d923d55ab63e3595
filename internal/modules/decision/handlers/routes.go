package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers estimator routes on an /ml router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/forecast", h.HandleGetForecast)
	r.Get("/anomalies", h.HandleGetAnomalies)
	r.Get("/health-score", h.HandleGetHealthScore)
	r.Get("/decisions", h.HandleGetDecisions)
}
