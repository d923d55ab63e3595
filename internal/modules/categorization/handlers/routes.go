package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers categorization routes on an /ml router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/categorize", h.HandleCategorize)
}
