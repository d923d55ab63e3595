// Package handlers provides HTTP handlers for merchant categorization.
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/expenseoracle/oracle/internal/modules/categorization"
	"github.com/rs/zerolog"
)

// maxBatch limits how many titles one request may categorize
const maxBatch = 500

// Categorizer guesses merchant categories
type Categorizer interface {
	Categorize(title string) categorization.Result
}

// Handler handles categorization HTTP requests
type Handler struct {
	categorizer Categorizer
	log         zerolog.Logger
}

// NewHandler creates a new categorization handler
func NewHandler(categorizer Categorizer, log zerolog.Logger) *Handler {
	return &Handler{
		categorizer: categorizer,
		log:         log.With().Str("handler", "categorization").Logger(),
	}
}

// CategorizeRequest carries one title or a batch of titles
type CategorizeRequest struct {
	Title  string   `json:"title"`
	Titles []string `json:"titles"`
}

// CategorizedTitle is the guess for one title
type CategorizedTitle struct {
	Title string `json:"title"`
	categorization.Result
}

// CategorizeResponse lists guesses in request order
type CategorizeResponse struct {
	Results []CategorizedTitle `json:"results"`
}

// HandleCategorize handles POST /api/ml/categorize
func (h *Handler) HandleCategorize(w http.ResponseWriter, r *http.Request) {
	var req CategorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	titles := req.Titles
	if strings.TrimSpace(req.Title) != "" {
		titles = append([]string{req.Title}, titles...)
	}
	if len(titles) == 0 {
		http.Error(w, "title or titles is required", http.StatusBadRequest)
		return
	}
	if len(titles) > maxBatch {
		http.Error(w, "too many titles", http.StatusBadRequest)
		return
	}

	results := make([]CategorizedTitle, 0, len(titles))
	for _, title := range titles {
		results = append(results, CategorizedTitle{Title: title, Result: h.categorizer.Categorize(title)})
	}

	h.writeJSON(w, http.StatusOK, CategorizeResponse{Results: results})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
