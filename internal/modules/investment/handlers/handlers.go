// Package handlers provides HTTP handlers for the investment simulator.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/expenseoracle/oracle/internal/domain"
	"github.com/expenseoracle/oracle/internal/modules/investment"
	"github.com/rs/zerolog"
)

// Request bounds for the simulator
const (
	maxYears       = 50
	maxIterations  = 100000
	maxCurvePoints = 500
)

// Simulator runs portfolio simulations
type Simulator interface {
	SimulateMonteCarlo(principal float64, years, iterations int) map[domain.RiskTolerance]investment.Simulation
	Distributions(points int) map[domain.RiskTolerance][]investment.CurvePoint
}

// Handler handles investment HTTP requests
type Handler struct {
	simulator  Simulator
	iterations int
	log        zerolog.Logger
}

// NewHandler creates a new investment handler. iterations is the default simulation size.
func NewHandler(simulator Simulator, iterations int, log zerolog.Logger) *Handler {
	if iterations <= 0 {
		iterations = investment.DefaultIterations
	}
	return &Handler{
		simulator:  simulator,
		iterations: iterations,
		log:        log.With().Str("handler", "investment").Logger(),
	}
}

// SimulationResponse holds one simulation per model portfolio
type SimulationResponse struct {
	Simulations map[domain.RiskTolerance]investment.Simulation `json:"simulations"`
	Principal   float64                                        `json:"principal"`
	Years       int                                            `json:"years"`
	Iterations  int                                            `json:"iterations"`
}

// HandleSimulate handles GET /api/ml/investment-simulator?principal=&years=&iterations=
func (h *Handler) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	principal, err := strconv.ParseFloat(query.Get("principal"), 64)
	if err != nil || principal < 0 {
		http.Error(w, "principal must be a non-negative number", http.StatusBadRequest)
		return
	}

	years, ok := intParam(query.Get("years"), investment.DefaultYears, 1, maxYears)
	if !ok {
		http.Error(w, "years must be between 1 and 50", http.StatusBadRequest)
		return
	}

	iterations, ok := intParam(query.Get("iterations"), h.iterations, 1, maxIterations)
	if !ok {
		http.Error(w, "iterations must be between 1 and 100000", http.StatusBadRequest)
		return
	}

	h.log.Debug().
		Float64("principal", principal).
		Int("years", years).
		Int("iterations", iterations).
		Msg("Running Monte Carlo simulation")

	h.writeJSON(w, http.StatusOK, SimulationResponse{
		Principal:   principal,
		Years:       years,
		Iterations:  iterations,
		Simulations: h.simulator.SimulateMonteCarlo(principal, years, iterations),
	})
}

// HandleDistributions handles GET /api/ml/investment-distributions?points=
func (h *Handler) HandleDistributions(w http.ResponseWriter, r *http.Request) {
	points, ok := intParam(r.URL.Query().Get("points"), investment.DefaultCurvePoints, 2, maxCurvePoints)
	if !ok {
		http.Error(w, "points must be between 2 and 500", http.StatusBadRequest)
		return
	}

	h.writeJSON(w, http.StatusOK, h.simulator.Distributions(points))
}

// intParam parses an optional bounded integer query parameter
func intParam(raw string, def, lo, hi int) (int, bool) {
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		return 0, false
	}
	return v, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
