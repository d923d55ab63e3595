// Package investment simulates model portfolios and recommends surplus allocation.
package investment

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/expenseoracle/oracle/internal/domain"
	"github.com/expenseoracle/oracle/pkg/formulas"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Simulation defaults
const (
	DefaultIterations  = 1000
	DefaultYears       = 1
	DefaultCurvePoints = 50
)

// Advice texts when there is nothing to invest
const (
	NoSurplusMessage = "Focus on emergency savings first."
	NoSurplusAction  = "Save 100% of future surplus."
)

// Projection summarizes simulated final values
type Projection struct {
	Volatility   string  `json:"volatility"`
	Mean         float64 `json:"mean"`
	P10WorstCase float64 `json:"p10_worst_case"`
	P90BestCase  float64 `json:"p90_best_case"`
}

// Simulation is the Monte Carlo outcome of one portfolio
type Simulation struct {
	Composition    string     `json:"composition"`
	ExpectedReturn string     `json:"expected_return"`
	RiskBand       string     `json:"risk_band"`
	Projection     Projection `json:"projection"`
	SharpeRatio    float64    `json:"sharpe_ratio"`
}

// CurvePoint is one point of a density series
type CurvePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SourceFactory returns the random source for one simulation stream.
// Each portfolio draws from its own stream.
type SourceFactory func(stream uint64) rand.Source

// Optimizer runs the Monte Carlo simulation and produces allocation advice.
// It is safe for concurrent use.
type Optimizer struct {
	newSource SourceFactory
}

// NewOptimizer creates an optimizer seeded freshly on every simulation
func NewOptimizer() *Optimizer {
	return &Optimizer{
		newSource: func(stream uint64) rand.Source {
			return rand.NewPCG(rand.Uint64(), stream)
		},
	}
}

// NewSeededOptimizer creates an optimizer whose simulations are reproducible
func NewSeededOptimizer(seed uint64) *Optimizer {
	return &Optimizer{
		newSource: func(stream uint64) rand.Source {
			return rand.NewPCG(seed, stream)
		},
	}
}

// NewOptimizerWithSource creates an optimizer drawing from a custom source factory
func NewOptimizerWithSource(factory SourceFactory) *Optimizer {
	return &Optimizer{newSource: factory}
}

// SimulateMonteCarlo projects principal over years for every model portfolio.
// Each iteration draws one annual return r ~ N(μ, σ) and compounds principal × (1+r)^years.
func (o *Optimizer) SimulateMonteCarlo(principal float64, years, iterations int) map[domain.RiskTolerance]Simulation {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	if years <= 0 {
		years = DefaultYears
	}

	results := make(map[domain.RiskTolerance]Simulation, len(domain.RiskTolerances))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i, tolerance := range domain.RiskTolerances {
		wg.Add(1)
		go func(stream uint64, tolerance domain.RiskTolerance) {
			defer wg.Done()
			sim := o.simulate(Portfolios[tolerance], principal, years, iterations, o.newSource(stream))

			mu.Lock()
			results[tolerance] = sim
			mu.Unlock()
		}(uint64(i), tolerance)
	}
	wg.Wait()

	return results
}

func (o *Optimizer) simulate(p Portfolio, principal float64, years, iterations int, src rand.Source) Simulation {
	dist := distuv.Normal{Mu: p.Mu, Sigma: p.Sigma, Src: src}

	finals := make([]float64, iterations)
	for i := range finals {
		finals[i] = principal * compound(1+dist.Rand(), years)
	}

	return Simulation{
		Composition:    p.Composition,
		ExpectedReturn: p.ExpectedReturnLabel(),
		SharpeRatio:    formulas.Round(p.SharpeRatio(), 2),
		RiskBand:       p.RiskBand(),
		Projection: Projection{
			Mean:         formulas.Round(formulas.Mean(finals), 2),
			P10WorstCase: formulas.Round(formulas.Percentile(finals, 0.10), 2),
			P90BestCase:  formulas.Round(formulas.Percentile(finals, 0.90), 2),
			Volatility:   p.VolatilityLabel(),
		},
	}
}

func compound(growth float64, years int) float64 {
	out := 1.0
	for i := 0; i < years; i++ {
		out *= growth
	}
	return out
}

// SuggestAllocation recommends where to put a monthly surplus.
// Without a surplus the advice is to build emergency savings.
func (o *Optimizer) SuggestAllocation(surplus float64, tolerance domain.RiskTolerance) domain.AllocationAdvice {
	if surplus <= 0 {
		return domain.AllocationAdvice{
			Message: NoSurplusMessage,
			Action:  NoSurplusAction,
		}
	}

	tolerance, p := PortfolioFor(tolerance)
	surplus = formulas.Round(surplus, 2)

	return domain.AllocationAdvice{
		SurplusAvailable:   surplus,
		SuggestedPortfolio: tolerance,
		SharpeRatio:        formulas.Round(p.SharpeRatio(), 2),
		Action: fmt.Sprintf("Automatically allocate $%.2f into your %s portfolio for a target %s return.",
			surplus, tolerance, p.ExpectedReturnLabel()),
	}
}

// Distribution returns the normal density of a portfolio's annual return over μ ± 3σ.
func (o *Optimizer) Distribution(tolerance domain.RiskTolerance, points int) []CurvePoint {
	if points < 2 {
		points = DefaultCurvePoints
	}
	_, p := PortfolioFor(tolerance)
	dist := distuv.Normal{Mu: p.Mu, Sigma: p.Sigma}

	xs := floats.Span(make([]float64, points), p.Mu-3*p.Sigma, p.Mu+3*p.Sigma)
	curve := make([]CurvePoint, points)
	for i, x := range xs {
		curve[i] = CurvePoint{
			X: formulas.Round(x, 4),
			Y: formulas.Round(dist.Prob(x), 2),
		}
	}
	return curve
}

// Distributions returns the density curve of every model portfolio
func (o *Optimizer) Distributions(points int) map[domain.RiskTolerance][]CurvePoint {
	out := make(map[domain.RiskTolerance][]CurvePoint, len(domain.RiskTolerances))
	for _, tolerance := range domain.RiskTolerances {
		out[tolerance] = o.Distribution(tolerance, points)
	}
	return out
}
