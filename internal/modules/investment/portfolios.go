package investment

import (
	"fmt"
	"math"

	"github.com/expenseoracle/oracle/internal/domain"
)

// Portfolio is a fixed model portfolio with normally distributed annual returns
type Portfolio struct {
	Composition string
	Mu          float64 // expected annual return
	Sigma       float64 // annual volatility
	RiskFree    float64
}

// Portfolios are the model portfolios offered for each risk tolerance
var Portfolios = map[domain.RiskTolerance]Portfolio{
	domain.RiskConservative: {Mu: 0.05, Sigma: 0.03, RiskFree: 0.03, Composition: "80% Bonds, 20% Stocks"},
	domain.RiskModerate:     {Mu: 0.08, Sigma: 0.12, RiskFree: 0.03, Composition: "50% Bonds, 50% Stocks"},
	domain.RiskAggressive:   {Mu: 0.12, Sigma: 0.20, RiskFree: 0.03, Composition: "20% Bonds, 80% Stocks"},
}

// PortfolioFor returns the portfolio of a tolerance; unknown tolerances get Moderate.
func PortfolioFor(tolerance domain.RiskTolerance) (domain.RiskTolerance, Portfolio) {
	if p, ok := Portfolios[tolerance]; ok {
		return tolerance, p
	}
	return domain.RiskModerate, Portfolios[domain.RiskModerate]
}

// SharpeRatio is (μ − rf) / σ, or 0 for a riskless portfolio
func (p Portfolio) SharpeRatio() float64 {
	if p.Sigma <= 0 {
		return 0
	}
	return (p.Mu - p.RiskFree) / p.Sigma
}

// RiskBand buckets volatility into a human label
func (p Portfolio) RiskBand() string {
	switch {
	case p.Sigma < 0.05:
		return "Low Risk"
	case p.Sigma < 0.15:
		return "Moderate Risk"
	default:
		return "High Risk"
	}
}

// ExpectedReturnLabel formats μ as a whole percentage, e.g. "8%"
func (p Portfolio) ExpectedReturnLabel() string {
	return pct(p.Mu)
}

// VolatilityLabel formats σ as a whole percentage
func (p Portfolio) VolatilityLabel() string {
	return pct(p.Sigma)
}

func pct(v float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(v*100)))
}
