// Package domain provides the core models shared by the decision pipeline.
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RiskTolerance selects one of the fixed model portfolios
type RiskTolerance string

const (
	RiskConservative RiskTolerance = "Conservative"
	RiskModerate     RiskTolerance = "Moderate"
	RiskAggressive   RiskTolerance = "Aggressive"
)

// RiskTolerances lists every tolerance in presentation order
var RiskTolerances = []RiskTolerance{RiskConservative, RiskModerate, RiskAggressive}

// ParseRiskTolerance resolves a case-insensitive name; unknown values fall back to Moderate.
func ParseRiskTolerance(s string) RiskTolerance {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "conservative":
		return RiskConservative
	case "aggressive":
		return RiskAggressive
	default:
		return RiskModerate
	}
}

// ExpenseRecord is a single spend as produced by the storage layer.
// Records are never modified by the pipeline.
type ExpenseRecord struct {
	CreatedAt time.Time       `json:"created_at"`
	Category  *string         `json:"category"`
	Title     string          `json:"title"`
	Amount    decimal.Decimal `json:"amount"`
	ID        int64           `json:"id"`
}

// AmountFloat returns the amount as float64 for statistical work.
func (e ExpenseRecord) AmountFloat() float64 {
	return e.Amount.InexactFloat64()
}

// MerchantKey is the case-normalized title used to group a merchant's history.
func (e ExpenseRecord) MerchantKey() string {
	return strings.ToLower(strings.TrimSpace(e.Title))
}

// BudgetLine is a per-category monthly limit
type BudgetLine struct {
	Category    string          `json:"category"`
	LimitAmount decimal.Decimal `json:"limit_amount"`
}

// Profile carries the per-invocation financial profile of a user.
type Profile struct {
	RiskTolerance  RiskTolerance `json:"risk_tolerance"`
	Income         float64       `json:"income"`
	MonthlyBudget  float64       `json:"monthly_budget"`
	MonthlySavings float64       `json:"monthly_savings"`
}

// Default profile values used when no profile is stored for a user
const (
	DefaultIncome  = 5000.0
	DefaultSavings = 1000.0
)

// DefaultProfile is the documented fallback when the profile repository has nothing.
func DefaultProfile() Profile {
	return Profile{
		Income:         DefaultIncome,
		MonthlySavings: DefaultSavings,
		RiskTolerance:  RiskModerate,
	}
}

// Trend labels for spending momentum
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// ForecastResult is the next-month spend estimate
type ForecastResult struct {
	Trend                  string  `json:"trend"`
	AnnualGrowthProjection string  `json:"annual_growth_projection"`
	MonthlyForecast        float64 `json:"monthly_forecast"`
	ConfidenceLevel        float64 `json:"confidence_level"`
}

// AnomalyFinding is a transaction that deviates from its baseline.
// Severity is carried by ZScore only.
type AnomalyFinding struct {
	Title     string  `json:"title"`
	Reason    string  `json:"reason"`
	ExpenseID int64   `json:"expense_id"`
	Amount    float64 `json:"amount"`
	ZScore    float64 `json:"z_score"`
}

// Health statuses
const (
	HealthRobust           = "Robust"
	HealthStable           = "Stable"
	HealthVulnerable       = "Vulnerable"
	HealthCritical         = "Critical"
	HealthInsufficientData = "Insufficient Data"
)

// HealthMetrics are the raw inputs behind a health score
type HealthMetrics struct {
	SavingsRatePct       float64 `json:"savings_rate_pct"`
	BudgetUtilizationPct float64 `json:"budget_utilization_pct"`
	VolatilityIndex      float64 `json:"volatility_index"`
}

// HealthResult is the composite financial health score
type HealthResult struct {
	Metrics         *HealthMetrics `json:"metrics,omitempty"`
	Status          string         `json:"status"`
	Recommendations []string       `json:"recommendations"`
	Score           float64        `json:"score"`
}

// AllocationAdvice is the surplus-allocation recommendation.
// When there is no surplus only Message and Action are set.
type AllocationAdvice struct {
	SuggestedPortfolio RiskTolerance `json:"suggested_portfolio,omitempty"`
	Message            string        `json:"message,omitempty"`
	Action             string        `json:"action"`
	SurplusAvailable   float64       `json:"surplus_available,omitempty"`
	SharpeRatio        float64       `json:"sharpe_ratio,omitempty"`
}

// HasSurplus reports whether the advice recommends investing.
func (a AllocationAdvice) HasSurplus() bool {
	return a.SuggestedPortfolio != ""
}

// DecisionSnapshot aggregates every estimator output for one evaluation.
// Nil or empty fields mean the estimator was absent or failed.
type DecisionSnapshot struct {
	Forecast    *ForecastResult   `json:"forecast"`
	Investment  *AllocationAdvice `json:"investment"`
	HealthScore *HealthResult     `json:"health_score"`
	Anomalies   []AnomalyFinding  `json:"anomalies"`
}

// MonthlyForecast returns the snapshot forecast, or 0 without one.
func (s DecisionSnapshot) MonthlyForecast() float64 {
	if s.Forecast == nil {
		return 0
	}
	return s.Forecast.MonthlyForecast
}
