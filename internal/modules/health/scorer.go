// Package health computes the composite financial health score.
package health

import (
	"math"

	"github.com/expenseoracle/oracle/internal/domain"
	"github.com/expenseoracle/oracle/pkg/formulas"
)

// Score used when there is not enough data to judge
const neutralScore = 50.0

// Volatility score for a single transaction
const singleExpenseVolatilityScore = 70.0

// Recommendation texts, appended in this order
const (
	RecLowSavings        = "Your savings rate is below 10%. Consider reducing discretionary spending."
	RecHighUtilization   = "You have used over 90% of your budget. High risk of breach."
	RecVulnerable        = "Financial health is in the 'Vulnerable' zone. Review large transactions."
	RecReadyToInvestMore = "Excellent health! You are ready to increase your investment allocations."
)

// Scorer aggregates savings rate, budget adherence and spending volatility into 0-100.
type Scorer struct{}

// NewScorer creates a new health scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Calculate scores the supplied period of spending.
// Components:
// - Savings (40%): twice the savings rate, capped at 100
// - Adherence (40%): unused budget share, penalized past 100% utilization
// - Volatility (20%): 100 minus the coefficient of variation in percent
func (s *Scorer) Calculate(expenses []domain.ExpenseRecord, monthlyBudget, income float64) domain.HealthResult {
	if len(expenses) == 0 || income <= 0 {
		return domain.HealthResult{
			Score:           neutralScore,
			Status:          domain.HealthInsufficientData,
			Recommendations: []string{},
		}
	}

	amounts := make([]float64, len(expenses))
	for i, e := range expenses {
		amounts[i] = e.AmountFloat()
	}
	spent := formulas.Sum(amounts)

	savingsRate := (income - spent) / income * 100
	savingsScore := formulas.Clamp(savingsRate*2, 0, 100)

	utilization := 100.0
	if monthlyBudget > 0 {
		utilization = spent / monthlyBudget * 100
	}
	adherenceScore := 100 - math.Min(utilization, 100)
	if utilization > 100 {
		adherenceScore = math.Max(50-(utilization-100), 0)
	}

	volatilityScore := singleExpenseVolatilityScore
	stdDev := 0.0
	if len(amounts) > 1 {
		stdDev = formulas.PopStdDev(amounts)
		mean := formulas.Mean(amounts)
		cv := 1.0
		if mean > 0 {
			cv = stdDev / mean
		}
		volatilityScore = math.Max(100-cv*100, 0)
	}

	score := savingsScore*0.4 + adherenceScore*0.4 + volatilityScore*0.2
	score = formulas.Clamp(score, 0, 100)

	return domain.HealthResult{
		Score:  formulas.Round(score, 1),
		Status: classify(score),
		Metrics: &domain.HealthMetrics{
			SavingsRatePct:       formulas.Round(savingsRate, 1),
			BudgetUtilizationPct: formulas.Round(utilization, 1),
			VolatilityIndex:      formulas.Round(stdDev, 2),
		},
		Recommendations: recommendations(score, savingsRate, utilization),
	}
}

func classify(score float64) string {
	switch {
	case score > 80:
		return domain.HealthRobust
	case score > 60:
		return domain.HealthStable
	case score > 40:
		return domain.HealthVulnerable
	default:
		return domain.HealthCritical
	}
}

func recommendations(score, savingsRate, utilization float64) []string {
	recs := make([]string, 0, 3)
	if savingsRate < 10 {
		recs = append(recs, RecLowSavings)
	}
	if utilization > 90 {
		recs = append(recs, RecHighUtilization)
	}
	if score < 50 {
		recs = append(recs, RecVulnerable)
	} else if score > 85 {
		recs = append(recs, RecReadyToInvestMore)
	}
	return recs
}
