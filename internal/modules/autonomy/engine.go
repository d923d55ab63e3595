// Package autonomy synthesizes estimator outputs into ranked, explained actions
// and runs the simulated execution loop.
package autonomy

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/expenseoracle/oracle/internal/domain"
	"github.com/expenseoracle/oracle/internal/modules/decision"
	"github.com/expenseoracle/oracle/internal/modules/suggestions"
	"github.com/expenseoracle/oracle/pkg/formulas"
)

// Priorities and confidence thresholds per action type
const (
	priorityInvestHealthy  = 0.85
	priorityInvest         = 0.60
	priorityBudgetSevere   = 0.95
	priorityBudget         = 0.75
	prioritySecurity       = 0.98
	priorityLifestyle      = 0.40
	confidenceBudget       = 0.95
	confidenceSecurity     = 0.85
	confidenceLifestyle    = 0.70
	healthyScore           = 70.0
	severeOverrunShare     = 0.2
	daysInForecastedPeriod = 30
)

// PatternAnalyzer mines lifestyle suggestions
type PatternAnalyzer interface {
	Analyze(expenses []domain.ExpenseRecord) []suggestions.Suggestion
}

// EngineDeps are the estimators the engine synthesizes
type EngineDeps struct {
	Forecaster decision.ForecastEstimator
	Anomaly    decision.AnomalyEstimator
	Investment decision.InvestmentEstimator
	Health     decision.HealthEstimator
	Patterns   PatternAnalyzer
}

// Engine produces explainable actions ranked by priority.
type Engine struct {
	deps             EngineDeps
	anomalyThreshold float64
}

// NewEngine creates an autonomous engine
func NewEngine(deps EngineDeps, anomalyThreshold float64) *Engine {
	return &Engine{deps: deps, anomalyThreshold: anomalyThreshold}
}

// GenerateActions returns one budget action (investment advice or warning),
// one security alert per anomaly and one lifestyle action per suggestion,
// sorted by descending priority. Ties keep that generation order.
func (e *Engine) GenerateActions(expenses []domain.ExpenseRecord, monthlyBudget, income float64, tolerance domain.RiskTolerance) []domain.Action {
	actions := make([]domain.Action, 0)

	health := e.deps.Health.Calculate(expenses, monthlyBudget, income)
	forecast := e.deps.Forecaster.PredictNextMonth(expenses)
	surplus := monthlyBudget - forecast.MonthlyForecast

	if surplus > 0 {
		advice := e.deps.Investment.SuggestAllocation(surplus, tolerance)
		priority := priorityInvest
		if health.Score > healthyScore {
			priority = priorityInvestHealthy
		}
		utilization := formulas.SafeDiv(forecast.MonthlyForecast, monthlyBudget, 0) * 100

		actions = append(actions, domain.Action{
			Type:                domain.ActionInvestmentAdvice,
			PriorityScore:       priority,
			ConfidenceThreshold: forecast.ConfidenceLevel,
			Message:             fmt.Sprintf("Forecast shows a surplus of $%.2f this month with an %s trend.", surplus, forecast.Trend),
			Action:              advice.Action,
			Why: []string{
				fmt.Sprintf("Forecast predicts total spending will be %s%% of budget.", formatNumber(formulas.Round(utilization, 1))),
				fmt.Sprintf("Spending momentum is currently %s.", forecast.Trend),
				fmt.Sprintf("Financial health score of %s allows for allocation.", formatNumber(health.Score)),
			},
		})
	} else {
		overrun := math.Abs(surplus)
		priority := priorityBudget
		if overrun > monthlyBudget*severeOverrunShare {
			priority = priorityBudgetSevere
		}
		daysToBreach := daysInForecastedPeriod - len(expenses)
		if daysToBreach < 1 {
			daysToBreach = 1
		}

		actions = append(actions, domain.Action{
			Type:                domain.ActionBudgetWarning,
			PriorityScore:       priority,
			ConfidenceThreshold: confidenceBudget,
			Message:             fmt.Sprintf("Alert: You are on track to exceed your budget by $%.2f.", overrun),
			Action:              "Freeze non-essential 'Shopping' categories immediately.",
			Why: []string{
				fmt.Sprintf("Current spending velocity is %.2f above threshold.", overrun),
				fmt.Sprintf("Forecast indicates budget breach in approx %d days.", daysToBreach),
			},
		})
	}

	for _, a := range e.deps.Anomaly.Detect(expenses, e.anomalyThreshold) {
		actions = append(actions, domain.Action{
			Type:                domain.ActionSecurityAlert,
			PriorityScore:       prioritySecurity,
			ConfidenceThreshold: confidenceSecurity,
			Message:             fmt.Sprintf("Unusual transaction detected: %s ($%s)", a.Title, formatNumber(a.Amount)),
			Action:              "Verify transaction; we recommend temporarily locking your primary card.",
			Why: []string{
				a.Reason,
				fmt.Sprintf("Deviation score of %s exceeds the alert threshold.", formatNumber(a.ZScore)),
			},
		})
	}

	if e.deps.Patterns != nil {
		for _, s := range e.deps.Patterns.Analyze(expenses) {
			actions = append(actions, domain.Action{
				Type:                domain.ActionLifestyleOptimization,
				PriorityScore:       priorityLifestyle,
				ConfidenceThreshold: confidenceLifestyle,
				Message:             s.Insight,
				Action:              s.Suggestion,
				Why: []string{
					"High frequency of specific merchant interactions detected.",
					"Potential savings identified in discretionary spending categories.",
				},
			})
		}
	}

	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].PriorityScore > actions[j].PriorityScore
	})

	return actions
}

// formatNumber prints the shortest decimal form, e.g. 76.9 or 95
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
