// Package policy turns a decision snapshot into concrete actions using fixed thresholds.
package policy

import (
	"github.com/expenseoracle/oracle/internal/domain"
	"github.com/expenseoracle/oracle/pkg/formulas"
	"github.com/rs/zerolog"
)

// Reasons attached to policy actions
const (
	ReasonForecastOverrun    = "forecast_overrun"
	ReasonSuspiciousActivity = "suspicious_activity"
	ReasonOptimizePortfolio  = "optimize_portfolio"
)

// Thresholds configure when policies fire
type Thresholds struct {
	// Forecast above budget × factor triggers a reallocation
	ForecastOverrunFactor float64
	// Anomalies needed before freezing a transaction
	AnomalyCountToFreeze int
}

// DefaultThresholds returns the stock policy thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{
		ForecastOverrunFactor: 1.1,
		AnomalyCountToFreeze:  1,
	}
}

// Manager applies the budget, anomaly and investment policies in that order.
type Manager struct {
	thresholds Thresholds
	log        zerolog.Logger
}

// NewManager creates a policy manager
func NewManager(thresholds Thresholds, log zerolog.Logger) *Manager {
	return &Manager{
		thresholds: thresholds,
		log:        log.With().Str("component", "policy_manager").Logger(),
	}
}

// ApplyPolicies emits at most one action per policy.
func (m *Manager) ApplyPolicies(snapshot domain.DecisionSnapshot, profile domain.Profile) []domain.Action {
	actions := make([]domain.Action, 0, 3)

	forecast := snapshot.MonthlyForecast()
	budget := profile.MonthlyBudget
	if budget > 0 && forecast > budget*m.thresholds.ForecastOverrunFactor {
		change := formulas.Round(budget-forecast, 2)
		actions = append(actions, domain.Action{
			Type:            domain.ActionReallocateBudget,
			Reason:          ReasonForecastOverrun,
			SuggestedChange: &change,
		})
	}

	// Config.Validate keeps the threshold at 1 or more; a freeze always names a real transaction
	if n := len(snapshot.Anomalies); n > 0 && n >= m.thresholds.AnomalyCountToFreeze {
		first := snapshot.Anomalies[0]
		actions = append(actions, domain.Action{
			Type:        domain.ActionFreezeTransaction,
			Reason:      ReasonSuspiciousActivity,
			Transaction: &first,
		})
	}

	if snapshot.Investment != nil {
		advice := *snapshot.Investment
		actions = append(actions, domain.Action{
			Type:                domain.ActionAdjustInvestment,
			Reason:              ReasonOptimizePortfolio,
			SuggestedAllocation: &advice,
		})
	}

	m.log.Info().Int("actions", len(actions)).Msg("Policies applied")
	return actions
}
