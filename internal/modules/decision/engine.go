// Package decision folds estimator outputs into a single decision snapshot.
package decision

import (
	"github.com/expenseoracle/oracle/internal/domain"
	"github.com/expenseoracle/oracle/pkg/formulas"
	"github.com/rs/zerolog"
)

// ForecastEstimator predicts next-month spending
type ForecastEstimator interface {
	PredictNextMonth(expenses []domain.ExpenseRecord) domain.ForecastResult
}

// AnomalyEstimator flags unusual transactions
type AnomalyEstimator interface {
	Detect(expenses []domain.ExpenseRecord, threshold float64) []domain.AnomalyFinding
}

// InvestmentEstimator recommends surplus allocation
type InvestmentEstimator interface {
	SuggestAllocation(surplus float64, tolerance domain.RiskTolerance) domain.AllocationAdvice
}

// HealthEstimator scores financial health
type HealthEstimator interface {
	Calculate(expenses []domain.ExpenseRecord, monthlyBudget, income float64) domain.HealthResult
}

// Estimators are the components available to the engine; nil means absent.
type Estimators struct {
	Forecaster ForecastEstimator
	Anomaly    AnomalyEstimator
	Investment InvestmentEstimator
	Health     HealthEstimator
}

// Engine evaluates every available estimator and tolerates the failure of any of them.
type Engine struct {
	est              Estimators
	anomalyThreshold float64
	log              zerolog.Logger
}

// NewEngine creates a decision engine over the given estimators
func NewEngine(est Estimators, anomalyThreshold float64, log zerolog.Logger) *Engine {
	return &Engine{
		est:              est,
		anomalyThreshold: anomalyThreshold,
		log:              log.With().Str("component", "decision_engine").Logger(),
	}
}

// Evaluate produces a fresh snapshot. A failed estimator leaves its field nil or empty.
func (e *Engine) Evaluate(expenses []domain.ExpenseRecord, profile domain.Profile) domain.DecisionSnapshot {
	snapshot := domain.DecisionSnapshot{Anomalies: []domain.AnomalyFinding{}}

	forecast := e.forecast(expenses)
	if e.check("forecaster", forecast.Err) {
		f := forecast.Value
		snapshot.Forecast = &f
	}

	anomalies := Absent[[]domain.AnomalyFinding]()
	if e.est.Anomaly != nil {
		anomalies = Run("anomaly_detector", func() []domain.AnomalyFinding {
			return e.est.Anomaly.Detect(expenses, e.anomalyThreshold)
		})
	}
	if e.check("anomaly_detector", anomalies.Err) && anomalies.Value != nil {
		snapshot.Anomalies = anomalies.Value
	}

	if e.est.Investment != nil {
		surplus := profile.MonthlyBudget - snapshot.MonthlyForecast()
		advice := Run("investment_optimizer", func() domain.AllocationAdvice {
			return e.est.Investment.SuggestAllocation(surplus, profile.RiskTolerance)
		})
		if e.check("investment_optimizer", advice.Err) {
			a := advice.Value
			snapshot.Investment = &a
		}
	}

	if e.est.Health != nil {
		health := Run("health_score", func() domain.HealthResult {
			return e.est.Health.Calculate(expenses, profile.MonthlyBudget, profile.Income)
		})
		if e.check("health_score", health.Err) {
			h := health.Value
			snapshot.HealthScore = &h
		}
	}

	return snapshot
}

// forecast runs the forecaster, or the naive average when none is configured
func (e *Engine) forecast(expenses []domain.ExpenseRecord) Outcome[domain.ForecastResult] {
	if e.est.Forecaster == nil {
		return Outcome[domain.ForecastResult]{Value: naiveForecast(expenses), Present: true}
	}
	return Run("forecaster", func() domain.ForecastResult {
		return e.est.Forecaster.PredictNextMonth(expenses)
	})
}

// check logs a failed estimator and reports whether its value is usable
func (e *Engine) check(name string, err error) bool {
	if err != nil {
		e.log.Error().Err(err).Str("estimator", name).Msg("Estimator failed, continuing without it")
		return false
	}
	return true
}

// naiveForecast is the mean expense amount, used when no forecaster is configured
func naiveForecast(expenses []domain.ExpenseRecord) domain.ForecastResult {
	total := 0.0
	for _, x := range expenses {
		total += x.AmountFloat()
	}
	count := len(expenses)
	if count < 1 {
		count = 1
	}
	return domain.ForecastResult{
		MonthlyForecast:        formulas.Round(total/float64(count), 2),
		Trend:                  domain.TrendStable,
		ConfidenceLevel:        0.10,
		AnnualGrowthProjection: "0.0%",
	}
}
