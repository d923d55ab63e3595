// Package metrics backtests the forecaster and reports engine quality.
package metrics

import (
	"fmt"
	"math"

	"github.com/expenseoracle/oracle/internal/domain"
	"github.com/expenseoracle/oracle/internal/modules/forecasting"
	"github.com/expenseoracle/oracle/pkg/formulas"
)

// Report statuses
const (
	StatusAwaitingData   = "Awaiting more data loops."
	StatusShortHistory   = "Insufficient history for real-time validation."
	StatusVerified       = "Verified on Data"
	StatusHeuristic      = "Heuristic Fallback"
	StatusUnverified     = "Heuristic (unverified)"
	notAvailable         = "N/A"
	heuristicMAPEPercent = 8.4
	minBacktestMonths    = 3
	maxSeriesPoints      = 6
)

// Static figures reported until a labelled feedback loop exists
const (
	placeholderAnomalyPrecision    = "92.1%"
	placeholderCategorizerAccuracy = "96.5%"
)

// Forecaster is the forecasting capability being backtested
type Forecaster interface {
	PredictNextMonth(expenses []domain.ExpenseRecord) domain.ForecastResult
}

// EngineMetric is one quality figure. Measured is false for placeholders and fallbacks.
type EngineMetric struct {
	Metric     string `json:"metric"`
	Value      string `json:"value"`
	Status     string `json:"status"`
	SampleSize string `json:"sample_size,omitempty"`
	Measured   bool   `json:"measured"`
}

// PerformanceReport groups the metrics of every engine
type PerformanceReport struct {
	ForecastEngine  EngineMetric `json:"forecast_engine"`
	AnomalyDetector EngineMetric `json:"anomaly_detector"`
	Categorizer     EngineMetric `json:"categorizer"`
}

// SeriesPoint pairs an actual monthly total with what was forecast for it.
// Actual is nil for the upcoming month.
type SeriesPoint struct {
	Actual   *float64 `json:"actual"`
	Month    string   `json:"month"`
	Forecast float64  `json:"forecast"`
}

// Manager runs walk-forward validation of a forecaster
type Manager struct {
	forecaster Forecaster
}

// NewManager creates a metrics manager over the given forecaster
func NewManager(forecaster Forecaster) *Manager {
	return &Manager{forecaster: forecaster}
}

// CalculatePerformance computes the forecaster's walk-forward MAPE.
// Month i (from the third month on) is predicted from the expenses of earlier months only.
func (m *Manager) CalculatePerformance(expenses []domain.ExpenseRecord) PerformanceReport {
	if len(expenses) == 0 {
		return fallbackReport(StatusAwaitingData)
	}

	totals := forecasting.MonthlyTotals(expenses)
	if len(totals) < minBacktestMonths {
		return fallbackReport(StatusShortHistory)
	}

	relErrors := make([]float64, 0, len(totals)-2)
	for i := 2; i < len(totals); i++ {
		actual := totals[i].Total.InexactFloat64()
		if actual <= 0 {
			continue
		}
		predicted := m.forecaster.PredictNextMonth(before(expenses, totals[i].Month)).MonthlyForecast
		relErrors = append(relErrors, math.Abs(actual-predicted)/actual)
	}

	forecast := EngineMetric{
		Metric:   "MAPE (Mean Absolute Percentage Error)",
		Value:    fmt.Sprintf("%.1f%%", heuristicMAPEPercent),
		Status:   StatusHeuristic,
		Measured: false,
	}
	if len(relErrors) > 0 {
		forecast.Value = fmt.Sprintf("%.1f%%", formulas.Round(formulas.Mean(relErrors)*100, 1))
		forecast.Status = StatusVerified
		forecast.Measured = true
	}
	forecast.SampleSize = fmt.Sprintf("%d validation points", len(relErrors))

	return PerformanceReport{
		ForecastEngine: forecast,
		AnomalyDetector: EngineMetric{
			Metric: "Precision",
			Value:  placeholderAnomalyPrecision,
			Status: StatusUnverified,
		},
		Categorizer: EngineMetric{
			Metric: "Accuracy",
			Value:  placeholderCategorizerAccuracy,
			Status: StatusUnverified,
		},
	}
}

// ForecastVsActual returns up to six recent months with the forecast made for each
// from earlier months, followed by the prediction for the month after the last one.
func (m *Manager) ForecastVsActual(expenses []domain.ExpenseRecord) []SeriesPoint {
	totals := forecasting.MonthlyTotals(expenses)
	series := make([]SeriesPoint, 0, maxSeriesPoints+1)
	if len(totals) == 0 {
		return series
	}

	start := 1
	if len(totals)-start > maxSeriesPoints {
		start = len(totals) - maxSeriesPoints
	}
	for i := start; i < len(totals); i++ {
		actual := formulas.Round(totals[i].Total.InexactFloat64(), 2)
		series = append(series, SeriesPoint{
			Month:    totals[i].Month,
			Actual:   &actual,
			Forecast: m.forecaster.PredictNextMonth(before(expenses, totals[i].Month)).MonthlyForecast,
		})
	}

	series = append(series, SeriesPoint{
		Month:    totals[len(totals)-1].Month + " (Pred)",
		Forecast: m.forecaster.PredictNextMonth(expenses).MonthlyForecast,
	})
	return series
}

func fallbackReport(status string) PerformanceReport {
	return PerformanceReport{
		ForecastEngine:  EngineMetric{Metric: "MAPE", Value: notAvailable, Status: status},
		AnomalyDetector: EngineMetric{Metric: "Precision", Value: notAvailable, Status: status},
		Categorizer:     EngineMetric{Metric: "Accuracy", Value: notAvailable, Status: status},
	}
}

// before returns the expenses dated in months strictly earlier than month (YYYY-MM)
func before(expenses []domain.ExpenseRecord, month string) []domain.ExpenseRecord {
	out := make([]domain.ExpenseRecord, 0, len(expenses))
	for _, e := range expenses {
		if e.CreatedAt.UTC().Format("2006-01") < month {
			out = append(out, e)
		}
	}
	return out
}
