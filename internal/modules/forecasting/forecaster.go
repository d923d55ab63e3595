// Package forecasting predicts next-month spending from monthly history.
package forecasting

import (
	"sort"
	"strconv"

	"github.com/expenseoracle/oracle/internal/domain"
	"github.com/expenseoracle/oracle/pkg/formulas"
	"github.com/shopspring/decimal"
)

// Confidence levels for degenerate histories
const (
	confidenceNoHistory   = 0.10
	confidenceSingleMonth = 0.30
	confidenceFloor       = 0.10

	// Growth volatility assumed when fewer than two growth rates exist
	defaultGrowthVolatility = 0.5

	// Trend band around zero mean growth
	trendBand = 0.02
)

// MonthTotal is the exact spend of one calendar month
type MonthTotal struct {
	Month string          `json:"month"` // YYYY-MM, UTC
	Total decimal.Decimal `json:"total"`
}

// MonthlyTotals groups expenses by UTC calendar month, oldest first.
// Months without expenses are not represented.
func MonthlyTotals(expenses []domain.ExpenseRecord) []MonthTotal {
	byMonth := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		key := e.CreatedAt.UTC().Format("2006-01")
		byMonth[key] = byMonth[key].Add(e.Amount)
	}

	totals := make([]MonthTotal, 0, len(byMonth))
	for month, total := range byMonth {
		totals = append(totals, MonthTotal{Month: month, Total: total})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Month < totals[j].Month })

	return totals
}

// Amounts converts month totals to a float series for statistics
func Amounts(totals []MonthTotal) []float64 {
	out := make([]float64, len(totals))
	for i, t := range totals {
		out[i] = t.Total.InexactFloat64()
	}
	return out
}

// Forecaster blends growth extrapolation with a linearly weighted moving average.
// It holds no state and is safe for concurrent use.
type Forecaster struct{}

// NewForecaster creates a new forecaster
func NewForecaster() *Forecaster {
	return &Forecaster{}
}

// PredictNextMonth estimates next month's total spend.
//
//	forecast   = 0.7 × last × (1 + mean growth) + 0.3 × WMA
//	confidence = 0.7 × min(months/12, 1) + 0.3 × max(0, 1 − stddev(growth))
func (f *Forecaster) PredictNextMonth(expenses []domain.ExpenseRecord) domain.ForecastResult {
	return f.predict(Amounts(MonthlyTotals(expenses)))
}

func (f *Forecaster) predict(amounts []float64) domain.ForecastResult {
	switch len(amounts) {
	case 0:
		return domain.ForecastResult{
			MonthlyForecast:        0,
			Trend:                  domain.TrendStable,
			ConfidenceLevel:        confidenceNoHistory,
			AnnualGrowthProjection: formatGrowth(0),
		}
	case 1:
		return domain.ForecastResult{
			MonthlyForecast:        formulas.Round(amounts[0], 2),
			Trend:                  domain.TrendStable,
			ConfidenceLevel:        confidenceSingleMonth,
			AnnualGrowthProjection: formatGrowth(0),
		}
	}

	wma := formulas.LinearWeightedAverage(amounts)

	growthRates := formulas.GrowthRates(amounts)
	avgGrowth := formulas.Mean(growthRates)

	last := amounts[len(amounts)-1]
	extrapolated := last * (1 + avgGrowth)
	forecast := extrapolated*0.7 + wma*0.3

	volatility := defaultGrowthVolatility
	if len(growthRates) > 1 {
		volatility = formulas.PopStdDev(growthRates)
	}
	density := formulas.Clamp(float64(len(amounts))/12, 0, 1)
	confidence := density*0.7 + formulas.Clamp(1-volatility, 0, 1)*0.3
	confidence = formulas.Clamp(confidence, confidenceFloor, 1.0)

	return domain.ForecastResult{
		MonthlyForecast:        formulas.Round(forecast, 2),
		Trend:                  classifyTrend(avgGrowth),
		ConfidenceLevel:        formulas.Round(confidence, 2),
		AnnualGrowthProjection: formatGrowth(avgGrowth),
	}
}

func classifyTrend(avgGrowth float64) string {
	switch {
	case avgGrowth > trendBand:
		return domain.TrendIncreasing
	case avgGrowth < -trendBand:
		return domain.TrendDecreasing
	default:
		return domain.TrendStable
	}
}

// formatGrowth annualizes a mean monthly growth rate, e.g. 0.0121 → "14.5%"
func formatGrowth(avgGrowth float64) string {
	pct := formulas.Round(avgGrowth*12*100, 1)
	if pct == 0 {
		pct = 0 // normalize -0
	}
	return strconv.FormatFloat(pct, 'f', 1, 64) + "%"
}
