package health

import (
	"math"
	"sort"

	"github.com/expenseoracle/oracle/internal/domain"
	"github.com/expenseoracle/oracle/pkg/formulas"
)

// Emergency fund coverage colors
const (
	CoverageGreen  = "green"  // six months or more
	CoverageYellow = "yellow" // three to six months
	CoverageRed    = "red"
)

// DefaultInflationRate is the annual rate used for spend projections
const DefaultInflationRate = 0.02

// recentWindow is how many of the latest records count as recent spending
const recentWindow = 6

// EmergencyFundStatus describes how many months of spending savings can cover
type EmergencyFundStatus struct {
	StatusColor    string  `json:"status_color"`
	Savings        float64 `json:"savings"`
	MonthlyExpense float64 `json:"monthly_expense"`
	MonthsCovered  float64 `json:"months_covered"`
}

// EmergencyFund computes months covered as savings / max(1, monthly expense).
func EmergencyFund(savings, monthlyExpense float64) EmergencyFundStatus {
	months := savings / math.Max(1, monthlyExpense)

	color := CoverageRed
	switch {
	case months >= 6:
		color = CoverageGreen
	case months >= 3:
		color = CoverageYellow
	}

	return EmergencyFundStatus{
		StatusColor:    color,
		Savings:        savings,
		MonthlyExpense: monthlyExpense,
		MonthsCovered:  formulas.Round(months, 2),
	}
}

// ProjectInflation compounds base monthly at annualRate/12 and returns one value per month.
func ProjectInflation(base, annualRate float64, months int) []float64 {
	if months <= 0 {
		return []float64{}
	}

	values := make([]float64, months)
	amount := base
	for i := range values {
		amount *= 1 + annualRate/12
		values[i] = formulas.Round(amount, 2)
	}
	return values
}

// Assessment is the financial context reported next to the health score
type Assessment struct {
	EmergencyFund EmergencyFundStatus `json:"emergency_fund"`
	StressScore   float64             `json:"stress_score"`
}

// Assess measures emergency-fund coverage from the profile savings against the
// average of the most recent records, and stress against the monthly budget.
func Assess(expenses []domain.ExpenseRecord, profile domain.Profile) Assessment {
	recent := recentExpenses(expenses)

	avg := 0.0
	if len(recent) > 0 {
		avg = formulas.Round(sumAmounts(recent)/float64(len(recent)), 2)
	}

	return Assessment{
		EmergencyFund: EmergencyFund(profile.MonthlySavings, avg),
		StressScore:   StressScore(expenses, profile.MonthlyBudget),
	}
}

// StressScore is recent spending (latest six records by date) relative to the monthly budget.
func StressScore(expenses []domain.ExpenseRecord, monthlyBudget float64) float64 {
	recent := sumAmounts(recentExpenses(expenses))
	return formulas.Round(recent/math.Max(1, monthlyBudget), 2)
}

// recentExpenses returns the latest records by CreatedAt without reordering the input
func recentExpenses(expenses []domain.ExpenseRecord) []domain.ExpenseRecord {
	sorted := make([]domain.ExpenseRecord, len(expenses))
	copy(sorted, expenses)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	if len(sorted) > recentWindow {
		sorted = sorted[len(sorted)-recentWindow:]
	}
	return sorted
}

func sumAmounts(expenses []domain.ExpenseRecord) float64 {
	total := 0.0
	for _, e := range expenses {
		total += e.AmountFloat()
	}
	return total
}
