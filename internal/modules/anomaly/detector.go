// Package anomaly flags transactions that deviate from their merchant's baseline.
package anomaly

import (
	"fmt"
	"math"

	"github.com/expenseoracle/oracle/internal/domain"
	"github.com/expenseoracle/oracle/pkg/formulas"
)

// DefaultThreshold is the z-score above which a transaction is flagged
const DefaultThreshold = 2.0

const (
	// Scales MAD to a standard deviation under normality
	madConsistency = 1.4826
	// MAD floor as a fraction of the median, so a perfectly regular merchant still has a scale
	madFloorRatio = 0.02
	// Observations needed before a merchant gets its own robust baseline
	minMerchantHistory = 2
)

// Detector scores each transaction with a robust per-merchant z-score,
// falling back to global statistics for merchants seen only once.
type Detector struct{}

// NewDetector creates a new anomaly detector
func NewDetector() *Detector {
	return &Detector{}
}

// Detect returns the findings whose z-score exceeds threshold, in input order.
// A non-positive threshold uses DefaultThreshold.
func (d *Detector) Detect(expenses []domain.ExpenseRecord, threshold float64) []domain.AnomalyFinding {
	findings := make([]domain.AnomalyFinding, 0)
	if len(expenses) == 0 {
		return findings
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	history := make(map[string][]float64)
	all := make([]float64, len(expenses))
	for i, e := range expenses {
		amount := e.AmountFloat()
		all[i] = amount
		key := e.MerchantKey()
		history[key] = append(history[key], amount)
	}

	globalMean := formulas.Mean(all)
	globalStd := globalMean * 0.5
	if len(all) > 1 {
		globalStd = formulas.PopStdDev(all)
	}

	for i, e := range expenses {
		amount := all[i]
		merchant := history[e.MerchantKey()]

		var z float64
		var reason string
		if len(merchant) >= minMerchantHistory {
			median := formulas.Median(merchant)
			mad := math.Max(formulas.MedianAbsoluteDeviation(merchant), median*madFloorRatio)
			z = formulas.SafeDiv(math.Abs(amount-median), madConsistency*mad, 0)
			reason = fmt.Sprintf("Spending on '%s' is %.1fx robust-STDs above its median.", e.Title, z)
		} else {
			z = formulas.SafeDiv(math.Abs(amount-globalMean), globalStd, 0)
			reason = fmt.Sprintf("Unusual amount for a new merchant. Spending is %.1fx above your global average.", z)
		}

		if z > threshold {
			findings = append(findings, domain.AnomalyFinding{
				ExpenseID: e.ID,
				Title:     e.Title,
				Amount:    amount,
				ZScore:    formulas.Round(z, 2),
				Reason:    reason,
			})
		}
	}

	return findings
}
