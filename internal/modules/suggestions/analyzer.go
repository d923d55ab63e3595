// Package suggestions mines spending patterns for lifestyle nudges.
package suggestions

import (
	"fmt"
	"strings"

	"github.com/expenseoracle/oracle/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// Visits to one merchant that count as a habit
	frequentMerchantCount = 4
	// Share of transactions in one category that counts as concentrated
	concentrationShare = 0.4
)

var (
	transportKeywords = []string{"uber", "ola", "transport"}
	coffeeKeywords    = []string{"starbucks", "coffee", "cafe"}
)

// Suggestion is a lifestyle optimization hint
type Suggestion struct {
	Category   string `json:"category"`
	Insight    string `json:"insight"`
	Suggestion string `json:"suggestion"`
}

// Analyzer detects frequent merchants and concentrated categories.
type Analyzer struct{}

// NewAnalyzer creates a new pattern analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze returns merchant suggestions followed by category suggestions,
// each in first-seen order.
func (a *Analyzer) Analyze(expenses []domain.ExpenseRecord) []Suggestion {
	suggestions := make([]Suggestion, 0)
	if len(expenses) == 0 {
		return suggestions
	}

	// Casers are stateful, so one per call
	caser := cases.Title(language.English)

	merchants, merchantCounts := countInOrder(expenses, func(e domain.ExpenseRecord) (string, bool) {
		return e.MerchantKey(), true
	})

	for _, merchant := range merchants {
		count := merchantCounts[merchant]
		if count < frequentMerchantCount {
			continue
		}
		switch {
		case containsAny(merchant, transportKeywords):
			suggestions = append(suggestions, Suggestion{
				Category:   "Transportation",
				Insight:    fmt.Sprintf("You used %s %d times this month.", caser.String(merchant), count),
				Suggestion: "Consider a monthly transport pass to save up to 20% on commute costs.",
			})
		case containsAny(merchant, coffeeKeywords):
			suggestions = append(suggestions, Suggestion{
				Category:   "Lifestyle",
				Insight:    fmt.Sprintf("Frequent coffee visits detected (%d times).", count),
				Suggestion: "Using a reusable cup or a loyalty card could save you $15/month.",
			})
		}
	}

	categories, categoryCounts := countInOrder(expenses, func(e domain.ExpenseRecord) (string, bool) {
		if e.Category == nil || *e.Category == "" {
			return "", false
		}
		return *e.Category, true
	})

	total := float64(len(expenses))
	for _, category := range categories {
		if float64(categoryCounts[category])/total > concentrationShare {
			suggestions = append(suggestions, Suggestion{
				Category:   category,
				Insight:    fmt.Sprintf("Over 40%% of your transactions are in '%s'.", category),
				Suggestion: "Your spending is highly concentrated. We suggest diversifying your budget to ensure essential needs are met.",
			})
		}
	}

	return suggestions
}

// countInOrder counts keys and remembers the order they were first seen
func countInOrder(expenses []domain.ExpenseRecord, key func(domain.ExpenseRecord) (string, bool)) ([]string, map[string]int) {
	order := make([]string, 0)
	counts := make(map[string]int)
	for _, e := range expenses {
		k, ok := key(e)
		if !ok {
			continue
		}
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
	}
	return order, counts
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
