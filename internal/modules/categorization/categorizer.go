// Package categorization assigns categories to merchants from keyword rules.
package categorization

import (
	"strings"

	"github.com/expenseoracle/oracle/internal/domain"
)

// Categories produced by the rules
const (
	CategoryCoffee        = "coffee"
	CategoryTransport     = "transport"
	CategoryGroceries     = "groceries"
	CategoryUncategorized = "uncategorized"
)

// RuleConfidence is reported for every rule-based match
const RuleConfidence = 0.6

// rule maps any of its keywords to a category; rules are checked in order
type rule struct {
	category string
	keywords []string
}

var rules = []rule{
	{CategoryCoffee, []string{"starbuck", "coffee", "latte"}},
	{CategoryTransport, []string{"uber", "lyft", "taxi"}},
	{CategoryGroceries, []string{"walmart", "target", "grocery", "market"}},
}

// Result is the category guess for one merchant title
type Result struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// Categorizer is a keyword-based merchant categorizer
type Categorizer struct{}

// NewCategorizer creates a new categorizer
func NewCategorizer() *Categorizer {
	return &Categorizer{}
}

// Categorize guesses the category of a merchant title
func (c *Categorizer) Categorize(title string) Result {
	lower := strings.ToLower(title)
	for _, r := range rules {
		for _, k := range r.keywords {
			if strings.Contains(lower, k) {
				return Result{Category: r.category, Confidence: RuleConfidence}
			}
		}
	}
	return Result{Category: CategoryUncategorized, Confidence: RuleConfidence}
}

// Enrich returns a copy of expenses where missing categories are filled in.
// Records that already carry a category are kept as is; uncategorized guesses stay nil.
func (c *Categorizer) Enrich(expenses []domain.ExpenseRecord) []domain.ExpenseRecord {
	out := make([]domain.ExpenseRecord, len(expenses))
	for i, e := range expenses {
		if e.Category == nil || strings.TrimSpace(*e.Category) == "" {
			if r := c.Categorize(e.Title); r.Category != CategoryUncategorized {
				category := r.Category
				e.Category = &category
			}
		}
		out[i] = e
	}
	return out
}
