package testing

import (
	"time"

	"github.com/expenseoracle/oracle/internal/domain"
	"github.com/shopspring/decimal"
)

// StrPtr returns a pointer to s, for optional categories
func StrPtr(s string) *string {
	return &s
}

// NewExpense builds an expense record dated at the given UTC day
func NewExpense(id int64, title string, amount float64, category string, year int, month time.Month, day int) domain.ExpenseRecord {
	var cat *string
	if category != "" {
		cat = StrPtr(category)
	}
	return domain.ExpenseRecord{
		ID:        id,
		Title:     title,
		Amount:    decimal.NewFromFloat(amount),
		Category:  cat,
		CreatedAt: time.Date(year, month, day, 12, 0, 0, 0, time.UTC),
	}
}

// NewMonthlyExpenseFixtures returns one expense per month with the given totals, starting January 2024
func NewMonthlyExpenseFixtures(totals ...float64) []domain.ExpenseRecord {
	expenses := make([]domain.ExpenseRecord, 0, len(totals))
	start := time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)
	for i, total := range totals {
		expenses = append(expenses, domain.ExpenseRecord{
			ID:        int64(i + 1),
			Title:     "Rent",
			Amount:    decimal.NewFromFloat(total),
			Category:  StrPtr("Housing"),
			CreatedAt: start.AddDate(0, i, 0),
		})
	}
	return expenses
}

// NewExpenseFixtures returns a small realistic month of spending with one outlier
func NewExpenseFixtures() []domain.ExpenseRecord {
	return []domain.ExpenseRecord{
		NewExpense(1, "Starbucks", 5.00, "Food", 2024, time.March, 1),
		NewExpense(2, "Starbucks", 6.00, "Food", 2024, time.March, 3),
		NewExpense(3, "Starbucks", 5.50, "Food", 2024, time.March, 5),
		NewExpense(4, "Starbucks", 5.80, "Food", 2024, time.March, 8),
		NewExpense(5, "Starbucks", 95.00, "Food", 2024, time.March, 9),
		NewExpense(6, "Whole Foods Market", 82.40, "Groceries", 2024, time.March, 10),
		NewExpense(7, "Uber", 18.20, "Transport", 2024, time.March, 12),
		NewExpense(8, "Netflix", 15.99, "Entertainment", 2024, time.March, 14),
	}
}

// NewProfileFixture returns a profile with comfortable income and a moderate budget
func NewProfileFixture() domain.Profile {
	return domain.Profile{
		Income:         5000,
		MonthlyBudget:  3000,
		MonthlySavings: 1000,
		RiskTolerance:  domain.RiskModerate,
	}
}
