package suggestions

import (
	"testing"
	"time"

	"github.com/expenseoracle/oracle/internal/domain"
	testingutil "github.com/expenseoracle/oracle/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repeat(title, category string, n int, startID int64) []domain.ExpenseRecord {
	out := make([]domain.ExpenseRecord, n)
	for i := range out {
		out[i] = testingutil.NewExpense(startID+int64(i), title, 10, category, 2024, time.March, i+1)
	}
	return out
}

func TestAnalyze_Empty(t *testing.T) {
	out := NewAnalyzer().Analyze(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestAnalyze_FrequentMerchants(t *testing.T) {
	var expenses []domain.ExpenseRecord
	expenses = append(expenses, repeat("uber eats", "", 4, 1)...)
	expenses = append(expenses, repeat("Starbucks", "", 5, 10)...)
	expenses = append(expenses, repeat("Gym", "", 6, 20)...)
	expenses = append(expenses, repeat("Coffee Lab", "", 3, 30)...)

	out := NewAnalyzer().Analyze(expenses)
	require.Len(t, out, 2)

	assert.Equal(t, "Transportation", out[0].Category)
	assert.Equal(t, "You used Uber Eats 4 times this month.", out[0].Insight)

	assert.Equal(t, "Lifestyle", out[1].Category)
	assert.Equal(t, "Frequent coffee visits detected (5 times).", out[1].Insight)
}

func TestAnalyze_TransportWinsOverCoffee(t *testing.T) {
	out := NewAnalyzer().Analyze(repeat("uber to cafe", "", 4, 1))
	require.Len(t, out, 1)
	assert.Equal(t, "Transportation", out[0].Category)
}

func TestAnalyze_MerchantCountIsCaseInsensitive(t *testing.T) {
	expenses := []domain.ExpenseRecord{
		testingutil.NewExpense(1, "STARBUCKS", 5, "", 2024, time.March, 1),
		testingutil.NewExpense(2, "starbucks", 5, "", 2024, time.March, 2),
		testingutil.NewExpense(3, "Starbucks", 5, "", 2024, time.March, 3),
		testingutil.NewExpense(4, "StarBucks", 5, "", 2024, time.March, 4),
	}
	out := NewAnalyzer().Analyze(expenses)
	require.Len(t, out, 1)
	assert.Equal(t, "Lifestyle", out[0].Category)
}

func TestAnalyze_MerchantCountIgnoresSurroundingSpace(t *testing.T) {
	expenses := []domain.ExpenseRecord{
		testingutil.NewExpense(1, "Uber ", 12, "", 2024, time.March, 1),
		testingutil.NewExpense(2, "uber", 12, "", 2024, time.March, 2),
		testingutil.NewExpense(3, " UBER", 12, "", 2024, time.March, 3),
		testingutil.NewExpense(4, "Uber", 12, "", 2024, time.March, 4),
	}
	out := NewAnalyzer().Analyze(expenses)
	require.Len(t, out, 1)
	assert.Equal(t, "Transportation", out[0].Category)
	assert.Equal(t, "You used Uber 4 times this month.", out[0].Insight)
}

func TestAnalyze_CategoryConcentration(t *testing.T) {
	var expenses []domain.ExpenseRecord
	expenses = append(expenses, repeat("a", "Dining", 3, 1)...)
	expenses = append(expenses, repeat("b", "Rent", 1, 10)...)
	expenses = append(expenses, repeat("c", "", 3, 20)...)

	// Dining is 3 of 7 transactions (43%); uncategorized rows count toward the total
	out := NewAnalyzer().Analyze(expenses)
	require.Len(t, out, 1)
	assert.Equal(t, "Dining", out[0].Category)
	assert.Equal(t, "Over 40% of your transactions are in 'Dining'.", out[0].Insight)

	// Exactly 40% is not concentrated
	exact := append(repeat("a", "Dining", 2, 1), repeat("b", "Rent", 1, 10)...)
	exact = append(exact, repeat("c", "Fun", 1, 20)...)
	exact = append(exact, repeat("d", "Misc", 1, 30)...)
	assert.Empty(t, NewAnalyzer().Analyze(exact))
}
