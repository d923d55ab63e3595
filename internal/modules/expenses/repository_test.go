package expenses

import (
	"context"
	"testing"
	"time"

	"github.com/expenseoracle/oracle/internal/domain"
	testingutil "github.com/expenseoracle/oracle/internal/testing"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ domain.ExpenseRepository = (*Repository)(nil)

func newRepo(t *testing.T) *Repository {
	t.Helper()
	db, cleanup := testingutil.NewTestDB(t, "oracle")
	t.Cleanup(cleanup)
	return NewRepository(db.Conn(), zerolog.Nop())
}

func TestRepository_ExpensesRoundTrip(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	userID, err := repo.CreateUser(ctx, "ada@example.com")
	require.NoError(t, err)

	later := testingutil.NewExpense(0, "Uber", 18.20, "", 2024, time.March, 12)
	earlier := testingutil.NewExpense(0, "Starbucks", 5.10, "Food", 2024, time.March, 1)

	saved, err := repo.AddExpense(ctx, userID, later)
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	_, err = repo.AddExpense(ctx, userID, earlier)
	require.NoError(t, err)

	list, err := repo.ListExpenses(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	// Oldest first regardless of insertion order
	assert.Equal(t, "Starbucks", list[0].Title)
	assert.True(t, list[0].Amount.Equal(decimal.RequireFromString("5.1")))
	require.NotNil(t, list[0].Category)
	assert.Equal(t, "Food", *list[0].Category)
	assert.Equal(t, time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC), list[0].CreatedAt)

	assert.Equal(t, "Uber", list[1].Title)
	assert.Nil(t, list[1].Category)
}

func TestRepository_ListExpenses_Empty(t *testing.T) {
	repo := newRepo(t)

	list, err := repo.ListExpenses(context.Background(), 99)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestRepository_Budgets(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	userID, err := repo.CreateUser(ctx, "bo@example.com")
	require.NoError(t, err)

	require.NoError(t, repo.AddBudget(ctx, userID, domain.BudgetLine{Category: "Food", LimitAmount: decimal.RequireFromString("400.10")}))
	require.NoError(t, repo.AddBudget(ctx, userID, domain.BudgetLine{Category: "Rent", LimitAmount: decimal.RequireFromString("1500")}))

	budgets, err := repo.ListBudgets(ctx, userID)
	require.NoError(t, err)
	require.Len(t, budgets, 2)
	assert.Equal(t, "Food", budgets[0].Category)

	assert.True(t, TotalBudget(budgets).Equal(decimal.RequireFromString("1900.10")))
}

func TestRepository_ListUserIDs(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	ids, err := repo.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	a, err := repo.CreateUser(ctx, "a@example.com")
	require.NoError(t, err)
	b, err := repo.CreateUser(ctx, "b@example.com")
	require.NoError(t, err)

	ids, err = repo.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{a, b}, ids)
}

func TestRepository_AddExpense_UnknownUser(t *testing.T) {
	repo := newRepo(t)

	_, err := repo.AddExpense(context.Background(), 42, testingutil.NewExpense(0, "x", 1, "", 2024, time.January, 1))
	assert.Error(t, err, "foreign key should reject unknown user")
}

func TestTotalBudget_Empty(t *testing.T) {
	assert.True(t, TotalBudget(nil).IsZero())
}
