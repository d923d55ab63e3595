package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/expenseoracle/oracle/internal/cache"
	"github.com/expenseoracle/oracle/internal/config"
	"github.com/expenseoracle/oracle/internal/domain"
	"github.com/expenseoracle/oracle/internal/modules/anomaly"
	"github.com/expenseoracle/oracle/internal/modules/autonomy"
	"github.com/expenseoracle/oracle/internal/modules/categorization"
	"github.com/expenseoracle/oracle/internal/modules/decision"
	"github.com/expenseoracle/oracle/internal/modules/forecasting"
	"github.com/expenseoracle/oracle/internal/modules/health"
	"github.com/expenseoracle/oracle/internal/modules/investment"
	"github.com/expenseoracle/oracle/internal/modules/policy"
	"github.com/expenseoracle/oracle/internal/modules/suggestions"
	testingutil "github.com/expenseoracle/oracle/internal/testing"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingForecaster struct {
	inner *forecasting.Forecaster
	calls atomic.Int32
}

func (c *countingForecaster) PredictNextMonth(expenses []domain.ExpenseRecord) domain.ForecastResult {
	c.calls.Add(1)
	return c.inner.PredictNextMonth(expenses)
}

type pipelineFixture struct {
	service    *PipelineService
	expenses   *testingutil.MockExpenseRepository
	profiles   *testingutil.MockProfileRepository
	cache      *testingutil.MockCache
	audit      *testingutil.MockAuditSink
	forecaster *countingForecaster
}

var testTTLs = config.CacheConfig{
	ForecastTTL: time.Hour,
	HealthTTL:   30 * time.Minute,
	ActionsTTL:  15 * time.Minute,
}

func newPipelineFixture(t *testing.T, withCategorizer bool) *pipelineFixture {
	t.Helper()
	log := zerolog.New(nil).Level(zerolog.Disabled)

	f := &pipelineFixture{
		expenses:   testingutil.NewMockExpenseRepository(),
		profiles:   testingutil.NewMockProfileRepository(),
		cache:      testingutil.NewMockCache(),
		audit:      testingutil.NewMockAuditSink(),
		forecaster: &countingForecaster{inner: forecasting.NewForecaster()},
	}

	detector := anomaly.NewDetector()
	optimizer := investment.NewSeededOptimizer(7)
	scorer := health.NewScorer()

	decisions := decision.NewEngine(decision.Estimators{
		Forecaster: f.forecaster,
		Anomaly:    detector,
		Investment: optimizer,
		Health:     scorer,
	}, anomaly.DefaultThreshold, log)

	deps := PipelineDeps{
		Expenses:   f.expenses,
		Profiles:   f.profiles,
		Cache:      f.cache,
		Forecaster: f.forecaster,
		Anomaly:    detector,
		Health:     scorer,
		Decisions:  decisions,
		Actions: autonomy.NewEngine(autonomy.EngineDeps{
			Forecaster: f.forecaster,
			Anomaly:    detector,
			Investment: optimizer,
			Health:     scorer,
			Patterns:   suggestions.NewAnalyzer(),
		}, anomaly.DefaultThreshold),
		Controller: autonomy.NewController(decisions, policy.NewManager(policy.DefaultThresholds(), log), f.audit, true, log),
	}
	if withCategorizer {
		deps.Categorizer = categorization.NewCategorizer()
	}

	f.service = NewPipelineService(deps, testTTLs, anomaly.DefaultThreshold, log)
	return f
}

func TestLoadUserData_BudgetLines(t *testing.T) {
	f := newPipelineFixture(t, false)
	f.expenses.SetExpenses(1, testingutil.NewExpenseFixtures())
	f.expenses.SetBudgets(1, []domain.BudgetLine{
		{Category: "Food", LimitAmount: decimal.RequireFromString("400.50")},
		{Category: "Rent", LimitAmount: decimal.RequireFromString("1200")},
	})
	f.profiles.SetProfile(1, testingutil.NewProfileFixture())

	data, err := f.service.LoadUserData(context.Background(), 1)
	require.NoError(t, err)

	assert.Len(t, data.Expenses, 8)
	assert.True(t, data.HasBudget)
	assert.InDelta(t, 1600.50, data.MonthlyBudget, 1e-9)
	assert.InDelta(t, 1600.50, data.Profile.MonthlyBudget, 1e-9)
	assert.Equal(t, 5000.0, data.Profile.Income)
}

func TestLoadUserData_FallsBackToProfile(t *testing.T) {
	f := newPipelineFixture(t, false)
	f.expenses.SetExpenses(1, testingutil.NewExpenseFixtures())

	t.Run("stored profile budget", func(t *testing.T) {
		f.profiles.SetProfile(1, testingutil.NewProfileFixture())

		data, err := f.service.LoadUserData(context.Background(), 1)
		require.NoError(t, err)
		assert.False(t, data.HasBudget)
		assert.Equal(t, 3000.0, data.MonthlyBudget)
	})

	t.Run("default profile", func(t *testing.T) {
		data, err := f.service.LoadUserData(context.Background(), 2)
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultProfile(), data.Profile)
		assert.Equal(t, 0.0, data.MonthlyBudget)
		assert.Empty(t, data.Expenses)
	})
}

func TestLoadUserData_Errors(t *testing.T) {
	boom := errors.New("db down")

	t.Run("expenses", func(t *testing.T) {
		f := newPipelineFixture(t, false)
		f.expenses.SetError(boom)

		_, err := f.service.LoadUserData(context.Background(), 1)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("profiles", func(t *testing.T) {
		f := newPipelineFixture(t, false)
		f.profiles.SetError(boom)

		_, err := f.service.LoadUserData(context.Background(), 1)
		assert.ErrorIs(t, err, boom)
	})
}

func TestLoadUserData_Categorizer(t *testing.T) {
	f := newPipelineFixture(t, true)
	f.expenses.SetExpenses(1, []domain.ExpenseRecord{
		testingutil.NewExpense(1, "Uber trip", 12, "", 2024, 3, 1),
		testingutil.NewExpense(2, "Bookshop", 20, "", 2024, 3, 2),
	})

	data, err := f.service.LoadUserData(context.Background(), 1)
	require.NoError(t, err)

	require.NotNil(t, data.Expenses[0].Category)
	assert.Equal(t, "transport", *data.Expenses[0].Category)
	assert.Nil(t, data.Expenses[1].Category)
}

func TestForecast_Memoized(t *testing.T) {
	f := newPipelineFixture(t, false)
	f.expenses.SetExpenses(1, testingutil.NewMonthlyExpenseFixtures(100, 110, 121))

	first, err := f.service.Forecast(context.Background(), 1)
	require.NoError(t, err)
	second, err := f.service.Forecast(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.InDelta(t, 127.32, first.MonthlyForecast, 0.001)
	assert.Equal(t, int32(1), f.forecaster.calls.Load())
	assert.True(t, f.cache.Has(cache.ForecastKey(1)))
	assert.Equal(t, time.Hour, f.cache.TTL(cache.ForecastKey(1)))
}

func TestHealthScoreAndActions_CachedWithTTLs(t *testing.T) {
	f := newPipelineFixture(t, false)
	f.expenses.SetExpenses(1, testingutil.NewExpenseFixtures())
	f.profiles.SetProfile(1, testingutil.NewProfileFixture())

	score, err := f.service.HealthScore(context.Background(), 1)
	require.NoError(t, err)
	assert.InDelta(t, 76.9, score.Score, 0.05)
	assert.Equal(t, 30*time.Minute, f.cache.TTL(cache.HealthScoreKey(1)))

	actions, err := f.service.AutonomousActions(context.Background(), 1)
	require.NoError(t, err)
	require.NotEmpty(t, actions)
	assert.Equal(t, domain.ActionSecurityAlert, actions[0].Type)
	assert.Equal(t, 15*time.Minute, f.cache.TTL(cache.ActionsKey(1)))

	cachedActions, err := f.service.AutonomousActions(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, actions, cachedActions)
}

func TestForecast_CacheFailureIsNotFatal(t *testing.T) {
	f := newPipelineFixture(t, false)
	f.expenses.SetExpenses(1, testingutil.NewMonthlyExpenseFixtures(100, 110, 121))
	f.cache.SetError(errors.New("cache offline"))

	result, err := f.service.Forecast(context.Background(), 1)
	require.NoError(t, err)
	assert.InDelta(t, 127.32, result.MonthlyForecast, 0.001)
}

func TestAnomalies_DefaultThreshold(t *testing.T) {
	f := newPipelineFixture(t, false)
	f.expenses.SetExpenses(1, testingutil.NewExpenseFixtures())

	findings, err := f.service.Anomalies(context.Background(), 1, 0)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, int64(5), findings[0].ExpenseID)

	findings, err = f.service.Anomalies(context.Background(), 1, 1.6)
	require.NoError(t, err)
	assert.Len(t, findings, 2)
}

func TestRunAutonomy_UsesBudgetLines(t *testing.T) {
	f := newPipelineFixture(t, false)
	f.expenses.SetExpenses(1, testingutil.NewExpenseFixtures())
	f.expenses.SetBudgets(1, []domain.BudgetLine{{Category: "All", LimitAmount: decimal.NewFromInt(100)}})

	result, err := f.service.RunAutonomy(context.Background(), 1)
	require.NoError(t, err)

	require.NotEmpty(t, result.Actions)
	assert.Equal(t, domain.ActionReallocateBudget, result.Actions[0].Action.Type)
	require.NotNil(t, result.Actions[0].Action.SuggestedChange)
	assert.InDelta(t, -133.89, *result.Actions[0].Action.SuggestedChange, 1e-9)
	assert.Len(t, f.audit.Records(), len(result.Actions))
}

func TestFinancialContext(t *testing.T) {
	f := newPipelineFixture(t, false)
	f.expenses.SetExpenses(1, testingutil.NewExpenseFixtures())
	f.expenses.SetBudgets(1, []domain.BudgetLine{{Category: "All", LimitAmount: decimal.NewFromInt(100)}})
	f.profiles.SetProfile(1, testingutil.NewProfileFixture())

	got, err := f.service.FinancialContext(context.Background(), 1)
	require.NoError(t, err)

	// Latest six records total 222.89
	assert.Equal(t, 37.15, got.EmergencyFund.MonthlyExpense)
	assert.Equal(t, 1000.0, got.EmergencyFund.Savings)
	assert.InDelta(t, 26.92, got.EmergencyFund.MonthsCovered, 1e-9)
	assert.Equal(t, health.CoverageGreen, got.EmergencyFund.StatusColor)
	// Stress is measured against the budget-line total, not the profile budget
	assert.InDelta(t, 2.23, got.StressScore, 1e-9)
}

func TestFinancialContext_LoadFailure(t *testing.T) {
	f := newPipelineFixture(t, false)
	f.profiles.SetError(errors.New("profiles unavailable"))

	_, err := f.service.FinancialContext(context.Background(), 1)
	assert.Error(t, err)
}

func TestRunForAllUsers(t *testing.T) {
	f := newPipelineFixture(t, false)
	f.expenses.SetExpenses(1, testingutil.NewExpenseFixtures())
	f.expenses.SetExpenses(2, testingutil.NewMonthlyExpenseFixtures(100, 110, 121))
	f.profiles.SetProfile(1, testingutil.NewProfileFixture())

	summary, err := f.service.RunForAllUsers(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Users)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Zero(t, summary.Failed)
	for _, id := range []int64{1, 2} {
		assert.True(t, f.cache.Has(cache.ForecastKey(id)))
		assert.True(t, f.cache.Has(cache.HealthScoreKey(id)))
		assert.True(t, f.cache.Has(cache.ActionsKey(id)))
	}
}

func TestRunForAllUsers_ProfileFailure(t *testing.T) {
	f := newPipelineFixture(t, false)
	f.expenses.SetExpenses(1, testingutil.NewExpenseFixtures())
	boom := errors.New("profiles unavailable")
	f.profiles.SetError(boom)

	summary, err := f.service.RunForAllUsers(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, summary.Failed)
	assert.Zero(t, summary.Succeeded)
}

func TestRunForAllUsers_Cancelled(t *testing.T) {
	f := newPipelineFixture(t, false)
	f.expenses.SetExpenses(1, testingutil.NewExpenseFixtures())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := f.service.RunForAllUsers(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, summary.Succeeded)
}
