/**
 * Package services provides PipelineService, the per-user entry point into the decision pipeline.
 *
 * PipelineService loads everything a run needs for one user:
 *   - Expenses and budget lines from the expense repository
 *   - The financial profile (or the default profile when none is stored)
 *
 * and then serves estimator outputs, memoizing forecast, health score and
 * autonomous actions in the cache under forecast:{id}, health_score:{id} and actions:{id}.
 *
 * Usage:
 *   forecast, _ := pipeline.Forecast(ctx, userID)
 *   result, _ := pipeline.RunAutonomy(ctx, userID)
 */
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/expenseoracle/oracle/internal/cache"
	"github.com/expenseoracle/oracle/internal/config"
	"github.com/expenseoracle/oracle/internal/domain"
	"github.com/expenseoracle/oracle/internal/modules/autonomy"
	"github.com/expenseoracle/oracle/internal/modules/decision"
	"github.com/expenseoracle/oracle/internal/modules/expenses"
	"github.com/expenseoracle/oracle/internal/modules/health"
	"github.com/expenseoracle/oracle/internal/modules/profiles"
	"github.com/rs/zerolog"
)

// ActionGenerator ranks explainable actions for one user
type ActionGenerator interface {
	GenerateActions(expenses []domain.ExpenseRecord, monthlyBudget, income float64, tolerance domain.RiskTolerance) []domain.Action
}

// AutonomyRunner runs the evaluate → policy → execute loop
type AutonomyRunner interface {
	RunAutonomy(ctx context.Context, expenses []domain.ExpenseRecord, profile domain.Profile) autonomy.RunResult
}

// SnapshotEvaluator produces a decision snapshot
type SnapshotEvaluator interface {
	Evaluate(expenses []domain.ExpenseRecord, profile domain.Profile) domain.DecisionSnapshot
}

// ExpenseEnricher fills in missing categories
type ExpenseEnricher interface {
	Enrich(expenses []domain.ExpenseRecord) []domain.ExpenseRecord
}

// PipelineDeps are the collaborators of PipelineService.
// Cache and Categorizer are optional.
type PipelineDeps struct {
	Expenses    domain.ExpenseRepository
	Profiles    domain.ProfileRepository
	Cache       domain.Cache
	Forecaster  decision.ForecastEstimator
	Anomaly     decision.AnomalyEstimator
	Health      decision.HealthEstimator
	Decisions   SnapshotEvaluator
	Actions     ActionGenerator
	Controller  AutonomyRunner
	Categorizer ExpenseEnricher
}

// UserData is everything the estimators need for one user
type UserData struct {
	Expenses      []domain.ExpenseRecord
	Profile       domain.Profile
	MonthlyBudget float64
	HasBudget     bool // true when the budget came from budget lines
}

// RunSummary reports a pipeline run over every user
type RunSummary struct {
	Users     int
	Succeeded int
	Failed    int
	Actions   int
}

/**
 * PipelineService serves estimator outputs per user.
 *
 * Cache failures are logged and never fail a request.
 */
type PipelineService struct {
	deps             PipelineDeps
	ttl              config.CacheConfig
	anomalyThreshold float64
	log              zerolog.Logger
}

// NewPipelineService creates a new PipelineService
func NewPipelineService(deps PipelineDeps, ttl config.CacheConfig, anomalyThreshold float64, log zerolog.Logger) *PipelineService {
	return &PipelineService{
		deps:             deps,
		ttl:              ttl,
		anomalyThreshold: anomalyThreshold,
		log:              log.With().Str("service", "pipeline").Logger(),
	}
}

// LoadUserData loads expenses, budget and profile for a user.
// The monthly budget is the sum of budget lines, or the profile budget when there are none.
func (s *PipelineService) LoadUserData(ctx context.Context, userID int64) (UserData, error) {
	records, err := s.deps.Expenses.ListExpenses(ctx, userID)
	if err != nil {
		return UserData{}, fmt.Errorf("failed to load expenses for user %d: %w", userID, err)
	}

	budgets, err := s.deps.Expenses.ListBudgets(ctx, userID)
	if err != nil {
		return UserData{}, fmt.Errorf("failed to load budgets for user %d: %w", userID, err)
	}

	profile, err := profiles.GetOrDefault(ctx, s.deps.Profiles, userID)
	if err != nil {
		return UserData{}, fmt.Errorf("failed to load profile for user %d: %w", userID, err)
	}

	data := UserData{
		Expenses:      records,
		Profile:       profile,
		MonthlyBudget: profile.MonthlyBudget,
	}
	if len(budgets) > 0 {
		data.MonthlyBudget = expenses.TotalBudget(budgets).InexactFloat64()
		data.HasBudget = true
	}
	// Policies and the investment advisor read the budget from the profile
	data.Profile.MonthlyBudget = data.MonthlyBudget

	if s.deps.Categorizer != nil {
		data.Expenses = s.deps.Categorizer.Enrich(data.Expenses)
	}

	return data, nil
}

// Forecast returns the next-month forecast, cached for the forecast TTL
func (s *PipelineService) Forecast(ctx context.Context, userID int64) (domain.ForecastResult, error) {
	var result domain.ForecastResult
	if s.cached(ctx, cache.ForecastKey(userID), &result) {
		return result, nil
	}

	data, err := s.LoadUserData(ctx, userID)
	if err != nil {
		return domain.ForecastResult{}, err
	}

	result = s.deps.Forecaster.PredictNextMonth(data.Expenses)
	s.store(ctx, cache.ForecastKey(userID), result, s.ttl.ForecastTTL)
	return result, nil
}

// HealthScore returns the financial health score, cached for the health TTL
func (s *PipelineService) HealthScore(ctx context.Context, userID int64) (domain.HealthResult, error) {
	var result domain.HealthResult
	if s.cached(ctx, cache.HealthScoreKey(userID), &result) {
		return result, nil
	}

	data, err := s.LoadUserData(ctx, userID)
	if err != nil {
		return domain.HealthResult{}, err
	}

	result = s.deps.Health.Calculate(data.Expenses, data.MonthlyBudget, data.Profile.Income)
	s.store(ctx, cache.HealthScoreKey(userID), result, s.ttl.HealthTTL)
	return result, nil
}

// AutonomousActions returns the ranked actions, cached for the actions TTL
func (s *PipelineService) AutonomousActions(ctx context.Context, userID int64) ([]domain.Action, error) {
	var result []domain.Action
	if s.cached(ctx, cache.ActionsKey(userID), &result) {
		return result, nil
	}

	data, err := s.LoadUserData(ctx, userID)
	if err != nil {
		return nil, err
	}

	result = s.deps.Actions.GenerateActions(data.Expenses, data.MonthlyBudget, data.Profile.Income, data.Profile.RiskTolerance)
	s.store(ctx, cache.ActionsKey(userID), result, s.ttl.ActionsTTL)
	return result, nil
}

// FinancialContext reports emergency-fund coverage and spending stress for a user
func (s *PipelineService) FinancialContext(ctx context.Context, userID int64) (health.Assessment, error) {
	data, err := s.LoadUserData(ctx, userID)
	if err != nil {
		return health.Assessment{}, err
	}
	return health.Assess(data.Expenses, data.Profile), nil
}

// Anomalies flags unusual transactions. A non-positive threshold uses the configured one.
func (s *PipelineService) Anomalies(ctx context.Context, userID int64, threshold float64) ([]domain.AnomalyFinding, error) {
	data, err := s.LoadUserData(ctx, userID)
	if err != nil {
		return nil, err
	}
	if threshold <= 0 {
		threshold = s.anomalyThreshold
	}
	return s.deps.Anomaly.Detect(data.Expenses, threshold), nil
}

// Decisions evaluates every estimator into a snapshot without running policies
func (s *PipelineService) Decisions(ctx context.Context, userID int64) (domain.DecisionSnapshot, error) {
	data, err := s.LoadUserData(ctx, userID)
	if err != nil {
		return domain.DecisionSnapshot{}, err
	}
	return s.deps.Decisions.Evaluate(data.Expenses, data.Profile), nil
}

// RunAutonomy runs the autonomy loop for one user
func (s *PipelineService) RunAutonomy(ctx context.Context, userID int64) (autonomy.RunResult, error) {
	data, err := s.LoadUserData(ctx, userID)
	if err != nil {
		return autonomy.RunResult{}, err
	}
	return s.deps.Controller.RunAutonomy(ctx, data.Expenses, data.Profile), nil
}

// RefreshUser recomputes and re-caches every memoized output, then runs autonomy.
func (s *PipelineService) RefreshUser(ctx context.Context, userID int64) (autonomy.RunResult, error) {
	data, err := s.LoadUserData(ctx, userID)
	if err != nil {
		return autonomy.RunResult{}, err
	}

	forecast := s.deps.Forecaster.PredictNextMonth(data.Expenses)
	s.store(ctx, cache.ForecastKey(userID), forecast, s.ttl.ForecastTTL)

	health := s.deps.Health.Calculate(data.Expenses, data.MonthlyBudget, data.Profile.Income)
	s.store(ctx, cache.HealthScoreKey(userID), health, s.ttl.HealthTTL)

	actions := s.deps.Actions.GenerateActions(data.Expenses, data.MonthlyBudget, data.Profile.Income, data.Profile.RiskTolerance)
	s.store(ctx, cache.ActionsKey(userID), actions, s.ttl.ActionsTTL)

	return s.deps.Controller.RunAutonomy(ctx, data.Expenses, data.Profile), nil
}

// RunForAllUsers refreshes every user. A failing user is logged and skipped;
// the returned error joins every per-user failure.
func (s *PipelineService) RunForAllUsers(ctx context.Context) (RunSummary, error) {
	start := time.Now()

	userIDs, err := s.deps.Expenses.ListUserIDs(ctx)
	if err != nil {
		return RunSummary{}, fmt.Errorf("failed to list users: %w", err)
	}

	summary := RunSummary{Users: len(userIDs)}
	var errs []error
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		result, err := s.RefreshUser(ctx, userID)
		if err != nil {
			s.log.Error().Err(err).Int64("user_id", userID).Msg("Pipeline failed for user")
			summary.Failed++
			errs = append(errs, err)
			continue
		}
		summary.Succeeded++
		summary.Actions += len(result.Actions)
	}

	s.log.Info().
		Int("users", summary.Users).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Int("actions", summary.Actions).
		Dur("duration", time.Since(start)).
		Msg("Pipeline run complete")

	return summary, errors.Join(errs...)
}

// cached decodes a fresh cache entry into dst and reports whether it did
func (s *PipelineService) cached(ctx context.Context, key string, dst interface{}) bool {
	if s.deps.Cache == nil {
		return false
	}
	raw, err := s.deps.Cache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		return false
	}
	if raw == nil {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Discarding undecodable cache entry")
		return false
	}
	return true
}

func (s *PipelineService) store(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if s.deps.Cache == nil {
		return
	}
	if err := s.deps.Cache.Set(ctx, key, value, ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}
