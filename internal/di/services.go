// Package di provides dependency injection for estimators and services.
package di

import (
	"fmt"

	"github.com/expenseoracle/oracle/internal/config"
	"github.com/expenseoracle/oracle/internal/modules/anomaly"
	"github.com/expenseoracle/oracle/internal/modules/autonomy"
	"github.com/expenseoracle/oracle/internal/modules/categorization"
	"github.com/expenseoracle/oracle/internal/modules/decision"
	"github.com/expenseoracle/oracle/internal/modules/forecasting"
	"github.com/expenseoracle/oracle/internal/modules/health"
	"github.com/expenseoracle/oracle/internal/modules/investment"
	"github.com/expenseoracle/oracle/internal/modules/metrics"
	"github.com/expenseoracle/oracle/internal/modules/policy"
	"github.com/expenseoracle/oracle/internal/modules/suggestions"
	"github.com/expenseoracle/oracle/internal/services"
	"github.com/rs/zerolog"
)

// InitializeServices creates estimators, orchestration and the pipeline service.
// Every estimator is present here; a nil estimator in decision.Estimators is a
// construction-time choice of the caller.
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil || container.ExpenseRepo == nil {
		return fmt.Errorf("repositories must be initialized before services")
	}

	// Estimators
	container.Forecaster = forecasting.NewForecaster()
	container.Detector = anomaly.NewDetector()
	container.Scorer = health.NewScorer()
	container.Optimizer = investment.NewOptimizer()
	container.Analyzer = suggestions.NewAnalyzer()
	container.Categorizer = categorization.NewCategorizer()
	container.Metrics = metrics.NewManager(container.Forecaster)

	// Orchestration
	container.DecisionEngine = decision.NewEngine(decision.Estimators{
		Forecaster: container.Forecaster,
		Anomaly:    container.Detector,
		Investment: container.Optimizer,
		Health:     container.Scorer,
	}, cfg.Decision.AnomalyThreshold, log)

	container.PolicyManager = policy.NewManager(policy.Thresholds{
		ForecastOverrunFactor: cfg.Decision.ForecastOverrunFactor,
		AnomalyCountToFreeze:  cfg.Decision.AnomalyCountToFreeze,
	}, log)

	container.AutonomyEngine = autonomy.NewEngine(autonomy.EngineDeps{
		Forecaster: container.Forecaster,
		Anomaly:    container.Detector,
		Investment: container.Optimizer,
		Health:     container.Scorer,
		Patterns:   container.Analyzer,
	}, cfg.Decision.AnomalyThreshold)

	container.Controller = autonomy.NewController(
		container.DecisionEngine,
		container.PolicyManager,
		container.AuditRepo,
		cfg.AutonomyEnabled,
		log,
	)

	// Pipeline
	deps := services.PipelineDeps{
		Expenses:   container.ExpenseRepo,
		Profiles:   container.ProfileRepo,
		Cache:      container.CacheRepo,
		Forecaster: container.Forecaster,
		Anomaly:    container.Detector,
		Health:     container.Scorer,
		Decisions:  container.DecisionEngine,
		Actions:    container.AutonomyEngine,
		Controller: container.Controller,
	}
	if cfg.Decision.AutoCategorize {
		deps.Categorizer = container.Categorizer
	}
	container.PipelineService = services.NewPipelineService(deps, cfg.Cache, cfg.Decision.AnomalyThreshold, log)

	log.Info().
		Bool("autonomy_enabled", cfg.AutonomyEnabled).
		Bool("auto_categorize", cfg.Decision.AutoCategorize).
		Msg("Services initialized")
	return nil
}
