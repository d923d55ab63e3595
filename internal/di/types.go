/**
 * Package di provides dependency injection type definitions.
 *
 * The Container holds every long-lived component. It is built once by Wire()
 * and handed to the HTTP server and scheduler.
 */
package di

import (
	"github.com/expenseoracle/oracle/internal/cache"
	"github.com/expenseoracle/oracle/internal/database"
	"github.com/expenseoracle/oracle/internal/modules/anomaly"
	"github.com/expenseoracle/oracle/internal/modules/audit"
	"github.com/expenseoracle/oracle/internal/modules/autonomy"
	"github.com/expenseoracle/oracle/internal/modules/categorization"
	"github.com/expenseoracle/oracle/internal/modules/decision"
	"github.com/expenseoracle/oracle/internal/modules/expenses"
	"github.com/expenseoracle/oracle/internal/modules/forecasting"
	"github.com/expenseoracle/oracle/internal/modules/health"
	"github.com/expenseoracle/oracle/internal/modules/investment"
	"github.com/expenseoracle/oracle/internal/modules/metrics"
	"github.com/expenseoracle/oracle/internal/modules/policy"
	"github.com/expenseoracle/oracle/internal/modules/profiles"
	"github.com/expenseoracle/oracle/internal/modules/suggestions"
	"github.com/expenseoracle/oracle/internal/scheduler"
	"github.com/expenseoracle/oracle/internal/services"
)

/**
 * Container holds all dependencies for the application.
 *
 * Architecture:
 * - Databases: oracle.db (users, expenses, budgets, profiles, audit trail) and cache.db
 * - Repositories: data access for expenses, profiles, audit records and cache entries
 * - Estimators: stateless forecasting, anomaly, health, investment and pattern components
 * - Orchestration: decision engine, policy manager, autonomous engine and controller
 * - Services: the per-user pipeline
 */
type Container struct {
	// Databases
	OracleDB *database.DB
	CacheDB  *database.DB

	// Repositories
	ExpenseRepo *expenses.Repository
	ProfileRepo *profiles.Repository
	AuditRepo   *audit.Repository
	CacheRepo   *cache.Repository

	// Estimators
	Forecaster  *forecasting.Forecaster
	Detector    *anomaly.Detector
	Scorer      *health.Scorer
	Optimizer   *investment.Optimizer
	Analyzer    *suggestions.Analyzer
	Categorizer *categorization.Categorizer
	Metrics     *metrics.Manager

	// Orchestration
	DecisionEngine *decision.Engine
	PolicyManager  *policy.Manager
	AutonomyEngine *autonomy.Engine
	Controller     *autonomy.Controller

	// Services
	PipelineService *services.PipelineService
}

// JobInstances holds the scheduled jobs for registration and manual triggering
type JobInstances struct {
	Pipeline       *scheduler.PipelineJob
	CacheCleanup   *cache.CleanupJob
	WALCheckpoints *scheduler.CheckWALCheckpointsJob
	CoreDatabases  *scheduler.CheckCoreDatabasesJob
}

// Close closes every open database
func (c *Container) Close() {
	if c.OracleDB != nil {
		c.OracleDB.Close()
	}
	if c.CacheDB != nil {
		c.CacheDB.Close()
	}
}
