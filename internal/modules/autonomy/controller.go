package autonomy

import (
	"context"
	"fmt"

	"github.com/expenseoracle/oracle/internal/domain"
	"github.com/rs/zerolog"
)

// Evaluator produces a decision snapshot
type Evaluator interface {
	Evaluate(expenses []domain.ExpenseRecord, profile domain.Profile) domain.DecisionSnapshot
}

// PolicyApplier turns a snapshot into policy actions
type PolicyApplier interface {
	ApplyPolicies(snapshot domain.DecisionSnapshot, profile domain.Profile) []domain.Action
}

// RunResult is the outcome of one autonomy run
type RunResult struct {
	Decisions domain.DecisionSnapshot `json:"decisions"`
	Actions   []domain.ExecutedAction `json:"actions"`
}

// Controller evaluates, applies policies and executes actions in simulation.
type Controller struct {
	evaluator       Evaluator
	policies        PolicyApplier
	audit           domain.AuditSink
	autonomyEnabled bool
	log             zerolog.Logger
}

// NewController creates an autonomous controller. audit may be nil.
func NewController(evaluator Evaluator, policies PolicyApplier, audit domain.AuditSink, autonomyEnabled bool, log zerolog.Logger) *Controller {
	return &Controller{
		evaluator:       evaluator,
		policies:        policies,
		audit:           audit,
		autonomyEnabled: autonomyEnabled,
		log:             log.With().Str("component", "autonomous_controller").Logger(),
	}
}

// RunAutonomy marks every policy action as simulated_executed. Audit failures
// are logged and never change the result.
func (c *Controller) RunAutonomy(ctx context.Context, expenses []domain.ExpenseRecord, profile domain.Profile) RunResult {
	decisions := c.evaluator.Evaluate(expenses, profile)
	actions := c.policies.ApplyPolicies(decisions, profile)

	executed := make([]domain.ExecutedAction, 0, len(actions))
	for _, a := range actions {
		ea := domain.ExecutedAction{Action: a, Status: domain.StatusSimulatedExecuted}
		executed = append(executed, ea)

		if c.autonomyEnabled && c.audit != nil {
			if err := c.record(ctx, ea); err != nil {
				c.log.Warn().Err(err).Str("action_type", string(a.Type)).Msg("Failed to persist autonomous action")
			}
		}
	}

	c.log.Info().Int("executed", len(executed)).Msg("Autonomy run complete")

	return RunResult{Decisions: decisions, Actions: executed}
}

func (c *Controller) record(ctx context.Context, ea domain.ExecutedAction) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("audit sink panicked: %v", r)
		}
	}()
	_, err = c.audit.Save(ctx, string(ea.Action.Type), ea.Action, ea.Status)
	return err
}
