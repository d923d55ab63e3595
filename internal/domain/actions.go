package domain

import "time"

// ActionType identifies what an action recommends
type ActionType string

// Ranked action types emitted by the autonomous engine
const (
	ActionInvestmentAdvice      ActionType = "INVESTMENT_ADVICE"
	ActionBudgetWarning         ActionType = "BUDGET_WARNING"
	ActionSecurityAlert         ActionType = "SECURITY_ALERT"
	ActionLifestyleOptimization ActionType = "LIFESTYLE_OPTIMIZATION"
)

// Policy action types emitted by the policy manager
const (
	ActionReallocateBudget  ActionType = "reallocate_budget"
	ActionFreezeTransaction ActionType = "freeze_transaction"
	ActionAdjustInvestment  ActionType = "adjust_investment"
)

// StatusSimulatedExecuted marks an action the controller executed in simulation
const StatusSimulatedExecuted = "simulated_executed"

// Action is a single explainable recommendation.
// Actions are created once and only ranked or filtered afterwards.
type Action struct {
	SuggestedChange     *float64          `json:"suggested_change,omitempty"`
	Transaction         *AnomalyFinding   `json:"transaction,omitempty"`
	SuggestedAllocation *AllocationAdvice `json:"suggested_allocation,omitempty"`
	Type                ActionType        `json:"type"`
	Message             string            `json:"message,omitempty"`
	Action              string            `json:"action,omitempty"`
	Reason              string            `json:"reason,omitempty"`
	Why                 []string          `json:"why,omitempty"`
	PriorityScore       float64           `json:"priority_score"`
	ConfidenceThreshold float64           `json:"confidence_threshold"`
}

// ExecutedAction pairs an action with its execution status
type ExecutedAction struct {
	Status string `json:"status"`
	Action Action `json:"action"`
}

// AuditRecord is a persisted trace of an executed action
type AuditRecord struct {
	CreatedAt  time.Time `json:"created_at"`
	ID         string    `json:"id"`
	ActionType string    `json:"action_type"`
	Status     string    `json:"status"`
	Payload    []byte    `json:"payload"`
}
