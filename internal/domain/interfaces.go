package domain

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrProfileNotFound is returned when a user has no stored profile
var ErrProfileNotFound = errors.New("profile not found")

// ExpenseRepository is the read side of the expense/budget store.
// Empty results are valid and must not be reported as errors.
type ExpenseRepository interface {
	ListExpenses(ctx context.Context, userID int64) ([]ExpenseRecord, error)
	ListBudgets(ctx context.Context, userID int64) ([]BudgetLine, error)
	ListUserIDs(ctx context.Context) ([]int64, error)
}

// ProfileRepository provides per-user financial profiles
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID int64) (Profile, error)
}

// Cache memoizes serialized pipeline outputs by key.
// Get returns nil, nil on a miss or an expired entry.
type Cache interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// AuditSink records executed actions. Callers treat every error as non-fatal.
type AuditSink interface {
	Save(ctx context.Context, actionType string, payload interface{}, status string) (*AuditRecord, error)
}
