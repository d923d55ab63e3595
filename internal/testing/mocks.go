package testing

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/expenseoracle/oracle/internal/domain"
)

// MockExpenseRepository is an in-memory implementation of domain.ExpenseRepository for testing
type MockExpenseRepository struct {
	mu       sync.RWMutex
	expenses map[int64][]domain.ExpenseRecord
	budgets  map[int64][]domain.BudgetLine
	err      error
}

// NewMockExpenseRepository creates a new mock expense repository
func NewMockExpenseRepository() *MockExpenseRepository {
	return &MockExpenseRepository{
		expenses: make(map[int64][]domain.ExpenseRecord),
		budgets:  make(map[int64][]domain.BudgetLine),
	}
}

// SetExpenses sets the expenses to return for a user
func (m *MockExpenseRepository) SetExpenses(userID int64, expenses []domain.ExpenseRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expenses[userID] = expenses
}

// SetBudgets sets the budget lines to return for a user
func (m *MockExpenseRepository) SetBudgets(userID int64, budgets []domain.BudgetLine) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.budgets[userID] = budgets
}

// SetError sets the error to return
func (m *MockExpenseRepository) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// ListExpenses returns the expenses for a user
func (m *MockExpenseRepository) ListExpenses(_ context.Context, userID int64) ([]domain.ExpenseRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.expenses[userID], nil
}

// ListBudgets returns the budget lines for a user
func (m *MockExpenseRepository) ListBudgets(_ context.Context, userID int64) ([]domain.BudgetLine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.budgets[userID], nil
}

// ListUserIDs returns every user that has expenses or budgets, in ascending order
func (m *MockExpenseRepository) ListUserIDs(_ context.Context) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	seen := make(map[int64]bool)
	ids := make([]int64, 0)
	for id := range m.expenses {
		seen[id] = true
	}
	for id := range m.budgets {
		seen[id] = true
	}
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// MockProfileRepository is an in-memory implementation of domain.ProfileRepository for testing
type MockProfileRepository struct {
	mu       sync.RWMutex
	profiles map[int64]domain.Profile
	err      error
}

// NewMockProfileRepository creates a new mock profile repository
func NewMockProfileRepository() *MockProfileRepository {
	return &MockProfileRepository{profiles: make(map[int64]domain.Profile)}
}

// SetProfile stores a profile for a user
func (m *MockProfileRepository) SetProfile(userID int64, profile domain.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[userID] = profile
}

// SetError sets the error to return
func (m *MockProfileRepository) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// GetProfile returns the stored profile or domain.ErrProfileNotFound
func (m *MockProfileRepository) GetProfile(_ context.Context, userID int64) (domain.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return domain.Profile{}, m.err
	}
	p, ok := m.profiles[userID]
	if !ok {
		return domain.Profile{}, domain.ErrProfileNotFound
	}
	return p, nil
}

// MockCache is an in-memory implementation of domain.Cache for testing.
// TTLs are recorded but not enforced.
type MockCache struct {
	mu      sync.RWMutex
	entries map[string]json.RawMessage
	ttls    map[string]time.Duration
	gets    int
	sets    int
	err     error
}

// NewMockCache creates a new mock cache
func NewMockCache() *MockCache {
	return &MockCache{
		entries: make(map[string]json.RawMessage),
		ttls:    make(map[string]time.Duration),
	}
}

// SetError makes every cache call fail with err
func (m *MockCache) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Get returns the cached value or nil on a miss
func (m *MockCache) Get(_ context.Context, key string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.err != nil {
		return nil, m.err
	}
	return m.entries[key], nil
}

// Set stores the JSON encoding of value
func (m *MockCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.err != nil {
		return m.err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = data
	m.ttls[key] = ttl
	return nil
}

// Delete removes a key
func (m *MockCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.entries, key)
	delete(m.ttls, key)
	return nil
}

// TTL returns the ttl a key was stored with
func (m *MockCache) TTL(key string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ttls[key]
}

// Has reports whether a key is cached
func (m *MockCache) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[key]
	return ok
}

// SetCount returns the number of Set calls
func (m *MockCache) SetCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sets
}

// ErrAuditUnavailable is the error returned by a failing MockAuditSink
var ErrAuditUnavailable = errors.New("audit store unavailable")

// MockAuditSink records saved actions in memory for testing
type MockAuditSink struct {
	mu      sync.Mutex
	records []domain.AuditRecord
	fail    bool
	panics  bool
}

// NewMockAuditSink creates a new mock audit sink
func NewMockAuditSink() *MockAuditSink {
	return &MockAuditSink{}
}

// SetFailing makes Save return ErrAuditUnavailable
func (m *MockAuditSink) SetFailing(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}

// SetPanicking makes Save panic
func (m *MockAuditSink) SetPanicking(panics bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panics = panics
}

// Save records the action
func (m *MockAuditSink) Save(_ context.Context, actionType string, payload interface{}, status string) (*domain.AuditRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.panics {
		panic("audit sink exploded")
	}
	if m.fail {
		return nil, ErrAuditUnavailable
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	rec := domain.AuditRecord{
		ActionType: actionType,
		Payload:    data,
		Status:     status,
		CreatedAt:  time.Now().UTC(),
	}
	m.records = append(m.records, rec)
	return &rec, nil
}

// Records returns every saved record
func (m *MockAuditSink) Records() []domain.AuditRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.AuditRecord, len(m.records))
	copy(out, m.records)
	return out
}
