// Package expenses provides storage for users, their expenses, and budget lines.
package expenses

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/expenseoracle/oracle/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Repository reads and writes expense data in oracle.db.
// It satisfies domain.ExpenseRepository.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new expense repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "expenses").Logger(),
	}
}

// CreateUser inserts a user and returns its id
func (r *Repository) CreateUser(ctx context.Context, email string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO users (email, created_at) VALUES (?, ?)",
		email, time.Now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create user %s: %w", email, err)
	}
	return result.LastInsertId()
}

// AddExpense stores an expense for a user and returns the record with its id set.
// A zero CreatedAt is stamped with the current time.
func (r *Repository) AddExpense(ctx context.Context, userID int64, e domain.ExpenseRecord) (domain.ExpenseRecord, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	var category sql.NullString
	if e.Category != nil {
		category = sql.NullString{String: *e.Category, Valid: true}
	}

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO expenses (user_id, title, amount, category, created_at) VALUES (?, ?, ?, ?, ?)",
		userID, e.Title, e.Amount.String(), category, e.CreatedAt.Unix(),
	)
	if err != nil {
		return e, fmt.Errorf("failed to insert expense for user %d: %w", userID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return e, fmt.Errorf("failed to read expense id: %w", err)
	}
	e.ID = id
	return e, nil
}

// AddBudget stores a budget line for a user
func (r *Repository) AddBudget(ctx context.Context, userID int64, b domain.BudgetLine) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO budgets (user_id, category, limit_amount, created_at) VALUES (?, ?, ?, ?)",
		userID, b.Category, b.LimitAmount.String(), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert budget for user %d: %w", userID, err)
	}
	return nil
}

// ListExpenses returns every expense of a user, oldest first
func (r *Repository) ListExpenses(ctx context.Context, userID int64) ([]domain.ExpenseRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, amount, category, created_at
		FROM expenses
		WHERE user_id = ?
		ORDER BY created_at ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses for user %d: %w", userID, err)
	}
	defer rows.Close()

	expenses := make([]domain.ExpenseRecord, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}

	return expenses, nil
}

// ListBudgets returns the budget lines of a user
func (r *Repository) ListBudgets(ctx context.Context, userID int64) ([]domain.BudgetLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, limit_amount
		FROM budgets
		WHERE user_id = ?
		ORDER BY id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets for user %d: %w", userID, err)
	}
	defer rows.Close()

	budgets := make([]domain.BudgetLine, 0)
	for rows.Next() {
		var b domain.BudgetLine
		var limit string
		if err := rows.Scan(&b.Category, &limit); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		b.LimitAmount, err = decimal.NewFromString(limit)
		if err != nil {
			return nil, fmt.Errorf("invalid budget limit %q: %w", limit, err)
		}
		budgets = append(budgets, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budgets: %w", err)
	}

	return budgets, nil
}

// ListUserIDs returns the ids of every registered user
func (r *Repository) ListUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id FROM users ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// TotalBudget sums budget lines into a monthly budget
func TotalBudget(budgets []domain.BudgetLine) decimal.Decimal {
	total := decimal.Zero
	for _, b := range budgets {
		total = total.Add(b.LimitAmount)
	}
	return total
}

func scanExpense(rows *sql.Rows) (domain.ExpenseRecord, error) {
	var e domain.ExpenseRecord
	var amount string
	var category sql.NullString
	var createdAt int64

	if err := rows.Scan(&e.ID, &e.Title, &amount, &category, &createdAt); err != nil {
		return e, fmt.Errorf("failed to scan expense: %w", err)
	}

	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return e, fmt.Errorf("invalid amount %q for expense %d: %w", amount, e.ID, err)
	}
	e.Amount = parsed

	if category.Valid {
		c := category.String
		e.Category = &c
	}
	e.CreatedAt = time.Unix(createdAt, 0).UTC()

	return e, nil
}
