// Package profiles stores per-user financial profiles.
package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/expenseoracle/oracle/internal/domain"
	"github.com/rs/zerolog"
)

// Repository reads and writes the profiles table in oracle.db.
// It satisfies domain.ProfileRepository.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new profile repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "profiles").Logger(),
	}
}

// GetProfile returns the stored profile, or domain.ErrProfileNotFound
func (r *Repository) GetProfile(ctx context.Context, userID int64) (domain.Profile, error) {
	var p domain.Profile
	var tolerance string

	err := r.db.QueryRowContext(ctx, `
		SELECT income, monthly_budget, monthly_savings, risk_tolerance
		FROM profiles
		WHERE user_id = ?
	`, userID).Scan(&p.Income, &p.MonthlyBudget, &p.MonthlySavings, &tolerance)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Profile{}, domain.ErrProfileNotFound
	}
	if err != nil {
		return domain.Profile{}, fmt.Errorf("failed to get profile for user %d: %w", userID, err)
	}

	p.RiskTolerance = domain.ParseRiskTolerance(tolerance)
	return p, nil
}

// Upsert creates or replaces a user's profile
func (r *Repository) Upsert(ctx context.Context, userID int64, p domain.Profile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, income, monthly_budget, monthly_savings, risk_tolerance, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			income = excluded.income,
			monthly_budget = excluded.monthly_budget,
			monthly_savings = excluded.monthly_savings,
			risk_tolerance = excluded.risk_tolerance,
			updated_at = excluded.updated_at
	`, userID, p.Income, p.MonthlyBudget, p.MonthlySavings, string(domain.ParseRiskTolerance(string(p.RiskTolerance))), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert profile for user %d: %w", userID, err)
	}
	return nil
}

// GetOrDefault returns the stored profile, falling back to domain.DefaultProfile
// when none exists. Other errors are returned.
func GetOrDefault(ctx context.Context, repo domain.ProfileRepository, userID int64) (domain.Profile, error) {
	p, err := repo.GetProfile(ctx, userID)
	if errors.Is(err, domain.ErrProfileNotFound) {
		return domain.DefaultProfile(), nil
	}
	if err != nil {
		return domain.Profile{}, err
	}
	return p, nil
}
