// Package audit persists the trail of actions executed by the autonomous controller.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/expenseoracle/oracle/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Repository is an append-only store over the autonomous_actions table.
// It satisfies domain.AuditSink.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new audit repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "audit").Logger(),
	}
}

// Save appends one audit row and returns it
func (r *Repository) Save(ctx context.Context, actionType string, payload interface{}, status string) (*domain.AuditRecord, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal audit payload: %w", err)
	}

	rec := &domain.AuditRecord{
		ID:         uuid.New().String(),
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
		ActionType: actionType,
		Payload:    data,
		Status:     status,
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO autonomous_actions (id, created_at, action_type, payload, status)
		VALUES (?, ?, ?, ?, ?)
	`, rec.ID, rec.CreatedAt.Unix(), rec.ActionType, string(rec.Payload), rec.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to insert audit record: %w", err)
	}

	r.log.Debug().
		Str("id", rec.ID).
		Str("action_type", actionType).
		Msg("Audit record saved")

	return rec, nil
}

// ListRecent returns up to limit records, newest first
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]domain.AuditRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at, action_type, payload, status
		FROM autonomous_actions
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit records: %w", err)
	}
	defer rows.Close()

	records := make([]domain.AuditRecord, 0)
	for rows.Next() {
		var rec domain.AuditRecord
		var createdAt int64
		var payload, status sql.NullString
		if err := rows.Scan(&rec.ID, &createdAt, &rec.ActionType, &payload, &status); err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		rec.CreatedAt = time.Unix(createdAt, 0).UTC()
		rec.Payload = []byte(payload.String)
		rec.Status = status.String
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit records: %w", err)
	}

	return records, nil
}
