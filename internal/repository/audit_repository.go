package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mbhbank/account-service/shared/models"
)

// AuditRepository is an append-only log of domain events.
type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(ctx context.Context, record *models.AuditRecord) error {
	query := `
		INSERT INTO audit_events (stream, type, payload, recorded_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query, record.Stream, record.Type, string(record.Payload), record.RecordedAt).Scan(&record.ID)
	if err != nil {
		return fmt.Errorf("failed to append audit event: %w", err)
	}
	return nil
}

// ListByType returns audit records of one event type, oldest first.
func (r *AuditRepository) ListByType(ctx context.Context, eventType string) ([]models.AuditRecord, error) {
	query := `
		SELECT id, stream, type, payload, recorded_at
		FROM audit_events
		WHERE type = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, eventType)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	defer rows.Close()

	records := []models.AuditRecord{}
	for rows.Next() {
		var record models.AuditRecord
		var payload []byte
		if err := rows.Scan(&record.ID, &record.Stream, &record.Type, &payload, &record.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		record.Payload = payload
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	return records, nil
}
