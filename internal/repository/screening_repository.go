package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mbhbank/account-service/shared/accountnumber"
	"github.com/mbhbank/account-service/shared/models"
	"github.com/mbhbank/account-service/shared/sentinel"
)

// ScreeningRepository stores outbound screening requests and the verdicts
// received for them.
type ScreeningRepository struct {
	db *sql.DB
}

func NewScreeningRepository(db *sql.DB) *ScreeningRepository {
	return &ScreeningRepository{db: db}
}

func (r *ScreeningRepository) SaveRequest(ctx context.Context, req *models.ScreeningRequest) error {
	query := `
		INSERT INTO screening_requests (callback_token, account_number, account_holder_name, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query, req.CallbackToken, req.AccountNumber, req.AccountHolderName, req.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save screening request: %w", err)
	}
	return nil
}

func (r *ScreeningRepository) FindRequest(ctx context.Context, token uuid.UUID) (*models.ScreeningRequest, error) {
	query := `
		SELECT callback_token, account_number, account_holder_name, created_at
		FROM screening_requests
		WHERE callback_token = $1
	`
	var req models.ScreeningRequest
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&req.CallbackToken, &req.AccountNumber, &req.AccountHolderName, &req.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("screening request: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find screening request: %w", err)
	}
	req.CreatedAt = req.CreatedAt.UTC()
	return &req, nil
}

// UpsertResult records the latest verdict for an account. Last write wins.
func (r *ScreeningRepository) UpsertResult(ctx context.Context, result *models.ScreeningResult) error {
	query := `
		INSERT INTO screening_results (account_number, is_security_check_success, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_number)
		DO UPDATE SET is_security_check_success = EXCLUDED.is_security_check_success,
		              updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query, result.AccountNumber, result.IsSecurityCheckSuccess, result.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert screening result: %w", err)
	}
	return nil
}

func (r *ScreeningRepository) FindResult(ctx context.Context, accountNumber accountnumber.Number) (*models.ScreeningResult, error) {
	query := `
		SELECT account_number, is_security_check_success, updated_at
		FROM screening_results
		WHERE account_number = $1
	`
	var result models.ScreeningResult
	err := r.db.QueryRowContext(ctx, query, accountNumber).Scan(
		&result.AccountNumber, &result.IsSecurityCheckSuccess, &result.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("screening result for %s: %w", accountNumber, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find screening result: %w", err)
	}
	result.UpdatedAt = result.UpdatedAt.UTC()
	return &result, nil
}
