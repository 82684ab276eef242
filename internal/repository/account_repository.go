package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mbhbank/account-service/shared/accountnumber"
	"github.com/mbhbank/account-service/shared/models"
	"github.com/mbhbank/account-service/shared/sentinel"
)

// AccountWriteRepository handles all state-mutating operations for accounts.
// It operates exclusively against the PostgreSQL write store (source of truth).
type AccountWriteRepository struct {
	db *sql.DB
}

func NewAccountWriteRepository(db *sql.DB) *AccountWriteRepository {
	return &AccountWriteRepository{db: db}
}

// NextSequence allocates the next value of accounts_seq. Values are never
// handed out twice, even across concurrent callers.
func (r *AccountWriteRepository) NextSequence(ctx context.Context) (int64, error) {
	var seq int64
	if err := r.db.QueryRowContext(ctx, `SELECT nextval('accounts_seq')`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("failed to allocate account sequence: %w", err)
	}
	return seq, nil
}

func (r *AccountWriteRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (account_number, account_holder_name, is_deleted)
		VALUES ($1, $2, $3)
	`
	_, err := r.db.ExecContext(ctx, query, account.AccountNumber, account.AccountHolderName, account.IsDeleted)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// Get returns the account whether or not it is soft-deleted.
func (r *AccountWriteRepository) Get(ctx context.Context, accountNumber accountnumber.Number) (*models.Account, error) {
	query := `
		SELECT account_number, account_holder_name, is_deleted
		FROM accounts
		WHERE account_number = $1
	`
	var account models.Account
	err := r.db.QueryRowContext(ctx, query, accountNumber).Scan(
		&account.AccountNumber, &account.AccountHolderName, &account.IsDeleted,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", accountNumber, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// GetActive reads liveness straight from PostgreSQL. Admission and balance
// checks use it instead of the Redis view.
func (r *AccountWriteRepository) GetActive(ctx context.Context, accountNumber accountnumber.Number) (*models.Account, error) {
	query := `
		SELECT account_number, account_holder_name, is_deleted
		FROM accounts
		WHERE account_number = $1 AND NOT is_deleted
	`
	var account models.Account
	err := r.db.QueryRowContext(ctx, query, accountNumber).Scan(
		&account.AccountNumber, &account.AccountHolderName, &account.IsDeleted,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", accountNumber, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// UpdateHolderName renames an active account.
func (r *AccountWriteRepository) UpdateHolderName(ctx context.Context, accountNumber accountnumber.Number, name string) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET account_holder_name = $2, updated_at = NOW()
		WHERE account_number = $1 AND NOT is_deleted
		RETURNING account_number, account_holder_name, is_deleted
	`
	var account models.Account
	err := r.db.QueryRowContext(ctx, query, accountNumber, name).Scan(
		&account.AccountNumber, &account.AccountHolderName, &account.IsDeleted,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", accountNumber, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return &account, nil
}

// SoftDelete flags the account as deleted. Deleting an already deleted account
// succeeds and returns the same row.
func (r *AccountWriteRepository) SoftDelete(ctx context.Context, accountNumber accountnumber.Number) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET is_deleted = TRUE, updated_at = NOW()
		WHERE account_number = $1
		RETURNING account_number, account_holder_name, is_deleted
	`
	var account models.Account
	err := r.db.QueryRowContext(ctx, query, accountNumber).Scan(
		&account.AccountNumber, &account.AccountHolderName, &account.IsDeleted,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", accountNumber, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete account: %w", err)
	}
	return &account, nil
}

// Count includes soft-deleted rows.
func (r *AccountWriteRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return count, nil
}
