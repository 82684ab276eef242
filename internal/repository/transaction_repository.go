package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mbhbank/account-service/shared/models"
	"github.com/mbhbank/account-service/shared/sentinel"
)

// TransactionWriteRepository handles all state-mutating operations for transactions.
type TransactionWriteRepository struct {
	db *sql.DB
}

func NewTransactionWriteRepository(db *sql.DB) *TransactionWriteRepository {
	return &TransactionWriteRepository{db: db}
}

func (r *TransactionWriteRepository) Create(ctx context.Context, tx *models.Transaction) error {
	query := `
		INSERT INTO transactions (id, account_number, type, amount, timestamp)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, tx.ID, tx.AccountNumber, string(tx.Type), tx.Amount, tx.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *TransactionWriteRepository) Get(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	query := `
		SELECT id, account_number, type, amount, timestamp
		FROM transactions
		WHERE id = $1
	`
	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return tx, nil
}

// Update replaces every mutable field. The id is never changed.
func (r *TransactionWriteRepository) Update(ctx context.Context, tx *models.Transaction) error {
	query := `
		UPDATE transactions
		SET account_number = $2, type = $3, amount = $4, timestamp = $5
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, tx.ID, tx.AccountNumber, string(tx.Type), tx.Amount, tx.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("transaction %s: %w", tx.ID, sentinel.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var tx models.Transaction
	var txType string
	if err := row.Scan(&tx.ID, &tx.AccountNumber, &txType, &tx.Amount, &tx.Timestamp); err != nil {
		return nil, err
	}
	tx.Type = models.TransactionType(txType)
	tx.Timestamp = tx.Timestamp.UTC()
	return &tx, nil
}
