package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mbhbank/account-service/shared/accountnumber"
	"github.com/mbhbank/account-service/shared/models"
	sharedredis "github.com/mbhbank/account-service/shared/redis"
	"github.com/mbhbank/account-service/shared/sentinel"
	goredis "github.com/redis/go-redis/v9"
)

const transactionViewKeyPrefix = "transaction:view:"

// TransactionReadRepository handles all read operations for transactions.
// It uses Redis as the primary read store for single transactions, falling
// back to PostgreSQL on a miss.
type TransactionReadRepository struct {
	db    *sql.DB
	cache *sharedredis.ViewCache[models.Transaction]
}

func NewTransactionReadRepository(db *sql.DB, redisClient *goredis.Client) *TransactionReadRepository {
	return &TransactionReadRepository{
		db:    db,
		cache: sharedredis.NewViewCache[models.Transaction](redisClient, transactionViewKeyPrefix, 0),
	}
}

// GetByID returns a transaction by attempting Redis first, then PostgreSQL.
func (r *TransactionReadRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	if tx, ok := r.cache.Get(ctx, id.String()); ok {
		return tx, nil
	}

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

	// Warm the cache
	r.CacheTransactionView(ctx, tx)
	return tx, nil
}

// ListForActiveAccounts returns the transactions of every non-deleted account.
func (r *TransactionReadRepository) ListForActiveAccounts(ctx context.Context) ([]models.Transaction, error) {
	query := `
		SELECT t.id, t.account_number, t.type, t.amount, t.timestamp
		FROM transactions t
		JOIN accounts a ON a.account_number = t.account_number
		WHERE NOT a.is_deleted
		ORDER BY t.timestamp, t.id
	`
	return r.list(ctx, query)
}

func (r *TransactionReadRepository) ListByAccountNumber(ctx context.Context, accountNumber accountnumber.Number) ([]models.Transaction, error) {
	query := `
		SELECT id, account_number, type, amount, timestamp
		FROM transactions
		WHERE account_number = $1
		ORDER BY timestamp, id
	`
	return r.list(ctx, query, accountNumber)
}

func (r *TransactionReadRepository) list(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, nil
}

// CacheTransactionView stores or refreshes the Redis read model for a transaction.
func (r *TransactionReadRepository) CacheTransactionView(ctx context.Context, tx *models.Transaction) {
	r.cache.Set(ctx, tx.ID.String(), tx)
}
