package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mbhbank/account-service/shared/accountnumber"
	"github.com/mbhbank/account-service/shared/models"
	sharedredis "github.com/mbhbank/account-service/shared/redis"
	"github.com/mbhbank/account-service/shared/sentinel"
	goredis "github.com/redis/go-redis/v9"
)

const (
	accountViewKeyPrefix = "account:view:"
	// AccountViewTTL bounds how long a missed invalidation can keep a deleted
	// account visible through GetActive.
	AccountViewTTL = 5 * time.Minute
)

// AccountReadRepository handles all read operations for accounts.
// It treats Redis as the primary read store for single accounts and falls
// back to PostgreSQL transparently, warming the cache on every cold read.
// Only active accounts are ever cached. The view is for display reads; it
// never decides whether a transaction is admitted.
type AccountReadRepository struct {
	db    *sql.DB
	cache *sharedredis.ViewCache[models.Account]
}

func NewAccountReadRepository(db *sql.DB, redisClient *goredis.Client) *AccountReadRepository {
	return &AccountReadRepository{
		db:    db,
		cache: sharedredis.NewViewCache[models.Account](redisClient, accountViewKeyPrefix, AccountViewTTL),
	}
}

// GetActive returns a non-deleted account, trying Redis first then PostgreSQL.
func (r *AccountReadRepository) GetActive(ctx context.Context, accountNumber accountnumber.Number) (*models.Account, error) {
	if account, ok := r.cache.Get(ctx, accountNumber.String()); ok && !account.IsDeleted {
		return account, nil
	}

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

	// Warm the cache
	r.CacheAccountView(ctx, &account)
	return &account, nil
}

// ListActive returns every non-deleted account ordered by account number.
func (r *AccountReadRepository) ListActive(ctx context.Context) ([]models.Account, error) {
	query := `
		SELECT account_number, account_holder_name, is_deleted
		FROM accounts
		WHERE NOT is_deleted
		ORDER BY account_number
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		var account models.Account
		if err := rows.Scan(&account.AccountNumber, &account.AccountHolderName, &account.IsDeleted); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// CacheAccountView stores or refreshes the Redis read model for an account.
// Called by the command service after every mutation to keep the read model current.
func (r *AccountReadRepository) CacheAccountView(ctx context.Context, account *models.Account) {
	if account.IsDeleted {
		r.InvalidateAccountView(ctx, account.AccountNumber)
		return
	}
	r.cache.Set(ctx, account.AccountNumber.String(), account)
}

// InvalidateAccountView removes the Redis read model entry for a deleted account.
func (r *AccountReadRepository) InvalidateAccountView(ctx context.Context, accountNumber accountnumber.Number) {
	r.cache.Delete(ctx, accountNumber.String())
}
