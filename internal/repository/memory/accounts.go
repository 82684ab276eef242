// Package memory holds in-process stores used when the service runs without
// PostgreSQL and Redis. They satisfy the same interfaces as the postgres
// repositories and are safe for concurrent use.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/mbhbank/account-service/shared/accountnumber"
	"github.com/mbhbank/account-service/shared/models"
	"github.com/mbhbank/account-service/shared/sentinel"
)

type AccountStore struct {
	seq atomic.Int64

	mu       sync.RWMutex
	accounts map[string]models.Account
}

func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[string]models.Account)}
}

func (s *AccountStore) NextSequence(ctx context.Context) (int64, error) {
	return s.seq.Add(1), nil
}

func (s *AccountStore) Create(ctx context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := account.AccountNumber.String()
	if _, exists := s.accounts[key]; exists {
		return fmt.Errorf("account %s already exists", key)
	}
	s.accounts[key] = *account
	return nil
}

func (s *AccountStore) Get(ctx context.Context, accountNumber accountnumber.Number) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[accountNumber.String()]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", accountNumber, sentinel.ErrNotFound)
	}
	return &account, nil
}

func (s *AccountStore) GetActive(ctx context.Context, accountNumber accountnumber.Number) (*models.Account, error) {
	account, err := s.Get(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	if account.IsDeleted {
		return nil, fmt.Errorf("account %s: %w", accountNumber, sentinel.ErrNotFound)
	}
	return account, nil
}

// ListActive returns non-deleted accounts ordered by account number.
func (s *AccountStore) ListActive(ctx context.Context) ([]models.Account, error) {
	s.mu.RLock()
	accounts := make([]models.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		if !account.IsDeleted {
			accounts = append(accounts, account)
		}
	}
	s.mu.RUnlock()

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].AccountNumber.Cmp(accounts[j].AccountNumber) < 0
	})
	return accounts, nil
}

func (s *AccountStore) UpdateHolderName(ctx context.Context, accountNumber accountnumber.Number, name string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := accountNumber.String()
	account, ok := s.accounts[key]
	if !ok || account.IsDeleted {
		return nil, fmt.Errorf("account %s: %w", accountNumber, sentinel.ErrNotFound)
	}
	account.AccountHolderName = name
	s.accounts[key] = account
	return &account, nil
}

func (s *AccountStore) SoftDelete(ctx context.Context, accountNumber accountnumber.Number) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := accountNumber.String()
	account, ok := s.accounts[key]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", accountNumber, sentinel.ErrNotFound)
	}
	account.IsDeleted = true
	s.accounts[key] = account
	return &account, nil
}

// Count includes soft-deleted accounts.
func (s *AccountStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts), nil
}

func (s *AccountStore) isActive(accountNumber accountnumber.Number) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[accountNumber.String()]
	return ok && !account.IsDeleted
}
