package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/mbhbank/account-service/shared/accountnumber"
	"github.com/mbhbank/account-service/shared/models"
	"github.com/mbhbank/account-service/shared/sentinel"
)

// TransactionStore keeps transactions in insertion order. It consults the
// account store to filter out transactions of deleted accounts.
type TransactionStore struct {
	accounts *AccountStore

	mu    sync.RWMutex
	order []uuid.UUID
	byID  map[uuid.UUID]models.Transaction
}

func NewTransactionStore(accounts *AccountStore) *TransactionStore {
	return &TransactionStore{
		accounts: accounts,
		byID:     make(map[uuid.UUID]models.Transaction),
	}
}

func (s *TransactionStore) Create(ctx context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[tx.ID]; exists {
		return fmt.Errorf("transaction %s already exists", tx.ID)
	}
	s.byID[tx.ID] = *tx
	s.order = append(s.order, tx.ID)
	return nil
}

func (s *TransactionStore) Get(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("transaction %s: %w", id, sentinel.ErrNotFound)
	}
	return &tx, nil
}

// GetByID is Get under the read-side name.
func (s *TransactionStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	return s.Get(ctx, id)
}

func (s *TransactionStore) Update(ctx context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[tx.ID]; !ok {
		return fmt.Errorf("transaction %s: %w", tx.ID, sentinel.ErrNotFound)
	}
	s.byID[tx.ID] = *tx
	return nil
}

func (s *TransactionStore) ListForActiveAccounts(ctx context.Context) ([]models.Transaction, error) {
	return s.filter(func(tx models.Transaction) bool {
		return s.accounts.isActive(tx.AccountNumber)
	}), nil
}

func (s *TransactionStore) ListByAccountNumber(ctx context.Context, accountNumber accountnumber.Number) ([]models.Transaction, error) {
	return s.filter(func(tx models.Transaction) bool {
		return tx.AccountNumber.Equal(accountNumber)
	}), nil
}

func (s *TransactionStore) filter(keep func(models.Transaction) bool) []models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Transaction{}
	for _, id := range s.order {
		if tx := s.byID[id]; keep(tx) {
			out = append(out, tx)
		}
	}
	return out
}
