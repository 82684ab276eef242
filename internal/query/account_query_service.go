package query

import (
	"context"

	"github.com/mbhbank/account-service/internal/ledger"
	"github.com/mbhbank/account-service/shared/accountnumber"
	"github.com/mbhbank/account-service/shared/cqrs"
	"github.com/mbhbank/account-service/shared/models"
)

type AccountReader interface {
	GetActive(ctx context.Context, accountNumber accountnumber.Number) (*models.Account, error)
	ListActive(ctx context.Context) ([]models.Account, error)
}

// AccountLiveness answers from the source of truth, never from a view cache.
type AccountLiveness interface {
	GetActive(ctx context.Context, accountNumber accountnumber.Number) (*models.Account, error)
}

type AccountTransactions interface {
	ListByAccountNumber(ctx context.Context, accountNumber accountnumber.Number) ([]models.Transaction, error)
}

type AccountQueryService struct {
	accounts     AccountReader
	live         AccountLiveness
	transactions AccountTransactions
}

func NewAccountQueryService(accounts AccountReader, live AccountLiveness, transactions AccountTransactions) *AccountQueryService {
	return &AccountQueryService{accounts: accounts, live: live, transactions: transactions}
}

// GetAccount returns an active account; deleted accounts are not found.
func (s *AccountQueryService) GetAccount(ctx context.Context, q cqrs.GetAccountQuery) (*models.Account, error) {
	return s.accounts.GetActive(ctx, q.AccountNumber)
}

func (s *AccountQueryService) ListAccounts(ctx context.Context, q cqrs.ListAccountsQuery) ([]models.Account, error) {
	return s.accounts.ListActive(ctx)
}

// GetBalance sums every transaction ever recorded for an active account.
func (s *AccountQueryService) GetBalance(ctx context.Context, q cqrs.GetBalanceQuery) (int64, error) {
	if _, err := s.live.GetActive(ctx, q.AccountNumber); err != nil {
		return 0, err
	}
	transactions, err := s.transactions.ListByAccountNumber(ctx, q.AccountNumber)
	if err != nil {
		return 0, err
	}
	return ledger.Balance(transactions)
}
