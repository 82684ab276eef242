package cqrs

import (
	"github.com/google/uuid"
	"github.com/mbhbank/account-service/shared/accountnumber"
)

// ---------- Account queries ----------

// GetAccountQuery fetches a single active account.
type GetAccountQuery struct {
	AccountNumber accountnumber.Number
}

// ListAccountsQuery fetches every active account.
type ListAccountsQuery struct{}

// GetBalanceQuery computes the signed balance of an active account.
type GetBalanceQuery struct {
	AccountNumber accountnumber.Number
}

// ---------- Transaction queries ----------

type GetTransactionQuery struct {
	TransactionID uuid.UUID
}

// ListTransactionsQuery fetches transactions of all active accounts.
type ListTransactionsQuery struct{}

// ---------- Screening queries ----------

type ScreeningStatusQuery struct {
	AccountNumber accountnumber.Number
}
