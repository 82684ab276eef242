package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mbhbank/account-service/shared/accountnumber"
)

// Account is soft-deleted only: IsDeleted flips to true and the row stays.
type Account struct {
	AccountNumber     accountnumber.Number `json:"accountNumber"`
	AccountHolderName string               `json:"accountHolderName"`
	IsDeleted         bool                 `json:"isDeleted"`
}

type TransactionType string

const (
	Deposit    TransactionType = "DEPOSIT"
	Withdrawal TransactionType = "WITHDRAWAL"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	return t == Deposit || t == Withdrawal
}

// Transaction amounts are minor units. ID is assigned at admission.
type Transaction struct {
	ID            uuid.UUID            `json:"id"`
	AccountNumber accountnumber.Number `json:"accountNumber"`
	Type          TransactionType      `json:"type"`
	Amount        int64                `json:"amount"`
	Timestamp     time.Time            `json:"timestamp"`
}

// ScreeningRequest correlates an outbound screening call with its callback.
// The callback token is the only credential the screener presents back to us.
type ScreeningRequest struct {
	CallbackToken     uuid.UUID
	AccountNumber     accountnumber.Number
	AccountHolderName string
	CreatedAt         time.Time
}

// ScreeningResult holds the latest verified verdict for an account.
type ScreeningResult struct {
	AccountNumber          accountnumber.Number `json:"accountNumber"`
	IsSecurityCheckSuccess bool                 `json:"isSecurityCheckSuccess"`
	UpdatedAt              time.Time            `json:"updatedTimestamp"`
}

// CallbackOutcome describes what happened to an inbound screening callback.
type CallbackOutcome string

const (
	CallbackAccepted        CallbackOutcome = "accepted"
	CallbackUnknownToken    CallbackOutcome = "unknown_token"
	CallbackAccountMismatch CallbackOutcome = "account_mismatch"
)

// AuditRecord is one domain event as persisted by the audit consumer.
type AuditRecord struct {
	ID         int64           `json:"id"`
	Stream     string          `json:"stream"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	RecordedAt time.Time       `json:"recordedAt"`
}
