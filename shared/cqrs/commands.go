package cqrs

import (
	"time"

	"github.com/google/uuid"
	"github.com/mbhbank/account-service/shared/accountnumber"
	"github.com/mbhbank/account-service/shared/models"
)

type CreateAccountCommand struct {
	AccountHolderName string
}

type UpdateAccountCommand struct {
	AccountNumber     accountnumber.Number
	AccountHolderName string
}

type DeleteAccountCommand struct {
	AccountNumber accountnumber.Number
}

type CreateTransactionCommand struct {
	AccountNumber accountnumber.Number
	Type          models.TransactionType
	Amount        int64
	Timestamp     time.Time
}

// UpdateTransactionCommand replaces every mutable field of an existing transaction.
type UpdateTransactionCommand struct {
	TransactionID uuid.UUID
	AccountNumber accountnumber.Number
	Type          models.TransactionType
	Amount        int64
	Timestamp     time.Time
}

// ReceiveScreeningCallbackCommand carries the raw path token; it is parsed and
// verified by the screening service, not by the transport.
type ReceiveScreeningCallbackCommand struct {
	Token    string
	Callback models.ScreeningCallback
}
