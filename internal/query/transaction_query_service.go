package query

import (
	"context"

	"github.com/google/uuid"

	"github.com/mbhbank/account-service/shared/cqrs"
	"github.com/mbhbank/account-service/shared/models"
)

type TransactionReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	ListForActiveAccounts(ctx context.Context) ([]models.Transaction, error)
}

type TransactionQueryService struct {
	reader TransactionReader
}

func NewTransactionQueryService(reader TransactionReader) *TransactionQueryService {
	return &TransactionQueryService{reader: reader}
}

func (s *TransactionQueryService) GetTransaction(ctx context.Context, q cqrs.GetTransactionQuery) (*models.Transaction, error) {
	return s.reader.GetByID(ctx, q.TransactionID)
}

// ListTransactions hides transactions whose account has been deleted.
func (s *TransactionQueryService) ListTransactions(ctx context.Context, q cqrs.ListTransactionsQuery) ([]models.Transaction, error) {
	return s.reader.ListForActiveAccounts(ctx)
}
