package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mbhbank/account-service/internal/ledger"
	"github.com/mbhbank/account-service/internal/metrics"
	"github.com/mbhbank/account-service/shared/accountnumber"
	"github.com/mbhbank/account-service/shared/cqrs"
	"github.com/mbhbank/account-service/shared/events"
	"github.com/mbhbank/account-service/shared/models"
	"github.com/mbhbank/account-service/shared/sentinel"
)

type TransactionStore interface {
	Create(ctx context.Context, tx *models.Transaction) error
	Get(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	Update(ctx context.Context, tx *models.Transaction) error
}

// TransactionViews keeps the transaction read model in sync. Optional.
type TransactionViews interface {
	CacheTransactionView(ctx context.Context, tx *models.Transaction)
}

type ActiveAccounts interface {
	GetActive(ctx context.Context, accountNumber accountnumber.Number) (*models.Account, error)
}

type ScreeningStatus interface {
	IsPassed(ctx context.Context, q cqrs.ScreeningStatusQuery) (bool, error)
}

// TransactionCommandService admits transactions. An account that has not
// passed screening is reported as not found, the same as a missing or
// deleted one.
type TransactionCommandService struct {
	store     TransactionStore
	views     TransactionViews
	accounts  ActiveAccounts
	screening ScreeningStatus
	publisher EventPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

func NewTransactionCommandService(
	store TransactionStore,
	views TransactionViews,
	accounts ActiveAccounts,
	screening ScreeningStatus,
	publisher EventPublisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *TransactionCommandService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TransactionCommandService{
		store:     store,
		views:     views,
		accounts:  accounts,
		screening: screening,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *TransactionCommandService) CreateTransaction(ctx context.Context, cmd cqrs.CreateTransactionCommand) (*models.Transaction, error) {
	if err := s.admit(ctx, cmd.AccountNumber, cmd.Type, cmd.Amount, cmd.Timestamp); err != nil {
		return nil, err
	}
	tx := &models.Transaction{
		ID:            uuid.New(),
		AccountNumber: cmd.AccountNumber,
		Type:          cmd.Type,
		Amount:        cmd.Amount,
		Timestamp:     cmd.Timestamp,
	}
	if err := s.store.Create(ctx, tx); err != nil {
		return nil, err
	}
	s.metrics.IncAdmission(metrics.AdmissionAdmitted)
	if s.views != nil {
		s.views.CacheTransactionView(ctx, tx)
	}
	s.publish(ctx, events.TransactionCreated, tx)
	return tx, nil
}

// UpdateTransaction replaces the fields of an existing transaction after
// running them through the same admission checks as a new one.
func (s *TransactionCommandService) UpdateTransaction(ctx context.Context, cmd cqrs.UpdateTransactionCommand) (*models.Transaction, error) {
	existing, err := s.store.Get(ctx, cmd.TransactionID)
	if err != nil {
		return nil, err
	}
	if err := s.admit(ctx, cmd.AccountNumber, cmd.Type, cmd.Amount, cmd.Timestamp); err != nil {
		return nil, err
	}
	tx := &models.Transaction{
		ID:            existing.ID,
		AccountNumber: cmd.AccountNumber,
		Type:          cmd.Type,
		Amount:        cmd.Amount,
		Timestamp:     cmd.Timestamp,
	}
	if err := s.store.Update(ctx, tx); err != nil {
		return nil, err
	}
	s.metrics.IncAdmission(metrics.AdmissionAdmitted)
	if s.views != nil {
		s.views.CacheTransactionView(ctx, tx)
	}
	s.publish(ctx, events.TransactionUpdated, tx)
	return tx, nil
}

// admit checks, in order: field validity, screening verdict, account
// liveness, timestamp freshness.
func (s *TransactionCommandService) admit(ctx context.Context, accountNumber accountnumber.Number, txType models.TransactionType, amount int64, ts time.Time) error {
	if !txType.Valid() {
		return fmt.Errorf("transaction type %q: %w", txType, sentinel.ErrInvalid)
	}
	if amount < 0 {
		return fmt.Errorf("transaction amount %d is negative: %w", amount, sentinel.ErrInvalid)
	}

	passed, err := s.screening.IsPassed(ctx, cqrs.ScreeningStatusQuery{AccountNumber: accountNumber})
	if err != nil {
		return err
	}
	if !passed {
		s.metrics.IncAdmission(metrics.AdmissionScreeningNotPassed)
		return fmt.Errorf("account %s has not passed screening: %w", accountNumber, sentinel.ErrNotFound)
	}

	if _, err := s.accounts.GetActive(ctx, accountNumber); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.IncAdmission(metrics.AdmissionAccountNotFound)
		}
		return err
	}

	if err := ledger.ValidateTimestamp(ts, s.now()); err != nil {
		s.metrics.IncAdmission(metrics.AdmissionStaleTimestamp)
		return err
	}
	return nil
}

func (s *TransactionCommandService) publish(ctx context.Context, eventType string, tx *models.Transaction) {
	err := s.publisher.Publish(ctx, events.TransactionEventsStream, eventType, events.TransactionEvent{
		TransactionID: tx.ID.String(),
		AccountNumber: tx.AccountNumber.String(),
		Type:          string(tx.Type),
		Amount:        tx.Amount,
		Timestamp:     tx.Timestamp,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", "type", eventType, "error", err)
	}
}
