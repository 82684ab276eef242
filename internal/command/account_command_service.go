package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mbhbank/account-service/internal/metrics"
	"github.com/mbhbank/account-service/shared/accountnumber"
	"github.com/mbhbank/account-service/shared/cqrs"
	"github.com/mbhbank/account-service/shared/events"
	"github.com/mbhbank/account-service/shared/models"
	"github.com/mbhbank/account-service/shared/sentinel"
)

// AccountStore is the write side of the account store.
type AccountStore interface {
	NextSequence(ctx context.Context) (int64, error)
	Create(ctx context.Context, account *models.Account) error
	UpdateHolderName(ctx context.Context, accountNumber accountnumber.Number, name string) (*models.Account, error)
	SoftDelete(ctx context.Context, accountNumber accountnumber.Number) (*models.Account, error)
}

// AccountViews keeps the account read model in sync. Optional.
type AccountViews interface {
	CacheAccountView(ctx context.Context, account *models.Account)
	InvalidateAccountView(ctx context.Context, accountNumber accountnumber.Number)
}

type ScreeningRequester interface {
	RequestScreening(ctx context.Context, account *models.Account) error
}

// AccountCommandService writes account state and keeps the read model in sync.
type AccountCommandService struct {
	store     AccountStore
	views     AccountViews
	generator *accountnumber.Generator
	screening ScreeningRequester
	publisher EventPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewAccountCommandService(
	store AccountStore,
	views AccountViews,
	generator *accountnumber.Generator,
	screening ScreeningRequester,
	publisher EventPublisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *AccountCommandService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountCommandService{
		store:     store,
		views:     views,
		generator: generator,
		screening: screening,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// CreateAccount allocates a number, persists the account and starts its
// screening. The screening call itself happens in the background.
func (s *AccountCommandService) CreateAccount(ctx context.Context, cmd cqrs.CreateAccountCommand) (*models.Account, error) {
	seq, err := s.store.NextSequence(ctx)
	if err != nil {
		return nil, err
	}
	number, err := s.generator.Format(seq)
	if err != nil {
		if errors.Is(err, sentinel.ErrConfiguration) {
			s.logger.ErrorContext(ctx, "account number space exhausted", "prefix", s.generator.Prefix(), "sequence", seq, "error", err)
		}
		return nil, err
	}

	account := &models.Account{
		AccountNumber:     number,
		AccountHolderName: cmd.AccountHolderName,
		IsDeleted:         false,
	}
	if err := s.store.Create(ctx, account); err != nil {
		return nil, err
	}
	s.metrics.IncAccountsCreated()

	if err := s.screening.RequestScreening(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to request screening for account %s: %w", account.AccountNumber, err)
	}

	if s.views != nil {
		s.views.CacheAccountView(ctx, account)
	}
	s.publish(ctx, events.AccountCreated, events.AccountCreatedEvent{
		AccountNumber:     account.AccountNumber.String(),
		AccountHolderName: account.AccountHolderName,
	})
	return account, nil
}

func (s *AccountCommandService) UpdateAccount(ctx context.Context, cmd cqrs.UpdateAccountCommand) (*models.Account, error) {
	account, err := s.store.UpdateHolderName(ctx, cmd.AccountNumber, cmd.AccountHolderName)
	if err != nil {
		return nil, err
	}
	if s.views != nil {
		s.views.CacheAccountView(ctx, account)
	}
	s.publish(ctx, events.AccountUpdated, events.AccountUpdatedEvent{
		AccountNumber:     account.AccountNumber.String(),
		AccountHolderName: account.AccountHolderName,
	})
	return account, nil
}

// DeleteAccount soft-deletes the account. Repeating it on a deleted account
// succeeds and returns the same record.
func (s *AccountCommandService) DeleteAccount(ctx context.Context, cmd cqrs.DeleteAccountCommand) (*models.Account, error) {
	account, err := s.store.SoftDelete(ctx, cmd.AccountNumber)
	if err != nil {
		return nil, err
	}
	if s.views != nil {
		s.views.InvalidateAccountView(ctx, cmd.AccountNumber)
	}
	s.publish(ctx, events.AccountDeleted, events.AccountDeletedEvent{
		AccountNumber: account.AccountNumber.String(),
	})
	return account, nil
}

func (s *AccountCommandService) publish(ctx context.Context, eventType string, data any) {
	if err := s.publisher.Publish(ctx, events.AccountEventsStream, eventType, data); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", "type", eventType, "error", err)
	}
}
