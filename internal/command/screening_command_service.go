package command

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mbhbank/account-service/internal/metrics"
	"github.com/mbhbank/account-service/internal/screening"
	"github.com/mbhbank/account-service/shared/cqrs"
	"github.com/mbhbank/account-service/shared/events"
	"github.com/mbhbank/account-service/shared/models"
	"github.com/mbhbank/account-service/shared/sentinel"
)

type ScreeningStore interface {
	SaveRequest(ctx context.Context, req *models.ScreeningRequest) error
	FindRequest(ctx context.Context, token uuid.UUID) (*models.ScreeningRequest, error)
	UpsertResult(ctx context.Context, result *models.ScreeningResult) error
}

// Dispatcher runs tasks off the request path. Submit must not block.
type Dispatcher interface {
	Submit(task screening.Task) error
}

type ScreeningSender interface {
	Send(ctx context.Context, dispatch models.ScreeningDispatch) error
}

type CallbackURLProvider interface {
	CallbackURL(token uuid.UUID) string
}

// ScreeningCommandService owns the request/callback protocol with the
// external screener.
//
// A request is persisted before its dispatch is queued, so a callback can
// never arrive for a token we do not know about. Callbacks that fail
// verification are logged and counted but never change state and never fail
// the HTTP call. Tokens are not consumed: a replayed callback overwrites the
// verdict again.
type ScreeningCommandService struct {
	store      ScreeningStore
	dispatcher Dispatcher
	sender     ScreeningSender
	urls       CallbackURLProvider
	publisher  EventPublisher
	metrics    *metrics.Metrics
	logger     *slog.Logger
	now        func() time.Time
}

func NewScreeningCommandService(
	store ScreeningStore,
	dispatcher Dispatcher,
	sender ScreeningSender,
	urls CallbackURLProvider,
	publisher EventPublisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *ScreeningCommandService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScreeningCommandService{
		store:      store,
		dispatcher: dispatcher,
		sender:     sender,
		urls:       urls,
		publisher:  publisher,
		metrics:    m,
		logger:     logger,
		now:        time.Now,
	}
}

// RequestScreening stores a new request for the account and queues the
// outbound call. Only a failure to store the request is returned; dispatch
// problems are logged.
func (s *ScreeningCommandService) RequestScreening(ctx context.Context, account *models.Account) error {
	token := uuid.New()
	req := &models.ScreeningRequest{
		CallbackToken:     token,
		AccountNumber:     account.AccountNumber,
		AccountHolderName: account.AccountHolderName,
		CreatedAt:         s.now().UTC(),
	}
	if err := s.store.SaveRequest(ctx, req); err != nil {
		return err
	}

	dispatch := models.ScreeningDispatch{
		AccountNumber:     account.AccountNumber,
		AccountHolderName: account.AccountHolderName,
		CallbackURL:       s.urls.CallbackURL(token),
	}
	err := s.dispatcher.Submit(func(ctx context.Context) {
		s.dispatch(ctx, dispatch)
	})
	if err != nil {
		s.logger.WarnContext(ctx, "external dispatch failure",
			"account_number", account.AccountNumber.String(),
			"stage", "queue",
			"error", err,
		)
		s.metrics.IncDispatch(metrics.DispatchDropped)
	}

	s.publish(ctx, events.ScreeningRequested, events.ScreeningRequestedEvent{
		AccountNumber: account.AccountNumber.String(),
		Queued:        err == nil,
	})
	return nil
}

func (s *ScreeningCommandService) dispatch(ctx context.Context, dispatch models.ScreeningDispatch) {
	if err := s.sender.Send(ctx, dispatch); err != nil {
		s.logger.WarnContext(ctx, "external dispatch failure",
			"account_number", dispatch.AccountNumber.String(),
			"stage", "send",
			"error", err,
		)
		s.metrics.IncDispatch(metrics.DispatchFailed)
		return
	}
	s.metrics.IncDispatch(metrics.DispatchSent)
}

// ReceiveCallback verifies a screener callback against the stored request and
// records the verdict. Verification failures are reported through the
// returned outcome, not as an error; an error means the store failed.
func (s *ScreeningCommandService) ReceiveCallback(ctx context.Context, cmd cqrs.ReceiveScreeningCallbackCommand) (models.CallbackOutcome, error) {
	claimed := cmd.Callback.AccountNumber

	token, err := uuid.Parse(cmd.Token)
	if err != nil {
		return s.reject(ctx, models.CallbackUnknownToken, claimed.String()), nil
	}
	req, err := s.store.FindRequest(ctx, token)
	if errors.Is(err, sentinel.ErrNotFound) {
		return s.reject(ctx, models.CallbackUnknownToken, claimed.String()), nil
	}
	if err != nil {
		return "", err
	}
	if !req.AccountNumber.Equal(claimed) {
		return s.reject(ctx, models.CallbackAccountMismatch, claimed.String()), nil
	}

	result := &models.ScreeningResult{
		AccountNumber:          req.AccountNumber,
		IsSecurityCheckSuccess: cmd.Callback.IsSecurityCheckSuccess,
		UpdatedAt:              s.now().UTC(),
	}
	if err := s.store.UpsertResult(ctx, result); err != nil {
		return "", err
	}

	s.logger.InfoContext(ctx, "screening verdict recorded",
		"account_number", result.AccountNumber.String(),
		"passed", result.IsSecurityCheckSuccess,
	)
	s.metrics.IncCallback(string(models.CallbackAccepted))
	s.publish(ctx, events.ScreeningCompleted, events.ScreeningCompletedEvent{
		AccountNumber:          result.AccountNumber.String(),
		IsSecurityCheckSuccess: result.IsSecurityCheckSuccess,
	})
	return models.CallbackAccepted, nil
}

func (s *ScreeningCommandService) reject(ctx context.Context, outcome models.CallbackOutcome, claimedAccount string) models.CallbackOutcome {
	s.logger.WarnContext(ctx, "rejected screening callback",
		"reason", string(outcome),
		"account_number", claimedAccount,
	)
	s.metrics.IncCallback(string(outcome))
	s.publish(ctx, events.ScreeningRejected, events.ScreeningRejectedEvent{
		AccountNumber: claimedAccount,
		Reason:        string(outcome),
	})
	return outcome
}

func (s *ScreeningCommandService) publish(ctx context.Context, eventType string, data any) {
	if err := s.publisher.Publish(ctx, events.ScreeningEventsStream, eventType, data); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", "type", eventType, "error", err)
	}
}
