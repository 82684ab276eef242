// Package audit persists the service's domain events so that verification
// failures and account lifecycle changes can be reviewed later.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mbhbank/account-service/shared/events"
	"github.com/mbhbank/account-service/shared/models"
)

type Store interface {
	Append(ctx context.Context, record *models.AuditRecord) error
}

type Consumer struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

func NewConsumer(store Store, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{store: store, logger: logger, now: time.Now}
}

// HandleEvent is an events.Handler. A returned error leaves the message
// unacknowledged so it is redelivered.
func (c *Consumer) HandleEvent(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", event.Type, err)
	}

	if event.Type == events.ScreeningRejected {
		c.logger.WarnContext(ctx, "audit: screening callback rejected", "payload", string(payload))
	}

	recordedAt := event.Timestamp
	if recordedAt.IsZero() {
		recordedAt = c.now().UTC()
	}
	return c.store.Append(ctx, &models.AuditRecord{
		Stream:     events.StreamOf(event.Type),
		Type:       event.Type,
		Payload:    payload,
		RecordedAt: recordedAt,
	})
}
