package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Publisher appends events to Redis Streams.
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) Publish(ctx context.Context, stream, eventType string, data any) error {
	event := Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{
			"event": eventJSON,
		},
	}

	if _, err := p.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// LocalPublisher hands events straight to a handler in the calling goroutine.
// It stands in for Redis Streams when the service runs with in-memory storage.
type LocalPublisher struct {
	handler Handler
	now     func() time.Time
}

func NewLocalPublisher(handler Handler) *LocalPublisher {
	return &LocalPublisher{handler: handler, now: time.Now}
}

func (p *LocalPublisher) Publish(ctx context.Context, stream, eventType string, data any) error {
	if p.handler == nil {
		return nil
	}
	event := Event{
		Type:      eventType,
		Timestamp: p.now().UTC(),
		Data:      data,
	}
	if err := p.handler(ctx, event); err != nil {
		return fmt.Errorf("failed to handle %s event on %s: %w", eventType, stream, err)
	}
	return nil
}
