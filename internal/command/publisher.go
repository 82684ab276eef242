package command

import "context"

// EventPublisher is satisfied by events.Publisher (Redis Streams) and
// events.LocalPublisher.
type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}
