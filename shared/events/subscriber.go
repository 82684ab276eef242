package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type Handler func(ctx context.Context, event Event) error

// Subscriber reads one consumer group across several streams. A message is
// acked only after its handler succeeds. Unacked entries are redelivered by a
// periodic pending pass, which also claims entries left idle by consumers
// that went away.
type Subscriber struct {
	client        *redis.Client
	group         string
	consumer      string
	streams       []string
	handler       Handler
	batchSize     int64
	blockDuration time.Duration
	retryInterval time.Duration
	claimMinIdle  time.Duration
	logger        *slog.Logger
}

type SubscriberConfig struct {
	Group         string
	Consumer      string
	Streams       []string
	Handler       Handler
	BatchSize     int64
	BlockDuration time.Duration
	// RetryInterval is how often unacked entries are redelivered.
	RetryInterval time.Duration
	// ClaimMinIdle is how long another consumer's entry must sit unacked
	// before this consumer takes it over.
	ClaimMinIdle time.Duration
	Logger       *slog.Logger
}

func NewSubscriber(client *redis.Client, config SubscriberConfig) *Subscriber {
	if config.BatchSize == 0 {
		config.BatchSize = 10
	}
	if config.BlockDuration == 0 {
		config.BlockDuration = 5 * time.Second
	}
	if config.RetryInterval == 0 {
		config.RetryInterval = 30 * time.Second
	}
	if config.ClaimMinIdle == 0 {
		config.ClaimMinIdle = time.Minute
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Subscriber{
		client:        client,
		group:         config.Group,
		consumer:      config.Consumer,
		streams:       config.Streams,
		handler:       config.Handler,
		batchSize:     config.BatchSize,
		blockDuration: config.BlockDuration,
		retryInterval: config.RetryInterval,
		claimMinIdle:  config.ClaimMinIdle,
		logger:        config.Logger,
	}
}

// Start blocks until ctx is cancelled. It returns nil on cancellation.
func (s *Subscriber) Start(ctx context.Context) error {
	if len(s.streams) == 0 {
		return fmt.Errorf("subscriber %s: no streams configured", s.group)
	}
	for _, stream := range s.streams {
		err := s.client.XGroupCreateMkStream(ctx, stream, s.group, "0").Err()
		if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
			return fmt.Errorf("failed to create consumer group on %s: %w", stream, err)
		}
	}

	s.logger.Info("subscriber started", "streams", s.streams, "group", s.group, "consumer", s.consumer)

	var lastRetry time.Time
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("subscriber stopping", "group", s.group)
			return nil
		default:
		}

		if time.Since(lastRetry) >= s.retryInterval {
			if err := s.retryPending(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.logger.Error("error redelivering pending messages", "group", s.group, "error", err)
			}
			lastRetry = time.Now()
		}

		if err := s.readMessages(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.logger.Error("error reading messages", "group", s.group, "error", err)
			time.Sleep(time.Second)
		}
	}
}

func (s *Subscriber) readMessages(ctx context.Context) error {
	keys := make([]string, 0, 2*len(s.streams))
	keys = append(keys, s.streams...)
	for range s.streams {
		keys = append(keys, ">")
	}

	streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    s.group,
		Consumer: s.consumer,
		Streams:  keys,
		Count:    s.batchSize,
		Block:    s.blockDuration,
	}).Result()

	if errors.Is(err, redis.Nil) {
		return nil // No messages
	}
	if err != nil {
		return fmt.Errorf("failed to read from streams: %w", err)
	}

	for _, stream := range streams {
		s.handleMessages(ctx, stream.Stream, stream.Messages)
	}
	return nil
}

// retryPending walks this consumer's pending entries list on every stream
// and hands each entry to the handler again.
func (s *Subscriber) retryPending(ctx context.Context) error {
	for _, stream := range s.streams {
		if err := s.claimIdle(ctx, stream); err != nil {
			return err
		}

		after := "0"
		for {
			// Block is negative so history reads return at once.
			res, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
				Group:    s.group,
				Consumer: s.consumer,
				Streams:  []string{stream, after},
				Count:    s.batchSize,
				Block:    -1,
			}).Result()
			if errors.Is(err, redis.Nil) {
				break
			}
			if err != nil {
				return fmt.Errorf("failed to read pending entries from %s: %w", stream, err)
			}
			if len(res) == 0 || len(res[0].Messages) == 0 {
				break
			}
			messages := res[0].Messages
			s.handleMessages(ctx, stream, messages)
			after = messages[len(messages)-1].ID
		}
	}
	return nil
}

// claimIdle moves entries idle for at least claimMinIdle into this
// consumer's pending list.
func (s *Subscriber) claimIdle(ctx context.Context, stream string) error {
	start := "0-0"
	for {
		_, next, err := s.client.XAutoClaimJustID(ctx, &redis.XAutoClaimArgs{
			Stream:   stream,
			Group:    s.group,
			Consumer: s.consumer,
			MinIdle:  s.claimMinIdle,
			Start:    start,
			Count:    s.batchSize,
		}).Result()
		if err != nil {
			return fmt.Errorf("failed to claim idle entries on %s: %w", stream, err)
		}
		if next == "0-0" {
			return nil
		}
		start = next
	}
}

func (s *Subscriber) handleMessages(ctx context.Context, stream string, messages []redis.XMessage) {
	for _, message := range messages {
		// A pending entry whose payload was trimmed from the stream comes back
		// without values and can never succeed.
		if message.Values == nil {
			s.logger.Warn("dropping trimmed pending message", "stream", stream, "id", message.ID)
			s.ack(ctx, stream, message.ID)
			continue
		}
		if err := s.processMessage(ctx, message); err != nil {
			s.logger.Error("failed to process message", "stream", stream, "id", message.ID, "error", err)
			// left pending for the next retryPending pass
			continue
		}
		s.ack(ctx, stream, message.ID)
	}
}

func (s *Subscriber) ack(ctx context.Context, stream, id string) {
	if err := s.client.XAck(ctx, stream, s.group, id).Err(); err != nil {
		s.logger.Error("failed to ACK message", "stream", stream, "id", id, "error", err)
	}
}

func (s *Subscriber) processMessage(ctx context.Context, message redis.XMessage) error {
	eventData, ok := message.Values["event"].(string)
	if !ok {
		return fmt.Errorf("invalid message format")
	}

	var event Event
	if err := json.Unmarshal([]byte(eventData), &event); err != nil {
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	return s.handler(ctx, event)
}
