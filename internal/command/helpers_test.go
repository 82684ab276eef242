package command

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/mbhbank/account-service/internal/screening"
	"github.com/mbhbank/account-service/shared/models"
	"github.com/mbhbank/account-service/shared/sentinel"
)

type publishedEvent struct {
	stream    string
	eventType string
	data      any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, stream, eventType string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{stream: stream, eventType: eventType, data: data})
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.eventType)
	}
	return out
}

// inlineDispatcher runs tasks synchronously, or rejects them when full is set.
type inlineDispatcher struct {
	full bool
}

func (d *inlineDispatcher) Submit(task screening.Task) error {
	if d.full {
		return sentinel.ErrDispatch
	}
	task(context.Background())
	return nil
}

type recordingSender struct {
	mu         sync.Mutex
	dispatches []models.ScreeningDispatch
	err        error
}

func (s *recordingSender) Send(ctx context.Context, dispatch models.ScreeningDispatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatches = append(s.dispatches, dispatch)
	return s.err
}

type staticURLs struct{}

func (staticURLs) CallbackURL(token uuid.UUID) string {
	return "http://account-svc:8080" + screening.CallbackPath + token.String()
}
