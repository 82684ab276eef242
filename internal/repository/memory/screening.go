package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/mbhbank/account-service/shared/accountnumber"
	"github.com/mbhbank/account-service/shared/models"
	"github.com/mbhbank/account-service/shared/sentinel"
)

type ScreeningStore struct {
	mu       sync.RWMutex
	requests map[uuid.UUID]models.ScreeningRequest
	results  map[string]models.ScreeningResult
}

func NewScreeningStore() *ScreeningStore {
	return &ScreeningStore{
		requests: make(map[uuid.UUID]models.ScreeningRequest),
		results:  make(map[string]models.ScreeningResult),
	}
}

func (s *ScreeningStore) SaveRequest(ctx context.Context, req *models.ScreeningRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.requests[req.CallbackToken]; exists {
		return fmt.Errorf("screening request with this token already exists")
	}
	s.requests[req.CallbackToken] = *req
	return nil
}

func (s *ScreeningStore) FindRequest(ctx context.Context, token uuid.UUID) (*models.ScreeningRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[token]
	if !ok {
		return nil, fmt.Errorf("screening request: %w", sentinel.ErrNotFound)
	}
	return &req, nil
}

func (s *ScreeningStore) UpsertResult(ctx context.Context, result *models.ScreeningResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.AccountNumber.String()] = *result
	return nil
}

func (s *ScreeningStore) FindResult(ctx context.Context, accountNumber accountnumber.Number) (*models.ScreeningResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[accountNumber.String()]
	if !ok {
		return nil, fmt.Errorf("screening result for %s: %w", accountNumber, sentinel.ErrNotFound)
	}
	return &result, nil
}

// Requests returns every stored request. Order is unspecified.
func (s *ScreeningStore) Requests() []models.ScreeningRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ScreeningRequest, 0, len(s.requests))
	for _, req := range s.requests {
		out = append(out, req)
	}
	return out
}
