package query

import (
	"context"
	"errors"

	"github.com/mbhbank/account-service/shared/accountnumber"
	"github.com/mbhbank/account-service/shared/cqrs"
	"github.com/mbhbank/account-service/shared/models"
	"github.com/mbhbank/account-service/shared/sentinel"
)

type ScreeningResults interface {
	FindResult(ctx context.Context, accountNumber accountnumber.Number) (*models.ScreeningResult, error)
}

type ScreeningQueryService struct {
	results ScreeningResults
}

func NewScreeningQueryService(results ScreeningResults) *ScreeningQueryService {
	return &ScreeningQueryService{results: results}
}

// IsPassed reports the latest recorded verdict. No verdict means not passed.
func (s *ScreeningQueryService) IsPassed(ctx context.Context, q cqrs.ScreeningStatusQuery) (bool, error) {
	result, err := s.results.FindResult(ctx, q.AccountNumber)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return result.IsSecurityCheckSuccess, nil
}
