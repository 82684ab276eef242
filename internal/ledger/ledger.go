// Package ledger holds the pure rules of the transaction ledger: timestamp
// admission and balance aggregation.
package ledger

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/mbhbank/account-service/shared/models"
	"github.com/mbhbank/account-service/shared/sentinel"
)

// AdmissionTolerance absorbs the skew between stamping a default timestamp on
// an incoming request and validating it.
const AdmissionTolerance = 500 * time.Millisecond

// ValidateTimestamp rejects timestamps older than now minus AdmissionTolerance.
// Future timestamps are accepted.
func ValidateTimestamp(ts, now time.Time) error {
	if ts.IsZero() {
		return fmt.Errorf("transaction timestamp is missing: %w", sentinel.ErrInvalid)
	}
	if ts.Before(now.Add(-AdmissionTolerance)) {
		return fmt.Errorf("transaction timestamp %s is in the past: %w", ts.Format(time.RFC3339Nano), sentinel.ErrInvalid)
	}
	return nil
}

// ErrBalanceOverflow is returned when the running balance leaves the int64 range.
var ErrBalanceOverflow = errors.New("balance overflows int64")

// Balance is the sum of deposits minus the sum of withdrawals. There is no
// floor at zero: overdraft is allowed.
func Balance(transactions []models.Transaction) (int64, error) {
	var balance int64
	for _, tx := range transactions {
		delta := tx.Amount
		switch tx.Type {
		case models.Deposit:
		case models.Withdrawal:
			if delta == math.MinInt64 {
				return 0, fmt.Errorf("transaction %s: %w", tx.ID, ErrBalanceOverflow)
			}
			delta = -delta
		default:
			continue
		}
		if (delta > 0 && balance > math.MaxInt64-delta) || (delta < 0 && balance < math.MinInt64-delta) {
			return 0, fmt.Errorf("transaction %s: %w", tx.ID, ErrBalanceOverflow)
		}
		balance += delta
	}
	return balance, nil
}
