package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mbhbank/account-service/shared/cqrs"
	"github.com/mbhbank/account-service/shared/models"
	"github.com/mbhbank/account-service/shared/sentinel"
)

// ---- mock implementations ----

type mockTransactionCommander struct {
	createFn func(cqrs.CreateTransactionCommand) (*models.Transaction, error)
	updateFn func(cqrs.UpdateTransactionCommand) (*models.Transaction, error)
}

func (m *mockTransactionCommander) CreateTransaction(_ context.Context, cmd cqrs.CreateTransactionCommand) (*models.Transaction, error) {
	if m.createFn != nil {
		return m.createFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockTransactionCommander) UpdateTransaction(_ context.Context, cmd cqrs.UpdateTransactionCommand) (*models.Transaction, error) {
	if m.updateFn != nil {
		return m.updateFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}

type mockTransactionQuerier struct {
	getFn  func(cqrs.GetTransactionQuery) (*models.Transaction, error)
	listFn func(cqrs.ListTransactionsQuery) ([]models.Transaction, error)
}

func (m *mockTransactionQuerier) GetTransaction(_ context.Context, q cqrs.GetTransactionQuery) (*models.Transaction, error) {
	if m.getFn != nil {
		return m.getFn(q)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockTransactionQuerier) ListTransactions(_ context.Context, q cqrs.ListTransactionsQuery) ([]models.Transaction, error) {
	if m.listFn != nil {
		return m.listFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

// ---- helpers ----

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTransactionTestRouter(cmds TransactionCommander, qrys TransactionQuerier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewTransactionHandler(cmds, qrys)
	h.now = func() time.Time { return fixedNow }
	h.Register(&r.RouterGroup)
	return r
}

func echoTransaction(cmd cqrs.CreateTransactionCommand) (*models.Transaction, error) {
	return &models.Transaction{
		ID:            uuid.New(),
		AccountNumber: cmd.AccountNumber,
		Type:          cmd.Type,
		Amount:        cmd.Amount,
		Timestamp:     cmd.Timestamp,
	}, nil
}

// ---- tests ----

func TestCreateTransaction(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		createFn       func(cqrs.CreateTransactionCommand) (*models.Transaction, error)
		expectedStatus int
	}{
		{
			name:           "success - deposit",
			body:           fmt.Sprintf(`{"accountNumber":%s,"type":"DEPOSIT","amount":100}`, testAccountNumber),
			createFn:       echoTransaction,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "success - quoted account number",
			body:           fmt.Sprintf(`{"accountNumber":"%s","type":"WITHDRAWAL","amount":0,"timestamp":"2030-01-01T00:00:00Z"}`, testAccountNumber),
			createFn:       echoTransaction,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "bad request - unknown type",
			body:           fmt.Sprintf(`{"accountNumber":%s,"type":"TRANSFER","amount":100}`, testAccountNumber),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - negative amount",
			body:           fmt.Sprintf(`{"accountNumber":%s,"type":"DEPOSIT","amount":-1}`, testAccountNumber),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - missing account number",
			body:           `{"type":"DEPOSIT","amount":1}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - missing amount",
			body:           fmt.Sprintf(`{"accountNumber":%s,"type":"DEPOSIT"}`, testAccountNumber),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - malformed timestamp",
			body:           fmt.Sprintf(`{"accountNumber":%s,"type":"DEPOSIT","amount":1,"timestamp":"yesterday"}`, testAccountNumber),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "not found - screening not passed",
			body: fmt.Sprintf(`{"accountNumber":%s,"type":"DEPOSIT","amount":100}`, testAccountNumber),
			createFn: func(cmd cqrs.CreateTransactionCommand) (*models.Transaction, error) {
				return nil, fmt.Errorf("account has not passed screening: %w", sentinel.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "bad request - stale timestamp",
			body: fmt.Sprintf(`{"accountNumber":%s,"type":"DEPOSIT","amount":100,"timestamp":"2020-01-01T00:00:00Z"}`, testAccountNumber),
			createFn: func(cmd cqrs.CreateTransactionCommand) (*models.Transaction, error) {
				return nil, fmt.Errorf("timestamp is in the past: %w", sentinel.ErrInvalid)
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTransactionTestRouter(&mockTransactionCommander{createFn: tt.createFn}, &mockTransactionQuerier{})
			w := doRequest(router, http.MethodPost, "/api/v1/transaction", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestCreateTransactionDefaultsTimestamp(t *testing.T) {
	var got cqrs.CreateTransactionCommand
	router := newTransactionTestRouter(&mockTransactionCommander{
		createFn: func(cmd cqrs.CreateTransactionCommand) (*models.Transaction, error) {
			got = cmd
			return echoTransaction(cmd)
		},
	}, &mockTransactionQuerier{})

	w := doRequest(router, http.MethodPost, "/api/v1/transaction",
		fmt.Sprintf(`{"accountNumber":%s,"type":"DEPOSIT","amount":100}`, testAccountNumber))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !got.Timestamp.Equal(fixedNow) {
		t.Errorf("expected timestamp %s, got %s", fixedNow, got.Timestamp)
	}
	if got.AccountNumber.String() != testAccountNumber {
		t.Errorf("unexpected account number %s", got.AccountNumber)
	}
}

func TestUpdateTransaction(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name           string
		path           string
		updateFn       func(cqrs.UpdateTransactionCommand) (*models.Transaction, error)
		expectedStatus int
	}{
		{
			name: "success",
			path: "/api/v1/transaction/" + id.String(),
			updateFn: func(cmd cqrs.UpdateTransactionCommand) (*models.Transaction, error) {
				if cmd.TransactionID != id {
					return nil, fmt.Errorf("wrong id")
				}
				return &models.Transaction{ID: cmd.TransactionID, AccountNumber: cmd.AccountNumber, Type: cmd.Type, Amount: cmd.Amount, Timestamp: cmd.Timestamp}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "not found",
			path: "/api/v1/transaction/" + id.String(),
			updateFn: func(cmd cqrs.UpdateTransactionCommand) (*models.Transaction, error) {
				return nil, sentinel.ErrNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "bad request - malformed id",
			path:           "/api/v1/transaction/42",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTransactionTestRouter(&mockTransactionCommander{updateFn: tt.updateFn}, &mockTransactionQuerier{})
			w := doRequest(router, http.MethodPut, tt.path,
				fmt.Sprintf(`{"accountNumber":%s,"type":"WITHDRAWAL","amount":5}`, testAccountNumber))
			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestGetTransaction(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name           string
		path           string
		getFn          func(cqrs.GetTransactionQuery) (*models.Transaction, error)
		expectedStatus int
	}{
		{
			name: "success",
			path: "/api/v1/transaction/" + id.String(),
			getFn: func(q cqrs.GetTransactionQuery) (*models.Transaction, error) {
				return &models.Transaction{ID: q.TransactionID, Type: models.Deposit}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "not found",
			path:           "/api/v1/transaction/" + id.String(),
			getFn:          func(q cqrs.GetTransactionQuery) (*models.Transaction, error) { return nil, sentinel.ErrNotFound },
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "bad request - malformed id",
			path:           "/api/v1/transaction/not-a-uuid",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTransactionTestRouter(&mockTransactionCommander{}, &mockTransactionQuerier{getFn: tt.getFn})
			w := doRequest(router, http.MethodGet, tt.path, nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestListTransactions(t *testing.T) {
	router := newTransactionTestRouter(&mockTransactionCommander{}, &mockTransactionQuerier{
		listFn: func(q cqrs.ListTransactionsQuery) ([]models.Transaction, error) { return []models.Transaction{}, nil },
	})
	w := doRequest(router, http.MethodGet, "/api/v1/transaction", nil)
	if w.Code != http.StatusOK || w.Body.String() != "[]" {
		t.Errorf("expected 200 [], got %d %s", w.Code, w.Body.String())
	}
}
