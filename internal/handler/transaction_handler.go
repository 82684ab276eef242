package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mbhbank/account-service/shared/accountnumber"
	"github.com/mbhbank/account-service/shared/cqrs"
	"github.com/mbhbank/account-service/shared/middleware"
	"github.com/mbhbank/account-service/shared/models"
)

// TransactionCommander defines the write-side operations used by TransactionHandler.
type TransactionCommander interface {
	CreateTransaction(context.Context, cqrs.CreateTransactionCommand) (*models.Transaction, error)
	UpdateTransaction(context.Context, cqrs.UpdateTransactionCommand) (*models.Transaction, error)
}

// TransactionQuerier defines the read-side operations used by TransactionHandler.
type TransactionQuerier interface {
	GetTransaction(context.Context, cqrs.GetTransactionQuery) (*models.Transaction, error)
	ListTransactions(context.Context, cqrs.ListTransactionsQuery) ([]models.Transaction, error)
}

type TransactionHandler struct {
	commands TransactionCommander
	queries  TransactionQuerier
	now      func() time.Time
}

// TransactionRequest is the body of both create and update. A missing
// timestamp means "now".
type TransactionRequest struct {
	AccountNumber *accountnumber.Number  `json:"accountNumber" validate:"required"`
	Type          models.TransactionType `json:"type" validate:"required,oneof=DEPOSIT WITHDRAWAL"`
	Amount        *int64                 `json:"amount" validate:"required,gte=0"`
	Timestamp     *time.Time             `json:"timestamp"`
}

func NewTransactionHandler(commands TransactionCommander, queries TransactionQuerier) *TransactionHandler {
	return &TransactionHandler{commands: commands, queries: queries, now: time.Now}
}

func (h *TransactionHandler) Register(rg *gin.RouterGroup) {
	transactions := rg.Group("/api/v1/transaction")
	transactions.GET("", h.ListTransactions)
	transactions.POST("", h.CreateTransaction)
	transactions.GET("/:id", h.GetTransaction)
	transactions.PUT("/:id", h.UpdateTransaction)
}

func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	req, ok := h.bindTransaction(c)
	if !ok {
		return
	}

	transaction, err := h.commands.CreateTransaction(c.Request.Context(), cqrs.CreateTransactionCommand{
		AccountNumber: *req.AccountNumber,
		Type:          req.Type,
		Amount:        *req.Amount,
		Timestamp:     *req.Timestamp,
	})
	if err != nil {
		respondWithServiceError(c, err, "Account not found", "Failed to create transaction")
		return
	}
	c.JSON(http.StatusOK, transaction)
}

func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	id, ok := transactionIDParam(c)
	if !ok {
		return
	}
	req, ok := h.bindTransaction(c)
	if !ok {
		return
	}

	transaction, err := h.commands.UpdateTransaction(c.Request.Context(), cqrs.UpdateTransactionCommand{
		TransactionID: id,
		AccountNumber: *req.AccountNumber,
		Type:          req.Type,
		Amount:        *req.Amount,
		Timestamp:     *req.Timestamp,
	})
	if err != nil {
		respondWithServiceError(c, err, "Transaction or account not found", "Failed to update transaction")
		return
	}
	c.JSON(http.StatusOK, transaction)
}

func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	transactions, err := h.queries.ListTransactions(c.Request.Context(), cqrs.ListTransactionsQuery{})
	if err != nil {
		respondWithServiceError(c, err, "Transaction not found", "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, transactions)
}

func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	id, ok := transactionIDParam(c)
	if !ok {
		return
	}

	transaction, err := h.queries.GetTransaction(c.Request.Context(), cqrs.GetTransactionQuery{TransactionID: id})
	if err != nil {
		respondWithServiceError(c, err, "Transaction not found", "Failed to get transaction")
		return
	}
	c.JSON(http.StatusOK, transaction)
}

func (h *TransactionHandler) bindTransaction(c *gin.Context) (*TransactionRequest, bool) {
	var req TransactionRequest
	if !bindAndValidate(c, &req) {
		return nil, false
	}
	if req.Timestamp == nil {
		now := h.now().UTC()
		req.Timestamp = &now
	}
	return &req, true
}

func transactionIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid transaction id")
		return uuid.Nil, false
	}
	return id, true
}
