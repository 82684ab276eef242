package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mbhbank/account-service/shared/accountnumber"
	"github.com/mbhbank/account-service/shared/cqrs"
	"github.com/mbhbank/account-service/shared/middleware"
	"github.com/mbhbank/account-service/shared/models"
)

// AccountCommander defines the write-side operations used by AccountHandler.
type AccountCommander interface {
	CreateAccount(context.Context, cqrs.CreateAccountCommand) (*models.Account, error)
	UpdateAccount(context.Context, cqrs.UpdateAccountCommand) (*models.Account, error)
	DeleteAccount(context.Context, cqrs.DeleteAccountCommand) (*models.Account, error)
}

// AccountQuerier defines the read-side operations used by AccountHandler.
type AccountQuerier interface {
	GetAccount(context.Context, cqrs.GetAccountQuery) (*models.Account, error)
	ListAccounts(context.Context, cqrs.ListAccountsQuery) ([]models.Account, error)
	GetBalance(context.Context, cqrs.GetBalanceQuery) (int64, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	commands AccountCommander
	queries  AccountQuerier
}

type AccountRequest struct {
	AccountHolderName string `json:"accountHolderName" validate:"required,max=255"`
}

func NewAccountHandler(commands AccountCommander, queries AccountQuerier) *AccountHandler {
	return &AccountHandler{commands: commands, queries: queries}
}

func (h *AccountHandler) Register(rg *gin.RouterGroup) {
	accounts := rg.Group("/api/v1/account")
	accounts.GET("", h.ListAccounts)
	accounts.POST("", h.CreateAccount)
	accounts.GET("/:id", h.GetAccount)
	accounts.PUT("/:id", h.UpdateAccount)
	accounts.DELETE("/:id", h.DeleteAccount)
	accounts.GET("/:id/balance", h.GetBalance)
}

func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req AccountRequest
	if !bindAndValidate(c, &req) {
		return
	}

	account, err := h.commands.CreateAccount(c.Request.Context(), cqrs.CreateAccountCommand{
		AccountHolderName: req.AccountHolderName,
	})
	if err != nil {
		respondWithServiceError(c, err, "Account not found", "Failed to create account")
		return
	}

	c.JSON(http.StatusOK, account)
}

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	accounts, err := h.queries.ListAccounts(c.Request.Context(), cqrs.ListAccountsQuery{})
	if err != nil {
		respondWithServiceError(c, err, "Account not found", "Failed to list accounts")
		return
	}
	c.JSON(http.StatusOK, accounts)
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	accountNumber, ok := accountNumberParam(c)
	if !ok {
		return
	}

	account, err := h.queries.GetAccount(c.Request.Context(), cqrs.GetAccountQuery{AccountNumber: accountNumber})
	if err != nil {
		respondWithServiceError(c, err, "Account not found", "Failed to get account")
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *AccountHandler) GetBalance(c *gin.Context) {
	accountNumber, ok := accountNumberParam(c)
	if !ok {
		return
	}

	balance, err := h.queries.GetBalance(c.Request.Context(), cqrs.GetBalanceQuery{AccountNumber: accountNumber})
	if err != nil {
		respondWithServiceError(c, err, "Account not found", "Failed to compute balance")
		return
	}
	c.JSON(http.StatusOK, balance)
}

func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	accountNumber, ok := accountNumberParam(c)
	if !ok {
		return
	}
	var req AccountRequest
	if !bindAndValidate(c, &req) {
		return
	}

	account, err := h.commands.UpdateAccount(c.Request.Context(), cqrs.UpdateAccountCommand{
		AccountNumber:     accountNumber,
		AccountHolderName: req.AccountHolderName,
	})
	if err != nil {
		respondWithServiceError(c, err, "Account not found", "Failed to update account")
		return
	}
	c.JSON(http.StatusOK, account)
}

// DeleteAccount returns the soft-deleted account, also when it was already deleted.
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	accountNumber, ok := accountNumberParam(c)
	if !ok {
		return
	}

	account, err := h.commands.DeleteAccount(c.Request.Context(), cqrs.DeleteAccountCommand{AccountNumber: accountNumber})
	if err != nil {
		respondWithServiceError(c, err, "Account not found", "Failed to delete account")
		return
	}
	c.JSON(http.StatusOK, account)
}

func accountNumberParam(c *gin.Context) (accountnumber.Number, bool) {
	n, err := accountnumber.Parse(c.Param("id"))
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid account number")
		return accountnumber.Number{}, false
	}
	return n, true
}

func bindAndValidate(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return false
	}
	return true
}
