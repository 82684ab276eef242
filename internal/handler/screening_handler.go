package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mbhbank/account-service/internal/screening"
	"github.com/mbhbank/account-service/shared/cqrs"
	"github.com/mbhbank/account-service/shared/middleware"
	"github.com/mbhbank/account-service/shared/models"
)

type CallbackReceiver interface {
	ReceiveCallback(context.Context, cqrs.ReceiveScreeningCallbackCommand) (models.CallbackOutcome, error)
}

// ScreeningHandler receives verdicts from the external screener. Verification
// failures are answered with 200 so the caller learns nothing about which
// tokens exist.
type ScreeningHandler struct {
	receiver CallbackReceiver
}

func NewScreeningHandler(receiver CallbackReceiver) *ScreeningHandler {
	return &ScreeningHandler{receiver: receiver}
}

func (h *ScreeningHandler) Register(rg *gin.RouterGroup) {
	rg.POST(strings.TrimSuffix(screening.CallbackPath, "/")+"/:token", h.ReceiveCallback)
}

func (h *ScreeningHandler) ReceiveCallback(c *gin.Context) {
	var callback models.ScreeningCallback
	if err := c.ShouldBindJSON(&callback); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	_, err := h.receiver.ReceiveCallback(c.Request.Context(), cqrs.ReceiveScreeningCallbackCommand{
		Token:    c.Param("token"),
		Callback: callback,
	})
	if err != nil {
		respondWithServiceError(c, err, "Not found", "Failed to record screening result")
		return
	}
	c.Status(http.StatusOK)
}
