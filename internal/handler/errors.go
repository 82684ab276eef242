package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mbhbank/account-service/shared/middleware"
	"github.com/mbhbank/account-service/shared/sentinel"
)

// respondWithServiceError maps sentinel errors to status codes. Anything
// unrecognised is a 500 and is logged; its text is not sent to the client.
func respondWithServiceError(c *gin.Context, err error, notFoundMessage, failureMessage string) {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		middleware.RespondWithError(c, http.StatusNotFound, notFoundMessage)
	case errors.Is(err, sentinel.ErrInvalid):
		middleware.RespondWithError(c, http.StatusBadRequest, err.Error())
	default:
		slog.ErrorContext(c.Request.Context(), failureMessage, "path", c.FullPath(), "error", err)
		middleware.RespondWithError(c, http.StatusInternalServerError, failureMessage)
	}
}
