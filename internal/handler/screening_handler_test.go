package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mbhbank/account-service/shared/cqrs"
	"github.com/mbhbank/account-service/shared/models"
)

type mockCallbackReceiver struct {
	receiveFn func(cqrs.ReceiveScreeningCallbackCommand) (models.CallbackOutcome, error)
}

func (m *mockCallbackReceiver) ReceiveCallback(_ context.Context, cmd cqrs.ReceiveScreeningCallbackCommand) (models.CallbackOutcome, error) {
	if m.receiveFn != nil {
		return m.receiveFn(cmd)
	}
	return "", fmt.Errorf("not configured")
}

func newScreeningTestRouter(receiver CallbackReceiver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewScreeningHandler(receiver).Register(&r.RouterGroup)
	return r
}

func TestReceiveCallback(t *testing.T) {
	body := fmt.Sprintf(`{"accountNumber":%s,"isSecurityCheckSuccess":true}`, testAccountNumber)

	tests := []struct {
		name           string
		body           string
		outcome        models.CallbackOutcome
		err            error
		expectedStatus int
	}{
		{name: "accepted", body: body, outcome: models.CallbackAccepted, expectedStatus: http.StatusOK},
		{name: "unknown token still 200", body: body, outcome: models.CallbackUnknownToken, expectedStatus: http.StatusOK},
		{name: "account mismatch still 200", body: body, outcome: models.CallbackAccountMismatch, expectedStatus: http.StatusOK},
		{name: "undecodable body", body: `{"accountNumber":`, expectedStatus: http.StatusBadRequest},
		{name: "store failure", body: body, err: fmt.Errorf("connection refused"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotToken string
			router := newScreeningTestRouter(&mockCallbackReceiver{
				receiveFn: func(cmd cqrs.ReceiveScreeningCallbackCommand) (models.CallbackOutcome, error) {
					gotToken = cmd.Token
					return tt.outcome, tt.err
				},
			})
			w := doRequest(router, http.MethodPost, "/api/v1/background-security-callback/some-token", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedStatus != http.StatusBadRequest && gotToken != "some-token" {
				t.Errorf("expected token to be passed through, got %q", gotToken)
			}
		})
	}
}
