package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbhbank/account-service/internal/audit"
	"github.com/mbhbank/account-service/internal/command"
	"github.com/mbhbank/account-service/internal/query"
	"github.com/mbhbank/account-service/internal/repository/memory"
	"github.com/mbhbank/account-service/internal/screening"
	"github.com/mbhbank/account-service/shared/accountnumber"
	"github.com/mbhbank/account-service/shared/events"
	"github.com/mbhbank/account-service/shared/models"
)

type capturingSender struct {
	mu         sync.Mutex
	dispatches []models.ScreeningDispatch
}

func (s *capturingSender) Send(ctx context.Context, dispatch models.ScreeningDispatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatches = append(s.dispatches, dispatch)
	return nil
}

func (s *capturingSender) last() models.ScreeningDispatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatches[len(s.dispatches)-1]
}

type syncDispatcher struct{}

func (syncDispatcher) Submit(task screening.Task) error {
	task(context.Background())
	return nil
}

const flowContextPath = "/bank"

type flow struct {
	t        *testing.T
	router   *gin.Engine
	sender   *capturingSender
	accounts *memory.AccountStore
	audit    *memory.AuditLog
}

func newFlow(t *testing.T) *flow {
	gin.SetMode(gin.TestMode)

	accounts := memory.NewAccountStore()
	transactions := memory.NewTransactionStore(accounts)
	screeningStore := memory.NewScreeningStore()
	auditLog := memory.NewAuditLog()
	publisher := events.NewLocalPublisher(audit.NewConsumer(auditLog, nil).HandleEvent)
	sender := &capturingSender{}

	gen, err := accountnumber.NewGenerator(accountnumber.DefaultPrefix)
	require.NoError(t, err)

	screeningStatus := query.NewScreeningQueryService(screeningStore)
	screeningCmd := command.NewScreeningCommandService(
		screeningStore, syncDispatcher{}, sender,
		screening.NewCallbackURLs("http://account-svc:8080"+flowContextPath),
		publisher, nil, nil,
	)
	accountCmd := command.NewAccountCommandService(accounts, nil, gen, screeningCmd, publisher, nil, nil)
	transactionCmd := command.NewTransactionCommandService(transactions, nil, accounts, screeningStatus, publisher, nil, nil)

	r := gin.New()
	api := r.Group(flowContextPath)
	NewAccountHandler(accountCmd, query.NewAccountQueryService(accounts, accounts, transactions)).Register(api)
	NewTransactionHandler(transactionCmd, query.NewTransactionQueryService(transactions)).Register(api)
	NewScreeningHandler(screeningCmd).Register(api)

	return &flow{t: t, router: r, sender: sender, accounts: accounts, audit: auditLog}
}

func (f *flow) do(method, path string, body interface{}) (int, string) {
	w := doRequest(f.router, method, flowContextPath+path, body)
	return w.Code, w.Body.String()
}

func (f *flow) createAccount(name string) string {
	code, body := f.do(http.MethodPost, "/api/v1/account", map[string]interface{}{"accountHolderName": name})
	require.Equal(f.t, http.StatusOK, code, body)
	var raw map[string]json.RawMessage
	require.NoError(f.t, json.Unmarshal([]byte(body), &raw))
	return string(raw["accountNumber"])
}

// callback posts the screener's verdict to the path taken from the last dispatched callback URL.
func (f *flow) callback(accountNumber string, passed bool) int {
	url := f.sender.last().CallbackURL
	path := url[strings.Index(url, flowContextPath)+len(flowContextPath):]
	code, _ := f.do(http.MethodPost, path, fmt.Sprintf(`{"accountNumber":%s,"isSecurityCheckSuccess":%t}`, accountNumber, passed))
	return code
}

func (f *flow) deposit(accountNumber string, amount int64, ts *time.Time) (int, string) {
	body := fmt.Sprintf(`{"accountNumber":%s,"type":"DEPOSIT","amount":%d}`, accountNumber, amount)
	if ts != nil {
		body = fmt.Sprintf(`{"accountNumber":%s,"type":"DEPOSIT","amount":%d,"timestamp":"%s"}`, accountNumber, amount, ts.Format(time.RFC3339Nano))
	}
	return f.do(http.MethodPost, "/api/v1/transaction", body)
}

func TestFlowAccountNumbersAndDispatch(t *testing.T) {
	f := newFlow(t)

	first := f.createAccount("Ada")
	second := f.createAccount("Grace")

	assert.Equal(t, "555555550000000000000001", first)
	assert.Equal(t, "555555550000000000000002", second)

	dispatch := f.sender.last()
	assert.Equal(t, "Grace", dispatch.AccountHolderName)
	assert.Equal(t, second, dispatch.AccountNumber.String())
	assert.True(t, strings.HasPrefix(dispatch.CallbackURL, "http://account-svc:8080/bank/api/v1/background-security-callback/"))
}

func TestFlowTransactionRequiresPassedScreening(t *testing.T) {
	f := newFlow(t)
	account := f.createAccount("Ada")

	code, _ := f.deposit(account, 100, nil)
	assert.Equal(t, http.StatusNotFound, code, "no verdict yet")

	// forged callbacks are acknowledged but change nothing
	code, _ = f.do(http.MethodPost, "/api/v1/background-security-callback/6f1d1a0e-0000-4000-8000-000000000000",
		fmt.Sprintf(`{"accountNumber":%s,"isSecurityCheckSuccess":true}`, account))
	assert.Equal(t, http.StatusOK, code)
	code, _ = f.do(http.MethodPost, "/api/v1/background-security-callback/not-a-token",
		fmt.Sprintf(`{"accountNumber":%s,"isSecurityCheckSuccess":true}`, account))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, http.StatusOK, f.callback("555555550000000000000999", true), "account mismatch")

	code, _ = f.deposit(account, 100, nil)
	assert.Equal(t, http.StatusNotFound, code, "rejected callbacks must not unlock the account")

	rejected, err := f.audit.ListByType(context.Background(), events.ScreeningRejected)
	require.NoError(t, err)
	assert.Len(t, rejected, 3)

	assert.Equal(t, http.StatusOK, f.callback(account, true))

	code, body := f.deposit(account, 100, nil)
	require.Equal(t, http.StatusOK, code, body)
	var tx map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &tx))
	assert.NotEmpty(t, tx["id"])
	assert.Equal(t, "DEPOSIT", tx["type"])
}

func TestFlowFailedScreeningBlocksTransactions(t *testing.T) {
	f := newFlow(t)
	account := f.createAccount("Ada")
	require.Equal(t, http.StatusOK, f.callback(account, false))

	code, _ := f.deposit(account, 100, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestFlowBalanceAndTimestamps(t *testing.T) {
	f := newFlow(t)
	account := f.createAccount("Ada")
	require.Equal(t, http.StatusOK, f.callback(account, true))

	code, body := f.deposit(account, 100, nil)
	require.Equal(t, http.StatusOK, code, body)
	code, body = f.do(http.MethodGet, "/api/v1/account/"+account+"/balance", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "100", body)

	code, _ = f.deposit(account, 50, nil)
	require.Equal(t, http.StatusOK, code)
	code, body = f.do(http.MethodPost, "/api/v1/transaction", fmt.Sprintf(`{"accountNumber":%s,"type":"WITHDRAWAL","amount":10}`, account))
	require.Equal(t, http.StatusOK, code, body)

	_, body = f.do(http.MethodGet, "/api/v1/account/"+account+"/balance", nil)
	assert.Equal(t, "140", body)

	past := time.Now().Add(-time.Hour)
	code, _ = f.deposit(account, 1, &past)
	assert.Equal(t, http.StatusBadRequest, code)

	future := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	code, body = f.deposit(account, 1, &future)
	require.Equal(t, http.StatusOK, code, body)
	var tx struct {
		Timestamp time.Time `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &tx))
	assert.True(t, future.Equal(tx.Timestamp))
}

func TestFlowSoftDelete(t *testing.T) {
	f := newFlow(t)
	account := f.createAccount("Ada")
	f.createAccount("Grace")
	require.Equal(t, http.StatusOK, f.callback("555555550000000000000002", true))
	code, _ := f.deposit("555555550000000000000002", 5, nil)
	require.Equal(t, http.StatusOK, code)

	code, first := f.do(http.MethodDelete, "/api/v1/account/"+account, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, first, `"isDeleted":true`)

	code, second := f.do(http.MethodDelete, "/api/v1/account/"+account, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, first, second)

	code, _ = f.do(http.MethodGet, "/api/v1/account/"+account, nil)
	assert.Equal(t, http.StatusNotFound, code)

	_, list := f.do(http.MethodGet, "/api/v1/account", nil)
	assert.NotContains(t, list, account)
	assert.Contains(t, list, "555555550000000000000002")

	count, err := f.accounts.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	code, _ = f.do(http.MethodDelete, "/api/v1/account/555555559999999999999999", nil)
	assert.Equal(t, http.StatusNotFound, code)

	// deleting Grace hides her transaction from the listing
	code, _ = f.do(http.MethodDelete, "/api/v1/account/555555550000000000000002", nil)
	require.Equal(t, http.StatusOK, code)
	_, txs := f.do(http.MethodGet, "/api/v1/transaction", nil)
	assert.Equal(t, "[]", txs)
}
