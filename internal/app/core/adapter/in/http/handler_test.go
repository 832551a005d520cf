package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/JoeShih716/go-transactions-service/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-transactions-service/internal/app/core/domain"
	"github.com/JoeShih716/go-transactions-service/internal/app/core/usecase"
)

const accountID = "0b3e4a4e-6f1d-4b8e-9c55-5f2a3c1d7e90"

type stubAccounts struct {
	mu        sync.Mutex
	balances  map[string]decimal.Decimal
	lookupErr error
	mutateErr error
	mutations int
	healthy   bool
}

func (s *stubAccounts) LookupAccount(ctx context.Context, id string) (domain.Account, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lookupErr != nil {
		return domain.Account{}, false, s.lookupErr
	}
	balance, ok := s.balances[id]
	return domain.Account{ID: id, Balance: balance}, ok, nil
}

func (s *stubAccounts) Debit(ctx context.Context, id string, amount decimal.Decimal) (domain.Account, error) {
	return s.mutate(id, amount.Neg())
}

func (s *stubAccounts) Credit(ctx context.Context, id string, amount decimal.Decimal) (domain.Account, error) {
	return s.mutate(id, amount)
}

func (s *stubAccounts) mutate(id string, delta decimal.Decimal) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutations++
	if s.mutateErr != nil {
		return domain.Account{}, s.mutateErr
	}
	s.balances[id] = s.balances[id].Add(delta)
	return domain.Account{ID: id, Balance: s.balances[id]}, nil
}

func (s *stubAccounts) ProbeHealth(ctx context.Context) bool {
	return s.healthy
}

func newTestApp(t *testing.T) (*fiber.App, *stubAccounts) {
	t.Helper()
	accounts := &stubAccounts{
		balances: map[string]decimal.Decimal{accountID: decimal.NewFromInt(1000)},
		healthy:  true,
	}
	logger := zaptest.NewLogger(t)
	core := usecase.NewTransactionUseCase(accounts, memory.NewMutexTransactionStore(), usecase.WithLogger(logger))
	return NewApp(NewHandler(core, logger), logger), accounts
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { assert.NoError(t, resp.Body.Close()) }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func decodeError(t *testing.T, raw []byte) ErrorResponse {
	t.Helper()
	var out ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestHealth(t *testing.T) {
	app, accounts := newTestApp(t)

	status, raw := do(t, app, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"UP","account_service":"UP","message":"All services operational"}`, string(raw))

	accounts.healthy = false
	status, raw = do(t, app, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.JSONEq(t, `{"status":"UP","account_service":"DOWN","message":"Account service not available"}`, string(raw))

	status, raw = do(t, app, http.MethodHead, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Empty(t, raw)
}

func TestCreateAndListTransactions(t *testing.T) {
	app, _ := newTestApp(t)
	path := "/accounts/" + accountID + "/transactions"

	status, raw := do(t, app, http.MethodPost, path, `{"amount":500.00,"description":"pay","transaction_type":"credit"}`)
	require.Equal(t, http.StatusCreated, status, string(raw))
	var credit map[string]any
	require.NoError(t, json.Unmarshal(raw, &credit))
	assert.Equal(t, 500.0, credit["amount"])
	assert.Equal(t, "credit", credit["transaction_type"])
	assert.Equal(t, "pay", credit["description"])
	assert.True(t, strings.HasPrefix(credit["transaction_id"].(string), "tx-"))
	assert.Contains(t, string(raw), `"amount":500.00`)

	status, raw = do(t, app, http.MethodPost, path, `{"amount":200,"description":"rent","transaction_type":"debit"}`)
	require.Equal(t, http.StatusCreated, status, string(raw))
	assert.Contains(t, string(raw), `"amount":-200.00`)

	status, raw = do(t, app, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, status)
	var history []TransactionResponse
	require.NoError(t, json.Unmarshal(raw, &history))
	require.Len(t, history, 2)
	assert.Equal(t, "pay", history[0].Description)
	assert.Equal(t, json.Number("-200.00"), history[1].Amount)

	status, raw = do(t, app, http.MethodGet, "/accounts/"+accountID+"/balance", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"account_id":"`+accountID+`","balance":1300.00}`, string(raw))
}

func TestListTransactionsEmptyForKnownAccount(t *testing.T) {
	app, _ := newTestApp(t)

	status, raw := do(t, app, http.MethodGet, "/accounts/"+accountID+"/transactions", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestUnknownAccount(t *testing.T) {
	app, accounts := newTestApp(t)
	unknown := "9f4c1a9e-1111-4a5b-8c2d-000000000000"

	status, raw := do(t, app, http.MethodGet, "/accounts/"+unknown+"/transactions", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, ErrorResponse{ErrorCode: domain.ErrorCodeNotFound, Message: "Account " + unknown + " Not Found"}, decodeError(t, raw))

	status, raw = do(t, app, http.MethodPost, "/accounts/"+unknown+"/transactions", `{"amount":1,"description":"x","transaction_type":"credit"}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Account Not Found: Account does not exist", decodeError(t, raw).Message)
	assert.Zero(t, accounts.mutations)

	status, _ = do(t, app, http.MethodGet, "/accounts/"+unknown+"/balance", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCreateTransactionValidation(t *testing.T) {
	app, accounts := newTestApp(t)
	path := "/accounts/" + accountID + "/transactions"

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{name: "invalid uuid", path: "/accounts/not-a-uuid/transactions", body: `{"amount":1,"description":"x","transaction_type":"credit"}`, status: http.StatusUnprocessableEntity},
		{name: "malformed json", path: path, body: `{"amount":`, status: http.StatusUnprocessableEntity},
		{name: "missing amount", path: path, body: `{"description":"x","transaction_type":"credit"}`, status: http.StatusUnprocessableEntity},
		{name: "zero amount", path: path, body: `{"amount":0,"description":"x","transaction_type":"credit"}`, status: http.StatusUnprocessableEntity},
		{name: "negative amount", path: path, body: `{"amount":-5,"description":"x","transaction_type":"debit"}`, status: http.StatusUnprocessableEntity},
		{name: "missing description", path: path, body: `{"amount":1,"transaction_type":"credit"}`, status: http.StatusUnprocessableEntity},
		{name: "unknown type", path: path, body: `{"amount":1,"description":"x","transaction_type":"refund"}`, status: http.StatusUnprocessableEntity},
		{name: "too many decimals", path: path, body: `{"amount":10.555,"description":"x","transaction_type":"credit"}`, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, raw := do(t, app, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, status, string(raw))
		})
	}

	status, raw := do(t, app, http.MethodPost, path, `{"amount":10.555,"description":"x","transaction_type":"credit"}`)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, ErrorResponse{
		ErrorCode: domain.ErrorCodeBadRequest,
		Message:   "Bad Transaction: Amount must not have more than 2 decimal places",
	}, decodeError(t, raw))

	assert.Zero(t, accounts.mutations)
}

func TestCreateTransactionRemoteErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   domain.ErrorCode
		msg    string
	}{
		{
			name:   "insufficient funds",
			err:    domain.NewLedgerError(domain.ErrInsufficientFunds, 400, "Insufficient Funds: Account balance too low", nil),
			status: http.StatusBadRequest,
			code:   domain.ErrorCodeInsufficientFunds,
			msg:    "Insufficient Funds: Account balance too low",
		},
		{
			name:   "account not found",
			err:    domain.NewLedgerError(domain.ErrAccountNotFound, 404, "Account Not Found: gone", nil),
			status: http.StatusNotFound,
			code:   domain.ErrorCodeNotFound,
			msg:    "Account Not Found: gone",
		},
		{
			name:   "invalid request",
			err:    domain.NewLedgerError(domain.ErrInvalidRequest, 400, "Bad Request: nope", nil),
			status: http.StatusBadRequest,
			code:   domain.ErrorCodeBadRequest,
			msg:    "Bad Request: nope",
		},
		{
			name:   "remote unavailable",
			err:    domain.NewLedgerError(domain.ErrRemoteUnavailable, 0, "Account Service Error: timeout", nil),
			status: http.StatusServiceUnavailable,
			code:   domain.ErrorCodeServiceUnavailable,
			msg:    "Account Service Error: timeout",
		},
		{
			name:   "protocol error",
			err:    domain.NewLedgerError(domain.ErrRemoteProtocol, 502, "Account Service Error: bad gateway", nil),
			status: http.StatusInternalServerError,
			code:   domain.ErrorCodeInternal,
			msg:    "Account Service Error: bad gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, accounts := newTestApp(t)
			accounts.mutateErr = tt.err
			path := "/accounts/" + accountID + "/transactions"

			status, raw := do(t, app, http.MethodPost, path, `{"amount":2000.00,"description":"rent","transaction_type":"debit"}`)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, ErrorResponse{ErrorCode: tt.code, Message: tt.msg}, decodeError(t, raw))

			status, raw = do(t, app, http.MethodGet, path, "")
			assert.Equal(t, http.StatusOK, status)
			assert.JSONEq(t, `[]`, string(raw))
		})
	}
}

func TestLookupUnavailable(t *testing.T) {
	app, accounts := newTestApp(t)
	accounts.lookupErr = domain.NewLedgerError(domain.ErrRemoteUnavailable, 0, "Account service connection error: refused", nil)

	status, raw := do(t, app, http.MethodGet, "/accounts/"+accountID+"/transactions", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, domain.ErrorCodeServiceUnavailable, decodeError(t, raw).ErrorCode)
}

func TestUnknownRoute(t *testing.T) {
	app, _ := newTestApp(t)

	status, raw := do(t, app, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, domain.ErrorCodeNotFound, decodeError(t, raw).ErrorCode)
}
