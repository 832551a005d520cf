package accounts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-transactions-service/internal/app/core/domain"
	"github.com/JoeShih716/go-transactions-service/internal/app/core/usecase"
)

// 回應 body 讀取上限
const maxBodyBytes = 1 << 20

// Client 是 accounts service 的 HTTP client
// 每個操作只送出一個請求，不重試；失敗一律轉為 domain 定義的錯誤分類
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker // nil 表示未啟用
	logger     *zap.Logger
}

// ClientOption 定義 Client 的配置選項函數
type ClientOption func(*Client)

// WithHTTPClient 替換底層 http.Client (例如使用自訂 Transport)
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger 設定 logger
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient 建立 accounts service client
//
// 參數:
//
//	cfg: Config - client 配置 (未設定的欄位會補上預設值)
//	opts: ...ClientOption - 可選配置
//
// 回傳值:
//
//	*Client: client 實例
//	error: base URL 不合法時回傳錯誤
func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	cfg = cfg.WithDefaults()

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid accounts base url %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid accounts base url %q: scheme must be http or https", cfg.BaseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		httpClient: &http.Client{
			// 連線池由 Transport 管理，各請求的逾時由 context 控制
			Transport: http.DefaultTransport,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("component", "accounts_client"))

	if cfg.Breaker.Enabled {
		c.breaker = newBreaker(cfg.Breaker, c.logger)
	}
	return c, nil
}

// LookupAccount 查詢帳戶
//
// 回傳:
//
//	domain.Account: 帳戶資料
//	bool: 遠端回應 404 時為 false (不是錯誤)
//	error: ErrRemoteUnavailable / ErrRemoteProtocol
func (c *Client) LookupAccount(ctx context.Context, accountID string) (domain.Account, bool, error) {
	var found bool
	account, err := c.execute(func() (domain.Account, error) {
		status, body, err := c.send(ctx, http.MethodGet, accountPath(accountID), nil)
		if err != nil {
			return domain.Account{}, domain.NewLedgerError(domain.ErrRemoteUnavailable, 0,
				fmt.Sprintf("Account service connection error: %v", err), err)
		}

		switch status {
		case http.StatusOK:
			found = true
			return decodeAccount(status, body)
		case http.StatusNotFound:
			return domain.Account{}, nil
		default:
			failure := decodeFailure(body)
			return domain.Account{}, domain.NewLedgerError(domain.ErrRemoteProtocol, status,
				"Account service error: "+failure.messageOr("Unknown error"), nil)
		}
	})
	if err != nil {
		return domain.Account{}, false, err
	}
	return account, found, nil
}

// Debit 扣款
//
// 錯誤對應:
//
//	404 -> ErrAccountNotFound
//	400 + INSUFFICIENT_FUNDS -> ErrInsufficientFunds
//	400 -> ErrInvalidRequest
//	連線失敗/逾時 -> ErrRemoteUnavailable
//	其他 -> ErrRemoteProtocol
func (c *Client) Debit(ctx context.Context, accountID string, amount decimal.Decimal) (domain.Account, error) {
	return c.mutate(ctx, accountID, "debit", amount, true)
}

// Credit 入帳，錯誤對應與 Debit 相同但沒有餘額不足的情況
func (c *Client) Credit(ctx context.Context, accountID string, amount decimal.Decimal) (domain.Account, error) {
	return c.mutate(ctx, accountID, "credit", amount, false)
}

// ProbeHealth 呼叫 /health，只有 200 回傳 true；任何錯誤皆回傳 false
// 不經過 circuit breaker，反映遠端的真實狀態
func (c *Client) ProbeHealth(ctx context.Context) bool {
	status, _, err := c.send(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		c.logger.Debug("health probe failed", zap.Error(err))
		return false
	}
	return status == http.StatusOK
}

type mutationRequest struct {
	Amount json.Number `json:"amount"`
}

func (c *Client) mutate(ctx context.Context, accountID, operation string, amount decimal.Decimal, canBeInsufficient bool) (domain.Account, error) {
	payload := mutationRequest{Amount: wireAmount(amount)}

	return c.execute(func() (domain.Account, error) {
		status, body, err := c.send(ctx, http.MethodPost, accountPath(accountID)+"/"+operation, payload)
		if err != nil {
			return domain.Account{}, domain.NewLedgerError(domain.ErrRemoteUnavailable, 0,
				fmt.Sprintf("Account Service Error: Failed to communicate with account service - %v", err), err)
		}
		if status == http.StatusOK {
			return decodeAccount(status, body)
		}
		return domain.Account{}, classifyMutationFailure(status, decodeFailure(body), canBeInsufficient)
	})
}

// execute 在 breaker 啟用時經由 breaker 執行 fn
func (c *Client) execute(fn func() (domain.Account, error)) (domain.Account, error) {
	if c.breaker == nil {
		return fn()
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return domain.Account{}, domain.NewLedgerError(domain.ErrRemoteUnavailable, 0,
			"Account Service Error: circuit breaker is "+c.breaker.State().String(), err)
	}
	account, _ := result.(domain.Account)
	return account, err
}

// send 送出單一請求並讀回完整 body
// 回傳的 error 只代表連線層級的失敗 (含逾時)
func (c *Client) send(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("accounts service call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)
	return resp.StatusCode, body, nil
}

// wireAmount 以 2 位小數輸出；超過 2 位時原樣送出，不做四捨五入，由遠端判定
func wireAmount(amount decimal.Decimal) json.Number {
	if domain.HasValidScale(amount) {
		return json.Number(amount.StringFixed(domain.AmountScale))
	}
	return json.Number(amount.String())
}

func accountPath(accountID string) string {
	return "/accounts/" + url.PathEscape(accountID)
}

var _ usecase.AccountsGateway = (*Client)(nil)
