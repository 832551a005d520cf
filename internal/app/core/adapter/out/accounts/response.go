package accounts

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-transactions-service/internal/app/core/domain"
)

// remoteErrorCodeInsufficientFunds 是遠端表示餘額不足的 error_code
const remoteErrorCodeInsufficientFunds = "INSUFFICIENT_FUNDS"

// accountBody 對應遠端帳戶回應
type accountBody struct {
	AccountID string          `json:"account_id"`
	Type      string          `json:"type"`
	Balance   decimal.Decimal `json:"balance"`
}

// errorBody 對應遠端錯誤回應
type errorBody struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

// failureReason 遠端錯誤 body 的分類，在收到回應時決定一次，之後不再檢查原始文字
type failureReason uint8

const (
	failureGeneric failureReason = iota
	failureInsufficientFunds
)

// remoteFailure 解析後的遠端錯誤
type remoteFailure struct {
	reason  failureReason
	message string
}

func (f remoteFailure) messageOr(fallback string) string {
	if f.message == "" {
		return fallback
	}
	return f.message
}

// decodeFailure 解析遠端錯誤 body；非 JSON 時保留原始文字作為訊息
func decodeFailure(body []byte) remoteFailure {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return remoteFailure{reason: failureGeneric, message: strings.TrimSpace(string(body))}
	}

	failure := remoteFailure{reason: failureGeneric, message: eb.Message}
	if eb.ErrorCode == remoteErrorCodeInsufficientFunds {
		failure.reason = failureInsufficientFunds
	}
	return failure
}

// classifyMutationFailure 將 debit/credit 的非 200 回應對應到錯誤分類
//
// 參數:
//
//	status: 遠端 HTTP 狀態碼
//	failure: 解析後的錯誤 body
//	canBeInsufficient: 是否辨識餘額不足 (只有 debit)
func classifyMutationFailure(status int, failure remoteFailure, canBeInsufficient bool) error {
	switch {
	case status == http.StatusNotFound:
		return domain.NewLedgerError(domain.ErrAccountNotFound, status,
			"Account Not Found: "+failure.messageOr("Account does not exist"), nil)
	case status == http.StatusBadRequest && canBeInsufficient && failure.reason == failureInsufficientFunds:
		return domain.NewLedgerError(domain.ErrInsufficientFunds, status,
			"Insufficient Funds: "+failure.messageOr("Account balance too low"), nil)
	case status == http.StatusBadRequest:
		return domain.NewLedgerError(domain.ErrInvalidRequest, status,
			"Bad Request: "+failure.messageOr("Invalid request"), nil)
	default:
		return domain.NewLedgerError(domain.ErrRemoteProtocol, status,
			"Account Service Error: "+failure.messageOr("Unknown error"), nil)
	}
}

// decodeAccount 解析 200 回應，格式不符時為 ErrRemoteProtocol
func decodeAccount(status int, body []byte) (domain.Account, error) {
	var ab accountBody
	if err := json.Unmarshal(body, &ab); err != nil {
		return domain.Account{}, domain.NewLedgerError(domain.ErrRemoteProtocol, status,
			"Account Service Error: unexpected response body", err)
	}
	return domain.Account{
		ID:      ab.AccountID,
		Type:    ab.Type,
		Balance: ab.Balance,
	}, nil
}
