package domain

import "errors"

// 錯誤分類 (taxonomy)，搭配 errors.Is 使用
var (
	// ErrAccountNotFound 找不到帳戶
	ErrAccountNotFound = errors.New("account not found")

	// ErrInsufficientFunds 餘額不足
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidRequest 遠端拒絕的請求 (如非正數金額)
	ErrInvalidRequest = errors.New("invalid request")

	// ErrRemoteUnavailable 連線失敗或逾時
	ErrRemoteUnavailable = errors.New("remote ledger unavailable")

	// ErrRemoteProtocol 無法分類的遠端回應 (非預期的狀態碼或格式)
	ErrRemoteProtocol = errors.New("remote ledger protocol error")
)

// ErrorCode 對外 API 的錯誤代碼
type ErrorCode string

const (
	ErrorCodeInternal           ErrorCode = "INTERNAL_ERROR"
	ErrorCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrorCodeBadRequest         ErrorCode = "BAD_REQUEST"
	ErrorCodeInsufficientFunds  ErrorCode = "INSUFFICIENT_FUNDS"
	ErrorCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

// LedgerError 是 accounts client 分類後的錯誤
//
// 結構:
//
//	Kind: 上方的 sentinel error 之一
//	Message: 帶有遠端診斷訊息的描述
//	StatusCode: 遠端 HTTP 狀態碼 (連線失敗時為 0)
//	Cause: 底層錯誤 (可為 nil)
type LedgerError struct {
	Kind       error
	Message    string
	StatusCode int
	Cause      error
}

func (e *LedgerError) Error() string {
	return e.Message
}

// Unwrap 同時暴露 Kind 與 Cause，errors.Is 可比對兩者
func (e *LedgerError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// NewLedgerError 建立 LedgerError
func NewLedgerError(kind error, statusCode int, message string, cause error) *LedgerError {
	return &LedgerError{
		Kind:       kind,
		Message:    message,
		StatusCode: statusCode,
		Cause:      cause,
	}
}

// ErrorCodeOf 將錯誤對應到 API 錯誤代碼，無法分類的一律為 INTERNAL_ERROR
func ErrorCodeOf(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrAccountNotFound):
		return ErrorCodeNotFound
	case errors.Is(err, ErrInsufficientFunds):
		return ErrorCodeInsufficientFunds
	case errors.Is(err, ErrInvalidRequest):
		return ErrorCodeBadRequest
	case errors.Is(err, ErrRemoteUnavailable):
		return ErrorCodeServiceUnavailable
	default:
		return ErrorCodeInternal
	}
}
