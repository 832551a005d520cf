package http

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-transactions-service/internal/app/core/domain"
)

// TransactionRequest 建立交易的請求
type TransactionRequest struct {
	Amount          *decimal.Decimal       `json:"amount"`
	Description     *string                `json:"description"`
	TransactionType domain.TransactionType `json:"transaction_type"`
}

// Validate 欄位檢查，失敗回應 422
// 小數位數的檢查在帳戶存在確認之後進行 (回應 400)
func (r TransactionRequest) Validate() string {
	switch {
	case r.Amount == nil:
		return "amount is required"
	case !r.Amount.IsPositive():
		return "amount must be greater than 0"
	case r.Description == nil:
		return "description is required"
	case !r.TransactionType.Valid():
		return "transaction_type must be one of: debit, credit"
	}
	return ""
}

// TransactionResponse 交易紀錄
type TransactionResponse struct {
	TransactionID   string      `json:"transaction_id"`
	Date            time.Time   `json:"date"`
	Amount          json.Number `json:"amount"`
	Description     string      `json:"description"`
	TransactionType string      `json:"transaction_type"`
}

func newTransactionResponse(tran domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:   tran.ID,
		Date:            tran.Date,
		Amount:          amountJSON(tran.Amount),
		Description:     tran.Description,
		TransactionType: string(tran.Type),
	}
}

// BalanceResponse 帳戶餘額
type BalanceResponse struct {
	AccountID string      `json:"account_id"`
	Balance   json.Number `json:"balance"`
}

// HealthResponse 健康檢查回應
type HealthResponse struct {
	Status         string `json:"status"`
	AccountService string `json:"account_service"`
	Message        string `json:"message"`
}

// ErrorResponse 錯誤回應
type ErrorResponse struct {
	ErrorCode domain.ErrorCode `json:"error_code"`
	Message   string           `json:"message"`
}

// amountJSON 以 JSON 數字輸出，固定 2 位小數
func amountJSON(amount decimal.Decimal) json.Number {
	return json.Number(amount.StringFixed(domain.AmountScale))
}
