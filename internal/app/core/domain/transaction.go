package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AmountScale 金額精度：小數點後 2 位
const AmountScale = 2

// TransactionType 交易類型
type TransactionType string

const (
	// 扣款，紀錄為負數
	TransactionTypeDebit TransactionType = "debit"
	// 入帳，紀錄為正數
	TransactionTypeCredit TransactionType = "credit"
)

// Valid 是否為已知的交易類型
func (t TransactionType) Valid() bool {
	return t == TransactionTypeDebit || t == TransactionTypeCredit
}

// Transaction 本地交易紀錄，建立後不可變
type Transaction struct {
	// ID: 不透明的唯一識別碼 (tx-xxxxxxxx...)
	ID string
	// Date: 建立時間 (UTC)
	Date time.Time
	// Amount: 帶正負號的金額，debit 為負、credit 為正
	Amount decimal.Decimal
	// Description: 自由文字描述
	Description string
	// Type: debit / credit
	Type TransactionType
}

// NewTransaction 依照交易類型的正負號慣例建立一筆交易紀錄
//
// 參數:
//
//	amount: 請求金額 (正數)
//	description: 描述
//	txType: 交易類型
//	now: 建立時間
//
// 回傳:
//
//	Transaction: 新的交易紀錄
func NewTransaction(amount decimal.Decimal, description string, txType TransactionType, now time.Time) Transaction {
	return Transaction{
		ID:          NewTransactionID(),
		Date:        now.UTC(),
		Amount:      SignedAmount(txType, amount),
		Description: description,
		Type:        txType,
	}
}

// SignedAmount 回傳依交易類型帶正負號的金額，magnitude 與請求金額相同
func SignedAmount(txType TransactionType, amount decimal.Decimal) decimal.Decimal {
	magnitude := amount.Abs()
	if txType == TransactionTypeDebit {
		return magnitude.Neg()
	}
	return magnitude
}

// NewTransactionID 產生新的交易 ID
func NewTransactionID() string {
	return "tx-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// HasValidScale 金額的小數位數是否不超過 AmountScale
func HasValidScale(amount decimal.Decimal) bool {
	return amount.Equal(amount.Round(AmountScale))
}
