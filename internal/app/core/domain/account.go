package domain

import "github.com/shopspring/decimal"

// Account 遠端帳務服務回傳的帳戶資料
// 本服務不持有帳戶狀態，只透過 accounts 服務查詢
type Account struct {
	ID      string
	Type    string
	Balance decimal.Decimal
}
