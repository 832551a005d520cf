package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-transactions-service/internal/app/core/domain"
)

// AccountsGateway 是遠端帳務服務 (accounts service) 的介面
// 所有錯誤皆需為 domain 定義的分類之一
type AccountsGateway interface {
	// LookupAccount 查詢帳戶，找不到時回傳 found=false 而非錯誤
	LookupAccount(ctx context.Context, accountID string) (account domain.Account, found bool, err error)
	// Debit 扣款
	Debit(ctx context.Context, accountID string, amount decimal.Decimal) (domain.Account, error)
	// Credit 入帳
	Credit(ctx context.Context, accountID string, amount decimal.Decimal) (domain.Account, error)
	// ProbeHealth 遠端是否存活，不會回傳錯誤
	ProbeHealth(ctx context.Context) bool
}

// TransactionStore 本地交易紀錄儲存 (append-only)
type TransactionStore interface {
	// Append 新增一筆交易到帳戶的歷史紀錄
	Append(ctx context.Context, accountID string, tran domain.Transaction)
	// List 依建立順序回傳帳戶的交易紀錄，未知帳戶回傳空 slice
	List(ctx context.Context, accountID string) []domain.Transaction
}
