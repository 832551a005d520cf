package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-transactions-service/internal/app/core/domain"
)

// TransactionUseCase 是交易的核心業務邏輯層
// 負責「先異動遠端餘額，成功後才寫入本地紀錄」的流程
type TransactionUseCase struct {
	accounts AccountsGateway
	store    TransactionStore
	logger   *zap.Logger
	now      func() time.Time
}

// Option 定義 TransactionUseCase 的配置選項函數
type Option func(*TransactionUseCase)

// WithClock 替換取得目前時間的函數 (測試用)
func WithClock(now func() time.Time) Option {
	return func(u *TransactionUseCase) {
		u.now = now
	}
}

// WithLogger 設定 logger，未設定時不輸出
func WithLogger(logger *zap.Logger) Option {
	return func(u *TransactionUseCase) {
		u.logger = logger
	}
}

// NewTransactionUseCase 建立 TransactionUseCase
//
// 參數:
//
//	accounts: 遠端帳務服務 client
//	store: 本地交易紀錄儲存
//	opts: 可選配置
//
// 回傳:
//
//	*TransactionUseCase: 實例
func NewTransactionUseCase(accounts AccountsGateway, store TransactionStore, opts ...Option) *TransactionUseCase {
	u := &TransactionUseCase{
		accounts: accounts,
		store:    store,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	u.logger = u.logger.With(zap.String("component", "transaction_usecase"))
	return u
}

// AccountExists 帳戶是否存在於遠端帳務服務
func (u *TransactionUseCase) AccountExists(ctx context.Context, accountID string) (bool, error) {
	_, found, err := u.accounts.LookupAccount(ctx, accountID)
	if err != nil {
		return false, err
	}
	return found, nil
}

// GetBalance 取得帳戶目前餘額，帳戶不存在時 found=false
func (u *TransactionUseCase) GetBalance(ctx context.Context, accountID string) (balance decimal.Decimal, found bool, err error) {
	account, found, err := u.accounts.LookupAccount(ctx, accountID)
	if err != nil || !found {
		return decimal.Zero, false, err
	}
	return account.Balance, true, nil
}

// CreateTransaction 建立一筆交易
//
// 流程: 遠端 debit/credit 成功 -> 產生紀錄 -> 寫入 store
// 遠端失敗時錯誤原樣回傳 (保留分類)，不會寫入任何本地紀錄。
// 金額的正數與精度檢查由呼叫端 (HTTP 層) 負責。
//
// 參數:
//
//	ctx: 上下文
//	accountID: 帳戶 ID
//	amount: 金額 (正數，最多 2 位小數)
//	description: 描述
//	txType: debit / credit
//
// 回傳:
//
//	domain.Transaction: 建立的交易紀錄
//	error: 遠端錯誤
func (u *TransactionUseCase) CreateTransaction(
	ctx context.Context,
	accountID string,
	amount decimal.Decimal,
	description string,
	txType domain.TransactionType,
) (domain.Transaction, error) {
	logger := u.logger.With(
		zap.String("account_id", accountID),
		zap.String("transaction_type", string(txType)),
		zap.String("amount", amount.StringFixed(domain.AmountScale)),
	)

	var err error
	switch txType {
	case domain.TransactionTypeDebit:
		_, err = u.accounts.Debit(ctx, accountID, amount)
	case domain.TransactionTypeCredit:
		_, err = u.accounts.Credit(ctx, accountID, amount)
	default:
		return domain.Transaction{}, domain.NewLedgerError(
			domain.ErrInvalidRequest, 0, fmt.Sprintf("Bad Request: unknown transaction type %q", txType), nil)
	}
	if err != nil {
		logger.Warn("remote balance mutation failed",
			zap.String("error_code", string(domain.ErrorCodeOf(err))),
			zap.Error(err),
		)
		return domain.Transaction{}, err
	}

	tran := domain.NewTransaction(amount, description, txType, u.now())
	u.store.Append(ctx, accountID, tran)

	logger.Info("transaction recorded", zap.String("transaction_id", tran.ID))
	return tran, nil
}

// GetTransactions 回傳本地紀錄，不呼叫遠端
func (u *TransactionUseCase) GetTransactions(ctx context.Context, accountID string) []domain.Transaction {
	return u.store.List(ctx, accountID)
}

// CheckRemoteHealth 遠端帳務服務是否健康
func (u *TransactionUseCase) CheckRemoteHealth(ctx context.Context) bool {
	healthy := u.accounts.ProbeHealth(ctx)
	if !healthy {
		u.logger.Warn("accounts service health probe failed")
	}
	return healthy
}
