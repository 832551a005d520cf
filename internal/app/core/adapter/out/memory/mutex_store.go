package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/JoeShih716/go-transactions-service/internal/app/core/domain"
	"github.com/JoeShih716/go-transactions-service/internal/app/core/usecase"
)

// MutexTransactionStore 是一個使用 Mutex 保護的交易紀錄儲存
//
// 結構:
//
//	transactions: 帳戶 ID -> 依建立順序排列的交易紀錄
//	mu: RWMutex，Append 取寫鎖，List 取讀鎖
//
// 資料只存在於記憶體，生命週期與行程相同，不做淘汰。
type MutexTransactionStore struct {
	transactions map[string][]domain.Transaction
	mu           sync.RWMutex
}

// NewMutexTransactionStore 建立一個空的 MutexTransactionStore
func NewMutexTransactionStore() *MutexTransactionStore {
	return &MutexTransactionStore{
		transactions: make(map[string][]domain.Transaction),
	}
}

// Append 新增一筆交易到帳戶歷史 (帳戶不存在時建立)
//
// 參數:
//
//	ctx: 上下文
//	accountID: 帳戶 ID
//	tran: 交易紀錄
func (s *MutexTransactionStore) Append(ctx context.Context, accountID string, tran domain.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions[accountID] = append(s.transactions[accountID], tran)
}

// List 回傳帳戶交易紀錄的複本
//
// 參數:
//
//	ctx: 上下文
//	accountID: 帳戶 ID
//
// 回傳:
//
//	[]domain.Transaction: 依建立順序的交易紀錄，未知帳戶回傳空 slice (非 nil)
func (s *MutexTransactionStore) List(ctx context.Context, accountID string) []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history, ok := s.transactions[accountID]
	if !ok {
		return []domain.Transaction{}
	}
	// 回傳複本，呼叫端拿到的是一致的前綴，之後的 Append 不會影響它
	return slices.Clone(history)
}

var _ usecase.TransactionStore = (*MutexTransactionStore)(nil)
