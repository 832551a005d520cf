package accounts

import (
	"errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-transactions-service/internal/app/core/domain"
)

// newBreaker 建立 accounts service 使用的 circuit breaker
func newBreaker(cfg BreakerConfig, logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "accounts-service",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		IsSuccessful: isBreakerSuccess,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// isBreakerSuccess 只有遠端本身的問題才算失敗
func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	return !errors.Is(err, domain.ErrRemoteUnavailable) && !errors.Is(err, domain.ErrRemoteProtocol)
}
