package grpc

import (
	"context"

	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/JoeShih716/go-transactions-service/internal/app/core/usecase"
)

const (
	// ServiceTransactions 本服務，只要行程存活即為 SERVING
	ServiceTransactions = "transactions"
	// ServiceAccounts 遠端 accounts service
	ServiceAccounts = "accounts"
)

// HealthServer 實作 grpc.health.v1.Health
// "" 與 "accounts" 反映 accounts service 的狀態，與 HTTP /health 的 503 判斷一致
type HealthServer struct {
	healthpb.UnimplementedHealthServer
	core *usecase.TransactionUseCase
}

func NewHealthServer(core *usecase.TransactionUseCase) *HealthServer {
	return &HealthServer{
		core: core,
	}
}

func (s *HealthServer) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	switch req.GetService() {
	case ServiceTransactions:
		return servingStatus(true), nil
	case "", ServiceAccounts:
		return servingStatus(s.core.CheckRemoteHealth(ctx)), nil
	default:
		return nil, status.Errorf(codes.NotFound, "unknown service %q", req.GetService())
	}
}

func servingStatus(serving bool) *healthpb.HealthCheckResponse {
	if serving {
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}
}

var _ healthpb.HealthServer = (*HealthServer)(nil)
