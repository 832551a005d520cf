package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	grpc_adapter "github.com/JoeShih716/go-transactions-service/internal/app/core/adapter/in/grpc"
	"github.com/JoeShih716/go-transactions-service/pkg/grpc"
	"github.com/JoeShih716/go-transactions-service/pkg/logger"
)

// health_client 透過 gRPC health 查詢 transactions service 與 accounts service 狀態
// 全部 SERVING 時 exit code 為 0，可直接當作容器的 healthcheck
func main() {
	var (
		target   string
		services []string
		timeout  time.Duration
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:           "health_client",
		Short:         "Query the gRPC health endpoint of the transactions service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := "info"
			if verbose {
				level = "debug"
			}
			log, err := logger.New(logger.Config{Level: level, Development: true})
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return check(ctx, log, target, services)
		},
	}
	cmd.Flags().StringVarP(&target, "target", "t", "localhost:50052", "grpc address of the transactions service")
	cmd.Flags().StringSliceVarP(&services, "service", "s",
		[]string{grpc_adapter.ServiceTransactions, grpc_adapter.ServiceAccounts}, "services to check")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "overall timeout")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every grpc call")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func check(ctx context.Context, log *zap.Logger, target string, services []string) error {
	pool := grpc.NewPool(grpc.WithLogger(log))
	defer func() { _ = pool.Close() }()

	conn, err := pool.GetConnection(target)
	if err != nil {
		return err
	}
	client := healthpb.NewHealthClient(conn)

	var notServing []string
	for _, svc := range services {
		resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: svc})
		if err != nil {
			return fmt.Errorf("check %q: %w", svc, err)
		}
		log.Info("health", zap.String("service", svc), zap.String("status", resp.GetStatus().String()))
		if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
			notServing = append(notServing, svc)
		}
	}
	if len(notServing) > 0 {
		return fmt.Errorf("not serving: %v", notServing)
	}
	return nil
}
