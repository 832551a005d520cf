package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpc_adapter "github.com/JoeShih716/go-transactions-service/internal/app/core/adapter/in/grpc"
	http_adapter "github.com/JoeShih716/go-transactions-service/internal/app/core/adapter/in/http"
	"github.com/JoeShih716/go-transactions-service/internal/app/core/adapter/out/accounts"
	memory_adapter "github.com/JoeShih716/go-transactions-service/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-transactions-service/internal/app/core/usecase"
	"github.com/JoeShih716/go-transactions-service/internal/config"
	"github.com/JoeShih716/go-transactions-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:           "core",
		Short:         "Transactions service: records debits and credits against the accounts service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to the yaml config file")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	// 1. 載入設定
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	// 2. 初始化 accounts service client 與本地儲存
	accountsClient, err := accounts.NewClient(cfg.Accounts, accounts.WithLogger(log))
	if err != nil {
		return err
	}
	store := memory_adapter.NewMutexTransactionStore()

	// 3. 初始化 UseCase
	core := usecase.NewTransactionUseCase(accountsClient, store, usecase.WithLogger(log))

	// 4. HTTP Adapter
	app := http_adapter.NewApp(http_adapter.NewHandler(core, log), log)

	// 5. gRPC health Adapter
	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		return fmt.Errorf("listen grpc %s: %w", cfg.GRPC.Addr, err)
	}
	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, grpc_adapter.NewHealthServer(core))
	reflection.Register(grpcServer)

	errCh := make(chan error, 2)
	go func() {
		log.Info("starting grpc server", zap.String("addr", cfg.GRPC.Addr))
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()
	go func() {
		log.Info("starting http server",
			zap.String("addr", cfg.HTTP.Addr),
			zap.String("accounts_url", cfg.Accounts.BaseURL),
			zap.Duration("accounts_timeout", cfg.Accounts.Timeout),
		)
		if err := app.Listen(cfg.HTTP.Addr); err != nil {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	case runErr = <-errCh:
		log.Error("server failed", zap.Error(runErr))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()
	log.Info("server exited")
	return runErr
}
