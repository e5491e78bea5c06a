package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/app/background"
	"github.com/LavaJover/shvark-referral-service/internal/app/setup"
	"github.com/LavaJover/shvark-referral-service/internal/config"
	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/handlers"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/logger"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}

	cfg := config.MustLoad()

	zl, err := logger.New(cfg.LogConfig)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zl); err != nil {
		zl.Fatal("referral service stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.ReferralConfig, zl *zap.Logger) error {
	deps, err := setup.InitializeDependencies(ctx, cfg, zl)
	if err != nil {
		return fmt.Errorf("dependencies: %w", err)
	}
	defer deps.Close()

	ucs, err := setup.InitializeUseCases(deps)
	if err != nil {
		return fmt.Errorf("usecases: %w", err)
	}

	// Event consumers
	rewardListener := background.NewRewardEventListener(
		deps.Subscriber,
		ucs.RewardUsecase,
		deps.Deduplicator,
		cfg.KafkaService.GroupID,
		deps.Metrics,
		zl,
	)
	if err := rewardListener.Start(ctx); err != nil {
		return err
	}
	fraudListener := background.NewFraudEventListener(
		deps.Subscriber,
		logger.NewZapFraudEventLogger(zl),
		cfg.KafkaService.GroupID,
		deps.Metrics,
		zl,
	)
	if err := fraudListener.Start(ctx); err != nil {
		return err
	}

	// Scheduled sweeps
	tasks := background.NewBackgroundTasks(ucs.ReferralUsecase, ucs.RewardUsecase, cfg.Jobs, zl)
	if err := tasks.StartAll(ctx); err != nil {
		return err
	}

	// gRPC health for orchestration
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("referral", healthpb.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%s", cfg.GRPCServer.Host, cfg.GRPCServer.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	go func() {
		zl.Info("gRPC health server started", zap.String("addr", lis.Addr().String()))
		if err := grpcServer.Serve(lis); err != nil {
			zl.Error("gRPC server stopped", zap.Error(err))
		}
	}()

	handler := handlers.NewHandler(
		ucs.ReferralUsecase,
		ucs.CommissionUsecase,
		ucs.FraudUsecase,
		ucs.RewardUsecase,
		ucs.PayoutUsecase,
		zl.Named("http"),
	)
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port),
		Handler:      handlers.NewRouter(handler, promhttp.Handler(), zl.Named("http")),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("HTTP server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		zl.Info("shutting down")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	healthServer.SetServingStatus("referral", healthpb.HealthCheckResponse_NOT_SERVING)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("http shutdown failed", zap.Error(err))
	}
	grpcServer.GracefulStop()
	return nil
}
