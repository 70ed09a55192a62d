package server

import (
	"context"
	"errors"
	"net"
	"time"

	accountgrpc "github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/transport/grpc"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/transport/grpc/middleware"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/infra/config"
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const healthInterval = 10 * time.Second

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewGRPCServer builds the server with middleware, metrics and the health service.
func NewGRPCServer(cfg *config.Config, handler accountgrpc.AccountServiceServer, logger *zap.Logger) (*grpc.Server, *health.Server, error) {
	opts := []grpc.ServerOption{
		grpc.UnaryInterceptor(middleware.ChainUnaryServer(logger)),
	}
	if cfg.TLSEnabled() {
		creds, err := credentials.NewServerTLSFromFile(cfg.HTTPSCertFile, cfg.HTTPSKeyFile)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, grpc.Creds(creds))
	}

	grpcServer := grpc.NewServer(opts...)

	accountgrpc.RegisterAccountServiceServer(grpcServer, handler)
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	grpc_prometheus.Register(grpcServer)
	grpc_prometheus.EnableHandlingTimeHistogram()

	return grpcServer, healthSrv, nil
}

// StartGRPCServer serves until ctx is cancelled, then stops gracefully.
func StartGRPCServer(ctx context.Context, cfg *config.Config, handler accountgrpc.AccountServiceServer, store Pinger, logger *zap.Logger) error {
	lis, err := net.Listen("tcp", cfg.GRPCAddress)
	if err != nil {
		return err
	}

	grpcServer, healthSrv, err := NewGRPCServer(cfg, handler, logger)
	if err != nil {
		_ = lis.Close()
		return err
	}

	go watchHealth(ctx, healthSrv, store, logger)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddress))
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	logger.Info("ctx cancelled, stopping gRPC server…")
	healthSrv.Shutdown()

	stopCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-stopCtx.Done():
		grpcServer.Stop()
	case <-done:
	}
	logger.Info("gRPC server stopped")
	return nil
}

func watchHealth(ctx context.Context, hs *health.Server, store Pinger, logger *zap.Logger) {
	check := func() {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		st := healthpb.HealthCheckResponse_SERVING
		if err := store.Ping(pingCtx); err != nil {
			logger.Warn("store health check failed", zap.Error(err))
			st = healthpb.HealthCheckResponse_NOT_SERVING
		}
		hs.SetServingStatus("", st)
		hs.SetServingStatus(accountgrpc.ServiceName, st)
	}

	check()
	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}
