package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/db/memory"
	myPostgresRepo "github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/db/postgres"
	myRedisRepo "github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/db/redis"
	myGrpc "github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/transport/grpc"
	myHttp "github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/transport/http"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/app/auth/hasher"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/app/auth/jwt"
	appsvc "github.com/Miraines/MoonyAndStarry/account-service/internal/app/auth/service"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/app/auth/validate"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/repo"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/infra/config"
	lg "github.com/Miraines/MoonyAndStarry/account-service/internal/infra/log"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/infra/migrate"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/infra/server"
	"golang.org/x/sync/errgroup"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	zapLog := lg.Must(cfg.LogLevel)
	defer zapLog.Sync()

	accounts, closeStore, err := openStore(cfg, zapLog)
	if err != nil {
		zapLog.Fatal("failed to open account store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer closeStore()

	passwordHasher, err := hasher.New(cfg.HashAlgorithm)
	if err != nil {
		zapLog.Fatal("failed to init password hasher", zap.Error(err))
	}

	jwtUtil, err := jwt.NewJWTUtil(cfg.JWTSecret, jwt.WithIssuer(cfg.JWTIssuer))
	if err != nil {
		zapLog.Fatal("failed to init JWT util", zap.Error(err))
	}

	svc := appsvc.New(accounts, passwordHasher, jwtUtil, validate.New(), zapLog)

	grpcHandler := myGrpc.NewHandler(svc, zapLog)
	router := myHttp.NewRouter(cfg, myHttp.NewHandler(svc, accounts, zapLog), zapLog)
	srv := &http.Server{Addr: cfg.HTTPAddress, Handler: router}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		return server.StartGRPCServer(ctx, cfg, grpcHandler, accounts, zapLog)
	})

	g.Go(func() error {
		zapLog.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddress), zap.Bool("tls", cfg.TLSEnabled()))
		var err error
		if cfg.TLSEnabled() {
			err = srv.ListenAndServeTLS(cfg.HTTPSCertFile, cfg.HTTPSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		zapLog.Info("shutdown signal received")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(ctxShutdown)
	})

	if err := g.Wait(); err != nil {
		zapLog.Error("server terminated", zap.Error(err))
	}
}

// openStore returns the configured account store and its cleanup.
func openStore(cfg *config.Config, zapLog *zap.Logger) (repo.AccountRepo, func(), error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		if err := migrate.Up(sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		zapLog.Info("using postgres account store")
		return myPostgresRepo.NewPostgresAccountRepo(db), func() { _ = sqlDB.Close() }, nil

	case config.StoreRedis:
		redisCli := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		zapLog.Info("using redis account store", zap.String("addr", cfg.RedisAddress))
		return myRedisRepo.NewRedisAccountRepo(redisCli), func() { _ = redisCli.Close() }, nil

	default:
		zapLog.Warn("using in-memory account store; data is lost on restart")
		return memory.NewMemoryAccountRepo(), func() {}, nil
	}
}
