package middleware

import (
	"strings"

	grpc_middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpc_zap "github.com/grpc-ecosystem/go-grpc-middleware/logging/zap"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const healthServicePrefix = "/grpc.health.v1.Health/"

// RecoveryInterceptor turns a handler panic into codes.Internal; the panic value is only logged.
func RecoveryInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return grpc_recovery.UnaryServerInterceptor(
		grpc_recovery.WithRecoveryHandler(func(p interface{}) error {
			logger.Error("panic in gRPC handler", zap.Any("panic", p))
			return status.Error(codes.Internal, "internal error")
		}),
	)
}

// LoggingInterceptor skips health probes. Bad input and rejected tokens are the
// caller's problem and are logged at info.
func LoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return grpc_zap.UnaryServerInterceptor(logger,
		grpc_zap.WithDecider(func(fullMethod string, _ error) bool {
			return !strings.HasPrefix(fullMethod, healthServicePrefix)
		}),
		grpc_zap.WithLevels(StatusLevel),
	)
}

// StatusLevel picks the log level for a finished call.
func StatusLevel(code codes.Code) zapcore.Level {
	switch code {
	case codes.OK, codes.InvalidArgument, codes.Unauthenticated, codes.NotFound, codes.AlreadyExists:
		return zapcore.InfoLevel
	case codes.Canceled, codes.DeadlineExceeded, codes.Unavailable:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

func MetricsInterceptor() grpc.UnaryServerInterceptor {
	return grpc_prometheus.UnaryServerInterceptor
}

func ChainUnaryServer(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return grpc_middleware.ChainUnaryServer(
		RecoveryInterceptor(logger),
		LoggingInterceptor(logger),
		MetricsInterceptor(),
	)
}
