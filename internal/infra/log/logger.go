package log

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "account-service"

// New builds the process logger. An empty level means debug; an unknown one is an error.
func New(level string) (*zap.Logger, error) {
	lvl := zap.NewAtomicLevelAt(zap.DebugLevel)
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("bad LOG_LEVEL=%s: %w", level, err)
		}
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = lvl
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.InitialFields = map[string]interface{}{"service": serviceName}

	return cfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
}

// Must falls back to debug when level cannot be parsed and panics only if
// the logger cannot be built at all.
func Must(level string) *zap.Logger {
	l, err := New(level)
	if err == nil {
		return l
	}
	fmt.Fprintf(os.Stderr, "%v, fallback to debug\n", err)
	if l, err = New(""); err != nil {
		panic(err)
	}
	return l
}
