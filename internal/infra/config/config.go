package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

type Config struct {
	JWTSecret string
	JWTIssuer string

	StoreDriver   string
	DatabaseURL   string
	RedisAddress  string
	RedisPassword string
	RedisDB       int

	HashAlgorithm string

	GRPCAddress      string
	HTTPAddress      string
	HTTPSCertFile    string
	HTTPSKeyFile     string
	AllowedOrigins   []string
	AllowCredentials bool
	ShutdownTimeout  time.Duration

	LogLevel string
}

// TLSEnabled reports whether both certificate files are configured.
func (c *Config) TLSEnabled() bool {
	return c.HTTPSCertFile != "" && c.HTTPSKeyFile != ""
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.AutomaticEnv()

	v.SetDefault("STORE_DRIVER", StorePostgres)
	v.SetDefault("HASH_ALGORITHM", "bcrypt")
	v.SetDefault("GRPC_ADDRESS", ":50051")
	v.SetDefault("HTTP_ADDRESS", ":8080")
	v.SetDefault("SHUTDOWN_TIMEOUT", "5s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REDIS_DB", 0)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		JWTSecret:        v.GetString("JWT_SECRET"),
		JWTIssuer:        v.GetString("JWT_ISSUER"),
		StoreDriver:      strings.ToLower(v.GetString("STORE_DRIVER")),
		DatabaseURL:      v.GetString("DATABASE_URL"),
		RedisAddress:     v.GetString("REDIS_ADDRESS"),
		RedisPassword:    v.GetString("REDIS_PASSWORD"),
		RedisDB:          v.GetInt("REDIS_DB"),
		HashAlgorithm:    v.GetString("HASH_ALGORITHM"),
		GRPCAddress:      v.GetString("GRPC_ADDRESS"),
		HTTPAddress:      v.GetString("HTTP_ADDRESS"),
		HTTPSCertFile:    v.GetString("HTTPS_CERT_FILE"),
		HTTPSKeyFile:     v.GetString("HTTPS_KEY_FILE"),
		AllowedOrigins:   stringList(v, "ALLOWED_ORIGINS"),
		AllowCredentials: v.GetBool("ALLOW_CREDENTIALS"),
		ShutdownTimeout:  v.GetDuration("SHUTDOWN_TIMEOUT"),
		LogLevel:         v.GetString("LOG_LEVEL"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is not set")
	}
	switch c.StoreDriver {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is not set")
		}
	case StoreRedis:
		if c.RedisAddress == "" {
			return fmt.Errorf("REDIS_ADDRESS is not set")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if (c.HTTPSCertFile == "") != (c.HTTPSKeyFile == "") {
		return fmt.Errorf("HTTPS_CERT_FILE and HTTPS_KEY_FILE must be set together")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// stringList reads a list either from a config.json array or from a
// comma-separated env value.
func stringList(v *viper.Viper, key string) []string {
	switch v.Get(key).(type) {
	case []interface{}, []string:
		return v.GetStringSlice(key)
	}
	return splitList(v.GetString(key))
}

// splitList accepts "a,b" as well as a JSON-ish `["a","b"]` string.
func splitList(raw string) []string {
	raw = strings.Trim(strings.TrimSpace(raw), "[]")
	if raw == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.Trim(strings.TrimSpace(p), `"`)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
