package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress            string
	DatabaseURI           string
	JWTSecret             string
	AuthStrategy          string
	TokenTTL              time.Duration
	EvidenceDir           string
	DeliveryFee           int64
	PaymentWindow         time.Duration
	PaymentGatewayAddress string
	PaymentWebhookSecret  string
	KafkaBrokers          []string
	KafkaTopic            string
	RedisAddr             string
	RedisPassword         string
	RedisChannel          string
	OutboxPollInterval    time.Duration
	OutboxBatchSize       int
	OutboxMaxAttempts     int
	WorkerPoolSize        int
	ShutdownTimeout       time.Duration
	RateLimit             string
	LogLevel              string
	AdminLogin            string
	AdminPassword         string
}

const (
	defaultRunAddress         = ":8080"
	defaultJWTSecret          = "change-me-in-production"
	defaultAuthStrategy       = "jwt"
	defaultTokenTTL           = 24 * time.Hour
	defaultEvidenceDir        = "./data/evidence"
	defaultDeliveryFee        = int64(10000)
	defaultPaymentWindow      = 3600 * time.Second
	defaultKafkaTopic         = "homecare.events"
	defaultRedisChannel       = "homecare:messages"
	defaultOutboxPollInterval = 3 * time.Second
	defaultOutboxBatchSize    = 32
	defaultOutboxMaxAttempts  = 5
	defaultWorkerPoolSize     = 4
	defaultShutdownTimeout    = 10 * time.Second
	defaultRateLimit          = "300-M"
	defaultLogLevel           = "info"
	defaultEnvFile            = ".env"
)

// Load parses configuration from an optional .env file, flags and environment variables.
// Variables already present in the environment win over the file.
func Load() (*Config, error) {
	if err := loadEnvFile(getString(os.LookupEnv, "ENV_FILE", defaultEnvFile)); err != nil {
		return nil, err
	}
	return load(os.Args[1:], os.LookupEnv)
}

func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:            getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:           getString(lookup, "DATABASE_URI", ""),
		JWTSecret:             getString(lookup, "JWT_SECRET", defaultJWTSecret),
		AuthStrategy:          getString(lookup, "AUTH_STRATEGY", defaultAuthStrategy),
		TokenTTL:              getDuration(lookup, "TOKEN_TTL", defaultTokenTTL),
		EvidenceDir:           getString(lookup, "EVIDENCE_DIR", defaultEvidenceDir),
		DeliveryFee:           getInt64(lookup, "DELIVERY_FEE", defaultDeliveryFee),
		PaymentWindow:         getDuration(lookup, "PAYMENT_WINDOW", defaultPaymentWindow),
		PaymentGatewayAddress: getString(lookup, "PAYMENT_GATEWAY_ADDRESS", ""),
		PaymentWebhookSecret:  getString(lookup, "PAYMENT_WEBHOOK_SECRET", ""),
		KafkaTopic:            getString(lookup, "KAFKA_TOPIC", defaultKafkaTopic),
		RedisAddr:             getString(lookup, "REDIS_ADDR", ""),
		RedisPassword:         getString(lookup, "REDIS_PASSWORD", ""),
		RedisChannel:          getString(lookup, "REDIS_CHANNEL", defaultRedisChannel),
		OutboxPollInterval:    getDuration(lookup, "OUTBOX_POLL_INTERVAL", defaultOutboxPollInterval),
		OutboxBatchSize:       getInt(lookup, "OUTBOX_BATCH_SIZE", defaultOutboxBatchSize),
		OutboxMaxAttempts:     getInt(lookup, "OUTBOX_MAX_ATTEMPTS", defaultOutboxMaxAttempts),
		WorkerPoolSize:        getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ShutdownTimeout:       getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		RateLimit:             getString(lookup, "RATE_LIMIT", defaultRateLimit),
		LogLevel:              getString(lookup, "LOG_LEVEL", defaultLogLevel),
		AdminLogin:            getString(lookup, "ADMIN_LOGIN", ""),
		AdminPassword:         getString(lookup, "ADMIN_PASSWORD", ""),
	}

	flags := flag.NewFlagSet("homecare", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	var (
		brokers            = getString(lookup, "KAFKA_BROKERS", "")
		pollIntervalStr    = cfg.OutboxPollInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		paymentWindowStr   = cfg.PaymentWindow.String()
	)

	flags.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	flags.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	flags.StringVar(&cfg.PaymentGatewayAddress, "g", cfg.PaymentGatewayAddress, "Payment gateway base URL")
	flags.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	flags.StringVar(&cfg.AuthStrategy, "auth-strategy", cfg.AuthStrategy, "Token strategy: jwt or hmac")
	flags.StringVar(&cfg.EvidenceDir, "evidence-dir", cfg.EvidenceDir, "Directory for proof of service images")
	flags.Int64Var(&cfg.DeliveryFee, "delivery-fee", cfg.DeliveryFee, "Flat medicine delivery fee")
	flags.StringVar(&paymentWindowStr, "payment-window", paymentWindowStr, "Virtual account countdown")
	flags.StringVar(&brokers, "kafka-brokers", brokers, "Comma separated Kafka brokers")
	flags.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis address for realtime fan-out")
	flags.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent outbox workers")
	flags.StringVar(&pollIntervalStr, "poll-interval", pollIntervalStr, "Interval between outbox polls")
	flags.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	flags.IntVar(&cfg.OutboxBatchSize, "poll-batch", cfg.OutboxBatchSize, "Maximum events per outbox batch")
	flags.StringVar(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "API rate limit, e.g. 300-M")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")

	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.OutboxPollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid poll interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.PaymentWindow, err = time.ParseDuration(paymentWindowStr); err != nil {
		return nil, fmt.Errorf("invalid payment window: %w", err)
	}

	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = strings.TrimSpace(string(content))
	}

	cfg.KafkaBrokers = splitList(brokers)
	cfg.AuthStrategy = strings.ToLower(strings.TrimSpace(cfg.AuthStrategy))

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.OutboxBatchSize <= 0 {
		cfg.OutboxBatchSize = defaultOutboxBatchSize
	}

	if cfg.OutboxMaxAttempts <= 0 {
		cfg.OutboxMaxAttempts = defaultOutboxMaxAttempts
	}

	if cfg.OutboxPollInterval <= 0 {
		cfg.OutboxPollInterval = defaultOutboxPollInterval
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.PaymentWindow <= 0 {
		cfg.PaymentWindow = defaultPaymentWindow
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	if cfg.DeliveryFee < 0 {
		cfg.DeliveryFee = defaultDeliveryFee
	}

	if cfg.RateLimit == "" {
		cfg.RateLimit = defaultRateLimit
	}

	if cfg.AuthStrategy != "jwt" && cfg.AuthStrategy != "hmac" {
		return nil, fmt.Errorf("unknown auth strategy %q", cfg.AuthStrategy)
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getInt64(lookup envLookup, key string, def int64) int64 {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
