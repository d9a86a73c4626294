package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Module provides the application Config and the hot-reloadable onboarding policy.
var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewOnboardingPolicyHolder),
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	LogLevel  string
	LogFormat string

	HTTPAddr string

	OTLPEndpoint      string
	OTLPProtocol      string
	OtelEnabled       bool
	OtelSamplingRatio float64

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Payment    PaymentConfig
	Invitation InvitationConfig
	Redis      RedisConfig
	Outbox     OutboxConfig

	OnboardingPolicyPath string
	CleanupSweepInterval time.Duration
}

type PaymentConfig struct {
	Provider      string
	SecretKey     string
	RentProductID string
	Currency      string
	// APIBaseURL overrides the processor endpoint, used against local mocks.
	APIBaseURL string
}

type InvitationConfig struct {
	BaseURL string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type OutboxConfig struct {
	PollInterval time.Duration
	BatchSize    int
	LockTTL      time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:           getenv("APP_SERVICE", "tenantflow"),
		AppVersion:        getenv("APP_VERSION", "0.1.0"),
		Environment:       getenv("ENVIRONMENT", "development"),
		LogLevel:          strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogFormat:         strings.ToLower(getenv("LOG_FORMAT", "json")),
		HTTPAddr:          strings.TrimSpace(getenv("HTTP_ADDR", ":8080")),
		OTLPEndpoint:      getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTLPProtocol:      strings.ToLower(getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")),
		OtelEnabled:       getenvBool("OTEL_ENABLED", false),
		OtelSamplingRatio: getenvFloat("OTEL_SAMPLING_RATIO", 0.1),
		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "tenantflow"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 10),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 50),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),
		Payment: PaymentConfig{
			Provider:      strings.ToLower(strings.TrimSpace(getenv("PAYMENT_PROVIDER", "stripe"))),
			SecretKey:     strings.TrimSpace(getenv("STRIPE_SECRET_KEY", "")),
			RentProductID: strings.TrimSpace(getenv("STRIPE_RENT_PRODUCT_ID", "")),
			Currency:      strings.ToLower(getenv("BILLING_CURRENCY", "usd")),
			APIBaseURL:    strings.TrimSpace(getenv("STRIPE_API_BASE", "")),
		},
		Invitation: InvitationConfig{
			BaseURL: strings.TrimRight(getenv("INVITATION_BASE_URL", "http://localhost:3000"), "/"),
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getenvInt("REDIS_DB", 0),
		},
		Outbox: OutboxConfig{
			PollInterval: getenvDuration("OUTBOX_POLL_INTERVAL", 5*time.Second),
			BatchSize:    getenvInt("OUTBOX_BATCH_SIZE", 50),
			LockTTL:      getenvDuration("OUTBOX_LOCK_TTL", 30*time.Second),
		},
		OnboardingPolicyPath: strings.TrimSpace(getenv("ONBOARDING_POLICY_PATH", "")),
		CleanupSweepInterval: getenvDuration("ONBOARDING_SWEEP_INTERVAL", 5*time.Minute),
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
