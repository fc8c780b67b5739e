package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the portal.
type Config struct {
	App         AppConfig
	Postgres    PostgresConfig
	Redis       RedisConfig
	Logger      LoggerConfig
	Auth        AuthConfig
	AI          AIConfig
	Attachments AttachmentConfig
	Broadcast   BroadcastConfig
	SMTP        SMTPConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret               string
	AccessTokenTTLMinutes   int
	PasswordResetTTLMinutes int
	BcryptCost              int
}

// AIConfig parameterizes the generative draft pipeline. Models is the ordered
// fallback chain: the first entry is tried before each subsequent one.
type AIConfig struct {
	APIKey          string
	BaseURL         string
	Models          []string
	Temperature     float64
	MaxOutputTokens int
	TimeoutSeconds  int
}

// AttachmentConfig bounds which stored files qualify as vision input.
type AttachmentConfig struct {
	Dir            string
	MaxImageWidth  int
	MaxImageHeight int
	MaxFileBytes   int64
}

// BroadcastConfig paces newsletter sends.
type BroadcastConfig struct {
	BatchSize    int
	BatchDelayMS int
}

// SMTPConfig holds outbound mail settings. Sending is skipped (and reported
// as failed) when Host or From is empty.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	AdminTo  string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "support-portal"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 60),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:               getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes:   getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			PasswordResetTTLMinutes: getEnvAsInt("AUTH_PASSWORD_RESET_TTL_MINUTES", 30),
			BcryptCost:              getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		AI: AIConfig{
			APIKey:          os.Getenv("AI_API_KEY"),
			BaseURL:         getEnv("AI_BASE_URL", "https://generativelanguage.googleapis.com"),
			Models:          getEnvAsList("AI_MODELS", []string{"gemini-1.5-flash", "gemini-1.5-flash-8b"}),
			Temperature:     getEnvAsFloat("AI_TEMPERATURE", 0.7),
			MaxOutputTokens: getEnvAsInt("AI_MAX_OUTPUT_TOKENS", 512),
			TimeoutSeconds:  getEnvAsInt("AI_TIMEOUT_SECONDS", 45),
		},
		Attachments: AttachmentConfig{
			Dir:            getEnv("ATTACHMENT_DIR", "uploads"),
			MaxImageWidth:  getEnvAsInt("ATTACHMENT_MAX_IMAGE_WIDTH", 4096),
			MaxImageHeight: getEnvAsInt("ATTACHMENT_MAX_IMAGE_HEIGHT", 4096),
			MaxFileBytes:   int64(getEnvAsInt("ATTACHMENT_MAX_FILE_BYTES", 8<<20)),
		},
		Broadcast: BroadcastConfig{
			BatchSize:    getEnvAsInt("BROADCAST_BATCH_SIZE", 5),
			BatchDelayMS: getEnvAsInt("BROADCAST_BATCH_DELAY_MS", 500),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("SMTP_FROM", ""),
			AdminTo:  getEnv("SMTP_ADMIN_TO", ""),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// PasswordResetTTL returns the reset token lifetime as a duration.
func (a AuthConfig) PasswordResetTTL() time.Duration {
	if a.PasswordResetTTLMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(a.PasswordResetTTLMinutes) * time.Minute
}

// BatchDelay returns the inter-batch pause as a duration.
func (b BroadcastConfig) BatchDelay() time.Duration {
	if b.BatchDelayMS <= 0 {
		return 0
	}
	return time.Duration(b.BatchDelayMS) * time.Millisecond
}

// Timeout returns the per-call model timeout.
func (a AIConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 45 * time.Second
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parts := strings.Split(val, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return fallback
	}
	return result
}
