package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Grievance    GrievanceConfig
	Telegram     TelegramConfig
	WhatsApp     WhatsAppConfig
	Notification NotificationConfig
	Storage      StorageConfig
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
	JWTSecret             string
	AccessTokenTTLMinutes int
	OTPProvider           string // "static" or "whatsapp"
	StaticOTPCode         string
	OTPTTLMinutes         int
	DefaultCountryCode    string
	AdminUsername         string
	AdminPasswordHash     string
}

// GrievanceConfig holds the lifecycle policy switches.
type GrievanceConfig struct {
	TicketPrefix        string
	CooldownHours       int
	InitialStatus       domain.GrievanceStatus
	LockTerminal        bool
	MaxDescriptionRunes int
}

// TelegramConfig configures the chat-bot channel.
type TelegramConfig struct {
	BotToken      string
	AdminChatID   string
	WebhookSecret string
}

// WhatsAppConfig configures the messaging-template channel.
type WhatsAppConfig struct {
	APIURL               string
	APIToken             string
	OTPTemplate          string
	ConfirmationTemplate string
}

// NotificationConfig controls outbound notification behavior.
type NotificationConfig struct {
	SendTimeoutSeconds int
	DedupTTLMinutes    int
	DigestSchedule     string // cron spec, empty disables the daily digest
}

// StorageConfig configures the grievance image blob store.
type StorageConfig struct {
	UploadDir     string
	PublicBaseURL string
	MaxUploadMB   int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	initialStatus := domain.GrievanceStatus(getEnv("GRIEVANCE_INITIAL_STATUS", string(domain.StatusInProgress)))
	if !domain.IsValidStatus(initialStatus) {
		return nil, fmt.Errorf("invalid GRIEVANCE_INITIAL_STATUS: %q", initialStatus)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "grievance-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
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
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 30),
			OTPProvider:           getEnv("AUTH_OTP_PROVIDER", "static"),
			StaticOTPCode:         getEnv("AUTH_STATIC_OTP_CODE", "123456"),
			OTPTTLMinutes:         getEnvAsInt("AUTH_OTP_TTL_MINUTES", 5),
			DefaultCountryCode:    getEnv("AUTH_DEFAULT_COUNTRY_CODE", "91"),
			AdminUsername:         getEnv("ADMIN_USERNAME", "admin"),
			AdminPasswordHash:     os.Getenv("ADMIN_PASSWORD_HASH"),
		},
		Grievance: GrievanceConfig{
			TicketPrefix:        getEnv("GRIEVANCE_TICKET_PREFIX", "SG"),
			CooldownHours:       getEnvAsInt("GRIEVANCE_COOLDOWN_HOURS", 24),
			InitialStatus:       initialStatus,
			LockTerminal:        getEnvAsBool("GRIEVANCE_LOCK_TERMINAL", false),
			MaxDescriptionRunes: getEnvAsInt("GRIEVANCE_MAX_DESCRIPTION_RUNES", 355),
		},
		Telegram: TelegramConfig{
			BotToken:      os.Getenv("TELEGRAM_BOT_TOKEN"),
			AdminChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
			WebhookSecret: os.Getenv("TELEGRAM_WEBHOOK_SECRET"),
		},
		WhatsApp: WhatsAppConfig{
			APIURL:               os.Getenv("WHATSAPP_API_URL"),
			APIToken:             os.Getenv("WHATSAPP_API_TOKEN"),
			OTPTemplate:          getEnv("WHATSAPP_OTP_TEMPLATE", "otp"),
			ConfirmationTemplate: getEnv("WHATSAPP_CONFIRMATION_TEMPLATE", "form_submission_confirmation"),
		},
		Notification: NotificationConfig{
			SendTimeoutSeconds: getEnvAsInt("NOTIFY_SEND_TIMEOUT_SECONDS", 10),
			DedupTTLMinutes:    getEnvAsInt("NOTIFY_DEDUP_TTL_MINUTES", 5),
			DigestSchedule:     os.Getenv("NOTIFY_DIGEST_SCHEDULE"),
		},
		Storage: StorageConfig{
			UploadDir:     getEnv("STORAGE_UPLOAD_DIR", "uploads"),
			PublicBaseURL: getEnv("STORAGE_PUBLIC_BASE_URL", "/uploads"),
			MaxUploadMB:   getEnvAsInt("STORAGE_MAX_UPLOAD_MB", 5),
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

// OTPTTL returns the verification challenge lifetime.
func (a AuthConfig) OTPTTL() time.Duration {
	if a.OTPTTLMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(a.OTPTTLMinutes) * time.Minute
}

// CooldownWindow returns the rolling submission window.
func (g GrievanceConfig) CooldownWindow() time.Duration {
	return time.Duration(g.CooldownHours) * time.Hour
}

// SendTimeout returns the per-channel outbound call timeout.
func (n NotificationConfig) SendTimeout() time.Duration {
	if n.SendTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(n.SendTimeoutSeconds) * time.Second
}

// DedupTTL returns the callback dedup cache lifetime.
func (n NotificationConfig) DedupTTL() time.Duration {
	if n.DedupTTLMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(n.DedupTTLMinutes) * time.Minute
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
