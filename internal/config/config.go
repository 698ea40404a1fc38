package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	Storage      StorageConfig
	Challenge    ChallengeConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	BodyLimitBytes        int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
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

// AuthConfig defines credential parameters for workers and the admin console.
type AuthConfig struct {
	AdminCode              string
	JWTSecret              string
	AdminSessionTTLMinutes int
	BcryptCost             int
}

// NotificationConfig selects and configures the outbound mail provider.
type NotificationConfig struct {
	Provider          string
	SenderName        string
	CitizenSenderName string
	EmailFrom         string
	AdminContactEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUser          string
	SMTPPassword      string
	SendGridAPIKey    string
	SendGridSandbox   bool
}

// StorageConfig controls where uploaded images land and how they are addressed.
type StorageConfig struct {
	RootDir   string
	PublicURL string
}

// ChallengeConfig configures OTP storage.
type ChallengeConfig struct {
	Store      string
	TTLMinutes int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	port := getEnv("APP_PORT", "8080")

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "waste-redressal-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  port,
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			BodyLimitBytes:        getEnvAsInt("HTTP_BODY_LIMIT_BYTES", 10*1024*1024),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
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
			AdminCode:              os.Getenv("ADMIN_ACCESS_CODE"),
			JWTSecret:              getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AdminSessionTTLMinutes: getEnvAsInt("AUTH_ADMIN_SESSION_TTL_MINUTES", 60),
			BcryptCost:             getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Notification: NotificationConfig{
			Provider:          getEnv("NOTIFY_PROVIDER", "log"),
			SenderName:        getEnv("NOTIFY_SENDER_NAME", "Waste Reporting & Redressal System"),
			CitizenSenderName: getEnv("NOTIFY_CITIZEN_SENDER_NAME", "Smart Waste Report Management App"),
			EmailFrom:         getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			AdminContactEmail: getEnv("NOTIFY_ADMIN_CONTACT_EMAIL", "admin@example.com"),
			SMTPHost:          os.Getenv("SMTP_HOST"),
			SMTPPort:          getEnvAsInt("SMTP_PORT", 587),
			SMTPUser:          os.Getenv("SMTP_USER"),
			SMTPPassword:      os.Getenv("SMTP_PASSWORD"),
			SendGridAPIKey:    os.Getenv("SENDGRID_API_KEY"),
			SendGridSandbox:   getEnvAsBool("SENDGRID_SANDBOX", false),
		},
		Storage: StorageConfig{
			RootDir:   getEnv("STORAGE_ROOT_DIR", "./files"),
			PublicURL: getEnv("STORAGE_PUBLIC_URL", "http://localhost:"+port+"/files"),
		},
		Challenge: ChallengeConfig{
			Store:      getEnv("CHALLENGE_STORE", "redis"),
			TTLMinutes: getEnvAsInt("CHALLENGE_TTL_MINUTES", 10),
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

// TTL returns how long an issued code stays valid.
func (c ChallengeConfig) TTL() time.Duration {
	if c.TTLMinutes <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.TTLMinutes) * time.Minute
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
