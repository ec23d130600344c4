package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	JWTPrivateKeyPath  string
	JWTPublicKeyPath   string
	JWTExpiry          time.Duration
	RefreshTokenExpiry time.Duration

	OTP OTPConfig

	// RegNumberCacheTTL bounds how long a fully validated registration
	// number skips the uniqueness scan.
	RegNumberCacheTTL time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	SNSRegion string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users         string
	Sessions      string
	Jobs          string
	Follows       string
	Notifications string
}

// OTPConfig tunes the in-memory OTP store.
type OTPConfig struct {
	TTL           time.Duration
	MaxAttempts   int
	MaxRequests   int // per rate-limit window
	Window        time.Duration
	SweepInterval time.Duration
	VerifiedGrace time.Duration // how long a verified record survives for idempotent re-checks
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:         getEnv("DYNAMO_TABLE_USERS", "users"),
			Sessions:      getEnv("DYNAMO_TABLE_SESSIONS", "sessions"),
			Jobs:          getEnv("DYNAMO_TABLE_JOBS", "jobs"),
			Follows:       getEnv("DYNAMO_TABLE_FOLLOWS", "follows"),
			Notifications: getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
		},

		JWTPrivateKeyPath:  getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:   getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:          time.Duration(getEnvInt("JWT_EXPIRY_DAYS", 7)) * 24 * time.Hour,
		RefreshTokenExpiry: time.Duration(getEnvInt("REFRESH_TOKEN_EXPIRY_DAYS", 30)) * 24 * time.Hour,

		OTP: OTPConfig{
			TTL:           time.Duration(getEnvInt("OTP_TTL_MINUTES", 10)) * time.Minute,
			MaxAttempts:   getEnvInt("OTP_MAX_ATTEMPTS", 3),
			MaxRequests:   getEnvInt("OTP_MAX_REQUESTS", 3),
			Window:        time.Duration(getEnvInt("OTP_WINDOW_MINUTES", 15)) * time.Minute,
			SweepInterval: time.Duration(getEnvInt("OTP_SWEEP_MINUTES", 5)) * time.Minute,
			VerifiedGrace: time.Duration(getEnvInt("OTP_VERIFIED_GRACE_SECONDS", 60)) * time.Second,
		},

		RegNumberCacheTTL: time.Duration(getEnvInt("REG_NUMBER_CACHE_MINUTES", 60)) * time.Minute,

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		SNSRegion: getEnv("SNS_REGION", "us-east-1"),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
