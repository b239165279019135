package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends accepted by STORE_BACKEND.
const (
	BackendDynamo   = "dynamo"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Notifier kinds accepted by NOTIFIER.
const (
	NotifierSMTP = "smtp"
	NotifierSNS  = "sns"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string

	StoreBackend   string
	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	DatabaseURL    string

	S3BucketName      string
	S3PublicBaseURL   string // prefix for public image URLs, e.g. a CDN origin
	GatedAssetKey     string
	DownloadURLExpiry time.Duration
	MaxUploadBytes    int64

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SectionTTL    time.Duration

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration
	GoogleClientID    string
	AdminEmails       []string // accounts allowed through Google sign-in
	AdminEmail        string   // password login account
	AdminPasswordHash string   // bcrypt hash

	Notifier      string
	OperatorEmail string // fixed recipient of PINs and contact messages
	SMTPHost      string
	SMTPPort      string
	SMTPFrom      string
	SMTPUsername  string
	SMTPPassword  string
	SNSRegion     string
	SNSTopicARN   string

	PIN PINConfig

	CleanupSchedule string
	CleanupToken    string // when set, /cleanup-requests requires "Bearer <token>"

	AllowedOrigins []string // CORS allowed origins
	TrustProxy     bool     // honour X-Forwarded-For / X-Real-Ip from a fronting proxy
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	DownloadRequests string
	Content          string
}

// PINConfig tunes the download PIN flow.
type PINConfig struct {
	TTL                     time.Duration
	ActiveWatermark         int
	Capacity                int
	RollbackOnNotifyFailure bool
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:  getEnv("APP_PORT", "3000"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StoreBackend:   strings.ToLower(getEnv("STORE_BACKEND", BackendDynamo)),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			DownloadRequests: getEnv("DYNAMO_TABLE_DOWNLOAD_REQUESTS", "download_requests"),
			Content:          getEnv("DYNAMO_TABLE_CONTENT", "content"),
		},
		DatabaseURL: getEnv("DATABASE_URL", ""),

		S3BucketName:      getEnv("S3_BUCKET_NAME", "site-assets"),
		S3PublicBaseURL:   strings.TrimRight(getEnv("S3_PUBLIC_BASE_URL", ""), "/"),
		GatedAssetKey:     getEnv("GATED_ASSET_KEY", "downloads/catalogue.pdf"),
		DownloadURLExpiry: getEnvDuration("DOWNLOAD_URL_EXPIRY", 10*time.Minute),
		MaxUploadBytes:    int64(getEnvInt("MAX_UPLOAD_MB", 10)) << 20,

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		SectionTTL:    getEnvDuration("SECTION_CACHE_TTL", 5*time.Minute),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 12)) * time.Hour,
		GoogleClientID:    getEnv("GOOGLE_CLIENT_ID", ""),
		AdminEmails:       splitList(getEnv("ADMIN_EMAILS", "")),
		AdminEmail:        strings.ToLower(getEnv("ADMIN_EMAIL", "")),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),

		Notifier:      strings.ToLower(getEnv("NOTIFIER", NotifierSMTP)),
		OperatorEmail: getEnv("OPERATOR_EMAIL", "owner@example.com"),
		SMTPHost:      getEnv("SMTP_HOST", "localhost"),
		SMTPPort:      getEnv("SMTP_PORT", "1025"),
		SMTPFrom:      getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SNSRegion:     getEnv("SNS_REGION", "us-east-1"),
		SNSTopicARN:   getEnv("SNS_TOPIC_ARN", ""),

		PIN: PINConfig{
			TTL:                     getEnvDuration("PIN_TTL", 30*time.Minute),
			ActiveWatermark:         getEnvInt("PIN_ACTIVE_WATERMARK", 45),
			Capacity:                getEnvInt("PIN_CAPACITY", 50),
			RollbackOnNotifyFailure: getEnvBool("PIN_ROLLBACK_ON_NOTIFY_FAILURE", true),
		},

		CleanupSchedule: getEnv("CLEANUP_SCHEDULE", "@every 15m"),
		CleanupToken:    getEnv("CLEANUP_TOKEN", ""),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		TrustProxy:     getEnvBool("TRUST_PROXY", false),
	}
}

// IsProduction reports whether the service runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
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

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
