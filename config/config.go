package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port     string
	MongoURI string
	DBName   string

	JWTSecret  string
	AdminEmail string
	AdminPass  string

	// Cover image storage
	S3Bucket      string
	S3Region      string
	S3AccessKeyID string
	S3SecretKey   string
	MaxCoverMB    int64

	// OTP delivery. When SNSRegion is empty the service runs in development
	// mode and returns codes in the response instead of sending SMS.
	SNSRegion   string
	SMSSenderID string

	// Overdue reminder emails; disabled when SMTPHost is empty.
	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPass         string
	ReminderFrom     string
	ReminderInterval time.Duration
}

func Load() (*Config, error) {
	maxMB := int64(5)
	if v := getEnv("MAX_COVER_MB", "5"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			maxMB = n
		}
	}
	smtpPort := 587
	if v := getEnv("SMTP_PORT", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			smtpPort = n
		}
	}
	interval := 24 * time.Hour
	if v := getEnv("REMINDER_INTERVAL", ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			interval = d
		}
	}

	return &Config{
		Port:             getEnv("PORT", "8080"),
		MongoURI:         getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		DBName:           getEnv("MONGODB_DB", "library"),
		JWTSecret:        getEnv("JWT_SECRET", "change-me-in-production"),
		AdminEmail:       getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPass:        getEnv("ADMIN_PASSWORD", "password"),
		S3Bucket:         getEnv("AWS_S3_BUCKET", ""),
		S3Region:         getEnv("AWS_REGION", "us-east-1"),
		S3AccessKeyID:    getEnv("AWS_ACCESS_KEY_ID", ""),
		S3SecretKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
		MaxCoverMB:       maxMB,
		SNSRegion:        getEnv("SNS_REGION", ""),
		SMSSenderID:      getEnv("SMS_SENDER_ID", ""),
		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         smtpPort,
		SMTPUser:         getEnv("SMTP_USER", ""),
		SMTPPass:         getEnv("SMTP_PASSWORD", ""),
		ReminderFrom:     getEnv("REMINDER_FROM", ""),
		ReminderInterval: interval,
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// RequiredEnvVars are checked at startup; app exits if any are unset.
var RequiredEnvVars = []string{
	"MONGODB_URI",
	"MONGODB_DB",
	"JWT_SECRET",
	"ADMIN_EMAIL",
	"ADMIN_PASSWORD",
}

// OptionalEnvVars are logged at startup so you can confirm they are loaded when set.
var OptionalEnvVars = []string{
	"PORT",
	"AWS_S3_BUCKET",
	"AWS_REGION",
	"SNS_REGION",
	"SMS_SENDER_ID",
	"SMTP_HOST",
	"REMINDER_INTERVAL",
}

// ValidateEnv checks that all required env vars are set and logs status of
// required + optional. Calls log.Fatal if any required var is missing.
func ValidateEnv() {
	var missing []string
	for _, key := range RequiredEnvVars {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		} else {
			log.Printf("env %s loaded", key)
		}
	}
	if len(missing) > 0 {
		log.Fatalf("missing required env: %s (set these in .env or environment)", strings.Join(missing, ", "))
	}
	for _, key := range OptionalEnvVars {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			log.Printf("env %s = %s", key, v)
		} else {
			log.Printf("env %s not set (optional)", key)
		}
	}
	if j := os.Getenv("JWT_SECRET"); j == "change-me-in-production" {
		log.Fatal("JWT_SECRET must be set to a strong secret (not the default change-me-in-production)")
	}
}
