package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultJWTSecret     = "change-me-jwt-secret"
	defaultJWTAccessTTL  = "24h"
	defaultWebhookSecret = ""
)

// Config holds all runtime configuration, read once at startup.
// Missing third-party credentials switch the matching integration into
// mock mode; they never fail startup.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	JWTSecret    string
	JWTAccessTTL time.Duration

	// Payment gateway. Empty secret key means mock mode.
	PaystackSecretKey string
	PaystackBaseURL   string
	WebhookSecret     string

	// Payout worker pacing. Short intervals in tests, longer in prod.
	PayoutProcessDelay time.Duration
	PayoutSettleDelay  time.Duration

	// SMTP. Empty host means mock mode.
	SMTPHost  string
	SMTPPort  int
	EmailUser string
	EmailPass string

	// SMS gateway. Empty key means mock mode.
	SMSAPIKey string
	SMSSender string

	// Redis for OTP storage and job dedup. Empty addr means in-process.
	RedisAddr string

	// Cloudinary for uploads. Empty URL means local mock storage.
	CloudinaryURL string
}

func Load() *Config {
	cfg := &Config{
		AppEnv:      strings.ToLower(getEnv("APP_ENV", "dev")),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret: getEnv("JWT_SECRET", defaultJWTSecret),

		PaystackSecretKey: os.Getenv("PAYSTACK_SECRET_KEY"),
		PaystackBaseURL:   getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
		WebhookSecret:     getEnv("PAYMENT_WEBHOOK_SECRET", defaultWebhookSecret),

		SMTPHost:  os.Getenv("SMTP_HOST"),
		EmailUser: os.Getenv("EMAIL_USER"),
		EmailPass: os.Getenv("EMAIL_PASS"),

		SMSAPIKey: os.Getenv("SMS_API_KEY"),
		SMSSender: getEnv("SMS_SENDER", "HandyGhana"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		CloudinaryURL: os.Getenv("CLOUDINARY_URL"),
	}

	cfg.JWTAccessTTL = durationEnv("JWT_ACCESS_TTL", defaultJWTAccessTTL)
	cfg.PayoutProcessDelay = durationEnv("PAYOUT_PROCESS_DELAY", "5s")
	cfg.PayoutSettleDelay = durationEnv("PAYOUT_SETTLE_DELAY", "5s")
	cfg.SMTPPort, _ = strconv.Atoi(getEnv("SMTP_PORT", "587"))

	if cfg.WebhookSecret == "" {
		cfg.WebhookSecret = cfg.PaystackSecretKey
	}
	return cfg
}

// PaymentsLive reports whether a real gateway key is configured.
func (c *Config) PaymentsLive() bool { return c.PaystackSecretKey != "" }

func getEnv(name, def string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return def
}

func durationEnv(name, def string) time.Duration {
	raw := getEnv(name, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}
