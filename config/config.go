package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port      string
	DBPath    string
	JWTSecret string

	// Satellite/vegetation provider
	ProviderBaseURL string
	ProviderAPIKey  string
	MaxCloudCover   float64 // observations above this % are dropped
	SyncRetryAfter  time.Duration

	// Web Push (VAPID)
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubject    string

	// Email
	SMTPHost  string
	SMTPPort  string
	SMTPUser  string
	SMTPPass  string
	EmailFrom string

	// Auth provider directory (user id -> email)
	AuthAPIBase string
	AuthAPIKey  string

	// Rate limits per window
	APILimit    int
	AuthLimit   int
	LimitWindow time.Duration

	CSRFTokenTTL time.Duration
}

func Load() AppConfig {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("[cfg] No .env file found or error loading: %v", err)
	}

	get := func(k, def string) string {
		if v := os.Getenv(k); v != "" {
			return v
		}
		return def
	}
	getInt := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	getFloat := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
		}
		return def
	}
	getDur := func(k string, def time.Duration) time.Duration {
		if v := os.Getenv(k); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				return d
			}
		}
		return def
	}

	cfg := AppConfig{
		Port:      get("PORT", "8080"),
		DBPath:    get("DB_PATH", "soilwatch.db"),
		JWTSecret: get("JWT_SECRET", ""),

		ProviderBaseURL: get("PROVIDER_BASE_URL", ""),
		ProviderAPIKey:  get("PROVIDER_API_KEY", ""),
		MaxCloudCover:   getFloat("MAX_CLOUD_COVER", 20.0),
		SyncRetryAfter:  getDur("SYNC_RETRY_AFTER", 10*time.Minute),

		VAPIDPublicKey:  get("VAPID_PUBLIC_KEY", ""),
		VAPIDPrivateKey: get("VAPID_PRIVATE_KEY", ""),
		VAPIDSubject:    get("VAPID_SUBJECT", "mailto:alerts@soilwatch.local"),

		SMTPHost:  get("SMTP_HOST", ""),
		SMTPPort:  get("SMTP_PORT", "587"),
		SMTPUser:  get("SMTP_USER", ""),
		SMTPPass:  get("SMTP_PASS", ""),
		EmailFrom: get("EMAIL_FROM", "alerts@soilwatch.local"),

		AuthAPIBase: get("AUTH_API_BASE", ""),
		AuthAPIKey:  get("AUTH_API_KEY", ""),

		APILimit:    getInt("RATE_LIMIT_API", 60),
		AuthLimit:   getInt("RATE_LIMIT_AUTH", 10),
		LimitWindow: getDur("RATE_LIMIT_WINDOW", time.Minute),

		CSRFTokenTTL: getDur("CSRF_TOKEN_TTL", 24*time.Hour),
	}
	log.Printf("[cfg] port=%s db=%s provider_configured=%t", cfg.Port, cfg.DBPath, cfg.ProviderAPIKey != "")
	return cfg
}
