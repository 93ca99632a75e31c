package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               string
	DatabaseURL        string
	DBMaxConns         int32
	ClerkSecretKey     string
	ClerkWebhookSecret string
	MetricsUser        string
	MetricsPass        string
	PprofSecret        string
	FCMCredentialsFile string
	FCMServiceAccount  string // base64 JSON, wins over the file
	Timezone           *time.Location
	AchievementPoll    time.Duration
	AllowedOrigins     []string
	TrustedProxyHops   int // X-Forwarded-For entries appended by our proxies
	LogLevel           string
	LogFile            string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "3333"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		ClerkSecretKey:     os.Getenv("CLERK_SECRET_KEY"),
		ClerkWebhookSecret: os.Getenv("CLERK_WEBHOOK_SECRET"),
		MetricsUser:        os.Getenv("METRICS_USER"),
		MetricsPass:        os.Getenv("METRICS_PASS"),
		PprofSecret:        os.Getenv("PPROF_SECRET"),
		FCMCredentialsFile: getEnv("FCM_CREDENTIALS_FILE", "./serviceAccountKey.json"),
		FCMServiceAccount:  os.Getenv("FCM_SERVICE_ACCOUNT_JSON"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFile:            os.Getenv("LOG_FILE"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}
	if cfg.ClerkSecretKey == "" {
		return nil, fmt.Errorf("CLERK_SECRET_KEY environment variable is not set")
	}

	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil || maxConns <= 0 {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS %q", os.Getenv("DB_MAX_CONNS"))
	}
	cfg.DBMaxConns = int32(maxConns)

	loc, err := time.LoadLocation(getEnv("APP_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	cfg.Timezone = loc

	hops, err := strconv.Atoi(getEnv("TRUSTED_PROXY_HOPS", "1"))
	if err != nil || hops < 0 {
		return nil, fmt.Errorf("invalid TRUSTED_PROXY_HOPS %q", os.Getenv("TRUSTED_PROXY_HOPS"))
	}
	cfg.TrustedProxyHops = hops

	poll, err := time.ParseDuration(getEnv("ACHIEVEMENT_POLL_INTERVAL", "5s"))
	if err != nil || poll <= 0 {
		return nil, fmt.Errorf("invalid ACHIEVEMENT_POLL_INTERVAL %q", os.Getenv("ACHIEVEMENT_POLL_INTERVAL"))
	}
	cfg.AchievementPoll = poll

	for _, origin := range strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}
