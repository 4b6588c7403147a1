package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization

	"github.com/joho/godotenv"
)

// Accepted values for UNKNOWN_NETWORK_STATUS_POLICY.
const (
	NetworkPolicyInactive = "inactive"
	NetworkPolicyActive   = "active"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken   string
	DatabaseURL     string
	AdminTelegramID int64
	LogLevel        string
	Environment     string
	UserTimeZone    string

	OverdueSectionsEnabled     bool
	PdfExportEnabled           bool
	UnknownNetworkStatusPolicy string // what an unreadable connectivity status counts as
	PendingListSeeLessLimit    int
	DownloadMaxAttempts        int

	CronSpecDownloadCheck string // For building and sending scheduled downloads
	CronSpecDailyDigest   string // For the morning overdue summary
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
	if adminIDStr == "" {
		return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
	}
	cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.UserTimeZone = os.Getenv("USER_TIME_ZONE")
	if cfg.UserTimeZone == "" {
		cfg.UserTimeZone = "UTC"
	}

	if cfg.OverdueSectionsEnabled, err = boolFromEnv("OVERDUE_SECTIONS_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.PdfExportEnabled, err = boolFromEnv("PDF_EXPORT_ENABLED", true); err != nil {
		return nil, err
	}

	cfg.UnknownNetworkStatusPolicy = strings.ToLower(os.Getenv("UNKNOWN_NETWORK_STATUS_POLICY"))
	switch cfg.UnknownNetworkStatusPolicy {
	case "":
		cfg.UnknownNetworkStatusPolicy = NetworkPolicyInactive // Conservative default
	case NetworkPolicyInactive, NetworkPolicyActive:
	default:
		return nil, fmt.Errorf("invalid UNKNOWN_NETWORK_STATUS_POLICY %q: want %q or %q", cfg.UnknownNetworkStatusPolicy, NetworkPolicyInactive, NetworkPolicyActive)
	}

	if cfg.PendingListSeeLessLimit, err = positiveIntFromEnv("PENDING_LIST_SEE_LESS_LIMIT", 10); err != nil {
		return nil, err
	}
	if cfg.DownloadMaxAttempts, err = positiveIntFromEnv("DOWNLOAD_MAX_ATTEMPTS", 3); err != nil {
		return nil, err
	}

	cfg.CronSpecDownloadCheck = os.Getenv("CRON_SPEC_DOWNLOAD_CHECK")
	if cfg.CronSpecDownloadCheck == "" {
		cfg.CronSpecDownloadCheck = "*/1 * * * *" // Default: every minute
	}

	cfg.CronSpecDailyDigest = os.Getenv("CRON_SPEC_DAILY_DIGEST")
	if cfg.CronSpecDailyDigest == "" {
		cfg.CronSpecDailyDigest = "0 9 * * *" // Default: 9 AM daily
	}

	return cfg, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func positiveIntFromEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if v < 1 {
		return 0, fmt.Errorf("invalid %s: must be at least 1, got %d", key, v)
	}
	return v, nil
}
