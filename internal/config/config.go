package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenAddr  string
	BaseURL     string
	DatabaseURL string

	LogLevel   string
	LogConsole bool

	// session cookies (web surface)
	CookieHashKey  []byte
	CookieBlockKey []byte
	// 32 bytes for AES-256-GCM over provider credentials at rest
	CredEncKey []byte

	// monitor scheduler
	MonitorInterval time.Duration
	MonitorMaxTicks int
	MonitorWorkers  int

	// place-details collaborator
	PlacesBaseURL string
	PlacesAPIKey  string
	PlaceCacheTTL time.Duration

	// push notification gateway; empty means log-only notifications
	PushWebhookURL string
	PushWebhookKey string

	// provider credentials from env; the encrypted store takes precedence
	// when it has a row for the provider
	OpenTableToken  string
	OpenTablePQHash string
	ResyAPIKey      string
	ResyAuthToken   string
}

func FromEnv() (Config, error) {
	cfg := Config{
		ListenAddr:  envDefault("LISTEN_ADDR", ":8080"),
		BaseURL:     envDefault("BASE_URL", "http://localhost:8080"),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),

		LogLevel:   envDefault("LOG_LEVEL", "info"),
		LogConsole: strings.TrimSpace(os.Getenv("LOG_CONSOLE")) == "1",

		PlacesBaseURL: envDefault("PLACES_BASE_URL", "http://localhost:9090"),
		PlacesAPIKey:  strings.TrimSpace(os.Getenv("PLACES_API_KEY")),

		PushWebhookURL: strings.TrimSpace(os.Getenv("PUSH_WEBHOOK_URL")),
		PushWebhookKey: strings.TrimSpace(os.Getenv("PUSH_WEBHOOK_KEY")),

		OpenTableToken:  strings.TrimSpace(os.Getenv("OPENTABLE_TOKEN")),
		OpenTablePQHash: strings.TrimSpace(os.Getenv("OPENTABLE_PQ_HASH")),
		ResyAPIKey:      strings.TrimSpace(os.Getenv("RESY_API_KEY")),
		ResyAuthToken:   strings.TrimSpace(os.Getenv("RESY_AUTH_TOKEN")),
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}

	var err error
	if cfg.MonitorInterval, err = envDuration("MONITOR_INTERVAL", 2*time.Minute); err != nil {
		return cfg, err
	}
	if cfg.MonitorMaxTicks, err = envInt("MONITOR_MAX_TICKS", 60); err != nil {
		return cfg, err
	}
	if cfg.MonitorWorkers, err = envInt("MONITOR_WORKERS", 4); err != nil {
		return cfg, err
	}
	if cfg.PlaceCacheTTL, err = envDuration("PLACE_CACHE_TTL", 15*time.Minute); err != nil {
		return cfg, err
	}

	if cfg.CookieHashKey, err = mustB64("COOKIE_HASH_KEY"); err != nil {
		return cfg, err
	}
	if cfg.CookieBlockKey, err = mustB64("COOKIE_BLOCK_KEY"); err != nil {
		return cfg, err
	}
	if cfg.CredEncKey, err = mustB64("CRED_ENC_KEY"); err != nil {
		return cfg, err
	}
	if len(cfg.CredEncKey) != 32 {
		return cfg, fmt.Errorf("CRED_ENC_KEY must decode to 32 bytes (got %d)", len(cfg.CredEncKey))
	}

	return cfg, nil
}

func envDefault(k, d string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d
	}
	return v
}

func envInt(k string, d int) (int, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s", k)
	}
	return n, nil
}

func envDuration(k string, d time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d, nil
	}
	out, err := time.ParseDuration(v)
	if err != nil || out <= 0 {
		return 0, fmt.Errorf("invalid %s", k)
	}
	return out, nil
}

func mustB64(k string) ([]byte, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return nil, fmt.Errorf("%s is required (base64)", k)
	}
	if b, err := base64.StdEncoding.DecodeString(v); err == nil {
		return b, nil
	}
	b, err := base64.RawStdEncoding.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", k, err)
	}
	return b, nil
}
