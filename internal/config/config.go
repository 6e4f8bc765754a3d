package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultDatasetURL is the published CSV of the Beijing multi-site air-quality readings.
const DefaultDatasetURL = "https://docs.google.com/spreadsheets/d/e/2PACX-1vTXFKefF7-wy_GWu-tWyI9BFW_HYNB16mGO5yCkQ57I_JraswJO6LHmXEpMjE4myWB_nH2bPP--sQwm/pub?gid=0&single=true&output=csv"

type AppConfig struct {
	AppEnv   string
	LogLevel slog.Level
	Port     string

	// DatasetURL is an http(s) URL, a file:// URL or a local path.
	DatasetURL string

	HTTPTimeout  time.Duration
	FetchRetries int
	// LoadTimeout bounds a whole load, retries included.
	LoadTimeout time.Duration

	// RefreshInterval reloads the dataset periodically (0 = load once at startup).
	RefreshInterval time.Duration

	StoreMaxHistory int // retained dataset snapshots

	ChartWidth  int
	ChartHeight int
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "err", err)
	}
	cfg := &AppConfig{}

	cfg.AppEnv = getenvDefault("APP_ENV", "dev")
	cfg.Port = getenvDefault("PORT", "8080")
	cfg.DatasetURL = getenvDefault("DATASET_URL", DefaultDatasetURL)

	level, err := parseLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.LoadTimeout, err = getenvDuration("LOAD_TIMEOUT", "2m"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("DATASET_REFRESH_INTERVAL", "0"); err != nil {
		return nil, err
	}

	cfg.FetchRetries = getenvInt("DATASET_FETCH_RETRIES", 2)
	if cfg.FetchRetries < 0 {
		return nil, fmt.Errorf("invalid DATASET_FETCH_RETRIES: must not be negative")
	}

	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 1)
	cfg.ChartWidth = getenvInt("CHART_WIDTH", 1024)
	cfg.ChartHeight = getenvInt("CHART_HEIGHT", 512)
	if cfg.ChartWidth <= 0 || cfg.ChartHeight <= 0 {
		return nil, fmt.Errorf("invalid chart size %dx%d", cfg.ChartWidth, cfg.ChartHeight)
	}

	return cfg, nil
}

// IsDev reports whether human-friendly logging should be used.
func (c *AppConfig) IsDev() bool {
	return c.AppEnv == "" || c.AppEnv == "dev"
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	return level, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
