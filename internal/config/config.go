// Package config loads server settings from the environment and an optional .env file.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Config holds application configuration.
type Config struct {
	Port           int
	Store          string
	DBPath         string
	JWTSecret      string
	JWTTTL         time.Duration
	LogLevel       string
	MetricsEnabled bool
	// AllowedOrigins feeds the CORS header; "*" allows any origin.
	AllowedOrigins []string
}

// AuthEnabled reports whether callers must present a bearer token. Without a
// secret the server falls back to the X-User-ID header.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

// Load reads configuration from environment variables and .env file if present.
// Real environment variables win over .env values.
func Load() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()
	return fromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("PORT", 8080)
	v.SetDefault("STORE", StoreSQLite)
	v.SetDefault("DB_PATH", "./data/ledger.db")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.AutomaticEnv()
	return v
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:           v.GetInt("PORT"),
		Store:          strings.ToLower(v.GetString("STORE")),
		DBPath:         v.GetString("DB_PATH"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		MetricsEnabled: v.GetBool("METRICS_ENABLED"),
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid PORT %q", v.GetString("PORT"))
	}

	switch cfg.Store {
	case StoreSQLite:
		if cfg.DBPath == "" {
			return nil, fmt.Errorf("DB_PATH is required when STORE=%s", StoreSQLite)
		}
	case StoreMemory:
	default:
		return nil, fmt.Errorf("unknown STORE %q (want %s or %s)", cfg.Store, StoreSQLite, StoreMemory)
	}

	ttl, err := time.ParseDuration(v.GetString("JWT_TTL"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("invalid JWT_TTL %q", v.GetString("JWT_TTL"))
	}
	cfg.JWTTTL = ttl

	for _, origin := range strings.Split(v.GetString("ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	if !cfg.AuthEnabled() {
		slog.Warn("JWT_SECRET not set: trusting the X-User-ID header. Do not run this way in production.")
	}
	return cfg, nil
}
