package config

import (
	"fmt"
	"log"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers understood by the backend.
const (
	StorageDriverFile     = "file"
	StorageDriverSQLite   = "sqlite"
	StorageDriverPostgres = "postgres"
)

// Config holds application configuration.
type Config struct {
	Port          string
	IsProduction  bool
	LogLevel      slog.Level
	EnableDBCheck bool

	// Storage
	StorageDriver   string
	StoragePath     string
	StorageKey      string
	DatabaseURL     string
	StatePassphrase string
	PersistDebounce time.Duration

	// Outbound services
	BalanceProxyURL    string
	PriceAPIURL        string
	PriceCacheTTL      time.Duration
	HTTPTimeout        time.Duration
	RefreshConcurrency int

	// HTTP surface
	RateLimit          string
	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("STORAGE_DRIVER", StorageDriverFile)
	v.SetDefault("STORAGE_PATH", "./data")
	v.SetDefault("STORAGE_KEY", "crypto-bookkeeper-storage")
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("STATE_PASSPHRASE", "")
	v.SetDefault("PERSIST_DEBOUNCE", "0s")
	v.SetDefault("BALANCE_PROXY_URL", "http://localhost:3001")
	v.SetDefault("PRICE_API_URL", "https://api.coingecko.com/api/v3")
	v.SetDefault("PRICE_CACHE_TTL", "5m")
	v.SetDefault("HTTP_TIMEOUT", "15s")
	v.SetDefault("REFRESH_CONCURRENCY", 4)
	v.SetDefault("RATE_LIMIT", "60-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:               v.GetString("PORT"),
		IsProduction:       v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:      v.GetBool("ENABLE_DB_CHECK"),
		StorageDriver:      strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_DRIVER"))),
		StoragePath:        v.GetString("STORAGE_PATH"),
		StorageKey:         v.GetString("STORAGE_KEY"),
		DatabaseURL:        v.GetString("PGSQL_URL"),
		StatePassphrase:    v.GetString("STATE_PASSPHRASE"),
		BalanceProxyURL:    strings.TrimRight(v.GetString("BALANCE_PROXY_URL"), "/"),
		PriceAPIURL:        strings.TrimRight(v.GetString("PRICE_API_URL"), "/"),
		RefreshConcurrency: v.GetInt("REFRESH_CONCURRENCY"),
		RateLimit:          v.GetString("RATE_LIMIT"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080" // Default port
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	levelStr := v.GetString("LOG_LEVEL")
	if err := cfg.LogLevel.UnmarshalText([]byte(levelStr)); err != nil {
		cfg.LogLevel = slog.LevelInfo
		log.Printf("Warning: Invalid value for LOG_LEVEL ('%s'). Defaulting to info.\n", levelStr)
	}

	cfg.PersistDebounce = durationOr(v, "PERSIST_DEBOUNCE", 0)
	cfg.PriceCacheTTL = durationOr(v, "PRICE_CACHE_TTL", 5*time.Minute)
	cfg.HTTPTimeout = durationOr(v, "HTTP_TIMEOUT", 15*time.Second)

	if cfg.RefreshConcurrency < 1 {
		log.Printf("Warning: REFRESH_CONCURRENCY must be positive (got %d). Defaulting to 4.\n", cfg.RefreshConcurrency)
		cfg.RefreshConcurrency = 4
	}

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	if cfg.StatePassphrase == "" {
		log.Println("Warning: STATE_PASSPHRASE not set. Exchange credentials will be stored in plain text.")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func durationOr(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback.String())
		}
		return fallback
	}
	return d
}

// Validate checks combinations that cannot be defaulted away.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverFile, StorageDriverSQLite:
		if c.StoragePath == "" {
			return fmt.Errorf("STORAGE_PATH is required for the %s driver", c.StorageDriver)
		}
	case StorageDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("PGSQL_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q (want file, sqlite or postgres)", c.StorageDriver)
	}
	if c.StorageKey == "" {
		return fmt.Errorf("STORAGE_KEY must not be empty")
	}
	return nil
}
