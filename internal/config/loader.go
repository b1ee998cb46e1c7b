// internal/config/loader.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Load reads .env, config.yaml and config.<environment>.yaml, then applies
// environment overrides (catalog.base_url -> CATALOG_BASE_URL).
func Load(searchPaths ...string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(searchPaths) == 0 {
		searchPaths = []string{"./configs", "."}
	}
	for _, p := range searchPaths {
		v.AddConfigPath(p)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := v.GetString("app.environment")
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "puja-booking-api")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", envOr("APP_ENVIRONMENT", "development"))

	v.SetDefault("server.port", envOr("PORT", "8085"))
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.default_page_size", 12)
	v.SetDefault("server.max_page_size", 100)

	v.SetDefault("catalog.base_url", "http://localhost:8000")
	v.SetDefault("catalog.services_path", "/api/services/")
	v.SetDefault("catalog.request_timeout", 15*time.Second)
	v.SetDefault("catalog.request_delay", 200*time.Millisecond)
	v.SetDefault("catalog.max_pages", 50)
	v.SetDefault("catalog.refresh_cron", "*/10 * * * *")
	v.SetDefault("catalog.refresh_timeout", 2*time.Minute)

	v.SetDefault("booking.base_url", "http://localhost:8000/api")
	v.SetDefault("booking.timeout", 10*time.Second)

	v.SetDefault("redis.url", "redis://localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl", 10*time.Minute)
	v.SetDefault("redis.enabled", true)

	v.SetDefault("ratelimit.requests_per_second", 10.0)
	v.SetDefault("ratelimit.burst", 20)
	v.SetDefault("ratelimit.idle_ttl", "10m")

	v.SetDefault("idcodec.key", "seva-catalog-static-key")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// applyDefaults repairs values that unmarshal to zero when set to empty strings.
func applyDefaults(cfg *Config) {
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.DefaultPageSize <= 0 {
		cfg.Server.DefaultPageSize = 12
	}
	if cfg.Server.MaxPageSize <= 0 {
		cfg.Server.MaxPageSize = 100
	}
	if cfg.Server.DefaultPageSize > cfg.Server.MaxPageSize {
		cfg.Server.DefaultPageSize = cfg.Server.MaxPageSize
	}
	if cfg.Catalog.MaxPages <= 0 {
		cfg.Catalog.MaxPages = 1
	}
	if cfg.Catalog.RequestTimeout <= 0 {
		cfg.Catalog.RequestTimeout = 15 * time.Second
	}
	if cfg.Catalog.RefreshTimeout <= 0 {
		cfg.Catalog.RefreshTimeout = 2 * time.Minute
	}
	if cfg.Booking.Timeout <= 0 {
		cfg.Booking.Timeout = 10 * time.Second
	}
	if cfg.RateLimit.RequestsPerSecond <= 0 {
		cfg.RateLimit.RequestsPerSecond = 10
	}
	if cfg.RateLimit.Burst <= 0 {
		cfg.RateLimit.Burst = 20
	}
	if cfg.RateLimit.IdleTTL <= 0 {
		cfg.RateLimit.IdleTTL = 10 * time.Minute
	}
}

func validateConfig(cfg *Config) error {
	u, err := url.Parse(cfg.Catalog.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("catalog.base_url must be an absolute URL, got %q", cfg.Catalog.BaseURL)
	}
	if _, err := url.Parse(cfg.Booking.BaseURL); err != nil {
		return fmt.Errorf("booking.base_url: %w", err)
	}
	if cfg.Catalog.RefreshCron != "" {
		if _, err := cron.ParseStandard(cfg.Catalog.RefreshCron); err != nil {
			return fmt.Errorf("catalog.refresh_cron: %w", err)
		}
	}
	if cfg.IDCodec.Key == "" {
		return fmt.Errorf("idcodec.key is required")
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
