// internal/config/config.go
package config

import "time"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Booking   BookingConfig   `mapstructure:"booking"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	IDCodec   IDCodecConfig   `mapstructure:"idcodec"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	DefaultPageSize int           `mapstructure:"default_page_size"`
	MaxPageSize     int           `mapstructure:"max_page_size"`
}

// CatalogConfig points at the remote catalog service.
type CatalogConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	ServicesPath   string        `mapstructure:"services_path"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RequestDelay   time.Duration `mapstructure:"request_delay"`
	MaxPages       int           `mapstructure:"max_pages"`
	RefreshCron    string        `mapstructure:"refresh_cron"`
	RefreshTimeout time.Duration `mapstructure:"refresh_timeout"`
}

// BookingConfig points at the remote booking API.
type BookingConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type RedisConfig struct {
	URL      string        `mapstructure:"url"`
	DB       int           `mapstructure:"db"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	Enabled  bool          `mapstructure:"enabled"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
	// IdleTTL is how long a client bucket survives without requests.
	IdleTTL time.Duration `mapstructure:"idle_ttl"`
}

// IDCodecConfig holds the static key used to obfuscate record ids in URLs.
type IDCodecConfig struct {
	Key string `mapstructure:"key"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
