package config

import (
	"errors"
	"fmt"
	"time"
)

type Config struct {
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Nats          NatsConfig          `mapstructure:"nats"`
	Server        ServerConfig        `mapstructure:"server"`
	Booking       BookingConfig       `mapstructure:"booking"`
	Calendar      CalendarConfig      `mapstructure:"calendar"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

type NatsConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

type DatabaseConfig struct {
	Driver   string             `mapstructure:"driver"` // postgres, sqlite
	Host     string             `mapstructure:"host"`
	Port     int                `mapstructure:"port"`
	User     string             `mapstructure:"user"`
	Password string             `mapstructure:"password"`
	DBName   string             `mapstructure:"dbname"`
	SSLMode  string             `mapstructure:"sslmode"`
	Pool     DatabasePoolConfig `mapstructure:"pool"`
}

type DatabasePoolConfig struct {
	MaxOpenConns       int `mapstructure:"max_open_conns"`
	MaxIdleConns       int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMin int `mapstructure:"conn_max_lifetime_minutes"`
}

type RedisConfig struct {
	Addr                string `mapstructure:"addr"`
	DB                  int    `mapstructure:"db"`
	Username            string `mapstructure:"username"`
	Password            string `mapstructure:"password"`
	PoolSize            int    `mapstructure:"pool_size"`
	MinIdleConns        int    `mapstructure:"min_idle_conns"`
	DialTimeoutSeconds  int    `mapstructure:"dial_timeout_seconds"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds"`
}

type ServerConfig struct {
	Port           int        `mapstructure:"port"`
	TimeoutSeconds int        `mapstructure:"timeout_seconds"`
	Environment    string     `mapstructure:"environment"`
	Databases      []string   `mapstructure:"databases"`
	CORS           CORSConfig `mapstructure:"cors"`
	RateLimit      RateLimit  `mapstructure:"rate_limit"`
}

type CORSConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type RateLimit struct {
	Max           int `mapstructure:"max"`
	WindowSeconds int `mapstructure:"window_seconds"`
}

// BookingConfig controls the booking window and how busy times are fetched.
type BookingConfig struct {
	// WindowDays is the number of bookable dates, starting tomorrow.
	// It bounds both the last eligible date and the scan length.
	WindowDays int `mapstructure:"window_days"`
	// BusyHorizonDays is how far ahead busy times are requested.
	BusyHorizonDays         int `mapstructure:"busy_horizon_days"`
	CacheTTLSeconds         int `mapstructure:"cache_ttl_seconds"`
	ScheduleCacheSize       int `mapstructure:"schedule_cache_size"`
	ScheduleCacheTTLSeconds int `mapstructure:"schedule_cache_ttl_seconds"`
}

func (b BookingConfig) CacheTTL() time.Duration {
	return time.Duration(b.CacheTTLSeconds) * time.Second
}

func (b BookingConfig) ScheduleCacheTTL() time.Duration {
	return time.Duration(b.ScheduleCacheTTLSeconds) * time.Second
}

// CalendarConfig points at the calendar provider's API. Endpoint is empty in
// production and set to a fake server in tests and staging.
type CalendarConfig struct {
	Endpoint              string `mapstructure:"endpoint"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds"`
}

func (c CalendarConfig) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

type ObservabilityConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	ServiceName    string        `mapstructure:"service_name"`
	ServiceVersion string        `mapstructure:"service_version"`
	Tracing        TracingConfig `mapstructure:"tracing"`
	Metrics        MetricsConfig `mapstructure:"metrics"`
}

type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string       `mapstructure:"level"`  // debug, info, warn, error
	Format string       `mapstructure:"format"` // text, json
	Output OutputConfig `mapstructure:"output"`
}

type OutputConfig struct {
	Stdout bool          `mapstructure:"stdout"`
	File   FileLogConfig `mapstructure:"file"`
	Loki   LokiConfig    `mapstructure:"loki"`
}

type FileLogConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`        // e.g. "logs/app.log"
	MaxSizeMB  int    `mapstructure:"max_size_mb"` // rotate after N MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type LokiConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"` // e.g. "http://localhost:3100"
	TenantID string `mapstructure:"tenant_id"`
	Username string `mapstructure:"username"` // for Grafana Cloud basic auth
	Password string `mapstructure:"password"`
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Booking.WindowDays <= 0 {
		errs = append(errs, errors.New("booking.window_days must be positive"))
	}
	// The last bookable day ends WindowDays+2 days from now.
	if c.Booking.BusyHorizonDays < c.Booking.WindowDays+2 {
		errs = append(errs, fmt.Errorf("booking.busy_horizon_days (%d) must cover booking.window_days (%d) + 2",
			c.Booking.BusyHorizonDays, c.Booking.WindowDays))
	}
	if c.Booking.CacheTTLSeconds < 0 {
		errs = append(errs, errors.New("booking.cache_ttl_seconds must not be negative"))
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("database.driver %q is not supported", c.Database.Driver))
	}
	if c.Logging.Output.Loki.Enabled && c.Logging.Output.Loki.Endpoint == "" {
		errs = append(errs, errors.New("logging.output.loki.endpoint is required when loki is enabled"))
	}

	return errors.Join(errs...)
}
