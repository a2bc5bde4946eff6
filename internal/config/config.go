// Package config loads application configuration.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables, e.g. MILLERP_DATABASE_URL.
const EnvPrefix = "MILLERP"

// Config represents the complete application configuration
type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	I18n       I18nConfig       `mapstructure:"i18n"`
	Purchasing PurchasingConfig `mapstructure:"purchasing"`
	Report     ReportConfig     `mapstructure:"report"`
	Audit      AuditConfig      `mapstructure:"audit"`
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	URL               string        `mapstructure:"url"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// I18nConfig selects the language of validation messages
type I18nConfig struct {
	Language string `mapstructure:"language"`
}

// PurchasingConfig tunes delivery order processing
type PurchasingConfig struct {
	// FanoutLimit bounds concurrent purchase order updates per delivery order.
	FanoutLimit int `mapstructure:"fanout_limit"`
}

// ReportConfig contains report defaults
type ReportConfig struct {
	DefaultWindowDays int `mapstructure:"default_window_days"`
	UTCOffsetHours    int `mapstructure:"utc_offset_hours"`
}

// AuditConfig contains audit log configuration
type AuditConfig struct {
	Enabled                bool `mapstructure:"enabled"`
	CompressThresholdBytes int  `mapstructure:"compress_threshold_bytes"`
}

// Load loads configuration from .env, an optional config file and environment variables
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/millerp")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind environment variables for keys without defaults
	_ = v.BindEnv("database.url", EnvPrefix+"_DATABASE_URL")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("database.max_conns", 25)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")
	v.SetDefault("database.health_check_period", "1m")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.development", false)

	v.SetDefault("i18n.language", "en")

	v.SetDefault("purchasing.fanout_limit", 4)

	v.SetDefault("report.default_window_days", 30)
	v.SetDefault("report.utc_offset_hours", 7)

	v.SetDefault("audit.enabled", true)
	v.SetDefault("audit.compress_threshold_bytes", 10*1024)
}

// Validate validates the configuration and ensures required fields are present
func (c *Config) Validate() error {
	var errs []string

	if c.Database.URL == "" {
		errs = append(errs, fmt.Sprintf("database.url is required (env %s_DATABASE_URL)", EnvPrefix))
	}
	if c.Database.MinConns > c.Database.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if c.Purchasing.FanoutLimit < 1 {
		errs = append(errs, "purchasing.fanout_limit must be at least 1")
	}
	if c.Report.DefaultWindowDays < 1 {
		errs = append(errs, "report.default_window_days must be at least 1")
	}
	if c.Report.UTCOffsetHours < -12 || c.Report.UTCOffsetHours > 14 {
		errs = append(errs, "report.utc_offset_hours must be between -12 and 14")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
