package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/XavierBriggs/Pythia/pkg/models"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	OddsAPI   OddsAPIConfig        `mapstructure:"odds_api"`
	Database  DatabaseConfig       `mapstructure:"database"`
	Redis     RedisConfig          `mapstructure:"redis"`
	Scheduler SchedulerConfig      `mapstructure:"scheduler"`
	Identity  IdentityConfig       `mapstructure:"identity"`
	Catalog   []models.SportConfig `mapstructure:"catalog"`
	Server    ServerConfig         `mapstructure:"server"`
	Logging   LoggingConfig        `mapstructure:"logging"`
}

// OddsAPIConfig holds The Odds API configuration
type OddsAPIConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	CallDelay  time.Duration `mapstructure:"call_delay"`
	MaxRetries int           `mapstructure:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

// DatabaseConfig holds Postgres configuration
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig holds Redis configuration. An empty Addr disables publishing.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	ConsensusTTL time.Duration `mapstructure:"consensus_ttl"`
}

// SchedulerConfig controls when and how wide runs are
type SchedulerConfig struct {
	Cron         string   `mapstructure:"cron"`
	RunOnce      bool     `mapstructure:"run_once"`
	Concurrency  int      `mapstructure:"concurrency"`
	ActiveSports []string `mapstructure:"active_sports"`
}

// IdentityConfig holds player identity resolution configuration
type IdentityConfig struct {
	AutoCreateSports []string `mapstructure:"auto_create_sports"`
}

// ServerConfig holds the ops HTTP server configuration
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from an optional file and PYTHIA_* environment
// variables. An empty path reads the environment only.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("PYTHIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Names shared with the rest of the Fortuna services
	if err := v.BindEnv("odds_api.api_key", "PYTHIA_ODDS_API_API_KEY", "ODDS_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}
	if err := v.BindEnv("database.dsn", "PYTHIA_DATABASE_DSN", "ALEXANDRIA_DSN"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}
	if err := v.BindEnv("redis.addr", "PYTHIA_REDIS_ADDR", "REDIS_URL"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}
	if err := v.BindEnv("redis.password", "PYTHIA_REDIS_PASSWORD", "REDIS_PASSWORD"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Odds API defaults
	v.SetDefault("odds_api.api_key", "")
	v.SetDefault("odds_api.base_url", "https://api.the-odds-api.com")
	v.SetDefault("odds_api.timeout", "10s")
	v.SetDefault("odds_api.call_delay", "1s")
	v.SetDefault("odds_api.max_retries", 3)
	v.SetDefault("odds_api.retry_delay", "2s")

	// Database defaults
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")

	// Redis defaults
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.consensus_ttl", "24h")

	// Scheduler defaults
	v.SetDefault("scheduler.cron", "*/30 * * * *")
	v.SetDefault("scheduler.run_once", false)
	v.SetDefault("scheduler.concurrency", 1)
	v.SetDefault("scheduler.active_sports", []string{"basketball_nba"})

	// Identity defaults
	v.SetDefault("identity.auto_create_sports", []string{})

	// Server defaults
	v.SetDefault("server.addr", ":8090")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Validate Odds API config
	if c.OddsAPI.APIKey == "" {
		return fmt.Errorf("odds_api.api_key is required")
	}
	if c.OddsAPI.BaseURL == "" {
		return fmt.Errorf("odds_api.base_url is required")
	}
	if c.OddsAPI.Timeout <= 0 {
		return fmt.Errorf("odds_api.timeout must be positive")
	}
	if c.OddsAPI.CallDelay < 0 {
		return fmt.Errorf("odds_api.call_delay must not be negative")
	}
	if c.OddsAPI.MaxRetries < 1 {
		return fmt.Errorf("odds_api.max_retries must be at least 1")
	}

	// Validate Database config
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}

	// Validate Scheduler config
	if !c.Scheduler.RunOnce && c.Scheduler.Cron == "" {
		return fmt.Errorf("scheduler.cron is required unless scheduler.run_once is set")
	}
	if c.Scheduler.Concurrency < 1 {
		return fmt.Errorf("scheduler.concurrency must be at least 1")
	}
	if len(c.Scheduler.ActiveSports) == 0 {
		return fmt.Errorf("scheduler.active_sports must contain at least one sport")
	}

	// Validate Logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
