// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Rule backends understood by the container.
const (
	BackendYAML     = "yaml"
	BackendPostgres = "postgres"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	CSV struct {
		Delimiter    string `mapstructure:"delimiter" yaml:"delimiter"`
		TagSeparator string `mapstructure:"tag_separator" yaml:"tag_separator"`
	} `mapstructure:"csv" yaml:"csv"`

	Rules struct {
		Backend string `mapstructure:"backend" yaml:"backend"`
		File    string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"rules" yaml:"rules"`

	Postgres struct {
		DSN      string `mapstructure:"dsn" yaml:"-"` // Never serialize credentials
		MaxConns int32  `mapstructure:"max_conns" yaml:"max_conns"`
	} `mapstructure:"postgres" yaml:"postgres"`

	Redis struct {
		Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
		Address    string `mapstructure:"address" yaml:"address"`
		Password   string `mapstructure:"password" yaml:"-"`
		DB         int    `mapstructure:"db" yaml:"db"`
		Key        string `mapstructure:"key" yaml:"key"`
		TTLSeconds int    `mapstructure:"ttl_seconds" yaml:"ttl_seconds"`
	} `mapstructure:"redis" yaml:"redis"`

	Server struct {
		Address             string `mapstructure:"address" yaml:"address"`
		ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds" yaml:"read_timeout_seconds"`
		WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds" yaml:"write_timeout_seconds"`
	} `mapstructure:"server" yaml:"server"`

	Scheduler struct {
		Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
		Schedule  string `mapstructure:"schedule" yaml:"schedule"`
		BatchSize int    `mapstructure:"batch_size" yaml:"batch_size"`
		TimeZone  string `mapstructure:"time_zone" yaml:"time_zone"`
	} `mapstructure:"scheduler" yaml:"scheduler"`

	History struct {
		Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
		Path    string `mapstructure:"path" yaml:"path"`
	} `mapstructure:"history" yaml:"history"`
}

// InitializeConfig loads defaults, an optional config file and BUDGET_*
// environment variables, in increasing order of precedence. When configFile
// is empty the standard locations are searched.
func InitializeConfig(configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.budget-analytics")
		v.AddConfigPath(".budget-analytics")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("BUDGET")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("failed to read config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	if err := v.BindEnv("postgres.dsn", "BUDGET_POSTGRES_DSN", "DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind postgres DSN environment variables: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("csv.delimiter", ",")
	v.SetDefault("csv.tag_separator", ";")

	v.SetDefault("rules.backend", BackendYAML)
	v.SetDefault("rules.file", "rules.yaml")

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.max_conns", 4)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key", "budget-analytics:rules")
	v.SetDefault("redis.ttl_seconds", 60)

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout_seconds", 5)
	v.SetDefault("server.write_timeout_seconds", 10)

	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.schedule", "0 18 * * *")
	v.SetDefault("scheduler.batch_size", 500)
	v.SetDefault("scheduler.time_zone", "UTC")

	v.SetDefault("history.enabled", false)
	v.SetDefault("history.path", "budget-analytics.db")
}

func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if len(config.CSV.Delimiter) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}
	if len(config.CSV.TagSeparator) != 1 || config.CSV.TagSeparator == config.CSV.Delimiter {
		return fmt.Errorf("csv.tag_separator must be a single character different from the delimiter, got: %q", config.CSV.TagSeparator)
	}

	switch config.Rules.Backend {
	case BackendYAML:
		if config.Rules.File == "" {
			return fmt.Errorf("rules.file is required for the yaml backend")
		}
	case BackendPostgres:
		if config.Postgres.DSN == "" {
			return fmt.Errorf("postgres.dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown rules.backend %q (must be 'yaml' or 'postgres')", config.Rules.Backend)
	}

	if config.Postgres.MaxConns < 1 {
		return fmt.Errorf("postgres.max_conns must be positive, got: %d", config.Postgres.MaxConns)
	}

	if config.Redis.Enabled {
		if config.Redis.Address == "" {
			return fmt.Errorf("redis.address is required when redis is enabled")
		}
		if config.Redis.TTLSeconds < 1 {
			return fmt.Errorf("redis.ttl_seconds must be positive, got: %d", config.Redis.TTLSeconds)
		}
	}

	if config.Scheduler.Enabled {
		if config.Postgres.DSN == "" {
			return fmt.Errorf("postgres.dsn is required when the scheduler is enabled")
		}
		if _, err := cron.ParseStandard(config.Scheduler.Schedule); err != nil {
			return fmt.Errorf("invalid scheduler.schedule %q: %w", config.Scheduler.Schedule, err)
		}
		if config.Scheduler.BatchSize < 1 || config.Scheduler.BatchSize > 10000 {
			return fmt.Errorf("scheduler.batch_size must be between 1 and 10000, got: %d", config.Scheduler.BatchSize)
		}
		if _, err := time.LoadLocation(config.Scheduler.TimeZone); err != nil {
			return fmt.Errorf("invalid scheduler.time_zone %q: %w", config.Scheduler.TimeZone, err)
		}
	}

	if config.History.Enabled && config.History.Path == "" {
		return fmt.Errorf("history.path is required when history is enabled")
	}

	return nil
}

// RedisTTL returns the rule snapshot TTL as a duration.
func (c *Config) RedisTTL() time.Duration {
	return time.Duration(c.Redis.TTLSeconds) * time.Second
}
