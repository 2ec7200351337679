// Package config loads rss-digest settings from a YAML file and RSS_DIGEST_* environment variables.
package config

import (
	"fmt"
	"time"
)

const (
	DefaultMaxSources        = 10
	DefaultFetchTimeout      = 30 * time.Second
	DefaultRequestsPerSecond = 2
	DefaultServerAddr        = ":8080"
	DefaultJobTimeout        = 5 * time.Minute
	DefaultMongoDatabase     = "rssdigest"
	DefaultLLMProvider       = "openai"
)

// Config is the root configuration.
type Config struct {
	Database  DatabaseConfig  `koanf:"database"`
	Supabase  SupabaseConfig  `koanf:"supabase"`
	Ingest    IngestConfig    `koanf:"ingest"`
	Retention RetentionConfig `koanf:"retention"`
	Server    ServerConfig    `koanf:"server"`
	Schedule  ScheduleConfig  `koanf:"schedule"`
	LLM       LLMConfig       `koanf:"llm"`
	Log       LogConfig       `koanf:"log"`
}

// DatabaseConfig selects and configures the storage driver.
type DatabaseConfig struct {
	Driver        string `koanf:"driver"` // postgres, supabase, mongo or memory
	DSN           string `koanf:"dsn"`
	MaxConns      int32  `koanf:"max_conns"`
	MongoURI      string `koanf:"mongo_uri"`
	MongoDatabase string `koanf:"mongo_database"`
}

// SupabaseConfig is used when Database.Driver is "supabase".
type SupabaseConfig struct {
	URL              string `koanf:"url"`
	Key              string `koanf:"key"`
	Password         string `koanf:"password"`
	ConnectionString string `koanf:"connection_string"`
}

type IngestConfig struct {
	MaxSources        int           `koanf:"max_sources"`
	FetchTimeout      time.Duration `koanf:"fetch_timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	UserAgent         string        `koanf:"user_agent"`
}

type RetentionConfig struct {
	// DefaultDays is used by `sweep` when neither --days nor a stored setting is given.
	DefaultDays int `koanf:"default_days"`
}

type ServerConfig struct {
	Addr       string `koanf:"addr"`
	CronSecret string `koanf:"cron_secret"`
}

// ScheduleConfig enables in-process jobs while serving. Zero intervals disable a job.
type ScheduleConfig struct {
	FetchInterval time.Duration `koanf:"fetch_interval"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
	JobTimeout    time.Duration `koanf:"job_timeout"`
}

type LLMConfig struct {
	Provider        string `koanf:"provider"` // openai or anthropic
	OpenAIAPIKey    string `koanf:"openai_api_key"`
	AnthropicAPIKey string `koanf:"anthropic_api_key"`
	Model           string `koanf:"model"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json or console
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills zero or out-of-range values.
func applyDefaults(cfg *Config) {
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.MongoDatabase == "" {
		cfg.Database.MongoDatabase = DefaultMongoDatabase
	}
	if cfg.Ingest.MaxSources <= 0 {
		cfg.Ingest.MaxSources = DefaultMaxSources
	}
	if cfg.Ingest.FetchTimeout <= 0 {
		cfg.Ingest.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.Ingest.RequestsPerSecond < 0 {
		cfg.Ingest.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.Retention.DefaultDays < 1 || cfg.Retention.DefaultDays > 365 {
		cfg.Retention.DefaultDays = 7
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultServerAddr
	}
	if cfg.Schedule.JobTimeout <= 0 {
		cfg.Schedule.JobTimeout = DefaultJobTimeout
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = DefaultLLMProvider
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}

// Validate checks values that have no sensible fallback.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "supabase", "mongo", "memory":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	switch c.LLM.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.Schedule.FetchInterval < 0 || c.Schedule.SweepInterval < 0 {
		return fmt.Errorf("schedule intervals must not be negative")
	}
	return nil
}
