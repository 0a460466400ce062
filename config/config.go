package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Remote     RemoteConfig     `yaml:"remote"`
	Session    SessionConfig    `yaml:"session"`
	Watcher    WatcherConfig    `yaml:"watcher"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// ServerConfig holds the local HTTP server configuration.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// RemoteConfig describes how to reach the academy booking API.
type RemoteConfig struct {
	BaseURL         string            `yaml:"base_url"`
	TimeoutSeconds  int               `yaml:"timeout_seconds"`
	Timeout         time.Duration     `yaml:"-"` // Ignored by YAML parser
	HTTPProxy       string            `yaml:"http_proxy"`
	Headers         map[string]string `yaml:"headers"`
	RateLimitPerSec float64           `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int               `yaml:"rate_limit_burst"`
}

// SessionConfig holds the session renewal loop configuration.
type SessionConfig struct {
	RenewIntervalSeconds int           `yaml:"renew_interval_seconds"`
	RenewInterval        time.Duration `yaml:"-"` // Ignored by YAML parser
	BalanceCacheSeconds  int           `yaml:"balance_cache_seconds"`
	BalanceCacheTTL      time.Duration `yaml:"-"` // Ignored by YAML parser
}

// WatcherConfig holds the reservation status watcher configuration.
type WatcherConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"` // Ignored by YAML parser
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// DatabaseConfig holds the local credential store configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // "sqlite" (default) or "postgres"
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Remote.TimeoutSeconds <= 0 {
		cfg.Remote.TimeoutSeconds = 30
	}
	cfg.Remote.Timeout = time.Duration(cfg.Remote.TimeoutSeconds) * time.Second

	if cfg.Remote.RateLimitPerSec <= 0 {
		cfg.Remote.RateLimitPerSec = 10
	}
	if cfg.Remote.RateLimitBurst <= 0 {
		cfg.Remote.RateLimitBurst = 5
	}

	if cfg.Session.RenewIntervalSeconds <= 0 {
		cfg.Session.RenewIntervalSeconds = 300
	}
	cfg.Session.RenewInterval = time.Duration(cfg.Session.RenewIntervalSeconds) * time.Second

	if cfg.Session.BalanceCacheSeconds <= 0 {
		cfg.Session.BalanceCacheSeconds = 30
	}
	cfg.Session.BalanceCacheTTL = time.Duration(cfg.Session.BalanceCacheSeconds) * time.Second

	if cfg.Watcher.IntervalSeconds <= 0 {
		cfg.Watcher.IntervalSeconds = 60
	}
	cfg.Watcher.Interval = time.Duration(cfg.Watcher.IntervalSeconds) * time.Second

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "academy.db"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	return &cfg, nil
}
