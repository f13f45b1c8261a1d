package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ExpiryConfig drives the idle sweep. Zero thresholds disable that tier.
type ExpiryConfig struct {
	SweepInterval time.Duration `yaml:"sweep_interval"`
	UnstartedIdle time.Duration `yaml:"unstarted_idle"`
	StartedIdle   time.Duration `yaml:"started_idle"`
	MaxAge        time.Duration `yaml:"max_age"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
}

type SessionConfig struct {
	Secret   string        `yaml:"secret"`
	Issuer   string        `yaml:"issuer"`
	TokenTTL time.Duration `yaml:"token_ttl"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	JSON       bool   `yaml:"json"`
	Directory  string `yaml:"directory"` // empty logs to stderr only
	Filename   string `yaml:"filename"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// PushConfig sizes the websocket fan-out.
type PushConfig struct {
	PoolSize     int           `yaml:"pool_size"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Expiry  ExpiryConfig  `yaml:"expiry"`
	Session SessionConfig `yaml:"session"`
	Log     LogConfig     `yaml:"log"`
	Push    PushConfig    `yaml:"push"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr: ":3000",
		},
		Expiry: ExpiryConfig{
			SweepInterval: time.Minute,
			UnstartedIdle: time.Hour,
			StartedIdle:   2 * time.Hour,
			MaxAge:        6 * time.Hour,
			SessionTTL:    5 * time.Minute,
		},
		Session: SessionConfig{
			Issuer:   "staredown",
			TokenTTL: 24 * time.Hour,
		},
		Log: LogConfig{
			Level:      "info",
			Filename:   "staredown.log",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 7,
		},
		Push: PushConfig{
			PoolSize:     64,
			WriteTimeout: 5 * time.Second,
		},
	}
}

// Load reads a YAML (or JSON) config file over the defaults. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Expiry.SweepInterval <= 0 {
		return fmt.Errorf("expiry.sweep_interval must be positive")
	}
	if c.Expiry.SessionTTL <= 0 {
		return fmt.Errorf("expiry.session_ttl must be positive")
	}
	if c.Push.PoolSize <= 0 {
		return fmt.Errorf("push.pool_size must be positive")
	}
	return nil
}
