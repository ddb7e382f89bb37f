// Package config loads service configuration from an optional JSON file and
// environment overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Server configures the HTTP listener.
type Server struct {
	Port string `json:"port"`
}

// Fetch configures outbound quote requests.
type Fetch struct {
	UserAgent      string `json:"user_agent"`
	HTTPTimeoutSec int    `json:"http_timeout_sec"`
}

// Redis configures the optional batch archive.
type Redis struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`

	ArchiveEnabled    bool `json:"archive_enabled"`
	ArchiveMaxBatches int  `json:"archive_max_batches"`
}

// Log configures structured logging.
type Log struct {
	Level  string `json:"level"`
	Pretty bool   `json:"pretty"`
}

// Config is the complete quote-proxy configuration.
type Config struct {
	Server Server `json:"server"`
	Fetch  Fetch  `json:"fetch"`
	Redis  Redis  `json:"redis"`
	Log    Log    `json:"log"`
}

// Default returns the configuration used when no file or environment values are set.
func Default() Config {
	return Config{
		Server: Server{Port: "8080"},
		Fetch: Fetch{
			UserAgent:      "quote-fetcher/0.1.0",
			HTTPTimeoutSec: 30,
		},
		Redis: Redis{
			Addr:              "localhost:6379",
			ArchiveEnabled:    false,
			ArchiveMaxBatches: 100,
		},
		Log: Log{Level: "info"},
	}
}

// HTTPTimeout returns the per-request transport timeout.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.Fetch.HTTPTimeoutSec) * time.Second
}

// Load reads JSON config from path. If path is empty, config.json in the working
// directory is used when present. Environment variables override file values.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks values the service cannot start without.
func (c Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if c.Fetch.UserAgent == "" {
		return fmt.Errorf("fetch.user_agent is required")
	}
	if c.Fetch.HTTPTimeoutSec <= 0 {
		return fmt.Errorf("fetch.http_timeout_sec must be > 0 (got %d)", c.Fetch.HTTPTimeoutSec)
	}
	if c.Redis.ArchiveEnabled && c.Redis.ArchiveMaxBatches <= 0 {
		return fmt.Errorf("redis.archive_max_batches must be > 0 (got %d)", c.Redis.ArchiveMaxBatches)
	}
	return nil
}

// RedisOptions returns client options for the archive connection.
func (c Config) RedisOptions() *redis.Options {
	return &redis.Options{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	}
}

// applyEnv overrides cfg from the environment. REDIS_URL is a full
// redis://[:password@]host:port[/db] URL and is applied before the
// individual REDIS_ADDR, REDIS_PASSWORD and REDIS_DB overrides.
func applyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("USER_AGENT"); v != "" {
		cfg.Fetch.UserAgent = v
	}
	if x, ok := envInt("HTTP_TIMEOUT_SEC"); ok {
		cfg.Fetch.HTTPTimeoutSec = x
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		opts, err := redis.ParseURL(v)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		cfg.Redis.Addr = opts.Addr
		cfg.Redis.Password = opts.Password
		cfg.Redis.DB = opts.DB
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if x, ok := envInt("REDIS_DB"); ok && x >= 0 {
		cfg.Redis.DB = x
	}
	if b, ok := envBool("ARCHIVE_ENABLED"); ok {
		cfg.Redis.ArchiveEnabled = b
	}
	if x, ok := envInt("ARCHIVE_MAX_BATCHES"); ok {
		cfg.Redis.ArchiveMaxBatches = x
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if b, ok := envBool("LOG_PRETTY"); ok {
		cfg.Log.Pretty = b
	}
	return nil
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	x, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return x, true
}

func envBool(key string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "y":
		return true, true
	case "0", "false", "no", "n":
		return false, true
	}
	return false, false
}
