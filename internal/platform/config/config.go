package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Snapshot backends understood by the server.
const (
	SnapshotMemory = "memory"
	SnapshotFile   = "file"
	SnapshotBadger = "badger"
	SnapshotRedis  = "redis"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// API points at the backend that serves section data.
type API struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Snapshot selects where the dashboard state is persisted.
type Snapshot struct {
	Backend string        `yaml:"backend"`
	Path    string        `yaml:"path"`
	TTL     time.Duration `yaml:"ttl"`
}

// RedisConfig is used when the snapshot backend is redis.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Bootstrap names where the one-time bootstrap payload is read from. At most
// one of File and Env is used; File wins.
type Bootstrap struct {
	File string `yaml:"file"`
	Env  string `yaml:"env"`
}

// Log controls the process logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Cache tunes the query cache retry policy.
type Cache struct {
	MaxRetries int           `yaml:"max_retries"`
	RetryBase  time.Duration `yaml:"retry_base"`
	RetryCap   time.Duration `yaml:"retry_cap"`
}

// RateLimit caps mutating dashboard requests per client. Requests <= 0
// disables the limiter.
type RateLimit struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// Config is the full process configuration.
type Config struct {
	Server    Server      `yaml:"server"`
	API       API         `yaml:"api"`
	Snapshot  Snapshot    `yaml:"snapshot"`
	Redis     RedisConfig `yaml:"redis"`
	Bootstrap Bootstrap   `yaml:"bootstrap"`
	Log       Log         `yaml:"log"`
	Cache     Cache       `yaml:"cache"`
	RateLimit RateLimit   `yaml:"rate_limit"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		API: API{
			BaseURL: "http://localhost:5000",
			Timeout: 10 * time.Second,
		},
		Snapshot: Snapshot{
			Backend: SnapshotMemory,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Bootstrap: Bootstrap{
			Env: "COSURVIVAL_BOOTSTRAP",
		},
		Log: Log{
			Level:  "info",
			Format: "json",
		},
		Cache: Cache{
			MaxRetries: 3,
			RetryBase:  time.Second,
			RetryCap:   30 * time.Second,
		},
		RateLimit: RateLimit{
			Requests: 30,
			Window:   time.Minute,
		},
	}
}

// FromEnv builds the config from defaults, then the YAML file named by
// COSURVIVAL_CONFIG (if any), then individual environment variables.
func FromEnv() (Config, error) {
	cfg := Default()
	if path := os.Getenv("COSURVIVAL_CONFIG"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML document at path onto cfg. Keys absent from
// the file keep their current values.
func (c *Config) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	setString := func(name string, dst *string) {
		if v := getenv(name); v != "" {
			*dst = v
		}
	}
	setDuration := func(name string, dst *time.Duration) error {
		v := getenv(name)
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = d
		return nil
	}

	setString("COSURVIVAL_ADDR", &c.Server.Addr)
	setString("COSURVIVAL_API_URL", &c.API.BaseURL)
	setString("COSURVIVAL_SNAPSHOT_BACKEND", &c.Snapshot.Backend)
	setString("COSURVIVAL_SNAPSHOT_PATH", &c.Snapshot.Path)
	setString("COSURVIVAL_REDIS_URL", &c.Redis.URL)
	setString("COSURVIVAL_BOOTSTRAP_FILE", &c.Bootstrap.File)
	setString("COSURVIVAL_LOG_LEVEL", &c.Log.Level)
	setString("COSURVIVAL_LOG_FORMAT", &c.Log.Format)

	if err := setDuration("COSURVIVAL_API_TIMEOUT", &c.API.Timeout); err != nil {
		return err
	}
	if err := setDuration("COSURVIVAL_SNAPSHOT_TTL", &c.Snapshot.TTL); err != nil {
		return err
	}
	if v := getenv("COSURVIVAL_CACHE_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("COSURVIVAL_CACHE_MAX_RETRIES: %w", err)
		}
		c.Cache.MaxRetries = n
	}
	if v := getenv("COSURVIVAL_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("COSURVIVAL_RATE_LIMIT: %w", err)
		}
		c.RateLimit.Requests = n
	}
	return nil
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	switch c.Snapshot.Backend {
	case SnapshotMemory:
	case SnapshotFile, SnapshotBadger:
		if c.Snapshot.Path == "" {
			return fmt.Errorf("snapshot backend %q requires a path", c.Snapshot.Backend)
		}
	case SnapshotRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("snapshot backend %q requires a redis url", c.Snapshot.Backend)
		}
	default:
		return fmt.Errorf("unknown snapshot backend %q", c.Snapshot.Backend)
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("api base url is required")
	}
	if c.RateLimit.Requests > 0 && c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate limit window must be positive")
	}
	if c.Cache.MaxRetries < 0 {
		return fmt.Errorf("cache max retries must not be negative")
	}
	return nil
}
