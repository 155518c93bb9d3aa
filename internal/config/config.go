package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds service configuration loaded from YAML and env.
type Config struct {
	ServerPort string

	ForecastAPIURL     string
	ForecastAPITimeout time.Duration

	RequestTimeout time.Duration

	CacheBackend string // "in_memory", "memcached" or "redis"
	CacheTTL     time.Duration

	MemcachedAddrs        string
	MemcachedTimeout      time.Duration
	MemcachedMaxIdleConns int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RegistryPath string
	StaticDir    string

	ShutdownTimeout               time.Duration
	ShutdownInFlightTimeout       time.Duration
	ShutdownInFlightCheckInterval time.Duration

	WarmCache    bool
	WarmInterval time.Duration
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	ForecastAPI struct {
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"forecast_api"`

	Request struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"request"`

	Cache struct {
		Backend   string `yaml:"backend"`
		TTL       string `yaml:"ttl"`
		Memcached struct {
			Addrs        string `yaml:"addrs"`
			Timeout      string `yaml:"timeout"`
			MaxIdleConns int    `yaml:"max_idle_conns"`
		} `yaml:"memcached"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	Registry struct {
		Path string `yaml:"path"`
	} `yaml:"registry"`

	Static struct {
		Dir string `yaml:"dir"`
	} `yaml:"static"`

	Shutdown struct {
		Timeout               string `yaml:"timeout"`
		InFlightTimeout       string `yaml:"in_flight_timeout"`
		InFlightCheckInterval string `yaml:"in_flight_check_interval"`
	} `yaml:"shutdown"`

	Warming struct {
		Enabled  bool   `yaml:"enabled"`
		Interval string `yaml:"interval"`
	} `yaml:"warming"`
}

// Load reads configuration from config/{ENV_NAME}.yaml (default dev).
// A missing file yields the defaults so the service runs out of the box.
// CACHE_BACKEND, MEMCACHED_ADDRS, REDIS_ADDR and REDIS_PASSWORD env vars
// override the file. Call from project root.
func Load() (*Config, error) {
	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}

	var fc fileConfig
	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg := &Config{}

	cfg.ServerPort = fc.Server.Port
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}

	cfg.ForecastAPIURL = fc.ForecastAPI.URL
	if cfg.ForecastAPIURL == "" {
		cfg.ForecastAPIURL = "https://api.open-meteo.com/v1/forecast"
	}
	cfg.ForecastAPITimeout = parseDuration(fc.ForecastAPI.Timeout, 5*time.Second)

	cfg.RequestTimeout = parseDuration(fc.Request.Timeout, 10*time.Second)

	cfg.CacheBackend = strings.TrimSpace(strings.ToLower(os.Getenv("CACHE_BACKEND")))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = strings.TrimSpace(strings.ToLower(fc.Cache.Backend))
	}
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = "in_memory"
	}
	cfg.CacheTTL = parseDuration(fc.Cache.TTL, 60*time.Second)

	cfg.MemcachedAddrs = strings.TrimSpace(os.Getenv("MEMCACHED_ADDRS"))
	if cfg.MemcachedAddrs == "" {
		cfg.MemcachedAddrs = strings.TrimSpace(fc.Cache.Memcached.Addrs)
	}
	if cfg.MemcachedAddrs == "" {
		cfg.MemcachedAddrs = "localhost:11211"
	}
	cfg.MemcachedTimeout = parseDuration(fc.Cache.Memcached.Timeout, 500*time.Millisecond)
	cfg.MemcachedMaxIdleConns = fc.Cache.Memcached.MaxIdleConns
	if cfg.MemcachedMaxIdleConns <= 0 {
		cfg.MemcachedMaxIdleConns = 2
	}

	cfg.RedisAddr = strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = strings.TrimSpace(fc.Cache.Redis.Addr)
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if cfg.RedisPassword == "" {
		cfg.RedisPassword = fc.Cache.Redis.Password
	}
	cfg.RedisDB = fc.Cache.Redis.DB

	cfg.RegistryPath = fc.Registry.Path
	if cfg.RegistryPath == "" {
		cfg.RegistryPath = filepath.Join(cwd, "config", "registry.yaml")
	}
	cfg.StaticDir = fc.Static.Dir
	if cfg.StaticDir == "" {
		cfg.StaticDir = "static"
	}

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)
	cfg.ShutdownInFlightTimeout = parseDuration(fc.Shutdown.InFlightTimeout, 10*time.Second)
	cfg.ShutdownInFlightCheckInterval = parseDuration(fc.Shutdown.InFlightCheckInterval, 100*time.Millisecond)

	cfg.WarmCache = fc.Warming.Enabled
	cfg.WarmInterval = parseDurationOrZero(fc.Warming.Interval, 0)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseDuration parses a duration string and returns defaultVal if parsing
// fails or the result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	d := parseDurationOrZero(s, defaultVal)
	if d <= 0 {
		return defaultVal
	}
	return d
}

// parseDurationOrZero parses a duration string, returning defaultVal on empty
// string or parse error. Zero and negative durations pass through as-is.
func parseDurationOrZero(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// validate performs post-load validation. Ensures the cache backend is known,
// the TTL stays within the supported window, and the request timeout exceeds
// the upstream timeout (auto-adjusted if not).
func validate(cfg *Config) error {
	switch cfg.CacheBackend {
	case "in_memory", "memcached", "redis":
		// valid
	default:
		return fmt.Errorf("cache.backend must be in_memory, memcached or redis, got %q", cfg.CacheBackend)
	}
	if cfg.CacheTTL < 10*time.Second || cfg.CacheTTL > 300*time.Second {
		return fmt.Errorf("cache.ttl must be between 10s and 300s, got %s", cfg.CacheTTL)
	}
	if cfg.ForecastAPITimeout <= 0 {
		return fmt.Errorf("forecast_api.timeout must be positive")
	}
	if cfg.RequestTimeout <= cfg.ForecastAPITimeout {
		cfg.RequestTimeout = cfg.ForecastAPITimeout + time.Second
	}
	return nil
}
