package utils

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DemoBaseAPIURL = "https://gateway-api-demo.s2f.projectx.com"
	LiveBaseAPIURL = "https://api.topstepx.com"

	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
)

type ReauthConfig struct {
	At           string        `yaml:"at"`
	Timezone     string        `yaml:"timezone"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// Config is built once at startup and handed to every component.
type Config struct {
	BaseAPIURL    string        `yaml:"base_api_url"`
	UserHubURL    string        `yaml:"user_hub_url"`
	MarketHubURL  string        `yaml:"market_hub_url"`
	NodeBridgeURL string        `yaml:"node_bridge_url"`
	LiveMode      bool          `yaml:"live_mode"`
	RedisURL      string        `yaml:"redis_url"`
	CacheBackend  string        `yaml:"cache_backend"`
	Port          string        `yaml:"port"`
	LogLevel      string        `yaml:"log_level"`
	LogFormat     string        `yaml:"log_format"`
	HTTPTimeout   time.Duration `yaml:"http_timeout"`
	CacheTimeout  time.Duration `yaml:"cache_timeout"`
	OtelEnabled   bool          `yaml:"otel_enabled"`
	Reauth        ReauthConfig  `yaml:"reauth"`
}

func DefaultConfig() *Config {
	return &Config{
		RedisURL:     "redis://localhost:6379/0",
		CacheBackend: CacheBackendRedis,
		Port:         "5999",
		LogLevel:     "info",
		LogFormat:    "text",
		HTTPTimeout:  10 * time.Second,
		CacheTimeout: 2 * time.Second,
		Reauth: ReauthConfig{
			At:           "17:45",
			Timezone:     "America/New_York",
			PollInterval: 60 * time.Second,
		},
	}
}

// LoadConfig reads $ENV_FILE (default .env), then the optional yaml file at
// $CONFIG_FILE, then lets environment variables override both.
func LoadConfig() (*Config, error) {
	if err := InitEnvironmentVariables(GetEnvOrDefault("ENV_FILE", DEFAULT_ENV_FILENAME)); err != nil {
		return nil, fmt.Errorf("LoadConfig: %w", err)
	}

	cfg := DefaultConfig()

	if path, err := GetEnv("CONFIG_FILE"); err == nil {
		if err := cfg.loadYAML(path); err != nil {
			return nil, fmt.Errorf("LoadConfig: %w", err)
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, fmt.Errorf("LoadConfig: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("LoadConfig: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

func (c *Config) loadEnv() error {
	c.BaseAPIURL = GetEnvOrDefault("BASE_API_URL", c.BaseAPIURL)
	c.UserHubURL = GetEnvOrDefault("USER_HUB_URL", c.UserHubURL)
	c.MarketHubURL = GetEnvOrDefault("MARKET_HUB_URL", c.MarketHubURL)
	c.NodeBridgeURL = GetEnvOrDefault("NODE_BRIDGE_URL", c.NodeBridgeURL)
	c.RedisURL = GetEnvOrDefault("REDIS_URL", c.RedisURL)
	c.CacheBackend = GetEnvOrDefault("CACHE_BACKEND", c.CacheBackend)
	c.Port = GetEnvOrDefault("QUANTX_BACKEND_PORT", c.Port)
	c.LogLevel = GetEnvOrDefault("LOG_LEVEL", c.LogLevel)
	c.LogFormat = GetEnvOrDefault("LOG_FORMAT", c.LogFormat)
	c.Reauth.At = GetEnvOrDefault("REAUTH_AT", c.Reauth.At)
	c.Reauth.Timezone = GetEnvOrDefault("REAUTH_TIMEZONE", c.Reauth.Timezone)

	var err error
	if c.LiveMode, err = GetEnvBool("LIVE_MODE", c.LiveMode); err != nil {
		return err
	}

	if c.OtelEnabled, err = GetEnvBool("OTEL_ENABLED", c.OtelEnabled); err != nil {
		return err
	}

	if c.HTTPTimeout, err = GetEnvDuration("HTTP_TIMEOUT", c.HTTPTimeout); err != nil {
		return err
	}

	if c.CacheTimeout, err = GetEnvDuration("CACHE_TIMEOUT", c.CacheTimeout); err != nil {
		return err
	}

	if c.Reauth.PollInterval, err = GetEnvDuration("REAUTH_POLL_INTERVAL", c.Reauth.PollInterval); err != nil {
		return err
	}

	return nil
}

func (c *Config) Validate() error {
	if c.BaseAPIURL == "" {
		if c.LiveMode {
			c.BaseAPIURL = LiveBaseAPIURL
		} else {
			c.BaseAPIURL = DemoBaseAPIURL
		}
	}

	c.BaseAPIURL = strings.TrimRight(c.BaseAPIURL, "/")

	switch c.CacheBackend {
	case CacheBackendRedis, CacheBackendMemory:
	default:
		return fmt.Errorf("unknown cache backend %q (want redis|memory)", c.CacheBackend)
	}

	if _, _, err := ParseClock(c.Reauth.At); err != nil {
		return err
	}

	if _, err := c.ReauthLocation(); err != nil {
		return err
	}

	if c.Reauth.PollInterval <= 0 {
		return fmt.Errorf("reauth poll interval must be positive, got %v", c.Reauth.PollInterval)
	}

	if c.HTTPTimeout <= 0 || c.CacheTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}

	return nil
}

func (c *Config) ReauthLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Reauth.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load location %s: %w", c.Reauth.Timezone, err)
	}

	return loc, nil
}
