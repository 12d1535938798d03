package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	DefaultHost           = "0.0.0.0"
	DefaultPort           = 3978
	DefaultBufSize        = 100
	DefaultStateBackend   = "memory"
	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisPrefix    = "stratus:"
	DefaultWeatherBaseURL = "https://api.openweathermap.org/data/2.5"
	DefaultWeatherTTL     = "30m"
	DefaultWeatherRefresh = "@every 30m"
	DefaultLogLevel       = "info"
)

// Config is the gateway configuration, loaded from ~/.stratus/config.json
// with environment overrides on top.
type Config struct {
	Gateway    GatewayConfig    `json:"gateway"`
	Channels   ChannelsConfig   `json:"channels"`
	Recognizer RecognizerConfig `json:"recognizer"`
	Weather    WeatherConfig    `json:"weather"`
	State      StateConfig      `json:"state"`
	Log        LogConfig        `json:"log"`
}

type GatewayConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type ChannelsConfig struct {
	Telegram TelegramConfig `json:"telegram"`
	Webhook  WebhookConfig  `json:"webhook"`
}

type TelegramConfig struct {
	Enabled   bool     `json:"enabled"`
	Token     string   `json:"token"`
	AllowFrom []string `json:"allowFrom,omitempty"`
	Proxy     string   `json:"proxy,omitempty"`
}

type WebhookConfig struct {
	Enabled   bool     `json:"enabled"`
	AllowFrom []string `json:"allowFrom,omitempty"`
}

type RecognizerConfig struct {
	Endpoint string `json:"endpoint" validate:"required"`
	AppID    string `json:"appId" validate:"required"`
	Key      string `json:"key,omitempty"`
}

type WeatherConfig struct {
	APIKey  string `json:"apiKey" validate:"required"`
	CityID  string `json:"cityId" validate:"required"`
	BaseURL string `json:"baseUrl,omitempty"`
	TTL     string `json:"ttl,omitempty"`
	Refresh string `json:"refresh,omitempty"`
}

type StateConfig struct {
	Backend  string         `json:"backend" validate:"oneof=memory sqlite redis postgres"`
	Sqlite   SqliteConfig   `json:"sqlite"`
	Redis    RedisConfig    `json:"redis"`
	Postgres PostgresConfig `json:"postgres"`
}

type SqliteConfig struct {
	Path string `json:"path,omitempty"`
}

type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password,omitempty"`
	DB       int    `json:"db"`
	Prefix   string `json:"prefix,omitempty"`
}

type PostgresConfig struct {
	DSN string `json:"dsn"`
}

type LogConfig struct {
	Level string `json:"level,omitempty"`
}

// DefaultConfig returns the config used when no file exists yet. The webhook
// channel is on by default; everything needing credentials is off or empty.
func DefaultConfig() *Config {
	return &Config{
		Gateway: GatewayConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Channels: ChannelsConfig{
			Webhook: WebhookConfig{Enabled: true},
		},
		Weather: WeatherConfig{
			BaseURL: DefaultWeatherBaseURL,
			TTL:     DefaultWeatherTTL,
			Refresh: DefaultWeatherRefresh,
		},
		State: StateConfig{
			Backend: DefaultStateBackend,
			Redis: RedisConfig{
				Addr:   DefaultRedisAddr,
				Prefix: DefaultRedisPrefix,
			},
		},
		Log: LogConfig{Level: DefaultLogLevel},
	}
}

// ConfigDir returns the stratus config directory
func ConfigDir() string {
	home := os.Getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return filepath.Join(home, ".stratus")
}

// ConfigPath returns the path to config.json
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

// LoadConfig reads the config file and applies environment overrides. A
// missing file is not an error; defaults apply.
func LoadConfig() (*Config, error) {
	// A .env next to the binary is picked up before the overrides below.
	_ = godotenv.Load()

	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Environment variable overrides
	if token := os.Getenv("STRATUS_TELEGRAM_TOKEN"); token != "" {
		cfg.Channels.Telegram.Token = token
	}
	if endpoint := os.Getenv("STRATUS_RECOGNIZER_ENDPOINT"); endpoint != "" {
		cfg.Recognizer.Endpoint = endpoint
	}
	if appID := os.Getenv("STRATUS_RECOGNIZER_APP_ID"); appID != "" {
		cfg.Recognizer.AppID = appID
	}
	if key := os.Getenv("STRATUS_RECOGNIZER_KEY"); key != "" {
		cfg.Recognizer.Key = key
	}
	if key := os.Getenv("STRATUS_WEATHER_API_KEY"); key != "" {
		cfg.Weather.APIKey = key
	}
	if cityID := os.Getenv("STRATUS_WEATHER_CITY_ID"); cityID != "" {
		cfg.Weather.CityID = cityID
	}
	if backend := os.Getenv("STRATUS_STATE_BACKEND"); backend != "" {
		cfg.State.Backend = backend
	}
	if addr := os.Getenv("STRATUS_REDIS_ADDR"); addr != "" {
		cfg.State.Redis.Addr = addr
	}
	if dsn := os.Getenv("STRATUS_POSTGRES_DSN"); dsn != "" {
		cfg.State.Postgres.DSN = dsn
	}
	if level := os.Getenv("STRATUS_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	// Backfill blanks a hand-edited file may have left.
	if cfg.Weather.BaseURL == "" {
		cfg.Weather.BaseURL = DefaultWeatherBaseURL
	}
	if cfg.Weather.TTL == "" {
		cfg.Weather.TTL = DefaultWeatherTTL
	}
	if cfg.State.Backend == "" {
		cfg.State.Backend = DefaultStateBackend
	}
	if cfg.Gateway.Port == 0 {
		cfg.Gateway.Port = DefaultPort
	}

	return cfg, nil
}

// SaveConfig writes the config to disk
func SaveConfig(cfg *Config) error {
	if err := os.MkdirAll(ConfigDir(), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(), data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

var validate = validator.New()

// Validate checks the settings the gateway cannot run without. Commands that
// only inspect or write configuration skip it.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.WeatherTTL(); err != nil {
		return err
	}
	return nil
}

// WeatherTTL parses the cache freshness window.
func (c *Config) WeatherTTL() (time.Duration, error) {
	raw := c.Weather.TTL
	if raw == "" {
		raw = DefaultWeatherTTL
	}
	ttl, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse weather ttl %q: %w", raw, err)
	}
	return ttl, nil
}
