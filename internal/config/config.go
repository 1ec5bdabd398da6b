package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	LogMode bool   `mapstructure:"log_mode"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

type AIConfig struct {
	APIKey             string `mapstructure:"api_key"`
	Model              string `mapstructure:"model"`
	BaseURL            string `mapstructure:"base_url"`
	RateLimitPerMinute int    `mapstructure:"rate_limit_per_minute"`
	TimeoutSeconds     int    `mapstructure:"timeout_seconds"`
}

type StorageConfig struct {
	Dir           string `mapstructure:"dir"`
	SigningSecret string `mapstructure:"signing_secret"`
	URLTTLMinutes int    `mapstructure:"url_ttl_minutes"`
}

type AppConfig struct {
	DefaultCredits int64 `mapstructure:"default_credits"`
	LedgerPageSize int   `mapstructure:"ledger_page_size"`
	PageSize       int   `mapstructure:"page_size"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	AI       AIConfig       `mapstructure:"ai"`
	Storage  StorageConfig  `mapstructure:"storage"`
	App      AppConfig      `mapstructure:"app"`
}

// Load reads configuration from the given file path (e.g. "config.yaml").
// If path is empty, it defaults to "config.yaml" in the current working
// directory. The returned Config is handed to constructors explicitly;
// there is no package-level accessor.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	// environment overrides, e.g. PQB_SERVER_PORT=9000
	v.SetEnvPrefix("PQB") // personal question bank
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyDefaults(&c)
	return &c, nil
}

func applyDefaults(c *Config) {
	if c.App.DefaultCredits == 0 {
		c.App.DefaultCredits = 50
	}
	if c.App.LedgerPageSize <= 0 {
		c.App.LedgerPageSize = 50
	}
	if c.App.PageSize <= 0 {
		c.App.PageSize = 20
	}
	if c.AI.Model == "" {
		c.AI.Model = "models/gemini-1.5-flash"
	}
	if c.AI.RateLimitPerMinute <= 0 {
		c.AI.RateLimitPerMinute = 5
	}
	if c.AI.TimeoutSeconds <= 0 {
		c.AI.TimeoutSeconds = 60
	}
	if c.Storage.URLTTLMinutes <= 0 {
		c.Storage.URLTTLMinutes = 10
	}
}
