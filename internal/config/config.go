package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const DefaultSessionSecret = "secret_key_change_me"

// Store backends, chosen from which connection settings are present.
const (
	BackendPostgres  = "postgres"
	BackendPostgREST = "postgrest"
	BackendMemory    = "memory"
)

// Config 应用配置，默认值 < 环境变量（.env 由 main 预先加载）
type Config struct {
	Port          string `koanf:"port"`
	GinMode       string `koanf:"gin_mode"`
	SessionSecret string `koanf:"session_secret"`

	// 远端存储：DATABASE_URL 直连 Postgres；否则使用 Supabase REST 接口
	DatabaseURL string `koanf:"database_url"`
	SupabaseURL string `koanf:"supabase_url"`
	SupabaseKey string `koanf:"supabase_key"`

	// 海报查询 (OMDb)
	OMDbBaseURL string `koanf:"omdb_base_url"`
	OMDbAPIKey  string `koanf:"omdb_api_key"`

	HTTPTimeout time.Duration `koanf:"http_timeout"`

	// 访客会话缓存
	SessionTTL  time.Duration `koanf:"session_ttl"`
	MaxSessions int           `koanf:"max_sessions"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`
}

func defaults() Config {
	return Config{
		Port:          "8080",
		GinMode:       "release",
		SessionSecret: DefaultSessionSecret,
		OMDbBaseURL:   "https://www.omdbapi.com/",
		HTTPTimeout:   10 * time.Second,
		SessionTTL:    2 * time.Hour,
		MaxSessions:   1000,
		LogLevel:      "info",
		LogFormat:     "json",
	}
}

// Load layers environment variables over the built-in defaults.
// PORT -> port, SUPABASE_URL -> supabase_url and so on.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail at first use.
func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.SupabaseURL != "" && c.SupabaseKey == "" {
		errs = append(errs, errors.New("SUPABASE_KEY is required when SUPABASE_URL is set"))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("HTTP_TIMEOUT must be positive"))
	}
	if c.MaxSessions <= 0 {
		errs = append(errs, errors.New("MAX_SESSIONS must be positive"))
	}
	return errors.Join(errs...)
}

// StoreBackend picks the recommendation store from the configured endpoints.
func (c *Config) StoreBackend() string {
	switch {
	case c.DatabaseURL != "":
		return BackendPostgres
	case c.SupabaseURL != "":
		return BackendPostgREST
	default:
		return BackendMemory
	}
}
