// Package config loads server and client settings from .env files, an
// optional YAML file and WORDIMIZE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "WORDIMIZE"

// DevJWTSecret is used when no secret is configured. Never use it in production.
const DevJWTSecret = "dev_secret_change_me"

// Config is the complete runtime configuration.
type Config struct {
	Port      int    `mapstructure:"port"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"` // "json" or "console"

	// Database is a SQLite file path or a postgres:// URL.
	Database       string `mapstructure:"database"`
	SourceFile     string `mapstructure:"source_file"`
	DictionaryFile string `mapstructure:"dictionary_file"`

	ClientOrigin  string        `mapstructure:"client_origin"`
	JWTSecret     string        `mapstructure:"jwt_secret"`
	JWTTTL        time.Duration `mapstructure:"jwt_ttl"`
	CookieName    string        `mapstructure:"cookie_name"`
	SecureCookies bool          `mapstructure:"secure_cookies"`
	DailySalt     string        `mapstructure:"daily_salt"`

	MaxMistakes int `mapstructure:"max_mistakes"`
	MinLength   int `mapstructure:"min_length"`

	RoundTTL       time.Duration `mapstructure:"round_ttl"`
	SweepInterval  time.Duration `mapstructure:"sweep_interval"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RateLimit      int           `mapstructure:"rate_limit"`
	RateWindow     time.Duration `mapstructure:"rate_window"`
}

var defaults = map[string]any{
	"port":            5175,
	"log_level":       "info",
	"log_format":      "json",
	"database":        "./data/wordimize.db",
	"source_file":     "",
	"dictionary_file": "",
	"client_origin":   "http://localhost:5173",
	"jwt_secret":      DevJWTSecret,
	"jwt_ttl":         "336h",
	"cookie_name":     "wordimize_token",
	"secure_cookies":  false,
	"daily_salt":      "local_dev_salt",
	"max_mistakes":    5,
	"min_length":      3,
	"round_ttl":       "2h",
	"sweep_interval":  "5m",
	"request_timeout": "10s",
	"rate_limit":      10,
	"rate_window":     "1s",
}

// Load reads .env (if present), then path (if non-empty), then environment
// variables, and validates the result.
func Load(path string) (*Config, error) {
	// .env is optional; a missing file is fine.
	_ = godotenv.Load()

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unprefixed names kept for hosting platforms that set them.
	_ = v.BindEnv("port", EnvPrefix+"_PORT", "PORT")
	_ = v.BindEnv("log_level", EnvPrefix+"_LOG_LEVEL", "LOG_LEVEL")
	_ = v.BindEnv("database", EnvPrefix+"_DATABASE", "DATABASE_URL")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
	))); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.Database == "" {
		errs = append(errs, errors.New("database must be set"))
	}
	if c.MaxMistakes < 1 {
		errs = append(errs, fmt.Errorf("max_mistakes must be at least 1, got %d", c.MaxMistakes))
	}
	if c.MinLength < 1 {
		errs = append(errs, fmt.Errorf("min_length must be at least 1, got %d", c.MinLength))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("jwt_secret must be set"))
	}
	if c.RateLimit < 1 || c.RateWindow <= 0 {
		errs = append(errs, errors.New("rate_limit and rate_window must be positive"))
	}
	if c.RoundTTL <= 0 || c.SweepInterval <= 0 {
		errs = append(errs, errors.New("round_ttl and sweep_interval must be positive"))
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		errs = append(errs, fmt.Errorf("log_format must be json or console, got %q", c.LogFormat))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }
