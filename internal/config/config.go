// Package config loads the lookup settings from defaults, an optional YAML
// file, YOUDAO_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/atone/alfred-youdao/internal/fingerprint"
	"github.com/atone/alfred-youdao/internal/youdao"
	"github.com/atone/alfred-youdao/pkg/useragent"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "YOUDAO"

// Config is the full runtime configuration.
type Config struct {
	Timeout     time.Duration   `mapstructure:"timeout"`
	Fingerprint string          `mapstructure:"fingerprint"`
	UserAgent   string          `mapstructure:"user_agent"`
	Proxies     []string        `mapstructure:"proxies"`
	ProxyFile   string          `mapstructure:"proxy_file"`
	Endpoints   EndpointsConfig `mapstructure:"endpoints"`
	Log         LogConfig       `mapstructure:"log"`
	History     HistoryConfig   `mapstructure:"history"`
	Metrics     MetricsConfig   `mapstructure:"metrics"`
}

type EndpointsConfig struct {
	Dict    string `mapstructure:"dict"`
	Preview string `mapstructure:"preview"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// HistoryConfig enables the lookup history when DSN is set.
type HistoryConfig struct {
	DSN string `mapstructure:"dsn"`
}

// MetricsConfig enables the textfile export when File is set.
type MetricsConfig struct {
	File string `mapstructure:"file"`
}

// SetDefaults registers every key with its default so environment
// variables are picked up for all of them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("fingerprint", string(fingerprint.ProfileGo))
	v.SetDefault("user_agent", useragent.Default)
	v.SetDefault("proxies", []string{})
	v.SetDefault("proxy_file", "")
	endpoints := youdao.DefaultEndpoints()
	v.SetDefault("endpoints.dict", endpoints.Dict)
	v.SetDefault("endpoints.preview", endpoints.Preview)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("history.dsn", "")
	v.SetDefault("metrics.file", "")
}

// Load reads the configuration into a Config. path names a YAML file; when
// empty, YOUDAO_CONFIG is consulted, and without either only defaults,
// environment and bound flags apply.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if _, err := fingerprint.ParseProfile(c.Fingerprint); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	return errors.Join(errs...)
}
