// Package config provides Viper-based configuration loading for the
// hakushin binaries.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// APIConfig holds API endpoint and localization settings.
type APIConfig struct {
	// BaseURL is the primary API host.
	BaseURL string `mapstructure:"base_url"`
	// EliteGroupURL is the elite-group bulk table URL.
	EliteGroupURL string `mapstructure:"elite_group_url"`
	// HardLevelGroupURL is the hard-level-group bulk table URL.
	HardLevelGroupURL string `mapstructure:"hard_level_group_url"`
	// Language is the response language: "en", "zh", "ko", or "ja".
	Language string `mapstructure:"language"`
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `mapstructure:"timeout"`
	// UserAgent is the User-Agent header sent with every request.
	UserAgent string `mapstructure:"user_agent"`
}

// CacheConfig holds response-cache settings.
type CacheConfig struct {
	// Path is the SQLite cache file. Empty disables caching.
	Path string `mapstructure:"path"`
	// TTL is how long a cached response stays fresh.
	TTL time.Duration `mapstructure:"ttl"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateAPI(c.API); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateCache(c.Cache); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateAPI(a APIConfig) error {
	var errs []string
	if a.BaseURL == "" {
		errs = append(errs, "api.base_url must not be empty")
	}
	if a.EliteGroupURL == "" {
		errs = append(errs, "api.elite_group_url must not be empty")
	}
	if a.HardLevelGroupURL == "" {
		errs = append(errs, "api.hard_level_group_url must not be empty")
	}
	validLangs := map[string]bool{"en": true, "zh": true, "ko": true, "ja": true}
	if !validLangs[a.Language] {
		errs = append(errs, fmt.Sprintf("api.language must be one of [en, zh, ko, ja], got %q", a.Language))
	}
	if a.Timeout <= 0 {
		errs = append(errs, fmt.Sprintf("api.timeout must be > 0, got %s", a.Timeout))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateCache(c CacheConfig) error {
	if c.Path != "" && c.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be > 0 when cache.path is set, got %s", c.TTL)
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result. An empty path uses
// defaults and environment overrides only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with HAKUSHIN_ prefix
	v.SetEnvPrefix("HAKUSHIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "https://api.hakush.in")
	v.SetDefault("api.elite_group_url", "https://gitlab.com/Dimbreath/turnbasedgamedata/-/raw/main/ExcelOutput/EliteGroup.json")
	v.SetDefault("api.hard_level_group_url", "https://gitlab.com/Dimbreath/turnbasedgamedata/-/raw/main/ExcelOutput/HardLevelGroup.json")
	v.SetDefault("api.language", "en")
	v.SetDefault("api.timeout", "30s")
	v.SetDefault("api.user_agent", "hakushin-go")

	v.SetDefault("cache.path", ".cache/hakushin/responses.db")
	v.SetDefault("cache.ttl", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}
