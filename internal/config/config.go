package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Data source kinds.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Defaults.
const (
	DefaultDataFile        = "combined_data.csv"
	DefaultPort            = "8000"
	DefaultRefreshInterval = time.Minute
	DefaultCacheEntries    = 256
	DefaultRequestTimeout  = 30 * time.Second
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config holds application configuration
type Config struct {
	DataFile        string        `validate:"required_if=Source csv"`
	DatabaseURL     string        `validate:"required_if=Source postgres"`
	Source          string        `validate:"oneof=csv postgres"`
	Port            string        `validate:"required,numeric"`
	RefreshInterval time.Duration `validate:"gte=0"`
	CacheEntries    int           `validate:"gte=0"`
	ServerURL       string        `validate:"omitempty,http_url"`
	RequestTimeout  time.Duration `validate:"gt=0"`
	AllowedOrigins  []string      `validate:"dive,required"`
}

// Overrides are flag values. Empty fields leave the loaded value alone.
type Overrides struct {
	DataFile        string
	DatabaseURL     string
	Source          string
	Port            string
	RefreshInterval string
	ServerURL       string
}

// Load loads configuration from multiple sources with priority:
// 1. Command flags (see LoadWithOverrides)
// 2. Config file (./salesboard.toml or $XDG_CONFIG_HOME/salesboard/salesboard.toml)
// 3. Environment variables
func Load() (*Config, error) {
	return LoadWithOverrides(Overrides{})
}

// LoadWithOverrides loads config and applies flag overrides
func LoadWithOverrides(o Overrides) (*Config, error) {
	v := newBaseViper()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg, err := buildConfig(v, o)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newBaseViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("salesboard")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			configHome = filepath.Join(home, ".config")
		}
	}
	if configHome != "" {
		v.AddConfigPath(filepath.Join(configHome, "salesboard"))
	}

	return v
}

func buildConfig(v *viper.Viper, o Overrides) (*Config, error) {
	cfg := &Config{
		DataFile:        DefaultDataFile,
		Port:            DefaultPort,
		RefreshInterval: DefaultRefreshInterval,
		CacheEntries:    DefaultCacheEntries,
		RequestTimeout:  DefaultRequestTimeout,
		AllowedOrigins:  []string{"*"},
	}

	// Config file, then environment for anything the file leaves unset.
	str := func(key, env string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		} else if value := os.Getenv(env); value != "" {
			*dst = value
		}
	}
	str("data_file", "DATA_FILE", &cfg.DataFile)
	str("database_url", "DATABASE_URL", &cfg.DatabaseURL)
	str("source", "SOURCE", &cfg.Source)
	str("port", "PORT", &cfg.Port)
	str("server_url", "SALESBOARD_SERVER_URL", &cfg.ServerURL)

	var refresh, timeout, entries, origins string
	str("refresh_interval", "REFRESH_INTERVAL", &refresh)
	str("request_timeout", "REQUEST_TIMEOUT", &timeout)
	str("cache_entries", "CACHE_ENTRIES", &entries)
	str("allowed_origins", "ALLOWED_ORIGINS", &origins)

	// Flags last.
	set := func(value string, dst *string) {
		if value != "" {
			*dst = value
		}
	}
	set(o.DataFile, &cfg.DataFile)
	set(o.DatabaseURL, &cfg.DatabaseURL)
	set(o.Source, &cfg.Source)
	set(o.Port, &cfg.Port)
	set(o.ServerURL, &cfg.ServerURL)
	set(o.RefreshInterval, &refresh)

	var err error
	if refresh != "" {
		if cfg.RefreshInterval, err = parseDuration(refresh); err != nil {
			return nil, fmt.Errorf("invalid refresh_interval: %w", err)
		}
	}
	if timeout != "" {
		if cfg.RequestTimeout, err = parseDuration(timeout); err != nil {
			return nil, fmt.Errorf("invalid request_timeout: %w", err)
		}
	}
	if entries != "" {
		if cfg.CacheEntries, err = strconv.Atoi(strings.TrimSpace(entries)); err != nil {
			return nil, fmt.Errorf("invalid cache_entries: %w", err)
		}
	}
	if origins != "" {
		cfg.AllowedOrigins = parseAllowedOrigins(origins)
	}

	cfg.Source = strings.ToLower(strings.TrimSpace(cfg.Source))
	if cfg.Source == "" {
		cfg.Source = SourceCSV
		if cfg.DatabaseURL != "" && !v.IsSet("data_file") && os.Getenv("DATA_FILE") == "" && o.DataFile == "" {
			cfg.Source = SourcePostgres
		}
	}

	return cfg, nil
}

// Validate checks the configuration and reports the first problem.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return formatValidationError(validationErrors[0])
		}
		return err
	}
	return nil
}

func formatValidationError(fe validator.FieldError) error {
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Errorf("invalid config: %s is required", fe.Field())
	case "oneof":
		return fmt.Errorf("invalid config: %s must be one of %s, got %q", fe.Field(), fe.Param(), fe.Value())
	default:
		return fmt.Errorf("invalid config: %s failed %s validation (value %v)", fe.Field(), fe.Tag(), fe.Value())
	}
}

// parseDuration accepts Go durations and bare seconds.
func parseDuration(raw string) (time.Duration, error) {
	value := strings.TrimSpace(raw)
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(value)
}

// parseAllowedOrigins parses a comma-separated string into sanitized origins.
// Invalid entries are dropped.
func parseAllowedOrigins(originsStr string) []string {
	parts := strings.Split(originsStr, ",")
	origins := make([]string, 0, len(parts))

	for _, part := range parts {
		origin, err := SanitizeOrigin(part)
		if err != nil {
			continue
		}
		origins = append(origins, origin)
	}

	return origins
}
