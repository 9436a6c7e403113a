package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/siherrmann/catalog/model"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by Load.
// Database settings use CATALOG_DB_* and are read by helper.NewDatabaseConfiguration.
const EnvPrefix = "CATALOG"

// Config holds the application settings.
type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	Search  SearchConfig  `mapstructure:"search"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// HTTPConfig holds the HTTP server settings.
type HTTPConfig struct {
	ListenAddr      string `mapstructure:"listen_addr"`
	ReadTimeoutSec  int    `mapstructure:"read_timeout_sec"`
	WriteTimeoutSec int    `mapstructure:"write_timeout_sec"`
	ShutdownSec     int    `mapstructure:"shutdown_sec"`
}

// SearchConfig holds the resolver limits.
type SearchConfig struct {
	DefaultLimit        int     `mapstructure:"default_limit"`
	AggregateLimit      int     `mapstructure:"aggregate_limit"`
	MaxLimit            int     `mapstructure:"max_limit"`
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	DefaultType         string  `mapstructure:"default_type"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads an optional .env file, an optional config file and CATALOG_*
// environment variables on top of the defaults. An empty configFile looks
// for catalog.yaml in the working directory.
func Load(configFile string) (*Config, error) {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	v := viper.New()

	defaults := model.DefaultSearchConfig()
	v.SetDefault("http.listen_addr", ":8080")
	v.SetDefault("http.read_timeout_sec", 10)
	v.SetDefault("http.write_timeout_sec", 30)
	v.SetDefault("http.shutdown_sec", 10)

	v.SetDefault("search.default_limit", defaults.DefaultLimit)
	v.SetDefault("search.aggregate_limit", defaults.AggregateLimit)
	v.SetDefault("search.max_limit", defaults.MaxLimit)
	v.SetDefault("search.similarity_threshold", defaults.SimilarityThreshold)
	v.SetDefault("search.default_type", string(defaults.DefaultType))

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "pretty")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("catalog")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// CATALOG_HTTP_LISTEN_ADDR, CATALOG_SEARCH_MAX_LIMIT, ...
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are set and consistent.
func (c *Config) Validate() error {
	if c.HTTP.ListenAddr == "" {
		return fmt.Errorf("http.listen_addr must not be empty")
	}
	if c.Search.DefaultLimit <= 0 || c.Search.AggregateLimit <= 0 || c.Search.MaxLimit <= 0 {
		return fmt.Errorf("search limits must be greater than 0")
	}
	if c.Search.DefaultLimit > c.Search.MaxLimit || c.Search.AggregateLimit > c.Search.MaxLimit {
		return fmt.Errorf("search.default_limit and search.aggregate_limit must not exceed search.max_limit (%d)", c.Search.MaxLimit)
	}
	if c.Search.SimilarityThreshold <= 0 || c.Search.SimilarityThreshold > 1 {
		return fmt.Errorf("search.similarity_threshold must be in (0, 1]")
	}
	if _, err := model.ParseEntityType(c.Search.DefaultType); err != nil {
		return fmt.Errorf("search.default_type: %w", err)
	}
	return nil
}

// SearchConfig returns the resolver configuration.
func (c *Config) SearchConfig() model.SearchConfig {
	defaultType, _ := model.ParseEntityType(c.Search.DefaultType)
	return model.SearchConfig{
		DefaultLimit:        c.Search.DefaultLimit,
		AggregateLimit:      c.Search.AggregateLimit,
		MaxLimit:            c.Search.MaxLimit,
		SimilarityThreshold: c.Search.SimilarityThreshold,
		DefaultType:         defaultType,
	}
}

// ReadTimeout returns the HTTP read timeout.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.HTTP.ReadTimeoutSec) * time.Second
}

// WriteTimeout returns the HTTP write timeout.
func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.HTTP.WriteTimeoutSec) * time.Second
}

// ShutdownTimeout returns the graceful shutdown timeout.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.HTTP.ShutdownSec) * time.Second
}
