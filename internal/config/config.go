package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Port            string        `mapstructure:"port"`
	DatabaseDSN     string        `mapstructure:"database_dsn"`     // Raw table store, in-memory by default
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"` // Per request
	CacheEntries    int           `mapstructure:"cache_entries"`    // Parsed upload pairs kept in memory
	CoordinatesFile string        `mapstructure:"coordinates_file"` // Empty uses the embedded table
	LogLevel        string        `mapstructure:"log_level"`
	GinMode         string        `mapstructure:"gin_mode"`
	RateLimit       int           `mapstructure:"rate_limit"` // Requests per window per client IP, 0 disables
	RateWindow      time.Duration `mapstructure:"rate_window"`
}

// Load 加载配置
// Precedence: env (EPIDASH_*) > config file > defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("EPIDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", ":8080")
	v.SetDefault("database_dsn", ":memory:")
	v.SetDefault("max_upload_bytes", 64<<20)
	v.SetDefault("cache_entries", 16)
	v.SetDefault("coordinates_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("rate_limit", 120)
	v.SetDefault("rate_window", time.Minute)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		v.SetConfigName("epidash")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("config: port must not be empty")
	}
	if !strings.Contains(c.Port, ":") {
		c.Port = ":" + c.Port
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("config: max_upload_bytes must be positive, got %d", c.MaxUploadBytes)
	}
	if c.CacheEntries <= 0 {
		return fmt.Errorf("config: cache_entries must be positive, got %d", c.CacheEntries)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("config: rate_limit must not be negative, got %d", c.RateLimit)
	}
	if c.RateLimit > 0 && c.RateWindow <= 0 {
		return fmt.Errorf("config: rate_window must be positive when rate_limit is set")
	}
	return nil
}
