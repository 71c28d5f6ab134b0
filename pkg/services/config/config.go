package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type UpstreamConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// Config holds all service settings. Values come from defaults, an
// optional YAML file, and GBB_-prefixed environment variables, in
// ascending precedence.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Cache    CacheConfig    `mapstructure:"cache"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads configuration from the optional file at path plus the
// environment, applying defaults where unset.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("upstream.base_url", "https://gbbwa.aemo.com.au/data")
	v.SetDefault("upstream.timeout", 40*time.Second)
	v.SetDefault("cache.ttl", 5*time.Minute)

	v.SetEnvPrefix("GBB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Server.Port <= 0 {
		return nil, fmt.Errorf("server.port must be positive, got %d", cfg.Server.Port)
	}
	if cfg.Upstream.BaseURL == "" {
		return nil, fmt.Errorf("upstream.base_url is required")
	}
	if cfg.Upstream.Timeout <= 0 {
		return nil, fmt.Errorf("upstream.timeout must be positive")
	}
	if cfg.Cache.TTL <= 0 {
		return nil, fmt.Errorf("cache.ttl must be positive")
	}

	return &cfg, nil
}
