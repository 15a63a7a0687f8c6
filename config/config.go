// Package config loads bridge configuration from an optional config.yml,
// a .env file, and BRIDGE_* environment variables, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/prajwal-kadam12/ReqGen/logger"
)

// Config is the full bridge configuration.
type Config struct {
	// Endpoint is the configured backend address. Empty selects the default
	// loopback backend in direct mode.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Host is the listen address of the HTTP surface.
	Host string `yaml:"host" mapstructure:"host"`
	// Port is the listen port of the HTTP surface.
	Port int `yaml:"port" mapstructure:"port"`
	// RequestTimeout is the wait budget for one backend request.
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
	// Logging configures the structured logger.
	Logging logger.Config `yaml:"logging" mapstructure:"logging"`
}

// ApplyDefaults applies default values.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 300 * time.Second
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be in 1..65535 (got: %d)", c.Port)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive (got: %s)", c.RequestTimeout)
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads configuration. A missing config file is not an error; env
// variables alone are enough.
func Load() (*Config, error) {
	// Best effort: a .env file is optional.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("BRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults registered so AutomaticEnv picks the keys up.
	v.SetDefault("endpoint", "")
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8080)
	v.SetDefault("request_timeout", "300s")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
