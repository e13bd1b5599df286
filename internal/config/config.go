package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMinConns  int32  `envconfig:"GUIA_DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"GUIA_DB_MAX_CONNS" default:"8"`

	// DefaultLanguage is the fallback language applied by the HTTP boundary
	// when a requested language has no translation row.
	DefaultLanguage string `envconfig:"DEFAULT_LANGUAGE" default:"pt"`

	HTTPHost string `envconfig:"GUIA_HTTP_HOST" default:"0.0.0.0"`
	HTTPPort int    `envconfig:"GUIA_HTTP_PORT" default:"8090"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DBMinConns < 0 {
		return fmt.Errorf("GUIA_DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("GUIA_DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("GUIA_DB_MIN_CONNS (%d) cannot exceed GUIA_DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if strings.TrimSpace(c.DefaultLanguage) == "" {
		return fmt.Errorf("DEFAULT_LANGUAGE is required")
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("GUIA_HTTP_PORT must be between 1 and 65535")
	}
	return nil
}
