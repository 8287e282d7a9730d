// Package config loads database settings from the environment.
//
// Variables use the PGCONNECT_ prefix with underscore nesting, e.g.
// PGCONNECT_DATABASE_HOST maps to Config.Database.Host. A .env file in the
// working directory is picked up automatically.
package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "PGCONNECT_"

// Config is the root configuration object.
type Config struct {
	Database DatabaseConfig `koanf:"database" validate:"required"`
	Log      LogConfig      `koanf:"log"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `koanf:"host" validate:"required"`
	Port     int    `koanf:"port" validate:"required"`
	User     string `koanf:"user" validate:"required"`
	Password string `koanf:"password"`
	Name     string `koanf:"name" validate:"required"`
	SSLMode  string `koanf:"sslmode"`
}

// LogConfig controls CLI logging.
type LogConfig struct {
	Level string `koanf:"level"`
}

// URI builds a postgres:// connection URI. The password is URL-escaped so
// special characters cannot break the DSN structure.
func (d DatabaseConfig) URI() string {
	hostPort := net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	userInfo := d.User
	if d.Password != "" {
		userInfo += ":" + url.QueryEscape(d.Password)
	}
	return fmt.Sprintf("postgres://%s@%s/%s?sslmode=%s", userInfo, hostPort, d.Name, sslMode)
}

// Load reads, unmarshals and validates the configuration.
func Load() (*Config, error) {
	k := koanf.New(".")

	// PGCONNECT_DATABASE_HOST -> database.host
	provider := env.Provider(envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.Replace(key, "_", ".", 1)
	})
	if err := k.Load(provider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}
