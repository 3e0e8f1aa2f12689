// Package dirserver assembles the directory server that launchers fetch their
// team roster, configuration and content pack from.
package dirserver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/cwmc/portable-launcher/internal/api"
	"github.com/cwmc/portable-launcher/internal/factory"
	"github.com/cwmc/portable-launcher/internal/services/auth"
	redisstorage "github.com/cwmc/portable-launcher/internal/storage/redis"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "DIRSERVER_"

// Config is the directory server configuration
type Config struct {
	Server  api.ServerConfig `yaml:"server" envPrefix:"SERVER_"`
	Storage StorageConfig    `yaml:"storage" envPrefix:"STORAGE_"`
	Admin   auth.Config      `yaml:"admin" envPrefix:"ADMIN_"`
	Seed    SeedConfig       `yaml:"seed" envPrefix:"SEED_"`

	// ContentDir is served at the server root; content packs go here
	ContentDir string `yaml:"content_dir" env:"CONTENT_DIR"`
	// Title heads the roster page
	Title    string `yaml:"title" env:"TITLE"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
}

// StorageConfig selects and configures the document storage backend
type StorageConfig struct {
	Type  string              `yaml:"type" env:"TYPE"`
	Redis redisstorage.Config `yaml:"redis" envPrefix:"REDIS_"`
}

// SeedConfig names documents published at startup when storage holds none
type SeedConfig struct {
	Teams  string `yaml:"teams" env:"TEAMS"`
	Config string `yaml:"config" env:"CONFIG"`
}

// DefaultConfig returns the configuration used when nothing overrides it
func DefaultConfig() Config {
	return Config{
		Server: api.DefaultServerConfig(),
		Storage: StorageConfig{
			Type:  factory.StorageTypeMemory,
			Redis: redisstorage.DefaultConfig(),
		},
		Admin:    auth.DefaultConfig(),
		Title:    "Event roster",
		LogLevel: "info",
	}
}

// LoadConfig layers the YAML file at path (optional) and then DIRSERVER_*
// environment variables over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values the server cannot start without
func (c Config) Validate() error {
	switch c.Storage.Type {
	case factory.StorageTypeMemory, factory.StorageTypeRedis:
	default:
		return fmt.Errorf("storage.type must be %q or %q, got %q", factory.StorageTypeMemory, factory.StorageTypeRedis, c.Storage.Type)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.ContentDir != "" {
		info, err := os.Stat(c.ContentDir)
		if err != nil {
			return fmt.Errorf("content_dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("content_dir %s is not a directory", c.ContentDir)
		}
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// FactoryConfig converts the storage and admin settings for factory.New
func (c Config) FactoryConfig(logger *slog.Logger) factory.Config {
	cfg := factory.Config{
		AuthConfig:  c.Admin,
		Logger:      logger,
		StorageType: c.Storage.Type,
	}
	if c.Storage.Type == factory.StorageTypeRedis {
		redis := c.Storage.Redis
		cfg.RedisConfig = &redis
	}
	return cfg
}
