package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"

	"github.com/cwmc/portable-launcher/internal/services/launch"
)

const (
	// InstanceDirName is created under the app data root
	InstanceDirName = ".cwmc"
	// StagingDirName is created under the temp root
	StagingDirName = "cwmc"
)

// Config holds launcher configuration. Defaults come from DefaultConfig, then the
// environment, then command-line flags.
type Config struct {
	Master      string `env:"CWMC_MASTER"`
	Team        *int   `env:"CWMC_TEAM"`
	Debug       bool   `env:"CWMC_DEBUG"`
	Delete      bool
	IDToken     string `env:"CWMC_ID_TOKEN"`
	TokenFile   string `env:"CWMC_TOKEN_FILE"`
	Lang        string `env:"CWMC_LANG"`
	Runtime     string `env:"CWMC_RUNTIME"`
	GameVersion string `env:"CWMC_GAME_VERSION"`
	AppData     string `env:"APPDATA"`
	DataDir     string `env:"CWMC_DATA_DIR"`
	TempDir     string `env:"CWMC_TEMP_DIR"`
	DryRun      bool
	NoPause     bool `env:"CWMC_NO_PAUSE"`

	// Debug claims bypass the ID token when all three are set
	Name  string
	Email string
	OID   string
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		Master:      "localhost",
		TokenFile:   defaultTokenFile(),
		Runtime:     launch.DefaultCommand,
		GameVersion: launch.DefaultGameVersion,
	}
}

// LoadConfig returns the defaults overlaid with the environment
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// InstancePath returns <app data root>/.cwmc. The root is --data-dir, then
// APPDATA, then the user config directory.
func (c *Config) InstancePath() (string, error) {
	root := c.DataDir
	if root == "" {
		root = c.AppData
	}
	if root == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("locate app data directory: %w", err)
		}
		root = dir
	}
	return filepath.Join(root, InstanceDirName), nil
}

// StagingPath returns <temp root>/cwmc
func (c *Config) StagingPath() string {
	root := c.TempDir
	if root == "" {
		root = os.TempDir()
	}
	return filepath.Join(root, StagingDirName)
}

// HasDebugClaims reports whether identity claims were given directly
func (c *Config) HasDebugClaims() bool {
	return c.Name != "" && c.Email != "" && c.OID != ""
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(InstanceDirName, "id_token")
	}
	return filepath.Join(home, InstanceDirName, "id_token")
}
