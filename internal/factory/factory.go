package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/cwmc/portable-launcher/internal/dependencies/clock"
	"github.com/cwmc/portable-launcher/internal/services/auth"
	"github.com/cwmc/portable-launcher/internal/services/roster"
	"github.com/cwmc/portable-launcher/internal/storage"
	"github.com/cwmc/portable-launcher/internal/storage/memory"
	redisstorage "github.com/cwmc/portable-launcher/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired directory server components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock clock.Clock

	// Services
	RosterService *roster.Service
	AuthService   *auth.Service

	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds the admin credentials (optional)
	// If zero value, defaults to auth.DefaultConfig() and uploads are disabled
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	var closers []io.Closer
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, fmt.Errorf("connect redis storage: %w", err)
		}
		store = redisStore
		closers = append(closers, redisStore)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory' or 'redis'", storageType)
	}

	app := newWithDependencies(store, clock.New(), cfg.AuthConfig, logger)
	app.closers = closers
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, authCfg auth.Config, logger *slog.Logger) *App {
	return &App{
		Storage:       store,
		Clock:         clk,
		RosterService: roster.New(store, clk, logger),
		AuthService:   auth.New(authCfg, logger),
	}
}

// Close releases storage connections
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
