package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cwmc/portable-launcher/internal/model"
	"github.com/cwmc/portable-launcher/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	defaults := DefaultConfig()
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = defaults.KeyPrefix
	}
	if cfg.MaxRevisions <= 0 {
		cfg.MaxRevisions = defaults.MaxRevisions
	}
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Document operations

func (s *Storage) GetTeams(ctx context.Context) (*model.StoredTeams, error) {
	var teams model.StoredTeams
	if err := s.getJSON(ctx, teamsKey(s.cfg.KeyPrefix), &teams); err != nil {
		return nil, err
	}
	return &teams, nil
}

func (s *Storage) SaveTeams(ctx context.Context, teams *model.StoredTeams) error {
	return s.setJSON(ctx, teamsKey(s.cfg.KeyPrefix), teams)
}

func (s *Storage) GetConfig(ctx context.Context) (*model.StoredConfig, error) {
	var config model.StoredConfig
	if err := s.getJSON(ctx, configKey(s.cfg.KeyPrefix), &config); err != nil {
		return nil, err
	}
	return &config, nil
}

func (s *Storage) SaveConfig(ctx context.Context, config *model.StoredConfig) error {
	return s.setJSON(ctx, configKey(s.cfg.KeyPrefix), config)
}

// Revision operations

func (s *Storage) AppendRevision(ctx context.Context, revision model.Revision) error {
	data, err := json.Marshal(revision)
	if err != nil {
		return err
	}

	key := revisionsKey(s.cfg.KeyPrefix)
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, int64(s.cfg.MaxRevisions-1))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListRevisions(ctx context.Context, limit int) ([]model.Revision, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	items, err := s.client.LRange(ctx, revisionsKey(s.cfg.KeyPrefix), 0, stop).Result()
	if err != nil {
		return nil, err
	}

	revisions := make([]model.Revision, 0, len(items))
	for _, item := range items {
		var revision model.Revision
		if err := json.Unmarshal([]byte(item), &revision); err != nil {
			return nil, err
		}
		revisions = append(revisions, revision)
	}
	return revisions, nil
}

func (s *Storage) getJSON(ctx context.Context, key string, v any) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.ErrDocumentNotFound
		}
		return err
	}
	return json.Unmarshal(data, v)
}

func (s *Storage) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, 0).Err()
}
