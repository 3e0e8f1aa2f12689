package storage

import (
	"context"

	"github.com/cwmc/portable-launcher/internal/model"
)

// Storage persists the directory server's documents
type Storage interface {
	// Team roster
	GetTeams(ctx context.Context) (*model.StoredTeams, error)
	SaveTeams(ctx context.Context, teams *model.StoredTeams) error

	// Launcher configuration
	GetConfig(ctx context.Context) (*model.StoredConfig, error)
	SaveConfig(ctx context.Context, config *model.StoredConfig) error

	// Upload history, newest first
	AppendRevision(ctx context.Context, revision model.Revision) error
	ListRevisions(ctx context.Context, limit int) ([]model.Revision, error)
}
