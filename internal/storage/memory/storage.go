package memory

import (
	"context"
	"sync"

	"github.com/cwmc/portable-launcher/internal/model"
	"github.com/cwmc/portable-launcher/internal/storage"
)

// maxRevisions bounds the in-memory upload history
const maxRevisions = 100

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	teams     *model.StoredTeams
	config    *model.StoredConfig
	revisions []model.Revision
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) GetTeams(_ context.Context) (*model.StoredTeams, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.teams == nil {
		return nil, model.ErrDocumentNotFound
	}
	teams := *s.teams
	teams.Document.Teams = cloneTeams(s.teams.Document.Teams)
	return &teams, nil
}

func (s *Storage) SaveTeams(_ context.Context, teams *model.StoredTeams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *teams
	stored.Document.Teams = cloneTeams(teams.Document.Teams)
	s.teams = &stored
	return nil
}

func (s *Storage) GetConfig(_ context.Context) (*model.StoredConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.config == nil {
		return nil, model.ErrDocumentNotFound
	}
	config := *s.config
	return &config, nil
}

func (s *Storage) SaveConfig(_ context.Context, config *model.StoredConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *config
	s.config = &stored
	return nil
}

func (s *Storage) AppendRevision(_ context.Context, revision model.Revision) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.revisions = append([]model.Revision{revision}, s.revisions...)
	if len(s.revisions) > maxRevisions {
		s.revisions = s.revisions[:maxRevisions]
	}
	return nil
}

func (s *Storage) ListRevisions(_ context.Context, limit int) ([]model.Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.revisions) {
		limit = len(s.revisions)
	}
	out := make([]model.Revision, limit)
	copy(out, s.revisions[:limit])
	return out, nil
}

// cloneTeams copies teams so callers cannot mutate stored member lists
func cloneTeams(teams []model.Team) []model.Team {
	if teams == nil {
		return nil
	}
	out := make([]model.Team, len(teams))
	for i, t := range teams {
		t.Members = append([]string(nil), t.Members...)
		out[i] = t
	}
	return out
}
