// Package roster keeps the documents the directory server publishes to
// launchers: the team roster and the launcher configuration.
package roster

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/tidwall/jsonc"

	"github.com/cwmc/portable-launcher/internal/dependencies/clock"
	"github.com/cwmc/portable-launcher/internal/model"
	"github.com/cwmc/portable-launcher/internal/storage"
)

// historyLimit is how many revisions the roster view shows
const historyLimit = 20

// Service reads and replaces the published documents
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// View is everything the roster page renders
type View struct {
	Teams     *model.StoredTeams
	Config    *model.StoredConfig
	Revisions []model.Revision
}

// New creates a new roster Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger.With(slog.String("component", "roster")),
	}
}

// Teams returns the published team roster
func (s *Service) Teams(ctx context.Context) (model.TeamsDocument, error) {
	stored, err := s.storage.GetTeams(ctx)
	if err != nil {
		return model.TeamsDocument{}, err
	}
	return stored.Document, nil
}

// Config returns the published launcher configuration
func (s *Service) Config(ctx context.Context) (model.DirectoryConfig, error) {
	stored, err := s.storage.GetConfig(ctx)
	if err != nil {
		return model.DirectoryConfig{}, err
	}
	return stored.Document, nil
}

// PutTeams parses raw as a JSON or JSONC roster, validates it and publishes it
func (s *Service) PutTeams(ctx context.Context, raw []byte, actor string) (*model.StoredTeams, error) {
	var doc model.TeamsDocument
	if err := decode(raw, &doc); err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	revision := s.newRevision(model.DocumentTeams, actor)
	stored := &model.StoredTeams{
		Document:  doc,
		Revision:  revision.ID,
		UpdatedAt: revision.UpdatedAt,
		UpdatedBy: revision.UpdatedBy,
	}
	if err := s.storage.SaveTeams(ctx, stored); err != nil {
		return nil, fmt.Errorf("save teams: %w", err)
	}
	s.record(ctx, revision)

	s.logger.Info("teams published",
		slog.String("revision", revision.ID),
		slog.String("actor", actor),
		slog.Int("teams", len(doc.Teams)),
	)
	return stored, nil
}

// PutConfig parses raw as a JSON or JSONC launcher configuration, validates it and publishes it
func (s *Service) PutConfig(ctx context.Context, raw []byte, actor string) (*model.StoredConfig, error) {
	var doc model.DirectoryConfig
	if err := decode(raw, &doc); err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	revision := s.newRevision(model.DocumentConfig, actor)
	stored := &model.StoredConfig{
		Document:  doc,
		Revision:  revision.ID,
		UpdatedAt: revision.UpdatedAt,
		UpdatedBy: revision.UpdatedBy,
	}
	if err := s.storage.SaveConfig(ctx, stored); err != nil {
		return nil, fmt.Errorf("save config: %w", err)
	}
	s.record(ctx, revision)

	s.logger.Info("config published",
		slog.String("revision", revision.ID),
		slog.String("actor", actor),
		slog.Bool("use_modpack", doc.UseModpack),
		slog.Bool("wipe_on_start", doc.WipeOnStart),
	)
	return stored, nil
}

// Seed publishes the given files when the corresponding document is not stored yet.
// Empty paths are skipped.
func (s *Service) Seed(ctx context.Context, teamsPath, configPath string) error {
	if teamsPath != "" {
		if _, err := s.storage.GetTeams(ctx); errors.Is(err, model.ErrDocumentNotFound) {
			raw, err := os.ReadFile(teamsPath)
			if err != nil {
				return fmt.Errorf("read teams seed: %w", err)
			}
			if _, err := s.PutTeams(ctx, raw, "seed"); err != nil {
				return fmt.Errorf("seed %s: %w", teamsPath, err)
			}
		} else if err != nil {
			return err
		}
	}

	if configPath != "" {
		if _, err := s.storage.GetConfig(ctx); errors.Is(err, model.ErrDocumentNotFound) {
			raw, err := os.ReadFile(configPath)
			if err != nil {
				return fmt.Errorf("read config seed: %w", err)
			}
			if _, err := s.PutConfig(ctx, raw, "seed"); err != nil {
				return fmt.Errorf("seed %s: %w", configPath, err)
			}
		} else if err != nil {
			return err
		}
	}
	return nil
}

// View collects the roster page data. Missing documents are left nil.
func (s *Service) View(ctx context.Context) (*View, error) {
	view := &View{}

	teams, err := s.storage.GetTeams(ctx)
	switch {
	case err == nil:
		view.Teams = teams
	case !errors.Is(err, model.ErrDocumentNotFound):
		return nil, err
	}

	config, err := s.storage.GetConfig(ctx)
	switch {
	case err == nil:
		view.Config = config
	case !errors.Is(err, model.ErrDocumentNotFound):
		return nil, err
	}

	view.Revisions, err = s.storage.ListRevisions(ctx, historyLimit)
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Check reports whether the storage backend answers
func (s *Service) Check(ctx context.Context) error {
	if _, err := s.storage.GetConfig(ctx); err != nil && !errors.Is(err, model.ErrDocumentNotFound) {
		return err
	}
	return nil
}

func (s *Service) newRevision(document, actor string) model.Revision {
	return model.Revision{
		ID:        uuid.NewString(),
		Document:  document,
		UpdatedAt: s.clock.Now(),
		UpdatedBy: actor,
	}
}

// record appends to the history; the document is already published so failures are only logged
func (s *Service) record(ctx context.Context, revision model.Revision) {
	if err := s.storage.AppendRevision(ctx, revision); err != nil {
		s.logger.Warn("could not record revision",
			slog.String("revision", revision.ID),
			slog.String("error", err.Error()),
		)
	}
}

// decode strips JSONC comments and trailing commas, then decodes strictly
func decode(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", model.ErrInvalidDocument, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after document", model.ErrInvalidDocument)
	}
	return nil
}
