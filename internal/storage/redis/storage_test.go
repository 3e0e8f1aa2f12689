package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/cwmc/portable-launcher/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.MaxRevisions = 3

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// Teams tests

func (s *StorageSuite) TestGetTeamsNotFound() {
	_, err := s.storage.GetTeams(s.ctx)
	s.ErrorIs(err, model.ErrDocumentNotFound)
}

func (s *StorageSuite) TestSaveAndGetTeams() {
	teams := &model.StoredTeams{
		Document: model.TeamsDocument{Teams: []model.Team{
			{Name: "Red (1)", Members: []string{"Alice", "Bob"}, ServerPort: 25566},
			{Name: "Blue (2)", Members: []string{}, ServerPort: 25567},
		}},
		Revision:  "rev-1",
		UpdatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		UpdatedBy: "admin",
	}
	s.Require().NoError(s.storage.SaveTeams(s.ctx, teams))

	got, err := s.storage.GetTeams(s.ctx)
	s.Require().NoError(err)
	s.Equal(teams.Document, got.Document)
	s.Equal("rev-1", got.Revision)
	s.True(teams.UpdatedAt.Equal(got.UpdatedAt))
}

func (s *StorageSuite) TestTeamsKeyUsesPrefix() {
	s.Require().NoError(s.storage.SaveTeams(s.ctx, &model.StoredTeams{}))
	s.True(s.mini.Exists("cwmc:doc:teams"))
}

// Config tests

func (s *StorageSuite) TestGetConfigNotFound() {
	_, err := s.storage.GetConfig(s.ctx)
	s.ErrorIs(err, model.ErrDocumentNotFound)
}

func (s *StorageSuite) TestSaveAndGetConfig() {
	config := &model.StoredConfig{
		Document: model.DirectoryConfig{UseModpack: true, WipeOnStart: true, ModpackURL: "pack.zip"},
		Revision: "rev-9",
	}
	s.Require().NoError(s.storage.SaveConfig(s.ctx, config))

	got, err := s.storage.GetConfig(s.ctx)
	s.Require().NoError(err)
	s.Equal(config.Document, got.Document)
	s.Equal("rev-9", got.Revision)
}

func (s *StorageSuite) TestCorruptDocument() {
	s.Require().NoError(s.mini.Set("cwmc:doc:config", "{not json"))

	_, err := s.storage.GetConfig(s.ctx)
	s.Error(err)
	s.NotErrorIs(err, model.ErrDocumentNotFound)
}

// Revision tests

func (s *StorageSuite) TestRevisionsTrimmedNewestFirst() {
	for i := range 5 {
		s.Require().NoError(s.storage.AppendRevision(s.ctx, model.Revision{
			ID:       fmt.Sprintf("rev-%d", i),
			Document: model.DocumentTeams,
		}))
	}

	all, err := s.storage.ListRevisions(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal("rev-4", all[0].ID)
	s.Equal("rev-2", all[2].ID)

	one, err := s.storage.ListRevisions(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(one, 1)
	s.Equal(model.DocumentTeams, one[0].Document)
}

func (s *StorageSuite) TestListRevisionsEmpty() {
	revisions, err := s.storage.ListRevisions(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(revisions)
}
