package directory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cwmc/portable-launcher/internal/model"
)

// Resolver finds the caller's team and server endpoint in the directory
type Resolver struct {
	client *Client
	logger *slog.Logger
}

// NewResolver creates a new Resolver
func NewResolver(client *Client, logger *slog.Logger) *Resolver {
	return &Resolver{
		client: client,
		logger: logger.With(slog.String("component", "directory-resolver")),
	}
}

// Resolve fetches the roster and run configuration and matches displayName to a team.
// teamOverride is only consulted when no team lists displayName as a member.
func (r *Resolver) Resolve(ctx context.Context, displayName string, teamOverride *int) (model.Resolution, error) {
	teams, err := r.client.FetchTeams(ctx)
	if err != nil {
		return model.Resolution{}, err
	}

	cfg, err := r.client.FetchConfig(ctx)
	if err != nil {
		return model.Resolution{}, err
	}

	r.logger.Debug("directory fetched",
		slog.Int("teams", len(teams.Teams)),
		slog.Bool("use_modpack", cfg.UseModpack),
		slog.Bool("wipe_on_start", cfg.WipeOnStart),
	)

	team, err := MatchTeam(teams.Teams, displayName, teamOverride)
	if err != nil {
		return model.Resolution{}, err
	}

	r.logger.Debug("team resolved",
		slog.String("team", team.Name),
		slog.Int("server_port", team.ServerPort),
	)

	return model.Resolution{
		Team:       team,
		ServerPort: team.ServerPort,
		Host:       r.client.Host(),
		Config:     cfg,
	}, nil
}

// MatchTeam picks the team listing displayName as a member, or failing that the team
// whose label carries the override id. Membership always wins over the override.
func MatchTeam(teams []model.Team, displayName string, teamOverride *int) (model.Team, error) {
	for _, team := range teams {
		if team.HasMember(displayName) {
			return team, nil
		}
	}

	if teamOverride == nil {
		return model.Team{}, fmt.Errorf("%w: %q is not a member of any team", model.ErrTeamNotFound, displayName)
	}

	for _, team := range teams {
		if team.HasID(*teamOverride) {
			return team, nil
		}
	}

	return model.Team{}, fmt.Errorf("%w: no team with id %d", model.ErrTeamNotFound, *teamOverride)
}
