package model

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// Document names served by the directory server
const (
	DocumentTeams  = "teams.json"
	DocumentConfig = "args.json"
)

// StoredTeams is the team roster as kept by the directory server
type StoredTeams struct {
	Document  TeamsDocument `json:"document"`
	Revision  string        `json:"revision"`
	UpdatedAt time.Time     `json:"updated_at"`
	UpdatedBy string        `json:"updated_by"`
}

// StoredConfig is the launcher configuration as kept by the directory server
type StoredConfig struct {
	Document  DirectoryConfig `json:"document"`
	Revision  string          `json:"revision"`
	UpdatedAt time.Time       `json:"updated_at"`
	UpdatedBy string          `json:"updated_by"`
}

// Revision records one accepted document upload
type Revision struct {
	ID        string    `json:"id"`
	Document  string    `json:"document"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy string    `json:"updated_by"`
}

// Validate checks the roster before it is accepted by the directory server.
// Launchers match on exact names, so names must be unique and non-empty.
func (d TeamsDocument) Validate() error {
	names := make(map[string]struct{}, len(d.Teams))
	ids := make(map[int]string, len(d.Teams))
	for i, team := range d.Teams {
		if strings.TrimSpace(team.Name) == "" {
			return fmt.Errorf("%w: team %d has no name", ErrInvalidDocument, i)
		}
		if _, dup := names[team.Name]; dup {
			return fmt.Errorf("%w: duplicate team name %q", ErrInvalidDocument, team.Name)
		}
		names[team.Name] = struct{}{}

		if team.ServerPort < 1 || team.ServerPort > 65535 {
			return fmt.Errorf("%w: team %q has invalid server port %d", ErrInvalidDocument, team.Name, team.ServerPort)
		}
		if id, ok := team.ID(); ok {
			if other, dup := ids[id]; dup {
				return fmt.Errorf("%w: teams %q and %q share id %d", ErrInvalidDocument, other, team.Name, id)
			}
			ids[id] = team.Name
		}
	}
	return nil
}

// Validate checks that the content pack path stays under the server root
func (c DirectoryConfig) Validate() error {
	if !c.UseModpack {
		return nil
	}
	if c.ModpackURL == "" {
		return fmt.Errorf("%w: useModpack requires modpackUrl", ErrInvalidDocument)
	}
	clean := path.Clean("/" + c.ModpackURL)
	if strings.Contains(c.ModpackURL, "..") || clean == "/" {
		return fmt.Errorf("%w: modpackUrl %q must be a file path on the server", ErrInvalidDocument, c.ModpackURL)
	}
	return nil
}
