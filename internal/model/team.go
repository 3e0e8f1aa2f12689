package model

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// teamIDPattern matches a numeric team id embedded in a label, e.g. "Red (5)"
var teamIDPattern = regexp.MustCompile(`\((\d+)\)`)

// Team is one entry of the directory service's team roster
type Team struct {
	Name       string   `json:"name"`
	Members    []string `json:"members"`
	ServerPort int      `json:"server_port"`
}

// HasMember reports whether displayName is listed exactly in the team
func (t Team) HasMember(displayName string) bool {
	return slices.Contains(t.Members, displayName)
}

// ID returns the first parenthesized numeric id in the team label
func (t Team) ID() (int, bool) {
	m := teamIDPattern.FindStringSubmatch(t.Name)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return id, true
}

// HasID reports whether the label embeds id in parenthesized form
func (t Team) HasID(id int) bool {
	return strings.Contains(t.Name, fmt.Sprintf("(%d)", id))
}

// TeamsDocument is the body of teams.json
type TeamsDocument struct {
	Teams []Team `json:"teams"`
}

// DirectoryConfig is the body of args.json. It is fetched once per run.
type DirectoryConfig struct {
	UseModpack  bool   `json:"useModpack"`
	WipeOnStart bool   `json:"wipeOnStart"`
	ModpackURL  string `json:"modpackUrl"`
}

// Resolution is the outcome of resolving a participant against the directory
type Resolution struct {
	Team       Team
	ServerPort int
	Host       string
	Config     DirectoryConfig
}
