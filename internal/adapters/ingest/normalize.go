package ingest

import (
	"strings"

	"github.com/okian/nbaelo/internal/domain/model"
)

// Normalizer maps alternate team abbreviations to their canonical id.
type Normalizer map[string]string

// DefaultAliases returns the aliases used by the public score feeds.
func DefaultAliases() Normalizer {
	return Normalizer{
		"BKN": "BRK",
		"PHX": "PHO",
	}
}

// Team returns the canonical id for team.
func (n Normalizer) Team(team string) string {
	team = strings.ToUpper(strings.TrimSpace(team))
	if c, ok := n[team]; ok {
		return c
	}
	return team
}

// Apply rewrites both team ids of every game in place.
func (n Normalizer) Apply(games []*model.Game) {
	for _, g := range games {
		g.TeamHome = n.Team(g.TeamHome)
		g.TeamAway = n.Team(g.TeamAway)
	}
}
