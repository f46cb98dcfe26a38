// Package model contains domain models passed between layers.
package model

import "time"

// Game is one completed contest between two teams.
// Rating fields are nil until the game has been rated.
type Game struct {
	GameID   string    // optional upstream identifier
	Date     time.Time // calendar date the game was played
	TeamHome string    // canonical home team id, e.g. "BOS"
	TeamAway string    // canonical away team id
	PtsHome  int
	PtsAway  int

	EloIHome *float64 // pre-game home rating
	EloIAway *float64 // pre-game away rating
	EloNHome *float64 // post-game home rating
	EloNAway *float64 // post-game away rating
}

// Rated reports whether all four rating fields are present.
func (g *Game) Rated() bool {
	return g.EloIHome != nil && g.EloIAway != nil && g.EloNHome != nil && g.EloNAway != nil
}

// SetRatings writes the pre- and post-game ratings for both sides.
func (g *Game) SetRatings(preHome, preAway, postHome, postAway float64) {
	g.EloIHome = Float(preHome)
	g.EloIAway = Float(preAway)
	g.EloNHome = Float(postHome)
	g.EloNAway = Float(postAway)
}

// PostRating returns the post-game rating of team in this game.
// ok is false when the team did not play or the game is unrated.
func (g *Game) PostRating(team string) (rating float64, ok bool) {
	switch {
	case !g.Rated():
		return 0, false
	case g.TeamHome == team:
		return *g.EloNHome, true
	case g.TeamAway == team:
		return *g.EloNAway, true
	}
	return 0, false
}

// Key identifies a game independently of its upstream id.
func (g *Game) Key() string {
	return Day(g.Date).Format(DateLayout) + "|" + g.TeamHome + "|" + g.TeamAway
}

// Ratings maps team id to its current rating.
type Ratings map[string]float64

// Clone returns a copy of the mapping.
func (r Ratings) Clone() Ratings {
	out := make(Ratings, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Snapshot is the rating mapping derived from history plus the latest
// date that contributed a complete set of rating fields.
type Snapshot struct {
	Ratings Ratings
	MaxDate time.Time
	// Seen holds the date of each team's seeding game.
	Seen map[string]time.Time
}

// DateLayout is the calendar date format used across storage and config.
const DateLayout = "2006-01-02"

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Day truncates t to its calendar date in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
