package replay

import (
	"sort"
	"time"

	"github.com/okian/nbaelo/internal/domain/model"
)

// Bootstrap seeds a rating for every team that appears after cutoff from
// the post-game rating of its most recent rated game anywhere in history.
// All teams without a rated game are reported together.
func Bootstrap(games []*model.Game, cutoff time.Time) (model.Snapshot, error) {
	cut := model.Day(cutoff)

	teams := make(map[string]struct{})
	for _, g := range games {
		if model.Day(g.Date).After(cut) {
			if g.TeamHome != "" {
				teams[g.TeamHome] = struct{}{}
			}
			if g.TeamAway != "" {
				teams[g.TeamAway] = struct{}{}
			}
		}
	}

	snap := model.Snapshot{
		Ratings: make(model.Ratings, len(teams)),
		Seen:    make(map[string]time.Time, len(teams)),
	}
	for _, g := range games {
		if !g.Rated() {
			continue
		}
		day := model.Day(g.Date)
		for _, team := range [2]string{g.TeamHome, g.TeamAway} {
			if _, ok := teams[team]; !ok {
				continue
			}
			// Later records win ties so input order decides same-day duplicates.
			if last, ok := snap.Seen[team]; ok && day.Before(last) {
				continue
			}
			r, _ := g.PostRating(team)
			snap.Ratings[team] = r
			snap.Seen[team] = day
		}
	}

	var missing []string
	for team := range teams {
		if _, ok := snap.Ratings[team]; !ok {
			missing = append(missing, team)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return model.Snapshot{}, &MissingHistoryError{Teams: missing}
	}

	for _, d := range snap.Seen {
		if d.After(snap.MaxDate) {
			snap.MaxDate = d
		}
	}
	return snap, nil
}
