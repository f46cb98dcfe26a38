// Package replay rebuilds team ratings by walking game history season by
// season, rating any game that has not been rated yet.
//
// A replay is single-threaded and owns the rating mapping it builds; run
// independent replays concurrently if needed, never one replay in parallel.
package replay

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/okian/nbaelo/internal/domain/model"
	"github.com/okian/nbaelo/internal/domain/rating"
	"github.com/okian/nbaelo/internal/domain/season"
	"github.com/okian/nbaelo/pkg/logger"
)

// State is the engine's position in a replay.
type State string

// Replay states.
const (
	StateBootstrapping    State = "bootstrapping"
	StateInSeason         State = "in_season"
	StateSeasonTransition State = "season_transition"
	StateDone             State = "done"
)

// OffSeason marks a warning that is not tied to a season.
const OffSeason = -1

// DefaultCutoff is the date after which appearances define the team set.
var DefaultCutoff = time.Date(2016, time.January, 1, 0, 0, 0, 0, time.UTC)

// Warning reports a problem that stopped part of a replay.
type Warning struct {
	Season int           // index into the schedule, or OffSeason
	Range  season.Season // zero for OffSeason
	Err    error
}

func (w Warning) String() string {
	if w.Season == OffSeason {
		return fmt.Sprintf("off-season: %v", w.Err)
	}
	return fmt.Sprintf("season %d (%s): %v", w.Season, w.Range, w.Err)
}

// Result is the outcome of one replay. Games is the input collection with
// rating fields filled in.
type Result struct {
	Games       []*model.Game
	Ratings     model.Ratings
	Snapshot    model.Snapshot
	Warnings    []Warning
	Rated       int // games rated in this run
	Transitions int // season boundaries crossed in this run
}

// Engine replays game history. The zero value is not usable; call New.
type Engine struct {
	cutoff time.Time
	logger logger.Logger
}

// New creates an engine with configuration options.
func New(opts ...Option) *Engine {
	e := &Engine{
		cutoff: DefaultCutoff,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Replay rates every unrated game that falls inside a season of schedule,
// in date order, mutating games in place. When inSeason is set the first
// season with unrated games is treated as already under way and no
// transition is applied at its boundary.
//
// A boundary is crossed for a team only when the season starts after that
// team's seeding game, so boundaries already reflected in stored ratings
// are never applied twice. A malformed record stops the rest of its season
// and is reported in Result.Warnings; other seasons still run.
func (e *Engine) Replay(ctx context.Context, games []*model.Game, schedule season.Schedule, inSeason bool) (*Result, error) {
	if err := schedule.Validate(); err != nil {
		return nil, err
	}

	e.enter(ctx, StateBootstrapping)
	snap, err := Bootstrap(games, e.cutoff)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	e.logger.Info(ctx, "ratings bootstrapped",
		logger.Int("teams", len(snap.Ratings)),
		logger.String("maxDate", snap.MaxDate.Format(model.DateLayout)),
	)

	res := &Result{
		Games:    games,
		Ratings:  snap.Ratings.Clone(),
		Snapshot: snap,
	}

	bySeason := partition(games, schedule)
	first := firstPending(games, bySeason)

	for i, s := range schedule {
		idx := bySeason[i]
		if len(idx) == 0 {
			continue
		}

		if inSeason && i == first {
			e.logger.Debug(ctx, "skipping transition for season already under way", logger.String("season", s.String()))
		} else if n := e.transition(ctx, res.Ratings, snap.Seen, s); n > 0 {
			res.Transitions++
		}

		e.enter(ctx, StateInSeason)
		for _, gi := range idx {
			g := games[gi]
			if g.Rated() {
				continue
			}
			if err := rate(res.Ratings, gi, g); err != nil {
				w := Warning{Season: i, Range: s, Err: err}
				res.Warnings = append(res.Warnings, w)
				e.logger.Warn(ctx, "abandoning season after bad record",
					logger.String("season", s.String()),
					logger.Error(err),
				)
				break
			}
			res.Rated++
		}
	}

	for gi, g := range games {
		if !g.Rated() && schedule.Find(g.Date) < 0 {
			err := malformed(gi, g, "unrated game outside every season", nil)
			res.Warnings = append(res.Warnings, Warning{Season: OffSeason, Err: err})
		}
	}

	e.enter(ctx, StateDone)
	e.logger.Info(ctx, "replay finished",
		logger.Int("rated", res.Rated),
		logger.Int("transitions", res.Transitions),
		logger.Int("warnings", len(res.Warnings)),
	)
	return res, nil
}

// Replay runs a replay with a new engine built from opts.
func Replay(ctx context.Context, games []*model.Game, schedule season.Schedule, inSeason bool, opts ...Option) (*Result, error) {
	return New(opts...).Replay(ctx, games, schedule, inSeason)
}

// transition regresses every team whose seeding game predates s and
// returns how many teams moved.
func (e *Engine) transition(ctx context.Context, ratings model.Ratings, seen map[string]time.Time, s season.Season) int {
	start := model.Day(s.Start)
	n := season.Regress(ratings, func(team string) bool {
		last, ok := seen[team]
		return !ok || start.After(last)
	})
	if n > 0 {
		e.enter(ctx, StateSeasonTransition)
		e.logger.Debug(ctx, "season transition applied", logger.String("season", s.String()), logger.Int("teams", n))
	}
	return n
}

func (e *Engine) enter(ctx context.Context, st State) {
	e.logger.Debug(ctx, "replay state", logger.String("state", string(st)))
}

// rate validates g, applies the update and writes the four rating fields.
// Nothing is written when an error is returned.
func rate(ratings model.Ratings, gi int, g *model.Game) error {
	switch {
	case g.Date.IsZero():
		return malformed(gi, g, "missing date", nil)
	case g.TeamHome == "" || g.TeamAway == "":
		return malformed(gi, g, "missing team id", nil)
	case g.TeamHome == g.TeamAway:
		return malformed(gi, g, "team plays itself", nil)
	case g.PtsHome < 0 || g.PtsAway < 0:
		return malformed(gi, g, "negative score", nil)
	}

	home, ok := ratings[g.TeamHome]
	if !ok {
		return malformed(gi, g, "no rating for "+g.TeamHome, ErrMissingHistory)
	}
	away, ok := ratings[g.TeamAway]
	if !ok {
		return malformed(gi, g, "no rating for "+g.TeamAway, ErrMissingHistory)
	}

	d := rating.Update(g.PtsHome, g.PtsAway, home, away)
	postHome, postAway := home+d.Home, away+d.Away
	if !finite(postHome) || !finite(postAway) {
		return malformed(gi, g, "rating update diverged", ErrNonFinite)
	}

	g.SetRatings(home, away, postHome, postAway)
	ratings[g.TeamHome] = postHome
	ratings[g.TeamAway] = postAway
	return nil
}

// partition returns, per season, the indices of its games in ascending date
// order with input order kept for equal dates.
func partition(games []*model.Game, schedule season.Schedule) [][]int {
	out := make([][]int, len(schedule))
	for gi, g := range games {
		if i := schedule.Find(g.Date); i >= 0 {
			out[i] = append(out[i], gi)
		}
	}
	for _, idx := range out {
		sort.SliceStable(idx, func(a, b int) bool {
			return model.Day(games[idx[a]].Date).Before(model.Day(games[idx[b]].Date))
		})
	}
	return out
}

// firstPending returns the index of the first season holding an unrated
// game, or -1.
func firstPending(games []*model.Game, bySeason [][]int) int {
	for i, idx := range bySeason {
		for _, gi := range idx {
			if !games[gi].Rated() {
				return i
			}
		}
	}
	return -1
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
