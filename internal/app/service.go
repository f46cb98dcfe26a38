// Package service runs the rating pipeline and serves its results to the
// HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/nbaelo/internal/adapters/ingest"
	"github.com/okian/nbaelo/internal/adapters/repository"
	"github.com/okian/nbaelo/internal/domain/dedupe"
	"github.com/okian/nbaelo/internal/domain/model"
	"github.com/okian/nbaelo/internal/domain/replay"
	"github.com/okian/nbaelo/internal/domain/season"
	"github.com/okian/nbaelo/internal/domain/types"
	"github.com/okian/nbaelo/pkg/logger"
	"github.com/okian/nbaelo/pkg/metrics"
)

// Fetcher collects completed games for the in-season days of a window.
type Fetcher interface {
	FetchSince(ctx context.Context, since, until time.Time, schedule season.Schedule) ([]*model.Game, error)
}

// Importer reads historical games from a file.
type Importer interface {
	ReadFile(ctx context.Context, path string) ([]*model.Game, error)
}

// Summary describes one pipeline run.
type Summary = types.RunSummary

// Service owns the game history pipeline. Runs are serialised; rating
// queries read the result of the latest successful run.
type Service struct {
	run sync.Mutex
	mu  sync.RWMutex

	store    repository.Store
	fetcher  Fetcher
	importer Importer
	norm     ingest.Normalizer
	csvPath  string
	schedule season.Schedule
	cutoff   time.Time
	inSeason bool
	now      func() time.Time

	ratings  model.Ratings
	warnings []replay.Warning
	last     Summary
	lastRun  time.Time
	runs     int
	subs     []func(Summary)

	logger logger.Logger
}

// New constructs a Service with the default schedule, cutoff and aliases.
func New(opts ...Option) *Service {
	s := &Service{
		norm:     ingest.DefaultAliases(),
		schedule: season.Default(),
		cutoff:   replay.DefaultCutoff,
		now:      time.Now,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.importer == nil {
		s.importer = ingest.NewImporter(ingest.WithNormalizer(s.norm), ingest.WithLogger(s.logger))
	}
	return s
}

// Run loads the stored history (importing the historical file into an
// empty store), merges newly fetched games, replays and saves the result.
// A failed fetch does not stop the run; it is reported in the summary.
func (s *Service) Run(ctx context.Context) (Summary, error) {
	s.run.Lock()
	defer s.run.Unlock()

	start := time.Now()
	sum, res, err := s.pipeline(ctx)
	metrics.RecordReplayDuration(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordReplayRun("failed")
		metrics.RecordErrorByComponent("service", "run")
		s.logger.Error(ctx, "rating run failed", logger.Error(err))
		return sum, err
	}

	outcome := "ok"
	if len(res.Warnings) > 0 || sum.FetchError != "" {
		outcome = "partial"
	}
	metrics.RecordReplayRun(outcome)
	metrics.RecordGamesRated(res.Rated)
	metrics.RecordSeasonTransitions(res.Transitions)
	for _, w := range res.Warnings {
		metrics.RecordReplayWarning(warningKind(w))
	}
	metrics.UpdateTeamRatings(res.Ratings)

	s.mu.Lock()
	s.ratings = res.Ratings
	s.warnings = res.Warnings
	s.last = sum
	s.lastRun = s.now()
	s.runs++
	// Only the run that resumes a season under way skips its boundary.
	s.inSeason = false
	subs := s.subs
	s.mu.Unlock()

	for _, fn := range subs {
		fn(sum)
	}

	s.logger.Info(ctx, "rating run finished",
		logger.String("outcome", outcome),
		logger.Int("games", sum.Games),
		logger.Int("stored", sum.Stored),
		logger.Int("rated", sum.Rated),
		logger.Int("warnings", sum.Warnings),
		logger.Duration("took", time.Since(start)),
	)
	return sum, nil
}

// Subscribe registers fn to receive the summary of every successful run.
func (s *Service) Subscribe(fn func(Summary)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

func (s *Service) pipeline(ctx context.Context) (Summary, *replay.Result, error) {
	var sum Summary
	if s.store == nil {
		return sum, nil, ErrNoStore
	}

	games, err := s.store.Games(ctx)
	if err != nil {
		return sum, nil, fmt.Errorf("load games: %w", err)
	}

	if len(games) == 0 && s.csvPath != "" {
		if games, err = s.importer.ReadFile(ctx, s.csvPath); err != nil {
			return sum, nil, fmt.Errorf("import history: %w", err)
		}
		sum.Imported = len(games)
	}
	s.norm.Apply(games)

	if s.fetcher != nil {
		since, err := s.fetchStart(ctx, games, sum.Imported > 0)
		if err != nil {
			return sum, nil, err
		}
		fetched, ferr := s.fetcher.FetchSince(ctx, since, s.now(), s.schedule)
		if ferr != nil {
			sum.FetchError = ferr.Error()
		}
		s.norm.Apply(fetched)
		sum.Fetched = len(fetched)
		games, sum.Added = dedupe.Merge(ctx, games, fetched)
	}

	res, err := replay.Replay(ctx, games, s.schedule, s.inSeason,
		replay.WithBootstrapCutoff(s.cutoff),
		replay.WithLogger(s.logger.Named("replay")),
	)
	if err != nil {
		return sum, nil, fmt.Errorf("replay: %w", err)
	}

	if err := s.store.SaveGames(ctx, res.Games); err != nil {
		return sum, nil, fmt.Errorf("save games: %w", err)
	}
	if sum.Stored, err = s.store.Count(ctx); err != nil {
		return sum, nil, fmt.Errorf("count games: %w", err)
	}

	sum.Games = len(res.Games)
	sum.Rated = res.Rated
	sum.Transitions = res.Transitions
	sum.Warnings = len(res.Warnings)
	return sum, res, nil
}

// fetchStart is the latest known game date, or the first season start
// for an empty history. Freshly imported games are not in the store yet.
func (s *Service) fetchStart(ctx context.Context, games []*model.Game, imported bool) (time.Time, error) {
	var latest time.Time
	if imported {
		for _, g := range games {
			if g.Date.After(latest) {
				latest = g.Date
			}
		}
	} else {
		var err error
		if latest, err = s.store.MaxDate(ctx); err != nil {
			return time.Time{}, fmt.Errorf("max date: %w", err)
		}
	}
	if latest.IsZero() && len(s.schedule) > 0 {
		return s.schedule[0].Start, nil
	}
	return latest, nil
}

func warningKind(w replay.Warning) string {
	switch {
	case w.Season == replay.OffSeason:
		return "off_season"
	case errors.Is(w.Err, replay.ErrNonFinite):
		return "non_finite"
	case errors.Is(w.Err, replay.ErrMissingHistory):
		return "unknown_team"
	}
	return "malformed"
}

// Ratings returns the rating table of the latest run.
func (s *Service) Ratings(_ context.Context) ([]types.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.ratings == nil {
		return nil, ErrNotReady
	}
	return types.Rank(s.ratings), nil
}

// Rating returns one team's entry, accepting team aliases.
func (s *Service) Rating(ctx context.Context, team string) (types.Entry, error) {
	entries, err := s.Ratings(ctx)
	if err != nil {
		return types.Entry{}, err
	}
	team = s.norm.Team(team)
	for _, e := range entries {
		if e.Team == team {
			return e, nil
		}
	}
	return types.Entry{}, fmt.Errorf("%w: %s", ErrUnknownTeam, team)
}

// Warnings returns the warnings of the latest run.
func (s *Service) Warnings() []replay.Warning {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]replay.Warning, len(s.warnings))
	copy(out, s.warnings)
	return out
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"runs":      s.runs,
		"teams":     len(s.ratings),
		"seasons":   len(s.schedule),
		"inSeason":  s.inSeason,
		"fetching":  s.fetcher != nil,
		"lastRun":   s.last,
		"warnings":  len(s.warnings),
		"lastRunAt": "",
	}
	if !s.lastRun.IsZero() {
		stats["lastRunAt"] = s.lastRun.UTC().Format(time.RFC3339)
	}
	return stats
}

// Close releases the store.
func (s *Service) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}
