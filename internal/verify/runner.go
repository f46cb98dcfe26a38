package verify

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/nbaelo/pkg/logger"
)

// Run replays twice against the service, verifies the table after each
// run and checks that the second run was a no-op.
func Run(ctx context.Context, cfg *Config, log logger.Logger) (*Report, error) {
	if log == nil {
		log = logger.Nop()
	}
	c := newClient(cfg.BaseURL, cfg.Timeout)
	start := time.Now()
	rep := &Report{}

	var err error
	if rep.First, err = c.replay(ctx); err != nil {
		return nil, err
	}
	log.Info(ctx, "first replay finished",
		logger.Int("games", rep.First.Games),
		logger.Int("rated", rep.First.Rated),
		logger.Int("warnings", rep.First.Warnings),
	)

	before, err := c.ratings(ctx)
	if err != nil {
		return nil, err
	}
	if err := verifyTable(before); err != nil {
		return nil, err
	}

	// Spot check the per-team route against the table.
	for _, e := range []int{0, len(before) - 1} {
		got, err := c.rating(ctx, before[e].Team)
		if err != nil {
			return nil, err
		}
		if got != before[e] {
			return nil, fmt.Errorf("%w: /ratings/%s returned %+v, table has %+v", ErrTable, before[e].Team, got, before[e])
		}
	}

	if rep.Second, err = c.replay(ctx); err != nil {
		return nil, err
	}
	after, err := c.ratings(ctx)
	if err != nil {
		return nil, err
	}
	if err := verifyIdempotent(rep.Second, before, after); err != nil {
		return nil, err
	}

	rep.Teams = len(after)
	rep.Max, rep.Min = after[0].Rating, after[len(after)-1].Rating
	var drift float64
	rep.Mean, drift = meanDrift(after)
	if cfg.Tolerance > 0 && drift > cfg.Tolerance {
		log.Warn(ctx, "mean rating far from baseline",
			logger.Float64("mean", rep.Mean),
			logger.Float64("drift", drift),
		)
	}

	top := cfg.Top
	if top > len(after) {
		top = len(after)
	}
	for _, e := range after[:top] {
		log.Info(ctx, "rating", logger.Int("rank", e.Rank), logger.String("team", e.Team), logger.Float64("rating", e.Rating))
	}

	rep.Duration = time.Since(start)
	log.Info(ctx, "verification passed",
		logger.Int("teams", rep.Teams),
		logger.Float64("mean", rep.Mean),
		logger.Duration("took", rep.Duration),
	)
	return rep, nil
}
