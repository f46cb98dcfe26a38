// Package repository persists game records for the rating replay.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/nbaelo/internal/domain/model"
	"github.com/okian/nbaelo/pkg/metrics"
)

// Store reads and writes the full game history.
type Store interface {
	// Games returns every stored game in insertion order.
	Games(ctx context.Context) ([]*model.Game, error)

	// SaveGames replaces the stored history with games, atomically.
	// Games without an id are assigned one.
	SaveGames(ctx context.Context, games []*model.Game) error

	// MaxDate returns the latest stored game date, or the zero time.
	MaxDate(ctx context.Context) (time.Time, error)

	// Count returns the number of stored games.
	Count(ctx context.Context) (int, error)

	Close() error
}

// Open returns the store for driver ("sqlite" or "postgres").
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite":
		return NewSQLiteStore(ctx, dsn)
	case "postgres":
		return NewPostgresStore(ctx, dsn)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
}

// assignIDs gives every game without an upstream id a random one.
func assignIDs(games []*model.Game) {
	for _, g := range games {
		if g.GameID == "" {
			g.GameID = uuid.NewString()
		}
	}
}

// observe records the latency of op since start.
func observe(op string, start time.Time) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Milliseconds()))
}
