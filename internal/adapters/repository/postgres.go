package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/nbaelo/internal/domain/model"
	"github.com/okian/nbaelo/pkg/metrics"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS nba_elo (
	seq          INTEGER PRIMARY KEY,
	game_id      TEXT    NOT NULL,
	date_game    DATE    NOT NULL,
	team_id_home TEXT    NOT NULL,
	team_id_away TEXT    NOT NULL,
	pts_home     INTEGER NOT NULL,
	pts_away     INTEGER NOT NULL,
	elo_i_home   DOUBLE PRECISION,
	elo_i_away   DOUBLE PRECISION,
	elo_n_home   DOUBLE PRECISION,
	elo_n_away   DOUBLE PRECISION
);
CREATE INDEX IF NOT EXISTS nba_elo_date ON nba_elo (date_game);
`

var gameColumns = []string{
	"seq", "game_id", "date_game", "team_id_home", "team_id_away", "pts_home", "pts_away",
	"elo_i_home", "elo_i_away", "elo_n_home", "elo_n_away",
}

// PostgresStore keeps game history in PostgreSQL through a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dbURL, verifies it with Ping and creates the
// schema when missing.
func NewPostgresStore(ctx context.Context, dbURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("%w: connect postgres: %w", ErrStore, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping postgres: %w", ErrStore, err)
	}
	return NewPostgresStoreWithPool(ctx, pool)
}

// NewPostgresStoreWithPool uses an existing pool.
func NewPostgresStoreWithPool(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("%w: create schema: %w", ErrStore, err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Games implements Store.
func (s *PostgresStore) Games(ctx context.Context) ([]*model.Game, error) {
	defer observe("games", time.Now())

	rows, err := s.pool.Query(ctx, `
		SELECT game_id, date_game, team_id_home, team_id_away, pts_home, pts_away,
		       elo_i_home, elo_i_away, elo_n_home, elo_n_away
		FROM nba_elo ORDER BY seq`)
	if err != nil {
		metrics.RecordErrorByComponent("store", "query")
		return nil, fmt.Errorf("%w: query games: %w", ErrStore, err)
	}

	games, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.Game, error) {
		var g model.Game
		err := row.Scan(&g.GameID, &g.Date, &g.TeamHome, &g.TeamAway, &g.PtsHome, &g.PtsAway,
			&g.EloIHome, &g.EloIAway, &g.EloNHome, &g.EloNAway)
		g.Date = model.Day(g.Date)
		return &g, err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: read games: %w", ErrStore, err)
	}
	return games, nil
}

// SaveGames implements Store.
func (s *PostgresStore) SaveGames(ctx context.Context, games []*model.Game) error {
	defer observe("save", time.Now())
	assignIDs(games)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrStore, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `TRUNCATE nba_elo`); err != nil {
		return fmt.Errorf("%w: clear games: %w", ErrStore, err)
	}

	_, err = tx.CopyFrom(ctx, pgx.Identifier{"nba_elo"}, gameColumns,
		pgx.CopyFromSlice(len(games), func(i int) ([]any, error) {
			g := games[i]
			return []any{i, g.GameID, model.Day(g.Date), g.TeamHome, g.TeamAway, g.PtsHome, g.PtsAway,
				g.EloIHome, g.EloIAway, g.EloNHome, g.EloNAway}, nil
		}))
	if err != nil {
		metrics.RecordErrorByComponent("store", "save")
		return fmt.Errorf("%w: copy games: %w", ErrStore, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrStore, err)
	}
	metrics.UpdateStoreGames(len(games))
	return nil
}

// MaxDate implements Store.
func (s *PostgresStore) MaxDate(ctx context.Context) (time.Time, error) {
	var d *time.Time
	if err := s.pool.QueryRow(ctx, `SELECT MAX(date_game) FROM nba_elo`).Scan(&d); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("%w: max date: %w", ErrStore, err)
	}
	if d == nil {
		return time.Time{}, nil
	}
	return model.Day(*d), nil
}

// Count implements Store.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM nba_elo`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count: %w", ErrStore, err)
	}
	return n, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
