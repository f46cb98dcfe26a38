package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/okian/nbaelo/internal/domain/model"
	"github.com/okian/nbaelo/pkg/metrics"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS nba_elo (
	seq          INTEGER PRIMARY KEY,
	game_id      TEXT    NOT NULL,
	date_game    TEXT    NOT NULL,
	team_id_home TEXT    NOT NULL,
	team_id_away TEXT    NOT NULL,
	pts_home     INTEGER NOT NULL,
	pts_away     INTEGER NOT NULL,
	elo_i_home   REAL,
	elo_i_away   REAL,
	elo_n_home   REAL,
	elo_n_away   REAL
);
CREATE INDEX IF NOT EXISTS nba_elo_date ON nba_elo (date_game);
`

// SQLiteStore keeps game history in a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed creates) the database at path.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %w", ErrStore, err)
	}
	// One writer; avoids SQLITE_BUSY between the pool's connections.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: create schema: %w", ErrStore, err)
	}
	return &SQLiteStore{db: db}, nil
}

// Games implements Store.
func (s *SQLiteStore) Games(ctx context.Context) ([]*model.Game, error) {
	defer observe("games", time.Now())

	rows, err := s.db.QueryContext(ctx, `
		SELECT game_id, date_game, team_id_home, team_id_away, pts_home, pts_away,
		       elo_i_home, elo_i_away, elo_n_home, elo_n_away
		FROM nba_elo ORDER BY seq`)
	if err != nil {
		metrics.RecordErrorByComponent("store", "query")
		return nil, fmt.Errorf("%w: query games: %w", ErrStore, err)
	}
	defer rows.Close()

	var games []*model.Game
	for rows.Next() {
		var (
			g              model.Game
			date           string
			ih, ia, nh, na sql.NullFloat64
		)
		if err := rows.Scan(&g.GameID, &date, &g.TeamHome, &g.TeamAway, &g.PtsHome, &g.PtsAway, &ih, &ia, &nh, &na); err != nil {
			return nil, fmt.Errorf("%w: scan game: %w", ErrStore, err)
		}
		if g.Date, err = time.Parse(model.DateLayout, date); err != nil {
			return nil, fmt.Errorf("%w: game %s date %q: %w", ErrStore, g.GameID, date, err)
		}
		g.EloIHome, g.EloIAway = nullable(ih), nullable(ia)
		g.EloNHome, g.EloNAway = nullable(nh), nullable(na)
		games = append(games, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read games: %w", ErrStore, err)
	}
	return games, nil
}

// SaveGames implements Store.
func (s *SQLiteStore) SaveGames(ctx context.Context, games []*model.Game) error {
	defer observe("save", time.Now())
	assignIDs(games)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrStore, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM nba_elo`); err != nil {
		return fmt.Errorf("%w: clear games: %w", ErrStore, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO nba_elo (seq, game_id, date_game, team_id_home, team_id_away, pts_home, pts_away,
		                     elo_i_home, elo_i_away, elo_n_home, elo_n_away)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: prepare insert: %w", ErrStore, err)
	}
	defer stmt.Close()

	for i, g := range games {
		if _, err := stmt.ExecContext(ctx, i, g.GameID, g.Date.Format(model.DateLayout), g.TeamHome, g.TeamAway,
			g.PtsHome, g.PtsAway, nullFloat(g.EloIHome), nullFloat(g.EloIAway), nullFloat(g.EloNHome), nullFloat(g.EloNAway)); err != nil {
			metrics.RecordErrorByComponent("store", "save")
			return fmt.Errorf("%w: insert game %s: %w", ErrStore, g.GameID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrStore, err)
	}
	metrics.UpdateStoreGames(len(games))
	return nil
}

// MaxDate implements Store.
func (s *SQLiteStore) MaxDate(ctx context.Context) (time.Time, error) {
	var d sql.NullString
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(date_game) FROM nba_elo`).Scan(&d); err != nil {
		return time.Time{}, fmt.Errorf("%w: max date: %w", ErrStore, err)
	}
	if !d.Valid {
		return time.Time{}, nil
	}
	t, err := time.Parse(model.DateLayout, d.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: max date %q: %w", ErrStore, d.String, err)
	}
	return t, nil
}

// Count implements Store.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM nba_elo`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count: %w", ErrStore, err)
	}
	return n, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullable(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	return model.Float(f.Float64)
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}
