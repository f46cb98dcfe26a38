// Package ingest imports historical game records.
//
// The historical file stores one row per team per game: the away side
// first, then the home side, sharing game_id and date_game.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/okian/nbaelo/internal/domain/model"
	"github.com/okian/nbaelo/pkg/logger"
	"github.com/okian/nbaelo/pkg/metrics"
)

var requiredColumns = []string{"game_id", "date_game", "team_id", "pts", "elo_i", "elo_n"}

var dateLayouts = []string{model.DateLayout, "1/2/2006"}

// Importer reads the historical CSV layout into games.
type Importer struct {
	norm   Normalizer
	logger logger.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithNormalizer replaces the default alias table.
func WithNormalizer(n Normalizer) Option {
	return func(im *Importer) { im.norm = n }
}

// WithLogger sets the importer logger.
func WithLogger(l logger.Logger) Option {
	return func(im *Importer) { im.logger = l }
}

// NewImporter returns an importer using DefaultAliases.
func NewImporter(opts ...Option) *Importer {
	im := &Importer{norm: DefaultAliases(), logger: logger.Nop()}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// ReadFile imports the CSV at path.
func (im *Importer) ReadFile(ctx context.Context, path string) ([]*model.Game, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	games, err := im.Read(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	return games, nil
}

// Read imports games from r. Columns other than the required ones are
// ignored. Empty rating cells become nil ratings.
func (im *Importer) Read(ctx context.Context, r io.Reader) ([]*model.Game, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var (
		games []*model.Game
		away  *side
		line  = 1
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedRow, line, err)
		}

		s, err := parseSide(rec, col)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedRow, line, err)
		}
		if away == nil {
			away = s
			continue
		}
		if s.gameID != away.gameID || !s.date.Equal(away.date) {
			return nil, fmt.Errorf("%w: line %d: game %s does not pair with %s", ErrMalformedRow, line, s.gameID, away.gameID)
		}
		games = append(games, im.pair(away, s))
		away = nil
	}
	if away != nil {
		return nil, fmt.Errorf("%w: line %d: game %s has no home row", ErrMalformedRow, line, away.gameID)
	}

	metrics.RecordGamesImported(len(games))
	im.logger.Info(ctx, "imported historical games", logger.Int("games", len(games)))
	return games, nil
}

type side struct {
	gameID string
	date   time.Time
	team   string
	pts    int
	eloI   *float64
	eloN   *float64
}

func (im *Importer) pair(away, home *side) *model.Game {
	return &model.Game{
		GameID:   home.gameID,
		Date:     home.date,
		TeamHome: im.norm.Team(home.team),
		TeamAway: im.norm.Team(away.team),
		PtsHome:  home.pts,
		PtsAway:  away.pts,
		EloIHome: home.eloI,
		EloIAway: away.eloI,
		EloNHome: home.eloN,
		EloNAway: away.eloN,
	}
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}
	return idx, nil
}

func parseSide(rec []string, col map[string]int) (*side, error) {
	get := func(name string) string {
		i := col[name]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	s := &side{gameID: get("game_id"), team: get("team_id")}

	var err error
	if s.date, err = ParseDate(get("date_game")); err != nil {
		return nil, err
	}
	if s.pts, err = strconv.Atoi(get("pts")); err != nil {
		return nil, fmt.Errorf("pts: %w", err)
	}
	if s.eloI, err = optionalFloat(get("elo_i")); err != nil {
		return nil, fmt.Errorf("elo_i: %w", err)
	}
	if s.eloN, err = optionalFloat(get("elo_n")); err != nil {
		return nil, fmt.Errorf("elo_n: %w", err)
	}
	return s, nil
}

// ParseDate accepts YYYY-MM-DD and M/D/YYYY calendar dates.
func ParseDate(v string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("date %q: unsupported format", v)
}

func optionalFloat(v string) (*float64, error) {
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, err
	}
	return model.Float(f), nil
}
