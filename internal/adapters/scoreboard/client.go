// Package scoreboard fetches completed game results from a stats
// scoreboard endpoint.
package scoreboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/okian/nbaelo/internal/domain/model"
	"github.com/okian/nbaelo/internal/domain/season"
	"github.com/okian/nbaelo/pkg/logger"
	"github.com/okian/nbaelo/pkg/metrics"
)

const lineScore = "LineScore"

// Client queries one scoreboard per calendar day.
type Client struct {
	http    *resty.Client
	baseURL string
	logger  logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// WithRetries retries failed requests count times.
func WithRetries(count int) Option {
	return func(c *Client) { c.http.SetRetryCount(count) }
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns a client for the scoreboard at baseURL.
func New(baseURL string, opts ...Option) *Client {
	rc := resty.New().
		SetTimeout(30*time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "Mozilla/5.0 (nbaelo)").
		SetHeader("Referer", "https://www.nba.com/")

	c := &Client{http: rc, baseURL: baseURL, logger: logger.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type resultSet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	RowSet  [][]any  `json:"rowSet"`
}

type response struct {
	ResultSets []resultSet `json:"resultSets"`
}

// Day returns the completed games played on day. Games whose score is not
// yet posted are skipped.
func (c *Client) Day(ctx context.Context, day time.Time) ([]*model.Game, error) {
	var body response
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"gameDate":  day.Format("01/02/2006"),
			"LeagueID":  "00",
			"DayOffset": "0",
		}).
		SetResult(&body).
		Get(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUpstream, day.Format(model.DateLayout), err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: %s: status %d", ErrUpstream, day.Format(model.DateLayout), resp.StatusCode())
	}
	return parseLineScore(body, day)
}

// FetchSince collects games for every day in [since, until] that falls
// inside a season of schedule. It stops at the first failing day and
// returns the games gathered before it together with the error, so a later
// run can resume from the stored max date.
func (c *Client) FetchSince(ctx context.Context, since, until time.Time, schedule season.Schedule) ([]*model.Game, error) {
	var games []*model.Game
	for day := model.Day(since); !day.After(model.Day(until)); day = day.AddDate(0, 0, 1) {
		if schedule.Find(day) < 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return games, err
		}

		got, err := c.Day(ctx, day)
		if err != nil {
			metrics.RecordFetchError()
			c.logger.Warn(ctx, "scoreboard fetch stopped, rerun to continue",
				logger.String("day", day.Format(model.DateLayout)),
				logger.Error(err),
			)
			return games, err
		}
		c.logger.Debug(ctx, "collected scoreboard",
			logger.String("day", day.Format(model.DateLayout)),
			logger.Int("games", len(got)),
		)
		games = append(games, got...)
	}
	metrics.RecordGamesFetched(len(games))
	return games, nil
}

// parseLineScore turns the line score rows into games. Rows come in pairs
// per game: away first, then home.
func parseLineScore(body response, day time.Time) ([]*model.Game, error) {
	var set *resultSet
	for i := range body.ResultSets {
		if body.ResultSets[i].Name == lineScore {
			set = &body.ResultSets[i]
			break
		}
	}
	if set == nil {
		return nil, fmt.Errorf("%w: no %s result set", ErrPayload, lineScore)
	}

	col := make(map[string]int, len(set.Headers))
	for i, h := range set.Headers {
		col[h] = i
	}
	for _, h := range []string{"GAME_ID", "GAME_DATE_EST", "TEAM_ABBREVIATION", "PTS"} {
		if _, ok := col[h]; !ok {
			return nil, fmt.Errorf("%w: missing column %s", ErrPayload, h)
		}
	}
	if len(set.RowSet)%2 != 0 {
		return nil, fmt.Errorf("%w: odd number of line score rows (%d)", ErrPayload, len(set.RowSet))
	}

	var games []*model.Game
	for i := 0; i < len(set.RowSet); i += 2 {
		away, home := set.RowSet[i], set.RowSet[i+1]
		awayID, _ := cell(away, col["GAME_ID"]).(string)
		homeID, _ := cell(home, col["GAME_ID"]).(string)
		if awayID != homeID {
			return nil, fmt.Errorf("%w: rows %d and %d belong to games %s and %s", ErrPayload, i, i+1, awayID, homeID)
		}

		ptsAway, okA := cell(away, col["PTS"]).(float64)
		ptsHome, okH := cell(home, col["PTS"]).(float64)
		if !okA || !okH {
			continue
		}

		date := day
		if s, ok := cell(home, col["GAME_DATE_EST"]).(string); ok && len(s) >= len(model.DateLayout) {
			if t, err := time.Parse(model.DateLayout, s[:len(model.DateLayout)]); err == nil {
				date = t
			}
		}

		teamAway, _ := cell(away, col["TEAM_ABBREVIATION"]).(string)
		teamHome, _ := cell(home, col["TEAM_ABBREVIATION"]).(string)
		games = append(games, &model.Game{
			GameID:   homeID,
			Date:     model.Day(date),
			TeamHome: strings.TrimSpace(teamHome),
			TeamAway: strings.TrimSpace(teamAway),
			PtsHome:  int(ptsHome),
			PtsAway:  int(ptsAway),
		})
	}
	return games, nil
}

func cell(row []any, i int) any {
	if i >= len(row) {
		return nil
	}
	return row[i]
}
