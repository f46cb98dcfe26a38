package verify

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/okian/nbaelo/internal/domain/types"
)

// client talks to the rating API.
type client struct {
	http *resty.Client
}

func newClient(baseURL string, timeout time.Duration) *client {
	return &client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

func (c *client) replay(ctx context.Context) (types.RunSummary, error) {
	var sum types.RunSummary
	resp, err := c.http.R().SetContext(ctx).SetResult(&sum).Post("/replay")
	if err != nil {
		return sum, fmt.Errorf("POST /replay: %w", err)
	}
	if resp.IsError() {
		return sum, fmt.Errorf("POST /replay: status %d: %s", resp.StatusCode(), resp.String())
	}
	return sum, nil
}

func (c *client) ratings(ctx context.Context) ([]types.Entry, error) {
	var entries []types.Entry
	resp, err := c.http.R().SetContext(ctx).SetResult(&entries).Get("/ratings")
	if err != nil {
		return nil, fmt.Errorf("GET /ratings: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("GET /ratings: status %d: %s", resp.StatusCode(), resp.String())
	}
	return entries, nil
}

func (c *client) rating(ctx context.Context, team string) (types.Entry, error) {
	var e types.Entry
	resp, err := c.http.R().SetContext(ctx).SetResult(&e).Get("/ratings/" + url.PathEscape(team))
	if err != nil {
		return e, fmt.Errorf("GET /ratings/%s: %w", team, err)
	}
	if resp.IsError() {
		return e, fmt.Errorf("GET /ratings/%s: status %d", team, resp.StatusCode())
	}
	return e, nil
}
