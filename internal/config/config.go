// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers a YAML file and env vars on top.
// - Dates are YYYY-MM-DD strings and are parsed by the accessors below.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/okian/nbaelo/internal/domain/model"
	"github.com/okian/nbaelo/internal/domain/season"
)

// Supported game store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// SeasonRange is one in-season date range as written in config.
type SeasonRange struct {
	Start string `koanf:"start"`
	End   string `koanf:"end"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Serve keeps the process running with the HTTP API after the first replay.
	Serve bool `koanf:"serve"`

	// RefreshMinutes reruns the pipeline periodically while serving; 0 disables.
	RefreshMinutes int `koanf:"refresh_minutes"`

	// RefreshCron is a five-field cron expression for reruns; it wins over RefreshMinutes.
	RefreshCron string `koanf:"refresh_cron"`

	// DBDriver is sqlite or postgres; DBDSN is the file path or connection URL.
	DBDriver string `koanf:"db_driver"`
	DBDSN    string `koanf:"db_dsn"`

	// CSVPath points at a historical nbaallelo.csv used to seed an empty store.
	CSVPath string `koanf:"csv_path"`

	// FetchEnabled pulls games newer than the store from ScoreboardURL.
	FetchEnabled   bool   `koanf:"fetch_enabled"`
	ScoreboardURL  string `koanf:"scoreboard_url"`
	FetchTimeoutMS int    `koanf:"fetch_timeout_ms"`

	// BootstrapCutoff limits the team set to teams seen after this date.
	BootstrapCutoff string `koanf:"bootstrap_cutoff"`

	// InSeason marks the first pending season as already under way.
	InSeason bool `koanf:"in_season"`

	// Seasons lists the in-season date ranges in ascending order.
	Seasons []SeasonRange `koanf:"seasons"`
}

// New returns a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		DBDriver:        DriverSQLite,
		DBDSN:           "nba_elo.db",
		ScoreboardURL:   "https://stats.nba.com/stats/scoreboardV2",
		FetchTimeoutMS:  10_000,
		BootstrapCutoff: "2016-01-01",
		Seasons: []SeasonRange{
			{Start: "2015-10-27", End: "2016-06-02"},
			{Start: "2016-10-25", End: "2017-06-01"},
			{Start: "2017-10-17", End: "2018-06-17"},
		},
	}
}

// Schedule parses Seasons into a validated schedule.
func (c *Config) Schedule() (season.Schedule, error) {
	sc := make(season.Schedule, 0, len(c.Seasons))
	for _, r := range c.Seasons {
		s, err := season.New(r.Start, r.End)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		sc = append(sc, s)
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return sc, nil
}

// Cutoff parses BootstrapCutoff.
func (c *Config) Cutoff() (time.Time, error) {
	t, err := time.Parse(model.DateLayout, c.BootstrapCutoff)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bootstrap_cutoff %q: %w", ErrInvalidConfig, c.BootstrapCutoff, errors.Join(ErrBadDate, err))
	}
	return t, nil
}

// RefreshInterval returns RefreshMinutes as a duration.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshMinutes) * time.Minute
}

// FetchTimeout returns FetchTimeoutMS as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}

// Validate checks fields that Load cannot type-check.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("%w: unknown db_driver %q", ErrInvalidConfig, c.DBDriver)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("%w: db_dsn must not be empty", ErrInvalidConfig)
	}
	if c.RefreshMinutes < 0 {
		return fmt.Errorf("%w: refresh_minutes must not be negative", ErrInvalidConfig)
	}
	if c.RefreshCron != "" {
		if _, err := cron.ParseStandard(c.RefreshCron); err != nil {
			return fmt.Errorf("%w: refresh_cron %q: %v", ErrInvalidConfig, c.RefreshCron, err)
		}
	}
	if c.FetchEnabled && c.ScoreboardURL == "" {
		return fmt.Errorf("%w: scoreboard_url is required when fetch_enabled", ErrInvalidConfig)
	}
	if _, err := c.Cutoff(); err != nil {
		return err
	}
	if _, err := c.Schedule(); err != nil {
		return err
	}
	return nil
}
