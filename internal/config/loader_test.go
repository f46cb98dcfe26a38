package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/nbaelo/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		Convey("Then it should have sensible defaults", func() {
			So(cfg.Addr, ShouldEqual, ":9080")
			So(cfg.DBDriver, ShouldEqual, config.DriverSQLite)
			So(cfg.FetchEnabled, ShouldBeFalse)
			So(cfg.Validate(), ShouldBeNil)
		})

		Convey("Then the default schedule holds three seasons", func() {
			sc, err := cfg.Schedule()
			So(err, ShouldBeNil)
			So(sc, ShouldHaveLength, 3)
			So(sc[2].End, ShouldEqual, time.Date(2018, 6, 17, 0, 0, 0, 0, time.UTC))
		})

		Convey("Then the cutoff parses", func() {
			c, err := cfg.Cutoff()
			So(err, ShouldBeNil)
			So(c, ShouldEqual, time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC))
			So(cfg.FetchTimeout(), ShouldEqual, 10*time.Second)
		})
	})
}

func TestConfigLoader(t *testing.T) {
	Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			Convey("Then it should load successfully with defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":9080")
				So(cfg.Seasons, ShouldHaveLength, 3)
			})
		})

		Convey("When loading config with environment variables", func() {
			_ = os.Setenv("NBAELO_ADDR", ":8080")
			_ = os.Setenv("NBAELO_DB_DRIVER", "postgres")
			_ = os.Setenv("NBAELO_DB_DSN", "postgres://elo@localhost/elo")
			_ = os.Setenv("NBAELO_FETCH_ENABLED", "true")
			_ = os.Setenv("NBAELO_FETCH_TIMEOUT_MS", "2500")
			_ = os.Setenv("NBAELO_IN_SEASON", "true")
			_ = os.Setenv("NBAELO_REFRESH_MINUTES", "15")

			cfg, err := config.Load(ctx)

			Convey("Then it should override defaults with env vars", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":8080")
				So(cfg.DBDriver, ShouldEqual, config.DriverPostgres)
				So(cfg.DBDSN, ShouldEqual, "postgres://elo@localhost/elo")
				So(cfg.FetchEnabled, ShouldBeTrue)
				So(cfg.FetchTimeout(), ShouldEqual, 2500*time.Millisecond)
				So(cfg.InSeason, ShouldBeTrue)
				So(cfg.RefreshInterval(), ShouldEqual, 15*time.Minute)
			})
		})

		Convey("When loading config with a YAML file", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
log_format: json
csv_path: data/nbaallelo.csv
bootstrap_cutoff: "2018-01-01"
seasons:
  - start: "2018-10-16"
    end: "2019-06-13"
  - start: "2019-10-22"
    end: "2020-10-11"
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("NBAELO_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			Convey("Then the file replaces the season list", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":9090")
				So(cfg.LogFormat, ShouldEqual, "json")
				So(cfg.CSVPath, ShouldEqual, "data/nbaallelo.csv")
				So(cfg.Seasons, ShouldResemble, []config.SeasonRange{
					{Start: "2018-10-16", End: "2019-06-13"},
					{Start: "2019-10-22", End: "2020-10-11"},
				})
			})

			Convey("And env vars still win over the file", func() {
				_ = os.Setenv("NBAELO_ADDR", ":7070")
				cfg, err := config.Load(ctx)
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":7070")
				So(cfg.Seasons, ShouldHaveLength, 2)
			})
		})

		Convey("When the season list overlaps", func() {
			tmpFile := createTempConfigFile(`
seasons:
  - start: "2018-10-16"
    end: "2019-06-13"
  - start: "2019-06-01"
    end: "2020-10-11"
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("NBAELO_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			Convey("Then it should return a validation error", func() {
				So(cfg, ShouldBeNil)
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			})
		})

		Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("NBAELO_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			Convey("Then it should return a load error", func() {
				So(cfg, ShouldBeNil)
				So(errors.Is(err, config.ErrLoadConfig), ShouldBeTrue)
			})
		})

		Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("NBAELO_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			Convey("Then it should return an error", func() {
				So(err, ShouldNotBeNil)
				So(cfg, ShouldBeNil)
			})
		})

		Convey("When loading config with empty addr", func() {
			_ = os.Setenv("NBAELO_ADDR", "")

			cfg, err := config.Load(ctx)

			Convey("Then it should return a validation error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "addr must not be empty")
				So(cfg, ShouldBeNil)
			})
		})

		Convey("When loading config with an unknown driver", func() {
			_ = os.Setenv("NBAELO_DB_DRIVER", "mongo")

			_, err := config.Load(ctx)

			Convey("Then it should return a validation error", func() {
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			})
		})

		Convey("When loading config with a negative refresh interval", func() {
			_ = os.Setenv("NBAELO_REFRESH_MINUTES", "-5")

			_, err := config.Load(ctx)

			Convey("Then it should return a validation error", func() {
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			})
		})

		Convey("When loading config with a refresh cron expression", func() {
			_ = os.Setenv("NBAELO_REFRESH_CRON", "0 6 * * *")

			cfg, err := config.Load(ctx)

			Convey("Then it should be kept as written", func() {
				So(err, ShouldBeNil)
				So(cfg.RefreshCron, ShouldEqual, "0 6 * * *")
			})
		})

		Convey("When loading config with a malformed refresh cron expression", func() {
			_ = os.Setenv("NBAELO_REFRESH_CRON", "every morning")

			_, err := config.Load(ctx)

			Convey("Then it should return a validation error", func() {
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			})
		})

		Convey("When loading config with a bad cutoff", func() {
			_ = os.Setenv("NBAELO_BOOTSTRAP_CUTOFF", "01/01/2016")

			_, err := config.Load(ctx)

			Convey("Then it should return a validation error", func() {
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
				So(errors.Is(err, config.ErrBadDate), ShouldBeTrue)
			})
		})

		Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("NBAELO_FETCH_TIMEOUT_MS", "soon")

			cfg, err := config.Load(ctx)

			Convey("Then it should return an error", func() {
				So(err, ShouldNotBeNil)
				So(cfg, ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"NBAELO_CONFIG",
		"NBAELO_ADDR",
		"NBAELO_DB_DRIVER",
		"NBAELO_DB_DSN",
		"NBAELO_FETCH_ENABLED",
		"NBAELO_FETCH_TIMEOUT_MS",
		"NBAELO_IN_SEASON",
		"NBAELO_REFRESH_MINUTES",
		"NBAELO_REFRESH_CRON",
		"NBAELO_BOOTSTRAP_CUTOFF",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "nbaelo-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
