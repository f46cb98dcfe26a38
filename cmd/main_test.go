package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/nbaelo/internal/adapters/http/api"
	"github.com/okian/nbaelo/internal/adapters/repository"
	app "github.com/okian/nbaelo/internal/app"
	"github.com/okian/nbaelo/internal/config"
	"github.com/okian/nbaelo/pkg/logger"
)

func TestNewService(t *testing.T) {
	convey.Convey("Given a default configuration pointed at a temp SQLite file", t, func() {
		cfg := config.New()
		cfg.DBDSN = filepath.Join(t.TempDir(), "nba_elo.db")
		cfg.CSVPath = ""

		convey.Convey("Then the service runs against the empty store", func() {
			ctx := context.Background()
			svc, err := newService(ctx, cfg, logger.Nop())
			convey.So(err, convey.ShouldBeNil)
			defer svc.Close()

			sum, err := svc.Run(ctx)
			convey.So(err, convey.ShouldBeNil)
			convey.So(sum.Games, convey.ShouldEqual, 0)

			entries, err := svc.Ratings(ctx)
			convey.So(err, convey.ShouldBeNil)
			convey.So(entries, convey.ShouldBeEmpty)
		})

		convey.Convey("Then an unknown driver is rejected", func() {
			cfg.DBDriver = "mysql"
			_, err := newService(context.Background(), cfg, logger.Nop())
			convey.So(errors.Is(err, repository.ErrUnknownDriver), convey.ShouldBeTrue)
		})

		convey.Convey("Then a bad season list is rejected", func() {
			cfg.Seasons = []config.SeasonRange{{Start: "2018-06-17", End: "2017-10-17"}}
			_, err := newService(context.Background(), cfg, logger.Nop())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestServe(t *testing.T) {
	convey.Convey("Given a free local port", t, func() {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		convey.So(err, convey.ShouldBeNil)
		addr := l.Addr().String()
		convey.So(l.Close(), convey.ShouldBeNil)

		convey.Convey("serve answers requests and stops with its context", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
			go func() { done <- serve(ctx, addr, h, logger.Nop()) }()

			var resp *http.Response
			for i := 0; i < 50; i++ {
				if resp, err = http.Get("http://" + addr + "/"); err == nil {
					break
				}
				time.Sleep(20 * time.Millisecond)
			}
			convey.So(err, convey.ShouldBeNil)
			_ = resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusNoContent)

			cancel()
			select {
			case err := <-done:
				convey.So(err, convey.ShouldBeNil)
			case <-time.After(5 * time.Second):
				t.Fatal("serve did not stop")
			}
		})

		convey.Convey("serve reports a busy address", func() {
			busy, err := net.Listen("tcp", "127.0.0.1:0")
			convey.So(err, convey.ShouldBeNil)
			defer busy.Close()

			err = serve(context.Background(), busy.Addr().String(), http.NotFoundHandler(), logger.Nop())
			convey.So(errors.Is(err, api.ErrServe), convey.ShouldBeTrue)
		})
	})
}

type countingRunner struct{ runs atomic.Int32 }

func (c *countingRunner) Run(context.Context) (app.Summary, error) {
	c.runs.Add(1)
	return app.Summary{}, nil
}

func TestStartRefresher(t *testing.T) {
	convey.Convey("Given a counting runner", t, func() {
		ctx := context.Background()
		r := &countingRunner{}
		cfg := config.New()

		convey.Convey("Without a cron expression or interval nothing is scheduled", func() {
			cfg.RefreshMinutes = 0
			cfg.RefreshCron = ""
			stop, err := startRefresher(ctx, cfg, r, logger.Nop())
			convey.So(err, convey.ShouldBeNil)
			stop()
			convey.So(int(r.runs.Load()), convey.ShouldEqual, 0)
		})

		convey.Convey("A cron expression reruns the pipeline", func() {
			cfg.RefreshCron = "@every 1s"
			stop, err := startRefresher(ctx, cfg, r, logger.Nop())
			convey.So(err, convey.ShouldBeNil)

			deadline := time.Now().Add(5 * time.Second)
			for r.runs.Load() == 0 && time.Now().Before(deadline) {
				time.Sleep(50 * time.Millisecond)
			}
			stop()
			convey.So(int(r.runs.Load()), convey.ShouldBeGreaterThan, 0)
		})

		convey.Convey("A malformed cron expression is rejected", func() {
			cfg.RefreshCron = "every morning"
			_, err := startRefresher(ctx, cfg, r, logger.Nop())
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("An interval refresher stops cleanly", func() {
			cfg.RefreshCron = ""
			cfg.RefreshMinutes = 60
			stop, err := startRefresher(ctx, cfg, r, logger.Nop())
			convey.So(err, convey.ShouldBeNil)
			stop()
			convey.So(int(r.runs.Load()), convey.ShouldEqual, 0)
		})
	})
}
