package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/okian/nbaelo/internal/adapters/http/api"
	"github.com/okian/nbaelo/internal/adapters/repository"
	"github.com/okian/nbaelo/internal/adapters/scoreboard"
	app "github.com/okian/nbaelo/internal/app"
	"github.com/okian/nbaelo/internal/config"
	"github.com/okian/nbaelo/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		// Use stderr since the logger may not be available yet
		os.Stderr.WriteString("nbaelo: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration (.env -> defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := newService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Error(ctx, "closing store failed", logger.Error(err))
		}
	}()

	if _, err := svc.Run(ctx); err != nil {
		if !cfg.Serve {
			return err
		}
		log.Warn(ctx, "initial run failed; serving without ratings", logger.Error(err))
	}
	if !cfg.Serve {
		return nil
	}

	srv := api.NewServer(svc, log.Named("api"))
	svc.Subscribe(srv.Hub().Publish)

	stopRefresh, err := startRefresher(ctx, cfg, svc, log)
	if err != nil {
		return err
	}
	defer stopRefresh()
	return serve(ctx, cfg.Addr, srv.Router(), log)
}

// newService opens the configured store and builds the pipeline around it.
func newService(ctx context.Context, cfg *config.Config, log logger.Logger) (*app.Service, error) {
	schedule, err := cfg.Schedule()
	if err != nil {
		return nil, err
	}
	cutoff, err := cfg.Cutoff()
	if err != nil {
		return nil, err
	}

	store, err := repository.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	log.Info(ctx, "game store ready", logger.String("driver", cfg.DBDriver))

	opts := []app.Option{
		app.WithLogger(log.Named("service")),
		app.WithStore(store),
		app.WithSchedule(schedule),
		app.WithBootstrapCutoff(cutoff),
		app.WithInSeason(cfg.InSeason),
		app.WithCSVPath(cfg.CSVPath),
	}
	if cfg.FetchEnabled {
		opts = append(opts, app.WithFetcher(scoreboard.New(cfg.ScoreboardURL,
			scoreboard.WithTimeout(cfg.FetchTimeout()),
			scoreboard.WithLogger(log.Named("scoreboard")),
		)))
	}
	return app.New(opts...), nil
}

type runner interface {
	Run(ctx context.Context) (app.Summary, error)
}

// startRefresher reruns the pipeline on refresh_cron, or every
// refresh_minutes when no cron expression is set. The returned func stops it.
func startRefresher(ctx context.Context, cfg *config.Config, svc runner, log logger.Logger) (func(), error) {
	rerun := func() {
		if _, err := svc.Run(ctx); err != nil {
			log.Warn(ctx, "scheduled run failed", logger.Error(err))
		}
	}

	if cfg.RefreshCron != "" {
		c := cron.New()
		if _, err := c.AddFunc(cfg.RefreshCron, rerun); err != nil {
			return nil, fmt.Errorf("%w: refresh_cron: %w", config.ErrInvalidConfig, err)
		}
		c.Start()
		log.Info(ctx, "refresh scheduled", logger.String("cron", cfg.RefreshCron))
		return func() { <-c.Stop().Done() }, nil
	}

	every := cfg.RefreshInterval()
	if every <= 0 {
		return func() {}, nil
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-ticker.C:
				rerun()
			}
		}
	}()
	log.Info(ctx, "refresh scheduled", logger.Duration("every", every))
	return func() {
		close(stop)
		<-done
	}, nil
}

// serve runs the HTTP server until ctx is cancelled.
func serve(ctx context.Context, addr string, handler http.Handler, log logger.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%w: %w", api.ErrServe, err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info(ctx, "server stopped")
	return nil
}
