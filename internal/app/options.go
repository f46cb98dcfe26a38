package service

import (
	"time"

	"github.com/okian/nbaelo/internal/adapters/ingest"
	"github.com/okian/nbaelo/internal/adapters/repository"
	"github.com/okian/nbaelo/internal/domain/season"
	"github.com/okian/nbaelo/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the game store.
func WithStore(store repository.Store) Option {
	return func(s *Service) { s.store = store }
}

// WithFetcher enables fetching new results before each replay.
func WithFetcher(f Fetcher) Option {
	return func(s *Service) { s.fetcher = f }
}

// WithImporter replaces the historical importer.
func WithImporter(im Importer) Option {
	return func(s *Service) {
		if im != nil {
			s.importer = im
		}
	}
}

// WithCSVPath sets the historical file imported into an empty store.
func WithCSVPath(path string) Option {
	return func(s *Service) { s.csvPath = path }
}

// WithNormalizer replaces the team alias table.
func WithNormalizer(n ingest.Normalizer) Option {
	return func(s *Service) { s.norm = n }
}

// WithSchedule sets the seasons replayed.
func WithSchedule(schedule season.Schedule) Option {
	return func(s *Service) {
		if len(schedule) > 0 {
			s.schedule = schedule
		}
	}
}

// WithBootstrapCutoff sets the date after which appearances define the team set.
func WithBootstrapCutoff(t time.Time) Option {
	return func(s *Service) {
		if !t.IsZero() {
			s.cutoff = t
		}
	}
}

// WithInSeason marks the first pending season as already under way for the
// first successful run only; later runs cross every boundary they reach.
func WithInSeason(inSeason bool) Option {
	return func(s *Service) { s.inSeason = inSeason }
}

// WithClock overrides the time source used as the fetch window end.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
