package replay

import (
	"time"

	"github.com/okian/nbaelo/pkg/logger"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithBootstrapCutoff sets the date after which a team's appearance makes
// it part of the rating mapping.
func WithBootstrapCutoff(t time.Time) Option {
	return func(e *Engine) {
		e.cutoff = t
	}
}

// WithLogger sets the logger used for warnings and progress.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}
