// Package verify checks a running rating service end to end: it triggers
// replays over HTTP and verifies the published table.
package verify

import (
	"time"

	"github.com/okian/nbaelo/internal/domain/types"
)

// Config holds configuration for a verification run.
type Config struct {
	BaseURL   string        // Base URL of the service
	Timeout   time.Duration // HTTP request timeout
	Top       int           // Number of entries to print
	Tolerance float64       // Allowed distance of the mean rating from the baseline
}

// Report summarises a verification run.
type Report struct {
	First    types.RunSummary
	Second   types.RunSummary
	Teams    int
	Mean     float64
	Max      float64
	Min      float64
	Duration time.Duration
}
