package verify

import (
	"errors"
	"fmt"
	"math"

	"github.com/okian/nbaelo/internal/domain/rating"
	"github.com/okian/nbaelo/internal/domain/types"
)

var (
	// ErrTable is returned when the published table is inconsistent.
	ErrTable = errors.New("inconsistent rating table")
	// ErrNotIdempotent is returned when a second replay changes anything.
	ErrNotIdempotent = errors.New("replay is not idempotent")
)

// verifyTable checks ordering and rank numbering.
func verifyTable(entries []types.Entry) error {
	if len(entries) == 0 {
		return fmt.Errorf("%w: empty table", ErrTable)
	}
	if entries[0].Rank != 1 {
		return fmt.Errorf("%w: first rank is %d", ErrTable, entries[0].Rank)
	}
	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		switch {
		case cur.Rating > prev.Rating:
			return fmt.Errorf("%w: %s (%.3f) listed below %s (%.3f)", ErrTable, cur.Team, cur.Rating, prev.Team, prev.Rating)
		case cur.Rating == prev.Rating && cur.Rank != prev.Rank:
			return fmt.Errorf("%w: tied teams %s and %s have different ranks", ErrTable, prev.Team, cur.Team)
		case cur.Rating < prev.Rating && cur.Rank != i+1:
			return fmt.Errorf("%w: %s has rank %d, want %d", ErrTable, cur.Team, cur.Rank, i+1)
		}
	}
	return nil
}

// verifyIdempotent checks that a replay over fully rated history did nothing.
func verifyIdempotent(second types.RunSummary, before, after []types.Entry) error {
	if second.Rated != 0 || second.Transitions != 0 {
		return fmt.Errorf("%w: second run rated %d games over %d transitions", ErrNotIdempotent, second.Rated, second.Transitions)
	}
	if len(before) != len(after) {
		return fmt.Errorf("%w: table size changed from %d to %d", ErrNotIdempotent, len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			return fmt.Errorf("%w: %+v became %+v", ErrNotIdempotent, before[i], after[i])
		}
	}
	return nil
}

// meanDrift returns the mean rating and its distance from the baseline.
// Updates are zero-sum and regression pulls toward the baseline, so a
// large drift points at an import or alias problem.
func meanDrift(entries []types.Entry) (mean, drift float64) {
	if len(entries) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, e := range entries {
		sum += e.Rating
	}
	mean = sum / float64(len(entries))
	return mean, math.Abs(mean - rating.Baseline)
}
