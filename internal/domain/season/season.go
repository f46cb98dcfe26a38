// Package season models in-season date ranges and the transition policy
// applied between them.
package season

import (
	"errors"
	"fmt"
	"time"

	"github.com/okian/nbaelo/internal/domain/model"
	"github.com/okian/nbaelo/internal/domain/rating"
)

// ErrInvalidSchedule is returned for unordered, overlapping or inverted seasons.
var ErrInvalidSchedule = errors.New("invalid season schedule")

// Season is an inclusive calendar date range of competitive play.
type Season struct {
	Start time.Time
	End   time.Time
}

// New builds a season from two YYYY-MM-DD dates.
func New(start, end string) (Season, error) {
	s, err := time.Parse(model.DateLayout, start)
	if err != nil {
		return Season{}, fmt.Errorf("%w: start %q: %v", ErrInvalidSchedule, start, err)
	}
	e, err := time.Parse(model.DateLayout, end)
	if err != nil {
		return Season{}, fmt.Errorf("%w: end %q: %v", ErrInvalidSchedule, end, err)
	}
	return Season{Start: s, End: e}, nil
}

// Contains reports whether t falls on a date inside the season.
func (s Season) Contains(t time.Time) bool {
	d := model.Day(t)
	return !d.Before(model.Day(s.Start)) && !d.After(model.Day(s.End))
}

func (s Season) String() string {
	return s.Start.Format(model.DateLayout) + ".." + s.End.Format(model.DateLayout)
}

// Schedule is an ascending list of non-overlapping seasons.
type Schedule []Season

// Validate checks ordering and overlap.
func (sc Schedule) Validate() error {
	for i, s := range sc {
		if model.Day(s.End).Before(model.Day(s.Start)) {
			return fmt.Errorf("%w: season %d ends before it starts (%s)", ErrInvalidSchedule, i, s)
		}
		if i == 0 {
			continue
		}
		prev := sc[i-1]
		if !model.Day(s.Start).After(model.Day(prev.End)) {
			return fmt.Errorf("%w: season %d (%s) overlaps or precedes season %d (%s)", ErrInvalidSchedule, i, s, i-1, prev)
		}
	}
	return nil
}

// Find returns the index of the season containing t, or -1 when t falls in
// an off-season gap.
func (sc Schedule) Find(t time.Time) int {
	for i, s := range sc {
		if s.Contains(t) {
			return i
		}
	}
	return -1
}

// Default returns the 2015-16 through 2017-18 seasons, playoffs included.
func Default() Schedule {
	return Schedule{
		mustNew("2015-10-27", "2016-06-02"),
		mustNew("2016-10-25", "2017-06-01"),
		mustNew("2017-10-17", "2018-06-17"),
	}
}

// Regress applies the between-season transition in place to every team
// accepted by crossed, or to every team when crossed is nil. It returns
// how many teams moved.
func Regress(r model.Ratings, crossed func(team string) bool) int {
	n := 0
	for team, v := range r {
		if crossed != nil && !crossed(team) {
			continue
		}
		r[team] = rating.Regress(v)
		n++
	}
	return n
}

func mustNew(start, end string) Season {
	s, err := New(start, end)
	if err != nil {
		panic(err)
	}
	return s
}
