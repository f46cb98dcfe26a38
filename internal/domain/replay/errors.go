package replay

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/nbaelo/internal/domain/model"
)

// Sentinel kinds for replay errors.
var (
	ErrMissingHistory  = errors.New("missing rating history")
	ErrMalformedRecord = errors.New("malformed game record")
	ErrNonFinite       = errors.New("non-finite rating")
)

// MissingHistoryError lists the teams that have no rated appearance to
// bootstrap from.
type MissingHistoryError struct {
	Teams []string
}

func (e *MissingHistoryError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingHistory, strings.Join(e.Teams, ", "))
}

// Is matches ErrMissingHistory.
func (e *MissingHistoryError) Is(target error) bool { return target == ErrMissingHistory }

// MalformedRecordError describes a record that could not be rated.
type MalformedRecordError struct {
	Index  int // position in the input collection
	GameID string
	Date   time.Time
	Reason string
	Err    error // optional underlying kind
}

func (e *MalformedRecordError) Error() string {
	ref := e.GameID
	if ref == "" {
		ref = fmt.Sprintf("#%d", e.Index)
	}
	msg := fmt.Sprintf("%s %s (%s): %s", ErrMalformedRecord, ref, e.Date.Format(model.DateLayout), e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches ErrMalformedRecord.
func (e *MalformedRecordError) Is(target error) bool { return target == ErrMalformedRecord }

func (e *MalformedRecordError) Unwrap() error { return e.Err }

func malformed(idx int, g *model.Game, reason string, err error) *MalformedRecordError {
	return &MalformedRecordError{Index: idx, GameID: g.GameID, Date: g.Date, Reason: reason, Err: err}
}
