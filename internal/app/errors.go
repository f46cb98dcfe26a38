package service

import (
	"errors"

	"github.com/okian/nbaelo/internal/domain/types"
)

var (
	// ErrNoStore is returned by Run when the service has no game store.
	ErrNoStore = errors.New("no game store configured")
	// ErrNotReady is returned by rating queries before the first run.
	ErrNotReady = types.ErrNotReady
	// ErrUnknownTeam is returned for a team absent from the rating table.
	ErrUnknownTeam = types.ErrUnknownTeam
)
