package types

import "errors"

// Query errors shared by the service and the HTTP layer.
var (
	ErrNotReady    = errors.New("ratings not computed yet")
	ErrUnknownTeam = errors.New("unknown team")
)
