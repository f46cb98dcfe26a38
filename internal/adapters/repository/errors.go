package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrUnknownDriver = errors.New("unknown store driver")
	ErrStore         = errors.New("game store")
)
