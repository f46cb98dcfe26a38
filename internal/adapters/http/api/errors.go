package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrServe      = errors.New("http serve failed")
	ErrHijack     = errors.New("response writer cannot be hijacked")
)
