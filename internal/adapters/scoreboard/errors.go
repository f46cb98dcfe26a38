package scoreboard

import "errors"

var (
	// ErrUpstream is returned when the scoreboard endpoint fails or answers
	// with a non-2xx status.
	ErrUpstream = errors.New("scoreboard upstream")
	// ErrPayload is returned when the response cannot be understood.
	ErrPayload = errors.New("scoreboard payload")
)
