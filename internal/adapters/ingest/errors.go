package ingest

import "errors"

var (
	// ErrMissingColumn is returned when the CSV header lacks a required column.
	ErrMissingColumn = errors.New("missing column")
	// ErrMalformedRow is returned for rows that cannot be turned into a game.
	ErrMalformedRow = errors.New("malformed row")
)
