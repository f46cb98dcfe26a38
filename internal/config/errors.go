package config

import "errors"

// Sentinel error kinds for this package.
var (
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig wraps failures reading .env, the YAML file or env vars.
	ErrLoadConfig = errors.New("load config failed")
	// ErrBadDate marks a date that is not YYYY-MM-DD; it is always
	// wrapped together with ErrInvalidConfig.
	ErrBadDate = errors.New("date must be YYYY-MM-DD")
)
