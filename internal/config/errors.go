package config

import "errors"

// Sentinel errors so callers can distinguish a malformed configuration
// from a failed load with errors.Is.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
