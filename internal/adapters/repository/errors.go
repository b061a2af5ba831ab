package repository

import "errors"

// Sentinel kinds for document store errors.
var (
	ErrEmptyKey = errors.New("document key must not be empty")
)
