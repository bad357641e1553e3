package domain

import "errors"

// common domain errors that cross entity boundaries.
var (
	ErrNotFound     = errors.New("entity not found")
	ErrInvalidInput = errors.New("invalid input")
)
