package repository

import "errors"

// Sentinel kinds for ranking store errors.
var (
	ErrNotFound      = errors.New("team not found")
	ErrInvalidLimit  = errors.New("invalid rankings limit")
	ErrInvalidReport = errors.New("invalid match report")
)
