package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound     = errors.New("moment not found")
	ErrInvalidLimit = errors.New("invalid query limit")
)
