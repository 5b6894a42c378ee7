package repository

import "errors"

// Sentinel kinds for snapshot and board errors.
var (
	ErrNotFound     = errors.New("subject not found")
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
	ErrNoSnapshot   = errors.New("snapshot not found")
	ErrCorrupt      = errors.New("snapshot corrupt")
)
