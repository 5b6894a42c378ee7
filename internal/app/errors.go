package service

import "errors"

// Sentinel kinds for cycle errors.
var (
	ErrNotConfigured = errors.New("service dependency not configured")
	ErrCycleAborted  = errors.New("cycle aborted")
	ErrRoster        = errors.New("roster unavailable")
	ErrSave          = errors.New("snapshot save failed")
)
