package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNoTracks         = errors.New("no tracks configured")
	ErrLoadTracks       = errors.New("load tracks failed")
	ErrInvalidApplicant = errors.New("invalid applicant id")
	ErrRunInProgress    = errors.New("allocation run in progress")
)
