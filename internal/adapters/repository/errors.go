package repository

import "errors"

// Sentinel kinds for snapshot lookups.
var (
	ErrNoSnapshot    = errors.New("no allocation published yet")
	ErrTrackNotFound = errors.New("track not found")
	ErrInvalidInput  = errors.New("invalid snapshot")
)
