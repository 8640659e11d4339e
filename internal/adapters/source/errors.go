package source

import "errors"

// Sentinel kinds for source errors. These allow errors.Is/As from callers.
var (
	ErrRead      = errors.New("read track source failed")
	ErrMalformed = errors.New("malformed track source")
	ErrSchema    = errors.New("invalid column schema")
)
