package allocation

import "errors"

// Sentinel kinds for input validation. These allow errors.Is/As from callers.
var (
	ErrTrackCountMismatch = errors.New("track count does not match capacity count")
	ErrNegativeCapacity   = errors.New("negative capacity")
)
