// Package testtracks generates synthetic admission lists, writes them in the
// published CSV layout and checks allocation outcomes against the properties
// every fixed point must have.
package testtracks

import (
	"github.com/okian/cascade/internal/domain/model"
)

// Output encodings understood by the writer.
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1251 = "windows-1251"
)

// Config holds configuration for fixture generation.
type Config struct {
	Applicants   int     // number of distinct applicants
	Tracks       int     // number of tracks
	MaxChoices   int     // most tracks a single applicant applies to
	MinCapacity  int     // smallest seat budget per track
	MaxCapacity  int     // largest seat budget per track
	WithdrawRate float64 // share of records carrying a withdrawal marker instead of scores
	Seed         uint64  // generator seed; equal seeds give equal fixtures
	OutDir       string  // directory or URL receiving the files
	Encoding     string  // EncodingUTF8 or EncodingWindows1251
	Verbose      bool    // enable debug logging
}

// DefaultConfig returns a small but non-trivial fixture setup.
func DefaultConfig() Config {
	return Config{
		Applicants:   500,
		Tracks:       5,
		MaxChoices:   3,
		MinCapacity:  10,
		MaxCapacity:  60,
		WithdrawRate: 0.03,
		Seed:         1,
		OutDir:       "fixtures",
		Encoding:     EncodingUTF8,
	}
}

// Fixture is a generated allocation input.
type Fixture struct {
	Tracks     []model.Track
	Capacities []int
	MyID       string // an applicant guaranteed to appear in at least one track
}
