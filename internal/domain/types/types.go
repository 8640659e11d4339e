// Package types contains the report and API shapes shared across the application
package types

import (
	"time"

	"github.com/okian/cascade/internal/domain/allocation"
)

// Placement is an applicant's standing in one track
type Placement struct {
	Status   string `json:"status" yaml:"status"`
	Position int    `json:"position,omitempty" yaml:"position,omitempty"`
}

// NewPlacement converts an allocation placement to its wire form.
func NewPlacement(p allocation.Placement) Placement {
	return Placement{Status: p.Status.String(), Position: p.Position}
}

// Admitted reports whether the placement holds a seat.
func (p Placement) Admitted() bool {
	return p.Status == allocation.Admitted.String()
}

// MinScore is the passing score of a track. Score is nil when nobody qualifies.
// Uncapped marks tracks with capacity 0, where every nonzero scorer counts.
type MinScore struct {
	Score    *int `json:"score" yaml:"score"`
	Uncapped bool `json:"uncapped,omitempty" yaml:"uncapped,omitempty"`
}

// NewMinScore builds a MinScore from a min-score query result.
func NewMinScore(score int, ok bool, capacity int) MinScore {
	m := MinScore{Uncapped: capacity == 0}
	if ok {
		m.Score = &score
	}
	return m
}

// RunStats describes how the allocation converged
type RunStats struct {
	Passes    int `json:"passes" yaml:"passes"`
	Removals  int `json:"removals" yaml:"removals"`
	Demotions int `json:"demotions" yaml:"demotions"`
}

// NewRunStats converts engine statistics.
func NewRunStats(s allocation.Stats) RunStats {
	return RunStats{Passes: s.Passes, Removals: s.Removals, Demotions: s.Demotions}
}

// TrackReport is one line of an applicant report
type TrackReport struct {
	Index     int       `json:"index" yaml:"index"` // 1-based
	Source    string    `json:"source" yaml:"source"`
	Capacity  int       `json:"capacity" yaml:"capacity"`
	Placement Placement `json:"placement" yaml:"placement"`
	MinScore  MinScore  `json:"min_score" yaml:"min_score"`
}

// Report is the outcome of a run for one applicant
type Report struct {
	RunID       string        `json:"run_id" yaml:"run_id"`
	CreatedAt   time.Time     `json:"created_at" yaml:"created_at"`
	ApplicantID string        `json:"applicant_id" yaml:"applicant_id"`
	Tracks      []TrackReport `json:"tracks" yaml:"tracks"`
	Stats       RunStats      `json:"stats" yaml:"stats"`
}

// TrackSummary describes a final track without listing its members
type TrackSummary struct {
	Index      int      `json:"index"`
	Source     string   `json:"source"`
	Capacity   int      `json:"capacity"`
	Records    int      `json:"records"`
	Contenders int      `json:"contenders"`
	MinScore   MinScore `json:"min_score"`
}

// StandingEntry is one contender of a final track
type StandingEntry struct {
	Position    int    `json:"position"`
	ApplicantID string `json:"applicant_id"`
	Scores      [3]int `json:"scores"`
	Sum         int    `json:"sum"`
	Admitted    bool   `json:"admitted"`
}

// Standings lists the contenders of a final track in seat order
type Standings struct {
	TrackSummary
	Entries []StandingEntry `json:"entries"`
}
