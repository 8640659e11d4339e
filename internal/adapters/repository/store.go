// Package repository holds the published allocation snapshots.
package repository

import (
	"context"
	"slices"
	"time"

	"github.com/okian/cascade/internal/domain/allocation"
	"github.com/okian/cascade/internal/domain/model"
)

// Snapshot is one completed allocation run. It is never modified after
// publication; readers share it freely.
type Snapshot struct {
	RunID      string
	CreatedAt  time.Time
	Sources    []string
	Capacities []int
	Tracks     []model.Track // final tracks, parallel to Capacities
	Stats      allocation.Stats
}

// Store provides read/write access to the allocation state.
type Store interface {
	// Publish stores snap as the latest run and returns it with RunID and
	// CreatedAt filled in.
	Publish(ctx context.Context, snap Snapshot) (Snapshot, error)

	// Latest returns the most recent snapshot.
	// Returns ErrNoSnapshot before the first publication.
	Latest(ctx context.Context) (Snapshot, error)

	// Track returns the final track at zero-based index and its capacity.
	// Returns ErrTrackNotFound if the index is out of range.
	Track(ctx context.Context, index int) (model.Track, int, error)

	// Count returns the number of snapshots published so far.
	Count(ctx context.Context) int
}

func cloneSnapshot(s Snapshot) Snapshot {
	s.Sources = slices.Clone(s.Sources)
	s.Capacities = slices.Clone(s.Capacities)
	tracks := make([]model.Track, len(s.Tracks))
	for i, t := range s.Tracks {
		tracks[i] = t.Clone()
	}
	s.Tracks = tracks
	return s
}
