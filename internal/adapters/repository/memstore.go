package repository

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/cascade/internal/domain/model"
	"github.com/okian/cascade/pkg/metrics"
)

// MemoryStore keeps the latest snapshot behind an atomic pointer, so readers
// never block a publication and always see a whole run.
type MemoryStore struct {
	latest    atomic.Pointer[Snapshot]
	published atomic.Int64

	now   func() time.Time
	newID func() string
}

// NewMemoryStore constructs an empty store with configuration options.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Publish implements Store.Publish. The store keeps its own copy of snap.
func (s *MemoryStore) Publish(_ context.Context, snap Snapshot) (Snapshot, error) {
	start := time.Now()
	if len(snap.Tracks) != len(snap.Capacities) {
		return Snapshot{}, fmt.Errorf("%w: %d tracks, %d capacities", ErrInvalidInput, len(snap.Tracks), len(snap.Capacities))
	}

	snap = cloneSnapshot(snap)
	if snap.RunID == "" {
		snap.RunID = s.newID()
	}
	snap.CreatedAt = s.now()
	s.latest.Store(&snap)
	s.published.Add(1)

	metrics.RecordSnapshotPublish(float64(time.Since(start).Milliseconds()), snap.CreatedAt.Unix())
	return snap, nil
}

// Latest implements Store.Latest.
func (s *MemoryStore) Latest(_ context.Context) (Snapshot, error) {
	snap := s.latest.Load()
	if snap == nil {
		return Snapshot{}, ErrNoSnapshot
	}
	return *snap, nil
}

// Track implements Store.Track.
func (s *MemoryStore) Track(ctx context.Context, index int) (model.Track, int, error) {
	snap, err := s.Latest(ctx)
	if err != nil {
		return model.Track{}, 0, err
	}
	if index < 0 || index >= len(snap.Tracks) {
		return model.Track{}, 0, fmt.Errorf("%w: %d of %d", ErrTrackNotFound, index+1, len(snap.Tracks))
	}
	return snap.Tracks[index], snap.Capacities[index], nil
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) int {
	return int(s.published.Load())
}
