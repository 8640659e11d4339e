package testtracks

import (
	"errors"
	"fmt"
	"slices"

	"github.com/okian/cascade/internal/domain/allocation"
	"github.com/okian/cascade/internal/domain/model"
	"github.com/okian/cascade/internal/domain/scoring"
)

// Verify runs every check against one allocation of tracks and returns all
// violations joined.
func Verify(tracks []model.Track, capacities []int) error {
	res := allocation.Allocate(tracks, capacities)
	return errors.Join(
		CheckConservation(tracks, res),
		CheckExclusive(res, capacities),
		CheckIdempotent(res, capacities),
		CheckShrinking(tracks, capacities),
	)
}

// CheckConservation verifies that every output record comes from the same
// input track with unchanged scores and payload and a priority that only
// moved towards 1.
func CheckConservation(input []model.Track, res allocation.Result) error {
	if len(input) != len(res.Tracks) {
		return fmt.Errorf("track count changed from %d to %d", len(input), len(res.Tracks))
	}
	for i, out := range res.Tracks {
		seen := make(map[string]struct{}, len(out.Records))
		for _, r := range out.Records {
			if _, dup := seen[r.ID]; dup {
				return fmt.Errorf("track %d: id %s appears twice", i+1, r.ID)
			}
			seen[r.ID] = struct{}{}

			orig, ok := input[i].Find(r.ID)
			if !ok {
				return fmt.Errorf("track %d: id %s was not in the input", i+1, r.ID)
			}
			if r.Scores != orig.Scores || !slices.Equal(r.Raw, orig.Raw) {
				return fmt.Errorf("track %d: id %s changed scores or payload", i+1, r.ID)
			}
			if r.Priority < 1 || r.Priority > orig.Priority {
				return fmt.Errorf("track %d: id %s priority %d out of range [1, %d]", i+1, r.ID, r.Priority, orig.Priority)
			}
		}
	}
	return nil
}

// CheckExclusive verifies that a winner of any track is listed nowhere else.
func CheckExclusive(res allocation.Result, capacities []int) error {
	for i, t := range res.Tracks {
		ranked := scoring.Contenders(t.Records)
		ranked = ranked[:min(capacities[i], len(ranked))]
		for _, w := range ranked {
			for j, other := range res.Tracks {
				if j == i {
					continue
				}
				if _, ok := other.Find(w.ID); ok {
					return fmt.Errorf("id %s wins track %d but is still listed in track %d", w.ID, i+1, j+1)
				}
			}
		}
	}
	return nil
}

// CheckIdempotent verifies that allocating a fixed point again changes nothing.
func CheckIdempotent(res allocation.Result, capacities []int) error {
	again := allocation.Allocate(res.Tracks, capacities)
	if again.Stats.Passes != 1 {
		return fmt.Errorf("re-allocation took %d passes", again.Stats.Passes)
	}
	for i := range res.Tracks {
		if !equalTracks(res.Tracks[i], again.Tracks[i]) {
			return fmt.Errorf("track %d changed on re-allocation", i+1)
		}
	}
	return nil
}

// CheckShrinking verifies that no track ever grows from one pass to the next.
func CheckShrinking(input []model.Track, capacities []int) error {
	prev := make([]int, len(input))
	for i, t := range input {
		prev[i] = len(t.Records)
	}
	var violation error
	allocation.AllocateObserved(input, capacities, func(pass int, sizes []int) {
		for i, n := range sizes {
			if n > prev[i] && violation == nil {
				violation = fmt.Errorf("track %d grew from %d to %d in pass %d", i+1, prev[i], n, pass)
			}
		}
		copy(prev, sizes)
	})
	return violation
}

func equalTracks(a, b model.Track) bool {
	return slices.EqualFunc(a.Records, b.Records, func(x, y model.ApplicantRecord) bool {
		return x.ID == y.ID && x.Priority == y.Priority && x.Scores == y.Scores && slices.Equal(x.Raw, y.Raw)
	})
}
