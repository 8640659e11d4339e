// Package allocation implements cascading-priority seat allocation across
// several admission tracks and the queries that read its outcome.
//
// Every applicant lists tracks in preference order. A track admits its best
// scoring applicants among those who currently hold it as their first choice.
// Applicants admitted somewhere are removed from every other track, and the
// remaining applicants elsewhere advance one step in their preferences. This
// repeats until nothing changes.
package allocation

import (
	"fmt"

	"github.com/okian/cascade/internal/domain/model"
	"github.com/okian/cascade/internal/domain/scoring"
)

// Stats describes how an allocation run converged.
type Stats struct {
	Passes    int // full passes, including the final unchanged one
	Removals  int // records removed because their applicant won elsewhere
	Demotions int // priority decrements applied
}

// Observer is told the size of every track after each pass.
type Observer func(pass int, sizes []int)

// Result is the fixed point reached by Allocate.
type Result struct {
	Tracks []model.Track
	Stats  Stats
}

// Validate checks the caller side of the Allocate contract. It must be called
// before any allocation work; Allocate itself does not re-check its input.
func Validate(tracks []model.Track, capacities []int) error {
	if len(tracks) != len(capacities) {
		return fmt.Errorf("%w: %d tracks, %d capacities", ErrTrackCountMismatch, len(tracks), len(capacities))
	}
	for i, c := range capacities {
		if c < 0 {
			return fmt.Errorf("%w: track %d has capacity %d", ErrNegativeCapacity, i+1, c)
		}
	}
	return nil
}

// Allocate runs passes over tracks until a pass changes nothing.
//
// tracks and capacities are parallel and must have equal length (see Validate).
// The caller's tracks are never modified; the result holds fresh copies.
//
// Within a pass tracks are visited in slice order. For track i the first
// capacities[i] contenders win; then, in every other track j, winners of i are
// removed and each remaining record with priority > 1 is decremented.
// Winners of track i therefore affect tracks after i within the same pass and
// tracks before i only in the next pass. Results depend on this order.
//
// Termination: priorities are integers that only decrease and never drop below
// 1, and track membership only shrinks. A pass that changes anything lowers the
// sum of all priorities plus all memberships, which is bounded below by zero,
// so the loop ends after a bounded number of passes.
func Allocate(tracks []model.Track, capacities []int) Result {
	return AllocateObserved(tracks, capacities, nil)
}

// AllocateObserved is Allocate with a per-pass observer; obs may be nil.
func AllocateObserved(tracks []model.Track, capacities []int, obs Observer) Result {
	state := make([]model.Track, len(tracks))
	for i, t := range tracks {
		state[i] = t.Clone()
	}

	var stats Stats
	for changed := true; changed; {
		changed = false
		stats.Passes++
		for i := range state {
			winners := winnersOf(state[i], capacities[i])
			for j := range state {
				if j == i {
					continue
				}
				removed, demoted := settle(&state[j], winners)
				stats.Removals += removed
				stats.Demotions += demoted
				if removed > 0 || demoted > 0 {
					changed = true
				}
			}
		}
		if obs != nil {
			obs(stats.Passes, sizes(state))
		}
	}
	return Result{Tracks: state, Stats: stats}
}

func sizes(tracks []model.Track) []int {
	out := make([]int, len(tracks))
	for i, t := range tracks {
		out[i] = len(t.Records)
	}
	return out
}

// winnersOf returns the ids admitted by a track in its current state.
func winnersOf(t model.Track, capacity int) map[string]struct{} {
	ranked := scoring.Contenders(t.Records)
	if capacity < len(ranked) {
		ranked = ranked[:capacity]
	}
	winners := make(map[string]struct{}, len(ranked))
	for _, r := range ranked {
		winners[r.ID] = struct{}{}
	}
	return winners
}

// settle drops winners committed elsewhere from t, then advances every
// remaining record that is not yet at priority 1. Removal always comes first.
func settle(t *model.Track, winners map[string]struct{}) (removed, demoted int) {
	kept := t.Records[:0]
	for _, r := range t.Records {
		if _, won := winners[r.ID]; won {
			removed++
			continue
		}
		if r.Priority > 1 {
			r.Priority--
			demoted++
		}
		kept = append(kept, r)
	}
	clear(t.Records[len(kept):])
	t.Records = kept
	return removed, demoted
}
