package allocation

import (
	"github.com/okian/cascade/internal/domain/model"
	"github.com/okian/cascade/internal/domain/scoring"
)

// Status is the outcome of a rank lookup.
type Status int

const (
	// NotListed means the applicant is not a first-priority contender of the track.
	NotListed Status = iota
	// Admitted means the applicant ranks within capacity.
	Admitted
	// NotAdmitted means the applicant is a contender ranked beyond capacity.
	NotAdmitted
)

// String returns the wire name of the status.
func (s Status) String() string {
	switch s {
	case Admitted:
		return "admitted"
	case NotAdmitted:
		return "not_admitted"
	default:
		return "not_listed"
	}
}

// Placement is where an applicant stands in a finalized track.
type Placement struct {
	Status   Status
	Position int // 1-based among contenders, 0 when not listed
}

// Rank locates applicantID among the contenders of a finalized track.
func Rank(track model.Track, applicantID string, capacity int) Placement {
	for i, r := range scoring.Contenders(track.Records) {
		if r.ID != applicantID {
			continue
		}
		pos := i + 1
		if pos <= capacity {
			return Placement{Status: Admitted, Position: pos}
		}
		return Placement{Status: NotAdmitted, Position: pos}
	}
	return Placement{Status: NotListed}
}

// MinQualifyingScore reports the score sum needed for a seat in a finalized track.
//
// Contenders with a zero sum are treated as disqualified and ignored. When the
// remaining contenders do not outnumber capacity, or capacity is 0, every one
// of them qualifies and the weakest sum is returned; otherwise the sum of the
// contender holding the last seat. ok is false when nobody qualifies.
//
// Capacity 0 means "no winners" for Rank but "no cap" here; both readings are
// kept as they are.
func MinQualifyingScore(track model.Track, capacity int) (score int, ok bool) {
	var sums []int
	for _, r := range scoring.Contenders(track.Records) {
		if s := r.Scores.Sum(); s > 0 {
			sums = append(sums, s)
		}
	}
	if len(sums) == 0 {
		return 0, false
	}
	if len(sums) < capacity || capacity == 0 {
		return sums[len(sums)-1], true
	}
	return sums[capacity-1], true
}
