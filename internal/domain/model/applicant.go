// Package model contains domain models passed between layers.
package model

import "slices"

// ScoreCount is the fixed number of exam scores carried by every applicant.
const ScoreCount = 3

// Scores is the per-applicant score triple. The array type keeps the length fixed.
type Scores [ScoreCount]int

// Sum returns the total used for ranking.
func (s Scores) Sum() int {
	total := 0
	for _, v := range s {
		total += v
	}
	return total
}

// ApplicantRecord is one normalized row of an admission list.
type ApplicantRecord struct {
	ID       string   // applicant identifier, unique within one track
	Priority int      // track-local preference rank, 1 = most preferred
	Scores   Scores   // exam scores, zero when the source text was not numeric
	Raw      []string // source row, passed through untouched
}

// Clone returns a copy that shares no memory with r.
func (r ApplicantRecord) Clone() ApplicantRecord {
	r.Raw = slices.Clone(r.Raw)
	return r
}

// Track is one admission list in its original order.
// Seat capacities travel alongside tracks as a parallel slice.
type Track struct {
	Source  string
	Records []ApplicantRecord
}

// Clone deep-copies the track.
func (t Track) Clone() Track {
	out := Track{Source: t.Source, Records: make([]ApplicantRecord, len(t.Records))}
	for i, r := range t.Records {
		out.Records[i] = r.Clone()
	}
	return out
}

// Find returns the record with the given id.
func (t Track) Find(id string) (ApplicantRecord, bool) {
	for _, r := range t.Records {
		if r.ID == id {
			return r, true
		}
	}
	return ApplicantRecord{}, false
}

// LoadJob asks the loader pool to read the track at URL into slot Index.
type LoadJob struct {
	Index int
	URL   string
}
