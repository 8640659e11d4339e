// Package scoring turns raw score text into score triples and orders
// applicants competing for the same seats.
package scoring

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/okian/cascade/internal/domain/model"
)

// ParseScores parses whitespace separated integer scores.
//
// Short lists are zero padded and extra values are ignored. Text that is not
// a list of non-negative integers (a withdrawal marker such as "Без", for
// example) yields all zeros; it is never an error.
func ParseScores(text string) model.Scores {
	var out model.Scores
	for i, tok := range strings.Fields(text) {
		v, err := strconv.Atoi(tok)
		if err != nil || v < 0 {
			return model.Scores{}
		}
		if i < model.ScoreCount {
			out[i] = v
		}
	}
	return out
}

// Contenders returns the records holding the track as their current first
// choice, ordered by descending score sum.
//
// The sort is stable: applicants with equal sums keep their list order.
// That order is the only tie-break, so callers must pass records in source order.
func Contenders(records []model.ApplicantRecord) []model.ApplicantRecord {
	out := make([]model.ApplicantRecord, 0, len(records))
	for _, r := range records {
		if r.Priority == 1 {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, ByScoreDesc)
	return out
}

// ByScoreDesc compares two records by descending score sum.
func ByScoreDesc(a, b model.ApplicantRecord) int {
	return cmp.Compare(b.Scores.Sum(), a.Scores.Sum())
}
