package source

import "fmt"

// Defaults matching the published competition lists.
const (
	DefaultDelimiter       = ';'
	DefaultActiveStatus    = "Участвуете в конкурсе"
	DefaultNoConsentMarker = "\u2014" // em dash in the consent column
)

// Skip reasons reported per source row.
const (
	SkipShortRow        = "short_row"
	SkipInactiveStatus  = "inactive_status"
	SkipNoConsent       = "no_consent"
	SkipEmptyScores     = "empty_scores"
	SkipInvalidPriority = "invalid_priority"
	SkipMissingID       = "missing_id"
	SkipDuplicateID     = "duplicate_id"
)

// Schema names the zero-based column holding each field of a source row.
// Nothing past the reader depends on column positions.
type Schema struct {
	Priority int `koanf:"priority" json:"priority" yaml:"priority"`
	Consent  int `koanf:"consent" json:"consent" yaml:"consent"`
	Scores   int `koanf:"scores" json:"scores" yaml:"scores"`
	Status   int `koanf:"status" json:"status" yaml:"status"`
	ID       int `koanf:"id" json:"id" yaml:"id"`
}

// DefaultSchema returns the column layout of the published lists.
func DefaultSchema() Schema {
	return Schema{Priority: 1, Consent: 2, Scores: 4, Status: 6, ID: 7}
}

// Validate rejects negative column indices.
func (s Schema) Validate() error {
	for name, idx := range map[string]int{
		"priority": s.Priority, "consent": s.Consent, "scores": s.Scores, "status": s.Status, "id": s.ID,
	} {
		if idx < 0 {
			return fmt.Errorf("%w: column %q has index %d", ErrSchema, name, idx)
		}
	}
	return nil
}

// Width is the minimum number of columns a row needs.
func (s Schema) Width() int {
	return max(s.Priority, s.Consent, s.Scores, s.Status, s.ID) + 1
}
