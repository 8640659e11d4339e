// Package report renders an applicant report for people and for machines.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/okian/cascade/internal/domain/types"
)

// Supported formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrUnknownFormat is returned for formats other than the supported ones.
var ErrUnknownFormat = errors.New("unknown report format")

// Render writes r to w in the given format.
func Render(w io.Writer, format string, r types.Report) error {
	switch format {
	case FormatText, "":
		return renderText(w, r)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func renderText(w io.Writer, r types.Report) error {
	for _, t := range r.Tracks {
		if _, err := fmt.Fprintf(w, "Track %d (%s): %s (min passing score: %s)\n",
			t.Index, t.Source, PlacementText(t.Placement), MinScoreText(t.MinScore)); err != nil {
			return err
		}
	}
	return nil
}

// PlacementText is the human form of a placement: the seat number when
// admitted, otherwise the reason there is none.
func PlacementText(p types.Placement) string {
	if p.Admitted() {
		return strconv.Itoa(p.Position)
	}
	switch p.Status {
	case "not_admitted":
		return fmt.Sprintf("not admitted (position %d)", p.Position)
	default:
		return "not listed"
	}
}

// MinScoreText is the human form of a passing score.
func MinScoreText(m types.MinScore) string {
	if m.Score == nil {
		return "no qualifiers"
	}
	s := strconv.Itoa(*m.Score)
	if m.Uncapped {
		s += ", uncapped"
	}
	return s
}
