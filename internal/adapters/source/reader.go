// Package source reads admission lists into normalized tracks.
//
// Lists are delimited text files, UTF-8 or Windows-1251, with one applicant
// per row. The reader applies the row filters of the published lists (active
// status, submitted consent, present scores) and absorbs per-row anomalies by
// skipping or zeroing instead of failing.
package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/viant/afs"
	"golang.org/x/text/encoding/charmap"

	"github.com/okian/cascade/internal/domain/dedupe"
	"github.com/okian/cascade/internal/domain/model"
	"github.com/okian/cascade/internal/domain/scoring"
	"github.com/okian/cascade/pkg/logger"
	"github.com/okian/cascade/pkg/metrics"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Summary counts what happened to the rows of one source.
type Summary struct {
	Loaded  int
	Skipped map[string]int
}

// Reader loads tracks from files or URLs.
type Reader struct {
	fs              afs.Service
	schema          Schema
	delimiter       rune
	skipHeader      bool
	activeStatus    string
	noConsentMarker string
	logger          logger.Logger
}

// Option applies a configuration option to the Reader.
type Option func(*Reader)

// WithSchema sets the column layout.
func WithSchema(s Schema) Option {
	return func(r *Reader) { r.schema = s }
}

// WithDelimiter sets the field delimiter.
func WithDelimiter(d rune) Option {
	return func(r *Reader) {
		if d != 0 {
			r.delimiter = d
		}
	}
}

// WithSkipHeader controls whether the first row is treated as a header.
func WithSkipHeader(skip bool) Option {
	return func(r *Reader) { r.skipHeader = skip }
}

// WithActiveStatus keeps only rows whose status equals status; empty disables the filter.
func WithActiveStatus(status string) Option {
	return func(r *Reader) { r.activeStatus = status }
}

// WithNoConsentMarker drops rows whose consent column equals marker; empty disables the filter.
func WithNoConsentMarker(marker string) Option {
	return func(r *Reader) { r.noConsentMarker = marker }
}

// WithFS sets the storage service used to fetch sources.
func WithFS(fs afs.Service) Option {
	return func(r *Reader) {
		if fs != nil {
			r.fs = fs
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Reader) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewReader creates a Reader for the published list layout.
func NewReader(opts ...Option) *Reader {
	r := &Reader{
		schema:          DefaultSchema(),
		delimiter:       DefaultDelimiter,
		skipHeader:      true,
		activeStatus:    DefaultActiveStatus,
		noConsentMarker: DefaultNoConsentMarker,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.fs == nil {
		r.fs = afs.New()
	}
	if r.logger == nil {
		r.logger = logger.Get().Named("source")
	}
	return r
}

// Load reads the track at URL. A missing source is not an error: it is
// logged and yields an empty track so the remaining tracks still allocate.
func (r *Reader) Load(ctx context.Context, URL string) (model.Track, error) {
	start := time.Now()
	defer func() {
		metrics.RecordLoadLatency(float64(time.Since(start).Milliseconds()))
	}()

	exists, err := r.fs.Exists(ctx, URL)
	if err != nil {
		metrics.RecordLoadError()
		return model.Track{}, fmt.Errorf("%w: %s: %w", ErrRead, URL, err)
	}
	if !exists {
		r.logger.Warn(ctx, "track source not found, skipping", logger.String("url", URL))
		return model.Track{Source: URL}, nil
	}

	data, err := r.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		metrics.RecordLoadError()
		return model.Track{}, fmt.Errorf("%w: %s: %w", ErrRead, URL, err)
	}

	track, summary, err := r.Parse(ctx, URL, data)
	if err != nil {
		metrics.RecordLoadError()
		return model.Track{}, err
	}

	metrics.RecordRecordsLoaded(summary.Loaded)
	for reason, n := range summary.Skipped {
		metrics.RecordRecordsSkipped(reason, n)
	}
	r.logger.Debug(ctx, "track loaded",
		logger.String("url", URL),
		logger.Int("records", summary.Loaded),
		logger.Any("skipped", summary.Skipped),
	)
	return track, nil
}

// Parse decodes raw bytes from src into a track.
func (r *Reader) Parse(ctx context.Context, src string, data []byte) (model.Track, Summary, error) {
	summary := Summary{Skipped: map[string]int{}}
	track := model.Track{Source: src}

	cr := csv.NewReader(bytes.NewReader(decode(data)))
	cr.Comma = r.delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	seen := dedupe.NewInMemoryDeduper()
	width := r.schema.Width()
	for line := 1; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return model.Track{}, summary, fmt.Errorf("%w: %s line %d: %w", ErrMalformed, src, line, err)
		}
		if line == 1 && r.skipHeader {
			continue
		}
		if len(row) < width {
			summary.Skipped[SkipShortRow]++
			continue
		}

		rec, reason := r.record(row)
		if reason == "" && seen.SeenAndRecord(ctx, rec.ID) {
			reason = SkipDuplicateID
		}
		if reason != "" {
			summary.Skipped[reason]++
			continue
		}
		track.Records = append(track.Records, rec)
		summary.Loaded++
	}
	return track, summary, nil
}

// record normalizes one row, or names the reason it is skipped.
func (r *Reader) record(row []string) (model.ApplicantRecord, string) {
	if r.activeStatus != "" && strings.TrimSpace(row[r.schema.Status]) != r.activeStatus {
		return model.ApplicantRecord{}, SkipInactiveStatus
	}
	if r.noConsentMarker != "" && strings.TrimSpace(row[r.schema.Consent]) == r.noConsentMarker {
		return model.ApplicantRecord{}, SkipNoConsent
	}
	scoreText := row[r.schema.Scores]
	if strings.TrimSpace(scoreText) == "" {
		return model.ApplicantRecord{}, SkipEmptyScores
	}
	priority, err := strconv.Atoi(strings.TrimSpace(row[r.schema.Priority]))
	if err != nil || priority < 1 {
		return model.ApplicantRecord{}, SkipInvalidPriority
	}
	id := strings.TrimSpace(row[r.schema.ID])
	if id == "" {
		return model.ApplicantRecord{}, SkipMissingID
	}
	return model.ApplicantRecord{
		ID:       id,
		Priority: priority,
		Scores:   scoring.ParseScores(scoreText),
		Raw:      row,
	}, ""
}

// decode returns UTF-8 text, falling back to Windows-1251 for legacy exports.
func decode(data []byte) []byte {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data
	}
	out, err := charmap.Windows1251.NewDecoder().Bytes(data)
	if err != nil {
		return data
	}
	return out
}
