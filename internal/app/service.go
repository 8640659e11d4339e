// Package service orchestrates allocation runs and serves their results to
// the CLI and the HTTP API.
//
// A run loads every configured track through the loader pool, allocates
// seats, publishes the outcome as a snapshot and builds the report for the
// configured applicant. Read methods answer from the latest snapshot only.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/okian/cascade/internal/adapters/mq/queue"
	"github.com/okian/cascade/internal/adapters/mq/worker"
	"github.com/okian/cascade/internal/adapters/repository"
	"github.com/okian/cascade/internal/adapters/source"
	"github.com/okian/cascade/internal/config"
	"github.com/okian/cascade/internal/domain/allocation"
	"github.com/okian/cascade/internal/domain/model"
	"github.com/okian/cascade/internal/domain/scoring"
	"github.com/okian/cascade/internal/domain/types"
	"github.com/okian/cascade/pkg/logger"
	"github.com/okian/cascade/pkg/metrics"
)

// Service implements the API dependencies for the allocation simulator.
type Service struct {
	runMu sync.Mutex // held for the duration of a run
	mu    sync.RWMutex

	// Core components
	loader worker.Loader
	store  repository.Store

	// Configuration
	files       []string
	capacities  []int
	applicantID string
	workerCount int
	queueSize   int

	// State
	runs      int
	failures  int
	lastErr   error
	lastRun   time.Duration
	startedAt time.Time

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   1024,
		startedAt:   time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.loader == nil {
		s.loader = source.NewReader()
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	return s
}

// NewFromConfig builds a Service and its track reader from cfg. Extra
// options are applied last.
func NewFromConfig(cfg *config.Config, opts ...Option) *Service {
	reader := source.NewReader(
		source.WithSchema(cfg.Columns),
		source.WithDelimiter(cfg.DelimiterRune()),
		source.WithSkipHeader(cfg.SkipHeader),
		source.WithActiveStatus(cfg.ActiveStatus),
		source.WithNoConsentMarker(cfg.NoConsentMarker),
	)
	base := []Option{
		WithTracks(cfg.Files, cfg.BudgetPlaces),
		WithApplicant(cfg.MyID),
		WithWorkerCount(cfg.LoaderWorkers),
		WithQueueSize(cfg.QueueSize),
		WithLoader(reader),
	}
	return New(append(base, opts...)...)
}

// Run loads all tracks, allocates seats, publishes the result and returns the
// report for the configured applicant. Input problems are reported before any
// file is read. Only one run executes at a time; a concurrent call fails
// with ErrRunInProgress.
func (s *Service) Run(ctx context.Context) (types.Report, error) {
	if !s.runMu.TryLock() {
		return types.Report{}, ErrRunInProgress
	}
	defer s.runMu.Unlock()

	start := time.Now()
	report, err := s.run(ctx)

	s.mu.Lock()
	s.runs++
	s.lastRun = time.Since(start)
	s.lastErr = err
	if err != nil {
		s.failures++
	}
	s.mu.Unlock()

	if err != nil {
		metrics.RecordErrorByComponent("service", "run_failed")
		s.logger.Error(ctx, "allocation run failed", logger.Error(err))
		return types.Report{}, err
	}
	return report, nil
}

func (s *Service) run(ctx context.Context) (types.Report, error) {
	if len(s.files) == 0 {
		return types.Report{}, ErrNoTracks
	}
	if err := allocation.Validate(make([]model.Track, len(s.files)), s.capacities); err != nil {
		return types.Report{}, err
	}

	tracks, err := s.load(ctx)
	if err != nil {
		return types.Report{}, err
	}

	start := time.Now()
	res := allocation.AllocateObserved(tracks, s.capacities, func(pass int, sizes []int) {
		s.logger.Debug(ctx, "allocation pass", logger.Int("pass", pass), logger.Any("sizes", sizes))
	})
	elapsed := time.Since(start)

	metrics.RecordAllocationRun(float64(elapsed.Milliseconds()), res.Stats.Passes, res.Stats.Removals, res.Stats.Demotions)
	metrics.UpdateTrackCount(len(res.Tracks))
	for i, t := range res.Tracks {
		metrics.UpdateTrackSizes(s.files[i], len(t.Records), len(scoring.Contenders(t.Records)))
	}

	snap, err := s.store.Publish(ctx, repository.Snapshot{
		Sources:    s.files,
		Capacities: s.capacities,
		Tracks:     res.Tracks,
		Stats:      res.Stats,
	})
	if err != nil {
		return types.Report{}, fmt.Errorf("publish snapshot: %w", err)
	}

	s.logger.Info(ctx, "allocation finished",
		logger.String("run_id", snap.RunID),
		logger.Int("tracks", len(snap.Tracks)),
		logger.Int("passes", res.Stats.Passes),
		logger.Int("removals", res.Stats.Removals),
		logger.Int("demotions", res.Stats.Demotions),
		logger.String("duration", elapsed.String()),
	)
	return buildReport(snap, s.applicantID), nil
}

// load reads every track through the worker pool and returns them in
// configured order.
func (s *Service) load(ctx context.Context) ([]model.Track, error) {
	q := queue.NewInMemoryQueue(queue.WithCapacity(max(s.queueSize, len(s.files))))
	for i, f := range s.files {
		if err := q.Enqueue(ctx, queue.Job{Index: i, URL: f}); err != nil {
			return nil, fmt.Errorf("%w: enqueue %s: %w", ErrLoadTracks, f, err)
		}
	}
	if err := q.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadTracks, err)
	}

	sink := newCollector(len(s.files))
	pool := worker.NewPool(min(s.workerCount, len(s.files)), q, s.loader, sink)
	pool.Start(ctx)
	pool.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadTracks, err)
	}
	return sink.result()
}

// Report returns the report for the configured applicant from the latest run.
func (s *Service) Report(ctx context.Context) (types.Report, error) {
	return s.Rank(ctx, s.applicantID)
}

// Rank returns the placements of applicantID in every track of the latest run.
// A missing snapshot is reported before the id is checked.
func (s *Service) Rank(ctx context.Context, applicantID string) (types.Report, error) {
	snap, err := s.store.Latest(ctx)
	if err != nil {
		return types.Report{}, err
	}
	applicantID = strings.TrimSpace(applicantID)
	if applicantID == "" {
		return types.Report{}, ErrInvalidApplicant
	}
	return buildReport(snap, applicantID), nil
}

// Tracks summarizes every final track of the latest run.
func (s *Service) Tracks(ctx context.Context) ([]types.TrackSummary, error) {
	snap, err := s.store.Latest(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.TrackSummary, len(snap.Tracks))
	for i, t := range snap.Tracks {
		out[i] = summarize(i, sourceOf(snap, i), t, snap.Capacities[i])
	}
	return out, nil
}

// Standings lists the contenders of track index (1-based) in seat order.
func (s *Service) Standings(ctx context.Context, index int) (types.Standings, error) {
	t, capacity, err := s.store.Track(ctx, index-1)
	if err != nil {
		return types.Standings{}, err
	}

	contenders := scoring.Contenders(t.Records)
	out := types.Standings{
		TrackSummary: summarize(index-1, t.Source, t, capacity),
		Entries:      make([]types.StandingEntry, len(contenders)),
	}
	for i, r := range contenders {
		out.Entries[i] = types.StandingEntry{
			Position:    i + 1,
			ApplicantID: r.ID,
			Scores:      r.Scores,
			Sum:         r.Scores.Sum(),
			Admitted:    i < capacity,
		}
	}
	return out, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"tracks":       len(s.files),
		"workerCount":  s.workerCount,
		"queueSize":    s.queueSize,
		"runs":         s.runs,
		"failedRuns":   s.failures,
		"snapshots":    s.store.Count(ctx),
		"lastRunMs":    s.lastRun.Milliseconds(),
		"uptimeSecond": int64(time.Since(s.startedAt).Seconds()),
	}
	if s.lastErr != nil {
		stats["lastError"] = s.lastErr.Error()
	}
	if snap, err := s.store.Latest(ctx); err == nil {
		stats["runId"] = snap.RunID
		stats["runAt"] = snap.CreatedAt.Format(time.RFC3339)
		stats["passes"] = snap.Stats.Passes
	}
	return stats
}

func buildReport(snap repository.Snapshot, applicantID string) types.Report {
	r := types.Report{
		RunID:       snap.RunID,
		CreatedAt:   snap.CreatedAt,
		ApplicantID: applicantID,
		Tracks:      make([]types.TrackReport, len(snap.Tracks)),
		Stats:       types.NewRunStats(snap.Stats),
	}
	for i, t := range snap.Tracks {
		capacity := snap.Capacities[i]
		score, ok := allocation.MinQualifyingScore(t, capacity)
		r.Tracks[i] = types.TrackReport{
			Index:     i + 1,
			Source:    sourceOf(snap, i),
			Capacity:  capacity,
			Placement: types.NewPlacement(allocation.Rank(t, applicantID, capacity)),
			MinScore:  types.NewMinScore(score, ok, capacity),
		}
	}
	return r
}

func summarize(i int, src string, t model.Track, capacity int) types.TrackSummary {
	score, ok := allocation.MinQualifyingScore(t, capacity)
	return types.TrackSummary{
		Index:      i + 1,
		Source:     src,
		Capacity:   capacity,
		Records:    len(t.Records),
		Contenders: len(scoring.Contenders(t.Records)),
		MinScore:   types.NewMinScore(score, ok, capacity),
	}
}

func sourceOf(snap repository.Snapshot, i int) string {
	if i < len(snap.Sources) {
		return snap.Sources[i]
	}
	return snap.Tracks[i].Source
}

// collector gathers worker results by job index.
type collector struct {
	mu     sync.Mutex
	tracks []model.Track
	done   []bool
	errs   []error
}

func newCollector(n int) *collector {
	return &collector{tracks: make([]model.Track, n), done: make([]bool, n)}
}

func (c *collector) Deliver(_ context.Context, r worker.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r.Err != nil {
		c.errs = append(c.errs, r.Err)
		return
	}
	c.tracks[r.Index] = r.Track
	c.done[r.Index] = true
}

func (c *collector) result() ([]model.Track, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrLoadTracks, errors.Join(c.errs...))
	}
	for i, ok := range c.done {
		if !ok {
			return nil, fmt.Errorf("%w: track %d was never loaded", ErrLoadTracks, i+1)
		}
	}
	return c.tracks, nil
}
