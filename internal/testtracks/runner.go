package testtracks

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/afs"

	"github.com/okian/cascade/internal/domain/allocation"
	"github.com/okian/cascade/pkg/logger"
)

// Run generates a fixture, checks that its allocation behaves, and writes it
// to cfg.OutDir.
func Run(ctx context.Context, cfg Config) error {
	start := time.Now()
	logger.Get().Info(ctx, "generating fixture",
		logger.Int("applicants", cfg.Applicants),
		logger.Int("tracks", cfg.Tracks),
		logger.Int("maxChoices", cfg.MaxChoices),
		logger.Any("seed", cfg.Seed),
		logger.String("encoding", cfg.Encoding))

	fx, err := Generate(cfg)
	if err != nil {
		return fmt.Errorf("fixture generation failed: %w", err)
	}

	if err := Verify(fx.Tracks, fx.Capacities); err != nil {
		return fmt.Errorf("fixture verification failed: %w", err)
	}

	res := allocation.Allocate(fx.Tracks, fx.Capacities)
	logger.Get().Info(ctx, "fixture allocation converged",
		logger.Int("passes", res.Stats.Passes),
		logger.Int("removals", res.Stats.Removals),
		logger.Int("demotions", res.Stats.Demotions))
	for i, t := range res.Tracks {
		logger.Get().Debug(ctx, "track",
			logger.String("source", t.Source),
			logger.Int("capacity", fx.Capacities[i]),
			logger.Int("before", len(fx.Tracks[i].Records)),
			logger.Int("after", len(t.Records)))
	}

	if _, err := Write(ctx, afs.New(), cfg, fx); err != nil {
		return fmt.Errorf("fixture write failed: %w", err)
	}

	logger.Get().Info(ctx, "fixture ready",
		logger.String("dir", cfg.OutDir),
		logger.String("myID", fx.MyID),
		logger.String("duration", time.Since(start).String()))
	return nil
}
