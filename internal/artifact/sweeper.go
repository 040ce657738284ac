package artifact

import (
	"context"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"

	"github.com/couchcryptid/flood-sim-gateway/internal/observability"
)

// Sweeper periodically removes temporary rasters left behind by runs that
// never released their lease, e.g. after a crash.
type Sweeper struct {
	locator *Locator
	maxAge  time.Duration
	clock   clockwork.Clock
	cron    *cron.Cron
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewSweeper schedules a sweep on the given cron spec. Files younger than
// maxAge and files with an active lease are left alone.
func NewSweeper(locator *Locator, schedule string, maxAge time.Duration, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) (*Sweeper, error) {
	s := &Sweeper{
		locator: locator,
		maxAge:  maxAge,
		clock:   clock,
		cron:    cron.New(),
		metrics: metrics,
		logger:  logger,
	}
	if _, err := s.cron.AddFunc(schedule, func() { s.Sweep() }); err != nil {
		return nil, err
	}
	return s, nil
}

// Start runs the schedule in the background.
func (s *Sweeper) Start() {
	s.logger.Info("temp raster sweeper started", "dir", s.locator.tempDir, "max_age", s.maxAge)
	s.cron.Start()
}

// Stop halts the schedule. The returned context is done once a running sweep finishes.
func (s *Sweeper) Stop() context.Context {
	return s.cron.Stop()
}

// Sweep removes stale temporary rasters and returns how many were deleted.
func (s *Sweeper) Sweep() int {
	pattern := filepath.Join(s.locator.abs(s.locator.tempDir), tempPrefix+"*"+tempSuffix)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		s.logger.Error("sweep glob failed", "pattern", pattern, "error", err)
		return 0
	}

	now := s.clock.Now()
	removed := 0
	for _, m := range matches {
		rel := path.Join(s.locator.tempDir, filepath.Base(m))
		if s.locator.leased(rel) {
			continue
		}

		info, err := os.Stat(m)
		if err != nil || info.IsDir() || now.Sub(info.ModTime()) < s.maxAge {
			continue
		}

		if err := os.Remove(m); err != nil {
			s.logger.Warn("sweep remove failed", "path", rel, "error", err)
			continue
		}
		removed++
		s.metrics.TempFilesSwept.Inc()
	}

	if removed > 0 {
		s.logger.Info("swept orphaned temp rasters", "count", removed)
	}
	return removed
}
