package service

import (
	"context"
	"log"
	"time"

	"fleetops/internal/config"
	"fleetops/internal/domain"
)

// PointSource supplies tracking points pulled from an external feed, such
// as a telematics gateway. Poll returns whatever points accumulated since
// the previous call.
type PointSource interface {
	Poll(ctx context.Context) ([]domain.TrackingPoint, error)
}

// Scheduler drives the tracking engine's periodic work: the evaluation
// tick for dwell and staleness, and an optional ingestion poll against an
// attached point source.
type Scheduler struct {
	cfg      config.TrackingConfig
	tracking *TrackingService
	source   PointSource // Optional.
	done     chan struct{}
}

// NewScheduler creates a new Scheduler. The point source may be nil, in
// which case only the evaluation tick runs.
func NewScheduler(cfg config.TrackingConfig, tracking *TrackingService, source PointSource) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		tracking: tracking,
		source:   source,
		done:     make(chan struct{}),
	}
}

// Start runs the scheduler loops until the context is cancelled or Stop is
// called.
func (s *Scheduler) Start(ctx context.Context) {
	go s.runEvalLoop(ctx)
	if s.source != nil {
		go s.runIngestLoop(ctx)
	}
}

// Stop halts the scheduler loops.
func (s *Scheduler) Stop() {
	close(s.done)
}

func (s *Scheduler) runEvalLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.EvalInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case now := <-ticker.C:
			s.tracking.Tick(ctx, now)
		}
	}
}

func (s *Scheduler) runIngestLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.IngestInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			s.ingest(ctx)
		}
	}
}

// ingest pulls pending points from the source. Out-of-order points from a
// lagging feed are skipped, not fatal.
func (s *Scheduler) ingest(ctx context.Context) {
	points, err := s.source.Poll(ctx)
	if err != nil {
		log.Printf("[SCHEDULER] point source poll failed: %v", err)
		return
	}
	for _, p := range points {
		if _, err := s.tracking.AddTrackingPoint(ctx, p); err != nil {
			log.Printf("[SCHEDULER] skipping point for %s: %v", p.VehicleID, err)
		}
	}
}
