// Package scheduler runs the service's periodic jobs: result cache pruning
// and inference backend probing.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/giygas/druginfo/interfaces"
	"github.com/giygas/druginfo/logging"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler runs jobs using dependency injection
type Scheduler struct {
	cache      interfaces.ResultStore
	prober     interfaces.Prober
	pruneEvery time.Duration
	probeEvery time.Duration
	scheduler  *gocron.Scheduler
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(cache interfaces.ResultStore, prober interfaces.Prober, pruneEvery, probeEvery time.Duration) *Scheduler {
	return &Scheduler{
		cache:      cache,
		prober:     prober,
		pruneEvery: pruneEvery,
		probeEvery: probeEvery,
		scheduler:  gocron.NewScheduler(time.Local),
	}
}

// Start probes the backend once, then schedules pruning and probing.
// An unreachable backend is logged, not fatal: health reports it.
func (s *Scheduler) Start() error {
	_ = s.prober.Probe(context.Background())

	if _, err := s.scheduler.Every(s.pruneEvery).WaitForSchedule().SingletonMode().Do(s.pruneCache); err != nil {
		logging.Error("Failed to schedule cache pruning", "error", err)
		return fmt.Errorf("failed to schedule cache pruning: %w", err)
	}

	if _, err := s.scheduler.Every(s.probeEvery).WaitForSchedule().SingletonMode().Do(s.probeBackend); err != nil {
		logging.Error("Failed to schedule backend probe", "error", err)
		return fmt.Errorf("failed to schedule backend probe: %w", err)
	}

	s.scheduler.StartAsync()
	logging.Info("Scheduler started", "prune_every", s.pruneEvery.String(), "probe_every", s.probeEvery.String())

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// pruneCache drops expired results, skipping when a prune is already running
func (s *Scheduler) pruneCache() {
	if !s.cache.BeginPrune() {
		logging.Info("Cache prune already in progress, skipping...")
		return
	}
	defer s.cache.EndPrune()

	start := time.Now()
	removed := s.cache.Prune(start)
	if removed > 0 {
		logging.Info("Result cache pruned", "removed", removed, "remaining", s.cache.Len(),
			"duration", time.Since(start).String())
	}
}

func (s *Scheduler) probeBackend() {
	_ = s.prober.Probe(context.Background())
}
