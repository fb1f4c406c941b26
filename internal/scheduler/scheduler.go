// Package scheduler runs the periodic batch check loop.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/good-yellow-bee/breachwatch/internal/models"
	"github.com/good-yellow-bee/breachwatch/internal/monitor"
)

// DefaultInterval is the gap between scheduled batch runs.
const DefaultInterval = 24 * time.Hour

// Scheduler triggers a full batch run at a fixed interval and on demand.
// Runs never overlap: a trigger while a run is in progress is rejected,
// and a tick during a run is skipped.
type Scheduler struct {
	runner     *monitor.Runner
	interval   time.Duration
	runOnStart bool

	trigger chan struct{}

	mu      sync.Mutex
	running bool
	last    *models.BatchSummary
}

// Options configures the scheduler.
type Options struct {
	// Interval between scheduled runs. Defaults to DefaultInterval.
	Interval time.Duration
	// RunOnStart starts a batch immediately instead of waiting a full
	// interval for the first run.
	RunOnStart bool
}

// New creates a scheduler around the given batch runner.
func New(runner *monitor.Runner, opts Options) *Scheduler {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		runner:     runner,
		interval:   interval,
		runOnStart: opts.RunOnStart,
		trigger:    make(chan struct{}, 1),
	}
}

// Run blocks until the context is canceled, executing batch runs on the
// configured interval and on TriggerNow requests.
func (s *Scheduler) Run(ctx context.Context) error {
	log.Printf("[scheduler] starting, interval %s", s.interval)

	if s.runOnStart {
		s.runBatch(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[scheduler] stopping")
			return ctx.Err()
		case <-ticker.C:
			s.runBatch(ctx)
		case <-s.trigger:
			s.runBatch(ctx)
		}
	}
}

// TriggerNow requests an immediate batch run. It returns false when a run
// is already in progress or a trigger is already pending.
func (s *Scheduler) TriggerNow() bool {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	if running {
		return false
	}

	select {
	case s.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// LastSummary returns the most recent completed batch summary, or nil when
// no batch has run yet.
func (s *Scheduler) LastSummary() *models.BatchSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Scheduler) runBatch(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	summary, err := s.runner.RunAll(ctx)
	if err != nil {
		log.Printf("[scheduler] batch run failed: %v", err)
	}

	s.mu.Lock()
	s.running = false
	if summary != nil {
		s.last = summary
	}
	s.mu.Unlock()
}
