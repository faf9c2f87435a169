// Package scheduler runs the trading cycle on a cron schedule.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler wraps a cron runner around a single job.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// New creates a stopped scheduler.
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		log:  log.With().Str("component", "scheduler").Logger(),
	}
}

// Schedule registers job to run on the given cron expression. Overlapping
// runs are prevented by the execution lock inside the job itself, not here.
func (s *Scheduler) Schedule(spec string, job func(context.Context)) error {
	_, err := s.cron.AddFunc(spec, func() {
		job(context.Background())
	})
	if err != nil {
		return fmt.Errorf("scheduler.Schedule: invalid cron spec %q: %w", spec, err)
	}
	return nil
}

// Start begins firing scheduled jobs.
func (s *Scheduler) Start() {
	s.log.Info().Msg("scheduler started")
	s.cron.Start()
}

// Stop halts scheduling and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("scheduler stopped")
}
