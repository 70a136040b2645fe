package services

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/veridia/fraudlens/internal/logging"
)

// Scheduler re-runs the all-eligible batch analysis on a cron schedule,
// and optionally once at startup. Runs are best-effort: failures are
// logged and never propagate to the process.
type Scheduler struct {
	batch        *BatchOrchestrator
	cron         *cron.Cron
	spec         string
	runOnStartup bool
	logger       *logrus.Entry
}

// NewScheduler creates a scheduler with a standard 5-field cron spec.
func NewScheduler(batch *BatchOrchestrator, spec string, runOnStartup bool) *Scheduler {
	return &Scheduler{
		batch:        batch,
		cron:         cron.New(),
		spec:         spec,
		runOnStartup: runOnStartup,
		logger:       logging.WithComponent("scheduler"),
	}
}

// Start registers the schedule and begins running. The startup run, when
// enabled, happens in the background so Start returns immediately.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.runOnce); err != nil {
		return fmt.Errorf("invalid analysis schedule %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.logger.WithField("schedule", s.spec).Info("analysis schedule started")
	if s.runOnStartup {
		go s.runOnce()
	}
	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runOnce() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf("scheduled analysis panicked: %v", r)
		}
	}()
	result, err := s.batch.RunAll(context.Background())
	if err != nil {
		s.logger.WithError(err).Error("scheduled analysis failed")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"processed": result.Processed,
		"errors":    result.Errors,
	}).Info("scheduled analysis finished")
}
