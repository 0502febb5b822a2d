/**
 * @description
 * Cron scheduler setup for the reconciliation sweeps.
 */
package app

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/editlance/reconciliation-service/internal/config"
)

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron   *cron.Cron
	jobs   *Jobs
	logger *slog.Logger
	config config.Config
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(jobs *Jobs, logger *slog.Logger, cfg config.Config) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	return &Scheduler{
		cron:   c,
		jobs:   jobs,
		logger: logger,
		config: cfg,
	}
}

// Start registers the jobs and starts the cron scheduler.
func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc(s.config.OverdueJobSchedule, s.jobs.ProcessOverdueQuotations); err != nil {
		s.logger.Error("failed to schedule overdue quotations job", "error", err)
	} else {
		s.logger.Info("scheduled overdue quotations job", "schedule", s.config.OverdueJobSchedule)
	}

	if _, err := s.cron.AddFunc(s.config.WarningDecayJobSchedule, s.jobs.ProcessWarningDecay); err != nil {
		s.logger.Error("failed to schedule warning decay job", "error", err)
	} else {
		s.logger.Info("scheduled warning decay job", "schedule", s.config.WarningDecayJobSchedule)
	}

	s.cron.Start()
}

// Stop gracefully stops the cron scheduler.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
