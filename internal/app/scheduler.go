/**
 * @description
 * Cron scheduler setup for the terminal's maintenance jobs.
 */
package app

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/Shyleen-m/ATMmachineV2/internal/config"
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
	if _, err := s.cron.AddFunc(s.config.StateSyncSchedule, s.jobs.SyncDeviceState); err != nil {
		s.logger.Error("failed to schedule device state sync job", "error", err)
	} else {
		s.logger.Info("scheduled device state sync job", "schedule", s.config.StateSyncSchedule)
	}

	if _, err := s.cron.AddFunc(s.config.SupplyReportSchedule, s.jobs.ReportSupplyStatus); err != nil {
		s.logger.Error("failed to schedule supply report job", "error", err)
	} else {
		s.logger.Info("scheduled supply report job", "schedule", s.config.SupplyReportSchedule)
	}

	s.cron.Start()
}

// Stop gracefully stops the cron scheduler.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
