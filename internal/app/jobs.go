/**
 * @description
 * Scheduled maintenance job implementations for the terminal.
 */
package app

import (
	"context"
	"log/slog"

	"github.com/Shyleen-m/ATMmachineV2/internal/domain"
)

// Terminal defines the engine operations needed by the maintenance jobs.
type Terminal interface {
	SyncState(ctx context.Context) error
	Status() domain.DeviceStatus
}

// Jobs contains the logic for all scheduled tasks.
type Jobs struct {
	terminal Terminal
	logger   *slog.Logger
}

// NewJobs creates a new Jobs runner.
func NewJobs(terminal Terminal, logger *slog.Logger) *Jobs {
	return &Jobs{
		terminal: terminal,
		logger:   logger,
	}
}

// SyncDeviceState flushes vault and consumable levels to the state file.
func (j *Jobs) SyncDeviceState() {
	j.logger.Info("starting device state sync job")
	ctx := context.Background()

	if err := j.terminal.SyncState(ctx); err != nil {
		j.logger.Error("failed to sync device state", "error", err)
		return
	}

	j.logger.Info("device state sync job finished")
}

// ReportSupplyStatus logs the supply levels and escalates when they run
// low or out.
func (j *Jobs) ReportSupplyStatus() {
	status := j.terminal.Status()

	switch status.Band {
	case domain.SupplyDepleted:
		j.logger.Error("terminal out of service: supplies depleted",
			"terminal", status.TerminalID, "paper", status.Supplies.Paper, "ink", status.Supplies.Ink)
	case domain.SupplyLow:
		j.logger.Warn("supplies running low",
			"terminal", status.TerminalID, "paper", status.Supplies.Paper, "ink", status.Supplies.Ink)
	default:
		j.logger.Info("supplies healthy",
			"terminal", status.TerminalID, "paper", status.Supplies.Paper, "ink", status.Supplies.Ink)
	}
}
