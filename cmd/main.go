/**
 * @description
 * This is the main entry point for the ATM terminal service. It wires the
 * durable device state, the receipt printer, the account store, the
 * electronic journal, and the engine together, starts the maintenance
 * scheduler, and hands the terminal to the interactive console loop.
 *
 * Key features:
 * - Loads application configuration from environment variables, with .env
 *   support for local runs.
 * - Structured logs go to stderr; stdout belongs to the terminal screens.
 * - Graceful shutdown on SIGINT/SIGTERM or console exit: stop the cron
 *   scheduler, flush the device state, close the journal.
 *
 * @dependencies
 * - The service's internal packages for config, app logic, console, printing,
 *   and storage.
 * - godotenv for local config, robfig/cron (via the scheduler) for jobs.
 */
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Shyleen-m/ATMmachineV2/internal/app"
	"github.com/Shyleen-m/ATMmachineV2/internal/config"
	"github.com/Shyleen-m/ATMmachineV2/internal/console"
	"github.com/Shyleen-m/ATMmachineV2/internal/printer"
	"github.com/Shyleen-m/ATMmachineV2/internal/store"
	"github.com/Shyleen-m/ATMmachineV2/pkg/journal"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file for local development.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load application configuration.
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	// Stdout belongs to the terminal screens; logs go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx := context.Background()

	// Durable device state and the components hanging off it.
	stateRepo := store.NewFileDeviceStateRepository(cfg.StateFile)
	prn, err := printer.New(ctx, stateRepo, printer.Config{
		PaperCostPerPrint: cfg.PaperCostPerPrint,
		InkCostPerPrint:   cfg.InkCostPerPrint,
		LowThreshold:      cfg.SupplyLowThreshold,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize printer", "error", err)
		os.Exit(1)
	}

	accounts := store.NewAccountStore()

	jrnl, err := journal.Open(cfg.JournalFile)
	if err != nil {
		logger.Error("failed to open journal", "error", err, "path", cfg.JournalFile)
		os.Exit(1)
	}

	engine, err := app.NewEngine(ctx, accounts, prn, stateRepo, jrnl, logger, *cfg)
	if err != nil {
		logger.Error("failed to initialize engine", "error", err)
		os.Exit(1)
	}
	logger.Info("terminal initialized", "terminal", cfg.TerminalID, "vault", engine.CashAvailable())

	// Start the maintenance scheduler in the background.
	jobs := app.NewJobs(engine, logger)
	scheduler := app.NewScheduler(jobs, logger, *cfg)
	scheduler.Start()
	logger.Info("maintenance scheduler started")

	// The console loop owns stdin and stdout. It runs until the operator
	// exits or the input stream closes.
	sessionCtx, cancelSession := context.WithCancel(ctx)
	defer cancelSession()

	term := console.New(engine, os.Stdin, os.Stdout, logger)
	consoleDone := make(chan error, 1)
	go func() {
		consoleDone <- term.Run(sessionCtx)
	}()

	// Wait for the console to finish or a termination signal.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-consoleDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("console session ended with error", "error", err)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", "signal", sig.String())
		cancelSession()
	}

	// Stop the scheduler and wait for running jobs to finish.
	logger.Info("stopping maintenance scheduler")
	stopCtx := scheduler.Stop()
	<-stopCtx.Done()

	// Flush the device state one last time and close the journal.
	if err := engine.SyncState(ctx); err != nil {
		logger.Error("final state sync failed", "error", err)
	}
	if err := jrnl.Close(); err != nil {
		logger.Error("failed to close journal", "error", err)
	}
	logger.Info("terminal stopped gracefully")
}
