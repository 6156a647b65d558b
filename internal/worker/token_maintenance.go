package worker

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mestre-da-redacao/backend/internal/domain/subscription"
	"github.com/mestre-da-redacao/backend/internal/pkg/logger"
)

// TokenMaintenanceWorker periodically applies the monthly token reset and the
// legacy unlimited migration across all subscriptions. Each run is idempotent,
// so overlapping with the lazy per-request check is harmless.
type TokenMaintenanceWorker struct {
	subs     subscription.Service
	logger   *logger.Logger
	schedule string

	scheduler    *cron.Cron
	runningMutex sync.Mutex
	isRunning    bool
}

// NewTokenMaintenanceWorker creates a new token maintenance worker
func NewTokenMaintenanceWorker(subs subscription.Service, schedule string, log *logger.Logger) *TokenMaintenanceWorker {
	return &TokenMaintenanceWorker{
		subs:     subs,
		logger:   log,
		schedule: schedule,
	}
}

// Start begins the scheduler. It validates the schedule and runs one
// maintenance pass immediately so restarts never leave stale balances.
func (w *TokenMaintenanceWorker) Start() error {
	w.runningMutex.Lock()
	defer w.runningMutex.Unlock()

	if w.isRunning {
		return nil
	}

	if _, err := cron.ParseStandard(w.schedule); err != nil {
		return err
	}

	w.scheduler = cron.New()
	if _, err := w.scheduler.AddFunc(w.schedule, w.run); err != nil {
		return err
	}

	w.scheduler.Start()
	w.isRunning = true

	w.logger.WithFields(map[string]interface{}{
		"schedule": w.schedule,
	}).Info("Token maintenance worker started")

	go w.run()

	return nil
}

// Stop stops the scheduler, waiting for a running pass to finish
func (w *TokenMaintenanceWorker) Stop() {
	w.runningMutex.Lock()
	defer w.runningMutex.Unlock()

	if !w.isRunning {
		return
	}

	ctx := w.scheduler.Stop()
	<-ctx.Done()
	w.isRunning = false

	w.logger.Info("Token maintenance worker stopped")
}

func (w *TokenMaintenanceWorker) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	started := time.Now()
	report, err := w.subs.RunMaintenance(ctx)
	if err != nil {
		w.logger.WithError(err).Error("Token maintenance run failed")
		return
	}

	w.logger.WithFields(map[string]interface{}{
		"checked":           report.Checked,
		"monthly_resets":    report.MonthlyResets,
		"legacy_migrations": report.LegacyMigrations,
		"duration":          time.Since(started).String(),
	}).Info("Token maintenance run completed")
}
