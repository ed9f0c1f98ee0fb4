package worker_jobs

import (
	"context"
	"time"

	"github.com/riverqueue/river"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/repositories"
	"github.com/minealert/minealert-backend/repositories/clock"
	"github.com/minealert/minealert-backend/usecases/executor_factory"
	"github.com/minealert/minealert-backend/utils"
)

const (
	ALERT_CLEANUP_INTERVAL = 1 * time.Hour
	ALERT_CLEANUP_TIMEOUT  = 5 * time.Minute
	ALERT_RETENTION_PERIOD = 30 * 24 * time.Hour
)

func NewAlertCleanupPeriodicJob() *river.PeriodicJob {
	return river.NewPeriodicJob(
		river.PeriodicInterval(ALERT_CLEANUP_INTERVAL),
		func() (river.JobArgs, *river.InsertOpts) {
			return models.AlertCleanupArgs{},
				&river.InsertOpts{
					Queue:    models.QUEUE_MAINTENANCE,
					Priority: 4,
					UniqueOpts: river.UniqueOpts{
						ByQueue:  true,
						ByPeriod: ALERT_CLEANUP_INTERVAL,
					},
				}
		},
		&river.PeriodicJobOpts{RunOnStart: true},
	)
}

type alertCleanupRepository interface {
	DeleteFinishedAlertDeliveries(ctx context.Context, exec repositories.Executor, before time.Time) (int64, error)
}

type AlertCleanupWorker struct {
	river.WorkerDefaults[models.AlertCleanupArgs]

	repository      alertCleanupRepository
	executorFactory executor_factory.ExecutorFactory
	clock           clock.Clock
	retentionPeriod time.Duration
}

func NewAlertCleanupWorker(
	repository alertCleanupRepository,
	executorFactory executor_factory.ExecutorFactory,
	clock clock.Clock,
) *AlertCleanupWorker {
	return &AlertCleanupWorker{
		repository:      repository,
		executorFactory: executorFactory,
		clock:           clock,
		retentionPeriod: ALERT_RETENTION_PERIOD,
	}
}

func (w *AlertCleanupWorker) Timeout(job *river.Job[models.AlertCleanupArgs]) time.Duration {
	return ALERT_CLEANUP_TIMEOUT
}

func (w *AlertCleanupWorker) Work(ctx context.Context, job *river.Job[models.AlertCleanupArgs]) error {
	logger := utils.LoggerFromContext(ctx)

	cutoff := w.clock.Now().Add(-w.retentionPeriod)
	deleted, err := w.repository.DeleteFinishedAlertDeliveries(ctx, w.executorFactory.NewExecutor(), cutoff)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to delete old alert deliveries", "error", err)
		return err
	}
	if deleted > 0 {
		logger.InfoContext(ctx, "Alert deliveries cleaned up",
			"deleted", deleted,
			"retention_days", int(w.retentionPeriod.Hours()/24))
	}
	return nil
}
