package worker_jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/riverqueue/river"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/repositories"
	"github.com/minealert/minealert-backend/usecases/executor_factory"
	"github.com/minealert/minealert-backend/utils"
)

const (
	ALERT_DISPATCH_TIMEOUT = 2 * time.Minute

	// A burst of detections from one scan is dispatched against the same recipient list.
	recipientCacheTTL = 30 * time.Second
	recipientCacheKey = "enabled"
)

type alertDispatchRepository interface {
	GetDetection(ctx context.Context, exec repositories.Executor, id uuid.UUID) (models.Detection, error)
	ListAlertRecipients(ctx context.Context, exec repositories.Executor, enabledOnly bool) ([]models.AlertRecipient, error)
	CreateAlertDelivery(ctx context.Context, exec repositories.Executor, id, detectionId, recipientId uuid.UUID) (bool, error)
}

type alertDispatchTaskQueue interface {
	EnqueueAlertDeliveryTask(ctx context.Context, tx repositories.Transaction, deliveryId uuid.UUID) error
}

// AlertDispatchWorker fans a detection out to every recipient accepting its severity, with one
// delivery row and one delivery job per recipient.
type AlertDispatchWorker struct {
	river.WorkerDefaults[models.AlertDispatchArgs]

	repository         alertDispatchRepository
	taskQueue          alertDispatchTaskQueue
	executorFactory    executor_factory.ExecutorFactory
	transactionFactory executor_factory.TransactionFactory
	recipients         *expirable.LRU[string, []models.AlertRecipient]
}

func NewAlertDispatchWorker(
	repository alertDispatchRepository,
	taskQueue alertDispatchTaskQueue,
	executorFactory executor_factory.ExecutorFactory,
	transactionFactory executor_factory.TransactionFactory,
) *AlertDispatchWorker {
	return &AlertDispatchWorker{
		repository:         repository,
		taskQueue:          taskQueue,
		executorFactory:    executorFactory,
		transactionFactory: transactionFactory,
		recipients:         expirable.NewLRU[string, []models.AlertRecipient](1, nil, recipientCacheTTL),
	}
}

func (w *AlertDispatchWorker) Timeout(job *river.Job[models.AlertDispatchArgs]) time.Duration {
	return ALERT_DISPATCH_TIMEOUT
}

func (w *AlertDispatchWorker) enabledRecipients(ctx context.Context, exec repositories.Executor) ([]models.AlertRecipient, error) {
	if recipients, ok := w.recipients.Get(recipientCacheKey); ok {
		return recipients, nil
	}
	recipients, err := w.repository.ListAlertRecipients(ctx, exec, true)
	if err != nil {
		return nil, err
	}
	w.recipients.Add(recipientCacheKey, recipients)
	return recipients, nil
}

func (w *AlertDispatchWorker) Work(ctx context.Context, job *river.Job[models.AlertDispatchArgs]) error {
	logger := utils.LoggerFromContext(ctx).With("detection_id", job.Args.DetectionId)
	ctx = utils.StoreLoggerInContext(ctx, logger)

	exec := w.executorFactory.NewExecutor()

	detection, err := w.repository.GetDetection(ctx, exec, job.Args.DetectionId)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to get detection", "error", err)
		return err
	}
	if !detection.ShouldAlert() {
		logger.DebugContext(ctx, "Detection below alert threshold", "classification", detection.Classification)
		return nil
	}

	recipients, err := w.enabledRecipients(ctx, exec)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to list alert recipients", "error", err)
		return err
	}

	dispatched := 0
	for _, recipient := range recipients {
		if !recipient.Accepts(detection) {
			continue
		}

		// the unique (detection, recipient) pair makes a retried dispatch a no-op
		err := w.transactionFactory.Transaction(ctx, func(tx repositories.Transaction) error {
			deliveryId := uuid.Must(uuid.NewV7())
			created, err := w.repository.CreateAlertDelivery(ctx, tx, deliveryId, detection.Id, recipient.Id)
			if err != nil || !created {
				return err
			}
			dispatched++
			return w.taskQueue.EnqueueAlertDeliveryTask(ctx, tx, deliveryId)
		})
		if err != nil {
			logger.ErrorContext(ctx, "Failed to create alert delivery", "recipient_id", recipient.Id, "error", err)
			return err
		}
	}

	logger.InfoContext(ctx, "Alert dispatched",
		"classification", detection.Classification,
		"recipients", len(recipients),
		"deliveries", dispatched)
	return nil
}
