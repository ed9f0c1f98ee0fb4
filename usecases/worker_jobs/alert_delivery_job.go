package worker_jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"golang.org/x/time/rate"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/repositories"
	"github.com/minealert/minealert-backend/repositories/clock"
	"github.com/minealert/minealert-backend/usecases/executor_factory"
	"github.com/minealert/minealert-backend/utils"
)

const (
	ALERT_DELIVERY_TIMEOUT = 2 * time.Minute

	DEFAULT_MAX_ALERT_ATTEMPTS = 6
)

// Delay before the next attempt, indexed by the number of failed attempts so far.
var AlertRetryDelays = []time.Duration{
	30 * time.Second,
	2 * time.Minute,
	10 * time.Minute,
	1 * time.Hour,
}

func CalculateBackoff(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	idx := attempt - 1
	if idx >= len(AlertRetryDelays) {
		return AlertRetryDelays[len(AlertRetryDelays)-1]
	}
	return AlertRetryDelays[idx]
}

// Outbound rate per channel, shared by all deliveries of a worker process.
var channelRateLimits = map[models.AlertChannel]struct {
	every time.Duration
	burst int
}{
	models.AlertChannelSms:     {every: time.Second, burst: 1},
	models.AlertChannelWebhook: {every: 100 * time.Millisecond, burst: 10},
}

type alertDeliveryRepository interface {
	GetAlertDelivery(ctx context.Context, exec repositories.Executor, id uuid.UUID) (models.AlertDelivery, error)
	GetAlertRecipient(ctx context.Context, exec repositories.Executor, id uuid.UUID) (models.AlertRecipient, error)
	GetDetection(ctx context.Context, exec repositories.Executor, id uuid.UUID) (models.Detection, error)
	UpdateAlertDeliverySuccess(ctx context.Context, exec repositories.Executor, id uuid.UUID, attempts int, providerMessageId string) error
	UpdateAlertDeliveryFailed(ctx context.Context, exec repositories.Executor, id uuid.UUID, attempts int, errMsg string) error
	UpdateAlertDeliveryAttempt(ctx context.Context, exec repositories.Executor, id uuid.UUID, attempts int,
		errMsg string, nextRetryAt time.Time) error
	CreateEvent(ctx context.Context, exec repositories.Executor, id uuid.UUID, input models.EventCreate) error
}

type alertDeliveryTaskQueue interface {
	EnqueueAlertDeliveryTaskAt(ctx context.Context, tx repositories.Transaction, deliveryId uuid.UUID, scheduledAt time.Time) error
}

// AlertSenderFunc sends one message on the recipient's channel. Declared as a function to keep
// this package free of the usecases package.
type AlertSenderFunc func(ctx context.Context, recipient models.AlertRecipient, message models.AlertMessage) models.AlertSendResult

// AlertBodyFunc renders the human readable alert text.
type AlertBodyFunc func(d models.Detection) string

type AlertDeliveryWorker struct {
	river.WorkerDefaults[models.AlertDeliveryArgs]

	repository         alertDeliveryRepository
	taskQueue          alertDeliveryTaskQueue
	send               AlertSenderFunc
	body               AlertBodyFunc
	executorFactory    executor_factory.ExecutorFactory
	transactionFactory executor_factory.TransactionFactory
	clock              clock.Clock
	limiters           map[models.AlertChannel]*rate.Limiter
	maxAttempts        int
}

func NewAlertDeliveryWorker(
	repository alertDeliveryRepository,
	taskQueue alertDeliveryTaskQueue,
	send AlertSenderFunc,
	body AlertBodyFunc,
	executorFactory executor_factory.ExecutorFactory,
	transactionFactory executor_factory.TransactionFactory,
	clock clock.Clock,
) *AlertDeliveryWorker {
	limiters := make(map[models.AlertChannel]*rate.Limiter, len(channelRateLimits))
	for channel, limit := range channelRateLimits {
		limiters[channel] = rate.NewLimiter(rate.Every(limit.every), limit.burst)
	}
	return &AlertDeliveryWorker{
		repository:         repository,
		taskQueue:          taskQueue,
		send:               send,
		body:               body,
		executorFactory:    executorFactory,
		transactionFactory: transactionFactory,
		clock:              clock,
		limiters:           limiters,
		maxAttempts:        DEFAULT_MAX_ALERT_ATTEMPTS,
	}
}

func (w *AlertDeliveryWorker) Timeout(job *river.Job[models.AlertDeliveryArgs]) time.Duration {
	return ALERT_DELIVERY_TIMEOUT
}

func (w *AlertDeliveryWorker) Work(ctx context.Context, job *river.Job[models.AlertDeliveryArgs]) error {
	logger := utils.LoggerFromContext(ctx).With("delivery_id", job.Args.DeliveryId)
	ctx = utils.StoreLoggerInContext(ctx, logger)

	exec := w.executorFactory.NewExecutor()

	delivery, err := w.repository.GetAlertDelivery(ctx, exec, job.Args.DeliveryId)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to get alert delivery", "error", err)
		return err
	}
	if delivery.Status != models.AlertDeliveryPending {
		logger.DebugContext(ctx, "Alert delivery already completed", "status", delivery.Status)
		return nil
	}

	attempts := delivery.Attempts + 1
	logger = logger.With("recipient_id", delivery.RecipientId, "attempt", attempts)
	ctx = utils.StoreLoggerInContext(ctx, logger)

	recipient, err := w.repository.GetAlertRecipient(ctx, exec, delivery.RecipientId)
	if errors.Is(err, models.NotFoundError) {
		logger.InfoContext(ctx, "Alert recipient removed before delivery")
		return w.finish(ctx, delivery, models.AlertRecipient{Id: delivery.RecipientId, Name: "removed recipient"},
			attempts, models.AlertSendResult{Error: errors.New("recipient was removed")})
	} else if err != nil {
		logger.ErrorContext(ctx, "Failed to get alert recipient", "error", err)
		return err
	}

	detection, err := w.repository.GetDetection(ctx, exec, delivery.DetectionId)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to get detection", "error", err)
		return err
	}

	if limiter, ok := w.limiters[recipient.Channel]; ok {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
	}

	result := w.send(ctx, recipient, models.AlertMessage{
		DeliveryId: delivery.Id,
		Detection:  detection,
		Body:       w.body(detection),
	})

	if result.IsSuccess() {
		utils.MetricAlertDeliveries.WithLabelValues(string(recipient.Channel), "success").Inc()
		logger.InfoContext(ctx, "Alert delivered", "channel", recipient.Channel, "status_code", result.StatusCode)
		return w.finish(ctx, delivery, recipient, attempts, result)
	}

	errMsg := formatSendError(result)
	logger.WarnContext(ctx, "Alert delivery failed",
		"channel", recipient.Channel,
		"error", errMsg,
		"max_attempts", w.maxAttempts)

	if attempts >= w.maxAttempts {
		utils.MetricAlertDeliveries.WithLabelValues(string(recipient.Channel), "failed").Inc()
		return w.finish(ctx, delivery, recipient, attempts, result)
	}

	utils.MetricAlertDeliveries.WithLabelValues(string(recipient.Channel), "retry").Inc()
	nextRetryAt := w.clock.Now().Add(CalculateBackoff(attempts))

	// retries are scheduled here rather than by river, so the job itself succeeds
	err = w.transactionFactory.Transaction(ctx, func(tx repositories.Transaction) error {
		if err := w.repository.UpdateAlertDeliveryAttempt(ctx, tx, delivery.Id, attempts, errMsg, nextRetryAt); err != nil {
			return err
		}
		return w.taskQueue.EnqueueAlertDeliveryTaskAt(ctx, tx, delivery.Id, nextRetryAt)
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to schedule alert retry", "error", err)
		return err
	}

	logger.InfoContext(ctx, "Scheduled alert retry", "next_retry_at", nextRetryAt)
	return nil
}

// finish stores the final outcome of a delivery together with its ALERT event.
func (w *AlertDeliveryWorker) finish(
	ctx context.Context,
	delivery models.AlertDelivery,
	recipient models.AlertRecipient,
	attempts int,
	result models.AlertSendResult,
) error {
	detectionId := delivery.DetectionId
	event := models.EventCreate{
		Type:        models.EventTypeAlert,
		DetectionId: &detectionId,
	}
	if result.IsSuccess() {
		event.Severity = models.SeverityInfo
		event.Message = fmt.Sprintf("Alert sent to %s via %s", recipient.Name, recipient.Channel)
	} else {
		event.Severity = models.SeverityWarning
		event.Message = fmt.Sprintf("Alert to %s failed after %d attempt(s): %s",
			recipient.Name, attempts, formatSendError(result))
	}

	return w.transactionFactory.Transaction(ctx, func(tx repositories.Transaction) error {
		var err error
		if result.IsSuccess() {
			err = w.repository.UpdateAlertDeliverySuccess(ctx, tx, delivery.Id, attempts, result.ProviderMessageId)
		} else {
			err = w.repository.UpdateAlertDeliveryFailed(ctx, tx, delivery.Id, attempts, formatSendError(result))
		}
		if err != nil {
			return err
		}
		return w.repository.CreateEvent(ctx, tx, uuid.Must(uuid.NewV7()), event)
	})
}

func formatSendError(result models.AlertSendResult) string {
	if result.Error != nil {
		return result.Error.Error()
	}
	return fmt.Sprintf("status %d", result.StatusCode)
}
