package repositories

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/utils"
)

const (
	nbRetriesAlertDispatch = 5 // at 1sec*attempt^4, that's ~10min for the 5th attempt
	priorityAlertDispatch  = 1 // nb: higher number is lower priority (between 1 and 4)

	// retries of a delivery are scheduled by the delivery worker itself, river only retries
	// infrastructure errors
	nbRetriesAlertDelivery = 3
	priorityAlertDelivery  = 2
)

type TaskQueueRepository interface {
	EnqueueAlertDispatchTask(ctx context.Context, tx Transaction, detectionId uuid.UUID) error
	EnqueueAlertDeliveryTask(ctx context.Context, tx Transaction, deliveryId uuid.UUID) error
	EnqueueAlertDeliveryTaskAt(ctx context.Context, tx Transaction, deliveryId uuid.UUID, scheduledAt time.Time) error
}

type riverRepository struct {
	client *river.Client[pgx.Tx]
}

func NewTaskQueueRepository(client *river.Client[pgx.Tx]) TaskQueueRepository {
	return riverRepository{client: client}
}

func (r riverRepository) EnqueueAlertDispatchTask(ctx context.Context, tx Transaction, detectionId uuid.UUID) error {
	if r.client == nil {
		return errors.New("task queue client is not configured")
	}

	res, err := r.client.InsertTx(ctx, tx.RawTx(), models.AlertDispatchArgs{
		DetectionId: detectionId,
	}, &river.InsertOpts{
		MaxAttempts: nbRetriesAlertDispatch,
		Priority:    priorityAlertDispatch,
		Queue:       models.QUEUE_ALERTS,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	})
	if err != nil {
		return err
	}
	utils.LoggerFromContext(ctx).DebugContext(ctx, "Enqueued alert dispatch task",
		"detection_id", detectionId, "job_id", res.Job.ID)
	return nil
}

func (r riverRepository) EnqueueAlertDeliveryTask(ctx context.Context, tx Transaction, deliveryId uuid.UUID) error {
	return r.enqueueAlertDelivery(ctx, tx, deliveryId, time.Time{})
}

func (r riverRepository) EnqueueAlertDeliveryTaskAt(ctx context.Context, tx Transaction, deliveryId uuid.UUID, scheduledAt time.Time) error {
	return r.enqueueAlertDelivery(ctx, tx, deliveryId, scheduledAt)
}

func (r riverRepository) enqueueAlertDelivery(ctx context.Context, tx Transaction, deliveryId uuid.UUID, scheduledAt time.Time) error {
	if r.client == nil {
		return errors.New("task queue client is not configured")
	}

	res, err := r.client.InsertTx(ctx, tx.RawTx(), models.AlertDeliveryArgs{
		DeliveryId: deliveryId,
	}, &river.InsertOpts{
		MaxAttempts: nbRetriesAlertDelivery,
		Priority:    priorityAlertDelivery,
		Queue:       models.QUEUE_ALERTS,
		ScheduledAt: scheduledAt,
	})
	if err != nil {
		return err
	}
	utils.LoggerFromContext(ctx).DebugContext(ctx, "Enqueued alert delivery task",
		"delivery_id", deliveryId, "job_id", res.Job.ID, "scheduled_at", scheduledAt)
	return nil
}
