package repositories

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/repositories/dbmodels"
)

func selectAlertDeliveries() squirrel.SelectBuilder {
	return NewQueryBuilder().
		Select(dbmodels.AlertDeliveryFields...).
		From(dbmodels.TABLE_ALERT_DELIVERIES)
}

// CreateAlertDelivery inserts the delivery unless one already exists for the same detection and
// recipient. It returns false when nothing was inserted.
func (repo MineAlertDbRepository) CreateAlertDelivery(
	ctx context.Context,
	exec Executor,
	id uuid.UUID,
	detectionId uuid.UUID,
	recipientId uuid.UUID,
) (bool, error) {
	now := repo.clock.Now()
	affected, err := ExecBuilderRowsAffected(
		ctx,
		exec,
		NewQueryBuilder().
			Insert(dbmodels.TABLE_ALERT_DELIVERIES).
			Columns(
				"id",
				"detection_id",
				"recipient_id",
				"status",
				"created_at",
				"updated_at",
			).
			Values(
				id,
				detectionId,
				recipientId,
				models.AlertDeliveryPending,
				now,
				now,
			).
			Suffix("ON CONFLICT (detection_id, recipient_id) DO NOTHING"),
	)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (repo MineAlertDbRepository) GetAlertDelivery(ctx context.Context, exec Executor, id uuid.UUID) (models.AlertDelivery, error) {
	return SqlToModel(
		ctx,
		exec,
		selectAlertDeliveries().Where(squirrel.Eq{"id": id}),
		dbmodels.AdaptAlertDelivery,
	)
}

func (repo MineAlertDbRepository) ListAlertDeliveries(ctx context.Context, exec Executor, filters models.AlertDeliveryFilters) ([]models.AlertDelivery, error) {
	mergedFilters := filters.MergeWithDefaults()

	query := selectAlertDeliveries().
		OrderBy("created_at DESC").
		Limit(uint64(mergedFilters.Limit))

	if mergedFilters.Status != nil {
		query = query.Where(squirrel.Eq{"status": *mergedFilters.Status})
	}
	if mergedFilters.DetectionId != nil {
		query = query.Where(squirrel.Eq{"detection_id": *mergedFilters.DetectionId})
	}

	return SqlToListOfModels(ctx, exec, query, dbmodels.AdaptAlertDelivery)
}

func (repo MineAlertDbRepository) UpdateAlertDeliverySuccess(
	ctx context.Context,
	exec Executor,
	id uuid.UUID,
	attempts int,
	providerMessageId string,
) error {
	return ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Update(dbmodels.TABLE_ALERT_DELIVERIES).
			Set("status", models.AlertDeliverySuccess).
			Set("attempts", attempts).
			Set("provider_message_id", providerMessageId).
			Set("next_retry_at", nil).
			Set("updated_at", repo.clock.Now()).
			Where(squirrel.Eq{"id": id}),
	)
}

func (repo MineAlertDbRepository) UpdateAlertDeliveryFailed(
	ctx context.Context,
	exec Executor,
	id uuid.UUID,
	attempts int,
	errMsg string,
) error {
	return ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Update(dbmodels.TABLE_ALERT_DELIVERIES).
			Set("status", models.AlertDeliveryFailed).
			Set("attempts", attempts).
			Set("last_error", errMsg).
			Set("next_retry_at", nil).
			Set("updated_at", repo.clock.Now()).
			Where(squirrel.Eq{"id": id}),
	)
}

func (repo MineAlertDbRepository) UpdateAlertDeliveryAttempt(
	ctx context.Context,
	exec Executor,
	id uuid.UUID,
	attempts int,
	errMsg string,
	nextRetryAt time.Time,
) error {
	return ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Update(dbmodels.TABLE_ALERT_DELIVERIES).
			Set("attempts", attempts).
			Set("last_error", errMsg).
			Set("next_retry_at", nextRetryAt).
			Set("updated_at", repo.clock.Now()).
			Where(squirrel.Eq{"id": id}),
	)
}

// DeleteFinishedAlertDeliveries removes deliveries in a final state last updated before the given time.
func (repo MineAlertDbRepository) DeleteFinishedAlertDeliveries(ctx context.Context, exec Executor, before time.Time) (int64, error) {
	return ExecBuilderRowsAffected(
		ctx,
		exec,
		NewQueryBuilder().
			Delete(dbmodels.TABLE_ALERT_DELIVERIES).
			Where(squirrel.Eq{"status": []models.AlertDeliveryStatus{
				models.AlertDeliverySuccess,
				models.AlertDeliveryFailed,
			}}).
			Where(squirrel.Lt{"updated_at": before}),
	)
}
