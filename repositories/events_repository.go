package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/pure_utils"
	"github.com/minealert/minealert-backend/repositories/dbmodels"
)

func (repo MineAlertDbRepository) CreateEvent(ctx context.Context, exec Executor, id uuid.UUID, input models.EventCreate) error {
	return ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Insert(dbmodels.TABLE_EVENTS).
			Columns(
				"id",
				"created_at",
				"type",
				"message",
				"severity",
				"drone_id",
				"detection_id",
			).
			Values(
				id,
				repo.clock.Now(),
				input.Type,
				input.Message,
				input.Severity,
				input.DroneId,
				input.DetectionId,
			),
	)
}

func (repo MineAlertDbRepository) ListEvents(ctx context.Context, exec Executor, filters models.EventFilters) ([]models.Event, error) {
	mergedFilters := filters.MergeWithDefaults()

	query := NewQueryBuilder().
		Select(dbmodels.EventFields...).
		From(dbmodels.TABLE_EVENTS).
		OrderBy("created_at DESC", "id").
		Limit(uint64(mergedFilters.Limit))

	if len(mergedFilters.Types) > 0 {
		query = query.Where(squirrel.Eq{"type": pure_utils.Map(mergedFilters.Types,
			func(t models.EventType) string { return string(t) })})
	}
	if mergedFilters.DroneId != nil {
		query = query.Where(squirrel.Eq{"drone_id": *mergedFilters.DroneId})
	}

	return SqlToListOfModels(ctx, exec, query, dbmodels.AdaptEvent)
}
