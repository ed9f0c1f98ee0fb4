package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/repositories/dbmodels"
)

func (repo MineAlertDbRepository) CreateSensorReadings(ctx context.Context, exec Executor, readings []models.SensorReading) error {
	if len(readings) == 0 {
		return nil
	}

	query := NewQueryBuilder().
		Insert(dbmodels.TABLE_SENSOR_READINGS).
		Columns(
			"id",
			"drone_id",
			"modality",
			"value",
			"latitude",
			"longitude",
			"recorded_at",
		)
	for _, r := range readings {
		query = query.Values(
			r.Id,
			r.DroneId,
			r.Modality,
			r.Value,
			r.Latitude,
			r.Longitude,
			r.RecordedAt,
		)
	}

	return ExecBuilder(ctx, exec, query)
}

func (repo MineAlertDbRepository) ListSensorReadings(ctx context.Context, exec Executor, droneId uuid.UUID, limit int) ([]models.SensorReading, error) {
	query := NewQueryBuilder().
		Select(dbmodels.SensorReadingFields...).
		From(dbmodels.TABLE_SENSOR_READINGS).
		Where(squirrel.Eq{"drone_id": droneId}).
		OrderBy("recorded_at DESC").
		Limit(uint64(limit))

	return SqlToListOfModels(ctx, exec, query, dbmodels.AdaptSensorReading)
}
