package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/pure_utils"
	"github.com/minealert/minealert-backend/repositories/dbmodels"
)

func selectDetections() squirrel.SelectBuilder {
	return NewQueryBuilder().
		Select(dbmodels.DetectionFields...).
		From(dbmodels.TABLE_DETECTIONS)
}

func (repo MineAlertDbRepository) CreateDetection(ctx context.Context, exec Executor, id uuid.UUID, input models.DetectionCreate) error {
	var x, y, width, height *int
	if box := input.BoundingBox; box != nil {
		x, y, width, height = &box.X, &box.Y, &box.Width, &box.Height
	}

	return ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Insert(dbmodels.TABLE_DETECTIONS).
			Columns(
				"id",
				"drone_id",
				"created_at",
				"latitude",
				"longitude",
				"classification",
				"confidence",
				"source",
				"image_path",
				"x",
				"y",
				"width",
				"height",
			).
			Values(
				id,
				input.DroneId,
				input.CreatedAt,
				input.Latitude,
				input.Longitude,
				input.Classification,
				input.Confidence,
				input.Source,
				input.ImagePath,
				x,
				y,
				width,
				height,
			),
	)
}

func (repo MineAlertDbRepository) GetDetection(ctx context.Context, exec Executor, id uuid.UUID) (models.Detection, error) {
	return SqlToModel(
		ctx,
		exec,
		selectDetections().Where(squirrel.Eq{"id": id}),
		dbmodels.AdaptDetection,
	)
}

func (repo MineAlertDbRepository) ListDetections(ctx context.Context, exec Executor, filters models.DetectionFilters) ([]models.Detection, error) {
	mergedFilters := filters.MergeWithDefaults()

	query := applyDetectionFilters(selectDetections(), mergedFilters).
		OrderBy("created_at DESC", "id").
		Limit(uint64(mergedFilters.Limit))

	return SqlToListOfModels(ctx, exec, query, dbmodels.AdaptDetection)
}

// ForEachDetection streams every detection matching the filters, oldest first, ignoring the limit.
func (repo MineAlertDbRepository) ForEachDetection(
	ctx context.Context,
	exec Executor,
	filters models.DetectionFilters,
	fn func(models.Detection) error,
) error {
	query := applyDetectionFilters(selectDetections(), filters).OrderBy("created_at", "id")

	return ForEachRow(ctx, exec, query, func(row pgx.CollectableRow) error {
		db, err := pgx.RowToStructByPos[dbmodels.DBDetection](row)
		if err != nil {
			return err
		}
		detection, err := dbmodels.AdaptDetection(db)
		if err != nil {
			return err
		}
		return fn(detection)
	})
}

func applyDetectionFilters(query squirrel.SelectBuilder, filters models.DetectionFilters) squirrel.SelectBuilder {
	if len(filters.Classifications) > 0 {
		query = query.Where(squirrel.Eq{
			"classification": pure_utils.Map(
				pure_utils.Deduplicate(filters.Classifications),
				func(c models.Classification) string { return string(c) },
			),
		})
	}
	if filters.DroneId != nil {
		query = query.Where(squirrel.Eq{"drone_id": *filters.DroneId})
	}
	return query
}

func (repo MineAlertDbRepository) CountDetectionsByClassification(ctx context.Context, exec Executor) (models.DetectionStats, error) {
	query := NewQueryBuilder().
		Select("classification", "count(*) AS count").
		From(dbmodels.TABLE_DETECTIONS).
		GroupBy("classification")

	counts, err := SqlToListOfRow(ctx, exec, query, func(row pgx.CollectableRow) (dbmodels.DBDetectionCount, error) {
		return pgx.RowToStructByPos[dbmodels.DBDetectionCount](row)
	})
	if err != nil {
		return nil, err
	}

	stats := make(models.DetectionStats, len(models.Classifications))
	for _, c := range models.Classifications {
		stats[c] = 0
	}
	for _, count := range counts {
		stats[models.Classification(count.Classification)] = count.Count
	}
	return stats, nil
}
