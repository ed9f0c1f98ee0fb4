package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/repositories/dbmodels"
)

func selectDrones() squirrel.SelectBuilder {
	return NewQueryBuilder().
		Select(dbmodels.DroneFields...).
		From(dbmodels.TABLE_DRONES)
}

func (repo MineAlertDbRepository) CreateDrone(ctx context.Context, exec Executor, id uuid.UUID, input models.DroneCreate) error {
	now := repo.clock.Now()
	err := ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Insert(dbmodels.TABLE_DRONES).
			Columns(
				"id",
				"name",
				"home_latitude",
				"home_longitude",
				"latitude",
				"longitude",
				"auto_scan",
				"last_update_at",
				"created_at",
			).
			Values(
				id,
				input.Name,
				input.HomeLatitude,
				input.HomeLongitude,
				input.HomeLatitude,
				input.HomeLongitude,
				input.AutoScan,
				now,
				now,
			),
	)
	if IsUniqueViolationError(err) {
		return errors.Wrapf(models.ConflictError, "a drone named %s already exists", input.Name)
	}
	return err
}

// GetDrone reads a drone. With forUpdate, the row stays locked until the end of the
// transaction so that concurrent commands on the same drone are applied one after the other.
func (repo MineAlertDbRepository) GetDrone(ctx context.Context, exec Executor, id uuid.UUID, forUpdate bool) (models.Drone, error) {
	query := selectDrones().Where(squirrel.Eq{"id": id})
	if forUpdate {
		query = query.Suffix("FOR UPDATE")
	}
	return SqlToModel(ctx, exec, query, dbmodels.AdaptDrone)
}

func (repo MineAlertDbRepository) ListDrones(ctx context.Context, exec Executor, autoScanOnly bool) ([]models.Drone, error) {
	query := selectDrones().OrderBy("created_at")
	if autoScanOnly {
		query = query.Where(squirrel.Eq{"auto_scan": true})
	}
	return SqlToListOfModels(ctx, exec, query, dbmodels.AdaptDrone)
}

func (repo MineAlertDbRepository) UpdateDroneState(ctx context.Context, exec Executor, drone models.Drone) error {
	return ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Update(dbmodels.TABLE_DRONES).
			Set("latitude", drone.Latitude).
			Set("longitude", drone.Longitude).
			Set("altitude", drone.Altitude).
			Set("speed", drone.Speed).
			Set("heading", drone.Heading).
			Set("battery_level", drone.BatteryLevel).
			Set("signal_strength", drone.SignalStrength).
			Set("is_flying", drone.IsFlying).
			Set("last_update_at", drone.LastUpdateAt).
			Where(squirrel.Eq{"id": drone.Id}),
	)
}

func (repo MineAlertDbRepository) UpdateDroneSettings(ctx context.Context, exec Executor, id uuid.UUID, input models.DroneUpdate) error {
	if input.AutoScan == nil {
		return nil
	}
	return ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Update(dbmodels.TABLE_DRONES).
			Set("auto_scan", *input.AutoScan).
			Where(squirrel.Eq{"id": id}),
	)
}
