package usecases

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/pure_utils"
	"github.com/minealert/minealert-backend/repositories"
	"github.com/minealert/minealert-backend/repositories/clock"
	"github.com/minealert/minealert-backend/usecases/executor_factory"
	"github.com/minealert/minealert-backend/usecases/fusion"
	"github.com/minealert/minealert-backend/usecases/simulation"
	"github.com/minealert/minealert-backend/utils"
)

const (
	DEFAULT_READINGS_LIMIT = 50
	MAX_READINGS_LIMIT     = 500
)

type droneRepository interface {
	CreateDrone(ctx context.Context, exec repositories.Executor, id uuid.UUID, input models.DroneCreate) error
	GetDrone(ctx context.Context, exec repositories.Executor, id uuid.UUID, forUpdate bool) (models.Drone, error)
	ListDrones(ctx context.Context, exec repositories.Executor, autoScanOnly bool) ([]models.Drone, error)
	UpdateDroneState(ctx context.Context, exec repositories.Executor, drone models.Drone) error
	UpdateDroneSettings(ctx context.Context, exec repositories.Executor, id uuid.UUID, input models.DroneUpdate) error
}

type sensorReadingRepository interface {
	CreateSensorReadings(ctx context.Context, exec repositories.Executor, readings []models.SensorReading) error
	ListSensorReadings(ctx context.Context, exec repositories.Executor, droneId uuid.UUID, limit int) ([]models.SensorReading, error)
}

type DroneUsecase struct {
	executorFactory    executor_factory.ExecutorFactory
	transactionFactory executor_factory.TransactionFactory
	droneRepository    droneRepository
	readingRepository  sensorReadingRepository
	eventRepository    eventWriter
	recorder           detectionRecorder
	simulator          *simulation.Simulator
	clock              clock.Clock
}

func (usecase DroneUsecase) CreateDrone(ctx context.Context, input models.DroneCreate) (models.Drone, error) {
	if err := models.ValidateCoordinates(input.HomeLatitude, input.HomeLongitude); err != nil {
		return models.Drone{}, err
	}

	return executor_factory.TransactionReturnValue(ctx, usecase.transactionFactory,
		func(tx repositories.Transaction) (models.Drone, error) {
			id := uuid.Must(uuid.NewV7())
			if err := usecase.droneRepository.CreateDrone(ctx, tx, id, input); err != nil {
				return models.Drone{}, err
			}
			err := usecase.eventRepository.CreateEvent(ctx, tx, uuid.Must(uuid.NewV7()), models.EventCreate{
				Type:     models.EventTypeSystem,
				Message:  "Drone " + input.Name + " registered",
				Severity: models.SeverityInfo,
				DroneId:  &id,
			})
			if err != nil {
				return models.Drone{}, err
			}
			return usecase.droneRepository.GetDrone(ctx, tx, id, false)
		})
}

func (usecase DroneUsecase) ListDrones(ctx context.Context) ([]models.Drone, error) {
	return usecase.droneRepository.ListDrones(ctx, usecase.executorFactory.NewExecutor(), false)
}

func (usecase DroneUsecase) GetDrone(ctx context.Context, id uuid.UUID) (models.Drone, error) {
	return usecase.droneRepository.GetDrone(ctx, usecase.executorFactory.NewExecutor(), id, false)
}

func (usecase DroneUsecase) UpdateDrone(ctx context.Context, id uuid.UUID, input models.DroneUpdate) (models.Drone, error) {
	return executor_factory.TransactionReturnValue(ctx, usecase.transactionFactory,
		func(tx repositories.Transaction) (models.Drone, error) {
			drone, err := usecase.droneRepository.GetDrone(ctx, tx, id, true)
			if err != nil {
				return models.Drone{}, err
			}
			if err := usecase.droneRepository.UpdateDroneSettings(ctx, tx, id, input); err != nil {
				return models.Drone{}, err
			}
			if input.AutoScan != nil {
				drone.AutoScan = *input.AutoScan
			}
			return drone, nil
		})
}

// ExecuteCommand applies a control command. The drone row is locked for the duration of the
// transaction so that concurrent commands on one drone are applied in sequence.
func (usecase DroneUsecase) ExecuteCommand(ctx context.Context, id uuid.UUID, command models.DroneCommand) (models.Drone, error) {
	if _, ok := models.DroneCommandFrom(string(command)); !ok {
		return models.Drone{}, errors.Wrapf(models.ErrUnknownDroneCommand, "%q", command)
	}
	logger := utils.LoggerFromContext(ctx).With("drone_id", id, "command", command)

	var wasFlying bool
	drone, err := executor_factory.TransactionReturnValue(ctx, usecase.transactionFactory,
		func(tx repositories.Transaction) (models.Drone, error) {
			drone, err := usecase.droneRepository.GetDrone(ctx, tx, id, true)
			if err != nil {
				return models.Drone{}, err
			}
			wasFlying = drone.IsFlying

			drone = usecase.simulator.Tick(drone, usecase.clock.Now())
			drone, err = simulation.ApplyCommand(drone, command)
			if err != nil {
				return models.Drone{}, err
			}
			if err := usecase.droneRepository.UpdateDroneState(ctx, tx, drone); err != nil {
				return models.Drone{}, err
			}

			if message, severity, ok := command.ControlEvent(); ok {
				err := usecase.eventRepository.CreateEvent(ctx, tx, uuid.Must(uuid.NewV7()), models.EventCreate{
					Type:     models.EventTypeControl,
					Message:  message,
					Severity: severity,
					DroneId:  &drone.Id,
				})
				if err != nil {
					return models.Drone{}, err
				}
			}
			return drone, nil
		})
	if err != nil {
		return models.Drone{}, err
	}

	switch {
	case drone.IsFlying && !wasFlying:
		utils.MetricDronesFlying.Inc()
	case !drone.IsFlying && wasFlying:
		utils.MetricDronesFlying.Dec()
	}
	logger.InfoContext(ctx, "Drone command applied",
		"is_flying", drone.IsFlying,
		"battery_level", drone.BatteryLevel)
	return drone, nil
}

// ScanDrone advances the drone state and, when it is airborne, surveys the ground below it:
// one reading per sensor at its position and a detection check on a few points around it.
func (usecase DroneUsecase) ScanDrone(ctx context.Context, id uuid.UUID) (models.ScanResult, error) {
	return executor_factory.TransactionReturnValue(ctx, usecase.transactionFactory,
		func(tx repositories.Transaction) (models.ScanResult, error) {
			drone, err := usecase.droneRepository.GetDrone(ctx, tx, id, true)
			if err != nil {
				return models.ScanResult{}, err
			}

			now := usecase.clock.Now()
			drone = usecase.simulator.Tick(drone, now)
			if err := usecase.droneRepository.UpdateDroneState(ctx, tx, drone); err != nil {
				return models.ScanResult{}, err
			}

			result := models.ScanResult{
				Drone:      drone,
				Readings:   []models.SensorReading{},
				Detections: []models.Detection{},
			}
			if !drone.IsFlying {
				return result, nil
			}

			values := usecase.simulator.Readings(drone.Latitude, drone.Longitude, now)
			for _, modality := range models.SensorModalities {
				result.Readings = append(result.Readings, models.SensorReading{
					Id:         uuid.Must(uuid.NewV7()),
					DroneId:    &drone.Id,
					Modality:   modality,
					Value:      pure_utils.RoundTo(values[modality], 2),
					Latitude:   drone.Latitude,
					Longitude:  drone.Longitude,
					RecordedAt: now,
				})
			}
			if err := usecase.readingRepository.CreateSensorReadings(ctx, tx, result.Readings); err != nil {
				return models.ScanResult{}, err
			}
			for _, r := range result.Readings {
				utils.MetricSensorReadingsCount.WithLabelValues(string(r.Modality)).Inc()
			}

			for _, point := range usecase.simulator.ScanPoints(drone.Latitude, drone.Longitude) {
				classification, confidence, ok := usecase.simulator.CheckDetection(point.Latitude, point.Longitude)
				if !ok {
					continue
				}
				detection, err := usecase.recorder.record(ctx, tx, models.DetectionCreate{
					DroneId:        &drone.Id,
					CreatedAt:      now,
					Latitude:       point.Latitude,
					Longitude:      point.Longitude,
					Classification: classification,
					Confidence:     pure_utils.RoundTo(confidence, 2),
					Source:         models.DetectionSourceSimulation,
				})
				if err != nil {
					return models.ScanResult{}, err
				}
				result.Detections = append(result.Detections, detection)
			}
			return result, nil
		})
}

// ScanAutoDrones scans every drone flagged for automatic scanning. A failing drone does not
// prevent the others from being scanned.
func (usecase DroneUsecase) ScanAutoDrones(ctx context.Context) error {
	logger := utils.LoggerFromContext(ctx)

	drones, err := usecase.droneRepository.ListDrones(ctx, usecase.executorFactory.NewExecutor(), true)
	if err != nil {
		return err
	}

	failed := 0
	detections := 0
	for _, drone := range drones {
		result, err := usecase.ScanDrone(ctx, drone.Id)
		if err != nil {
			failed++
			logger.ErrorContext(ctx, "Auto scan failed", "drone_id", drone.Id, "error", err)
			continue
		}
		detections += len(result.Detections)
	}

	logger.InfoContext(ctx, "Auto scan completed",
		"drones", len(drones),
		"failed", failed,
		"detections", detections)
	if failed > 0 {
		return errors.Newf("auto scan failed for %d of %d drones", failed, len(drones))
	}
	return nil
}

// SensorSnapshot returns what the sensors of the drone read right now, fused. Nothing is
// stored.
func (usecase DroneUsecase) SensorSnapshot(ctx context.Context, id uuid.UUID) (models.SensorSnapshot, error) {
	drone, err := usecase.droneRepository.GetDrone(ctx, usecase.executorFactory.NewExecutor(), id, false)
	if err != nil {
		return models.SensorSnapshot{}, err
	}

	now := usecase.clock.Now()
	values := pure_utils.MapValues(
		usecase.simulator.Readings(drone.Latitude, drone.Longitude, now),
		func(v float64) float64 { return pure_utils.RoundTo(v, 2) },
	)
	return models.SensorSnapshot{
		DroneId:   drone.Id,
		Latitude:  drone.Latitude,
		Longitude: drone.Longitude,
		Readings:  values,
		Fusion:    fusion.FuseValues(values),
		TakenAt:   now,
	}, nil
}

func (usecase DroneUsecase) ListSensorReadings(ctx context.Context, droneId uuid.UUID, limit int) ([]models.SensorReading, error) {
	if limit <= 0 {
		limit = DEFAULT_READINGS_LIMIT
	}
	limit = min(limit, MAX_READINGS_LIMIT)

	exec := usecase.executorFactory.NewExecutor()
	if _, err := usecase.droneRepository.GetDrone(ctx, exec, droneId, false); err != nil {
		return nil, err
	}
	return usecase.readingRepository.ListSensorReadings(ctx, exec, droneId, limit)
}
