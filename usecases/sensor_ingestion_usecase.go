package usecases

import (
	"context"

	"github.com/google/uuid"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/repositories"
	"github.com/minealert/minealert-backend/repositories/clock"
	"github.com/minealert/minealert-backend/usecases/executor_factory"
	"github.com/minealert/minealert-backend/usecases/fusion"
	"github.com/minealert/minealert-backend/utils"
)

// Quiet ground: safe zone results below this confidence are not worth a detection.
const MIN_SAFE_ZONE_CONFIDENCE = 60.0

type droneReader interface {
	GetDrone(ctx context.Context, exec repositories.Executor, id uuid.UUID, forUpdate bool) (models.Drone, error)
}

type SensorIngestionUsecase struct {
	transactionFactory executor_factory.TransactionFactory
	executorFactory    executor_factory.ExecutorFactory
	droneRepository    droneReader
	readingRepository  sensorReadingRepository
	recorder           detectionRecorder
	clock              clock.Clock
}

func shouldRecordFusion(result models.FusionResult) bool {
	return result.Classification != models.SafeZone || result.Confidence >= MIN_SAFE_ZONE_CONFIDENCE
}

// IngestReadings stores readings taken at one position, fuses them and records the resulting
// detection.
func (usecase SensorIngestionUsecase) IngestReadings(
	ctx context.Context,
	input models.SensorIngestion,
) (models.SensorIngestionResult, error) {
	if err := models.ValidateCoordinates(input.Latitude, input.Longitude); err != nil {
		return models.SensorIngestionResult{}, err
	}
	fused, err := fusion.Fuse(input.Readings)
	if err != nil {
		return models.SensorIngestionResult{}, err
	}

	if input.DroneId != nil {
		_, err := usecase.droneRepository.GetDrone(ctx, usecase.executorFactory.NewExecutor(), *input.DroneId, false)
		if err != nil {
			return models.SensorIngestionResult{}, err
		}
	}

	now := usecase.clock.Now()
	readings := make([]models.SensorReading, 0, len(input.Readings))
	for _, r := range input.Readings {
		recordedAt := r.RecordedAt
		if recordedAt.IsZero() {
			recordedAt = now
		}
		readings = append(readings, models.SensorReading{
			Id:         uuid.Must(uuid.NewV7()),
			DroneId:    input.DroneId,
			Modality:   r.Modality,
			Value:      r.Value,
			Latitude:   input.Latitude,
			Longitude:  input.Longitude,
			RecordedAt: recordedAt,
		})
	}

	result, err := executor_factory.TransactionReturnValue(ctx, usecase.transactionFactory,
		func(tx repositories.Transaction) (models.SensorIngestionResult, error) {
			if err := usecase.readingRepository.CreateSensorReadings(ctx, tx, readings); err != nil {
				return models.SensorIngestionResult{}, err
			}

			result := models.SensorIngestionResult{Readings: readings, Fusion: fused}
			if !shouldRecordFusion(fused) {
				return result, nil
			}

			detection, err := usecase.recorder.record(ctx, tx, models.DetectionCreate{
				DroneId:        input.DroneId,
				CreatedAt:      now,
				Latitude:       input.Latitude,
				Longitude:      input.Longitude,
				Classification: fused.Classification,
				Confidence:     fused.Confidence,
				Source:         models.DetectionSourceFusion,
			})
			if err != nil {
				return models.SensorIngestionResult{}, err
			}
			result.Detection = &detection
			return result, nil
		})
	if err != nil {
		return models.SensorIngestionResult{}, err
	}

	utils.MetricFusionScore.Observe(fused.Score)
	for _, r := range readings {
		utils.MetricSensorReadingsCount.WithLabelValues(string(r.Modality)).Inc()
	}
	return result, nil
}
