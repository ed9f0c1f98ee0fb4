package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/pure_utils"
)

type SensorReadingBody struct {
	Modality   string     `json:"modality" binding:"required,oneof=metal_detector thermal gpr hyperspectral"`
	Value      *float64   `json:"value" binding:"required,min=0,max=100"`
	RecordedAt *time.Time `json:"recorded_at"`
}

type SensorIngestionBody struct {
	DroneId   *uuid.UUID          `json:"drone_id"`
	Latitude  *float64            `json:"latitude" binding:"required,latitude"`
	Longitude *float64            `json:"longitude" binding:"required,longitude"`
	Readings  []SensorReadingBody `json:"readings" binding:"required,min=1,max=4,dive"`
}

// AdaptSensorIngestion stamps readings without a timestamp with the reception time.
func AdaptSensorIngestion(input SensorIngestionBody, now time.Time) models.SensorIngestion {
	readings := make([]models.SensorReadingInput, 0, len(input.Readings))
	for _, r := range input.Readings {
		modality, _ := models.SensorModalityFrom(r.Modality)
		readings = append(readings, models.SensorReadingInput{
			Modality:   modality,
			Value:      pure_utils.PtrValueOrDefault(r.Value, 0),
			RecordedAt: pure_utils.PtrValueOrDefault(r.RecordedAt, now),
		})
	}
	return models.SensorIngestion{
		DroneId:   input.DroneId,
		Latitude:  pure_utils.PtrValueOrDefault(input.Latitude, 0),
		Longitude: pure_utils.PtrValueOrDefault(input.Longitude, 0),
		Readings:  readings,
	}
}

type APISensorReading struct {
	Id         uuid.UUID  `json:"id"`
	DroneId    *uuid.UUID `json:"drone_id"`
	Modality   string     `json:"modality"`
	Value      float64    `json:"value"`
	Latitude   float64    `json:"latitude"`
	Longitude  float64    `json:"longitude"`
	RecordedAt time.Time  `json:"recorded_at"`
}

func AdaptSensorReadingDto(r models.SensorReading) APISensorReading {
	return APISensorReading{
		Id:         r.Id,
		DroneId:    r.DroneId,
		Modality:   string(r.Modality),
		Value:      r.Value,
		Latitude:   r.Latitude,
		Longitude:  r.Longitude,
		RecordedAt: r.RecordedAt,
	}
}

type APIFusionResult struct {
	Score          float64            `json:"score"`
	Corroboration  int                `json:"corroboration"`
	Classification string             `json:"classification"`
	Confidence     float64            `json:"confidence"`
	Contributions  map[string]float64 `json:"contributions"`
}

func AdaptFusionResultDto(f models.FusionResult) APIFusionResult {
	contributions := make(map[string]float64, len(f.Contributions))
	for modality, value := range f.Contributions {
		contributions[string(modality)] = value
	}
	return APIFusionResult{
		Score:          f.Score,
		Corroboration:  f.Corroboration,
		Classification: string(f.Classification),
		Confidence:     f.Confidence,
		Contributions:  contributions,
	}
}

type APISensorIngestionResult struct {
	Readings  []APISensorReading `json:"readings"`
	Fusion    APIFusionResult    `json:"fusion"`
	Detection *APIDetection      `json:"detection"`
}

func AdaptSensorIngestionResultDto(result models.SensorIngestionResult, now time.Time) APISensorIngestionResult {
	out := APISensorIngestionResult{
		Readings: pure_utils.Map(result.Readings, AdaptSensorReadingDto),
		Fusion:   AdaptFusionResultDto(result.Fusion),
	}
	if result.Detection != nil {
		detection := AdaptDetectionDto(now)(*result.Detection)
		out.Detection = &detection
	}
	return out
}
