package models

import (
	"time"

	"github.com/google/uuid"
)

type SensorModality string

const (
	ModalityMetalDetector SensorModality = "metal_detector"
	ModalityThermal       SensorModality = "thermal"
	ModalityGpr           SensorModality = "gpr"
	ModalityHyperspectral SensorModality = "hyperspectral"
)

var SensorModalities = []SensorModality{
	ModalityMetalDetector,
	ModalityGpr,
	ModalityThermal,
	ModalityHyperspectral,
}

func SensorModalityFrom(s string) (SensorModality, bool) {
	for _, m := range SensorModalities {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}

type SensorReading struct {
	Id         uuid.UUID
	DroneId    *uuid.UUID
	Modality   SensorModality
	Value      float64
	Latitude   float64
	Longitude  float64
	RecordedAt time.Time
}

type SensorReadingInput struct {
	Modality   SensorModality
	Value      float64
	RecordedAt time.Time
}

type SensorIngestion struct {
	DroneId   *uuid.UUID
	Latitude  float64
	Longitude float64
	Readings  []SensorReadingInput
}

type FusionResult struct {
	Score          float64
	Corroboration  int
	Classification Classification
	Confidence     float64
	Contributions  map[SensorModality]float64
}

type SensorIngestionResult struct {
	Readings  []SensorReading
	Fusion    FusionResult
	Detection *Detection
}

type SensorSnapshot struct {
	DroneId   uuid.UUID
	Latitude  float64
	Longitude float64
	Readings  map[SensorModality]float64
	Fusion    FusionResult
	TakenAt   time.Time
}

func ValidateCoordinates(latitude, longitude float64) error {
	if latitude < -90 || latitude > 90 || longitude < -180 || longitude > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}
