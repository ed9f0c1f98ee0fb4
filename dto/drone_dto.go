package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/pure_utils"
	"github.com/minealert/minealert-backend/utils"
)

type APIDrone struct {
	Id             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	HomeLatitude   float64   `json:"home_latitude"`
	HomeLongitude  float64   `json:"home_longitude"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	Altitude       float64   `json:"altitude"`
	Speed          float64   `json:"speed"`
	Heading        int       `json:"heading"`
	BatteryLevel   float64   `json:"battery_level"`
	BatteryStatus  string    `json:"battery_status"`
	SignalStrength float64   `json:"signal_strength"`
	IsFlying       bool      `json:"is_flying"`
	AutoScan       bool      `json:"auto_scan"`
	LastUpdateAt   time.Time `json:"last_update_at"`
	LastUpdateAgo  string    `json:"last_update_ago"`
	CreatedAt      time.Time `json:"created_at"`
}

// batteryStatus is the color of the dashboard battery gauge.
func batteryStatus(level float64) string {
	switch {
	case level > 50:
		return "green"
	case level > 20:
		return "orange"
	default:
		return "red"
	}
}

func AdaptDroneDto(now time.Time) func(d models.Drone) APIDrone {
	return func(d models.Drone) APIDrone {
		return APIDrone{
			Id:             d.Id,
			Name:           d.Name,
			HomeLatitude:   d.HomeLatitude,
			HomeLongitude:  d.HomeLongitude,
			Latitude:       d.Latitude,
			Longitude:      d.Longitude,
			Altitude:       d.Altitude,
			Speed:          d.Speed,
			Heading:        d.Heading,
			BatteryLevel:   d.BatteryLevel,
			BatteryStatus:  batteryStatus(d.BatteryLevel),
			SignalStrength: d.SignalStrength,
			IsFlying:       d.IsFlying,
			AutoScan:       d.AutoScan,
			LastUpdateAt:   d.LastUpdateAt,
			LastUpdateAgo:  utils.FormatTimeAgo(d.LastUpdateAt, now),
			CreatedAt:      d.CreatedAt,
		}
	}
}

type CreateDroneBody struct {
	Name          string   `json:"name" binding:"required,max=100"`
	HomeLatitude  *float64 `json:"home_latitude" binding:"omitempty,latitude"`
	HomeLongitude *float64 `json:"home_longitude" binding:"omitempty,longitude"`
	AutoScan      bool     `json:"auto_scan"`
}

// AdaptDroneCreate places the home of the drone on the default survey field when it is not given.
func AdaptDroneCreate(input CreateDroneBody) models.DroneCreate {
	return models.DroneCreate{
		Name:          input.Name,
		HomeLatitude:  pure_utils.PtrValueOrDefault(input.HomeLatitude, models.DEFAULT_FIELD_LATITUDE),
		HomeLongitude: pure_utils.PtrValueOrDefault(input.HomeLongitude, models.DEFAULT_FIELD_LONGITUDE),
		AutoScan:      input.AutoScan,
	}
}

type UpdateDroneBody struct {
	AutoScan *bool `json:"auto_scan" binding:"required"`
}

func AdaptDroneUpdate(input UpdateDroneBody) models.DroneUpdate {
	return models.DroneUpdate{AutoScan: input.AutoScan}
}

type DroneCommandBody struct {
	Command string `json:"command" binding:"required"`
}

type APIScanResult struct {
	Drone      APIDrone           `json:"drone"`
	Readings   []APISensorReading `json:"readings"`
	Detections []APIDetection     `json:"detections"`
}

func AdaptScanResultDto(result models.ScanResult, now time.Time) APIScanResult {
	return APIScanResult{
		Drone:      AdaptDroneDto(now)(result.Drone),
		Readings:   pure_utils.Map(result.Readings, AdaptSensorReadingDto),
		Detections: pure_utils.Map(result.Detections, AdaptDetectionDto(now)),
	}
}

type APISensorSnapshot struct {
	DroneId   uuid.UUID          `json:"drone_id"`
	Latitude  float64            `json:"latitude"`
	Longitude float64            `json:"longitude"`
	Readings  map[string]float64 `json:"readings"`
	Fusion    APIFusionResult    `json:"fusion"`
	TakenAt   time.Time          `json:"taken_at"`
}

func AdaptSensorSnapshotDto(s models.SensorSnapshot) APISensorSnapshot {
	readings := make(map[string]float64, len(s.Readings))
	for modality, value := range s.Readings {
		readings[string(modality)] = value
	}
	return APISensorSnapshot{
		DroneId:   s.DroneId,
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
		Readings:  readings,
		Fusion:    AdaptFusionResultDto(s.Fusion),
		TakenAt:   s.TakenAt,
	}
}

type SensorReadingsQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=1000"`
}
