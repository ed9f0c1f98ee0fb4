package models

import (
	"time"

	"github.com/google/uuid"
)

type Drone struct {
	Id             uuid.UUID
	Name           string
	HomeLatitude   float64
	HomeLongitude  float64
	Latitude       float64
	Longitude      float64
	Altitude       float64
	Speed          float64
	Heading        int
	BatteryLevel   float64
	SignalStrength float64
	IsFlying       bool
	AutoScan       bool
	LastUpdateAt   time.Time
	CreatedAt      time.Time
}

type DroneCreate struct {
	Name          string
	HomeLatitude  float64
	HomeLongitude float64
	AutoScan      bool
}

type DroneUpdate struct {
	AutoScan *bool
}

type DroneCommand string

const (
	DroneCommandTakeoff       DroneCommand = "takeoff"
	DroneCommandLand          DroneCommand = "land"
	DroneCommandMoveForward   DroneCommand = "move_forward"
	DroneCommandMoveBackward  DroneCommand = "move_backward"
	DroneCommandMoveLeft      DroneCommand = "move_left"
	DroneCommandMoveRight     DroneCommand = "move_right"
	DroneCommandMoveUp        DroneCommand = "move_up"
	DroneCommandMoveDown      DroneCommand = "move_down"
	DroneCommandReturnHome    DroneCommand = "return_home"
	DroneCommandEmergencyStop DroneCommand = "emergency_stop"
)

var DroneCommands = []DroneCommand{
	DroneCommandTakeoff,
	DroneCommandLand,
	DroneCommandMoveForward,
	DroneCommandMoveBackward,
	DroneCommandMoveLeft,
	DroneCommandMoveRight,
	DroneCommandMoveUp,
	DroneCommandMoveDown,
	DroneCommandReturnHome,
	DroneCommandEmergencyStop,
}

func DroneCommandFrom(s string) (DroneCommand, bool) {
	for _, c := range DroneCommands {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// ControlEvent returns the event recorded in the event stream when the command is applied,
// or false for navigation commands which are not recorded.
func (c DroneCommand) ControlEvent() (message string, severity EventSeverity, ok bool) {
	switch c {
	case DroneCommandTakeoff:
		return "Drone took off", SeverityInfo, true
	case DroneCommandLand:
		return "Drone landed", SeverityInfo, true
	case DroneCommandReturnHome:
		return "Return to home initiated", SeverityWarning, true
	case DroneCommandEmergencyStop:
		return "EMERGENCY STOP triggered", SeverityDanger, true
	}
	return "", "", false
}

type ScanResult struct {
	Drone      Drone
	Readings   []SensorReading
	Detections []Detection
}
