package simulation

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/pure_utils"
)

const (
	MOVEMENT_STEP    = 0.0001 // degrees, about 11 meters
	MAX_SPEED        = 10.0
	MAX_ALTITUDE     = 50.0
	MIN_ALTITUDE     = 5.0
	TAKEOFF_ALTITUDE = 10.0

	MIN_SIGNAL_STRENGTH = 60.0
	MAX_SIGNAL_STRENGTH = 100.0
	DRIFT_PROBABILITY   = 0.3
	DRIFT_AMPLITUDE     = 0.00001

	drainFlyingPerSecond = 0.05
	drainLandedPerSecond = 0.01
)

func consumeBattery(drone *models.Drone, amount float64) {
	drone.BatteryLevel = max(0, drone.BatteryLevel-amount)
}

func moveHorizontally(drone *models.Drone, dLat, dLon float64, heading int) {
	if !drone.IsFlying {
		return
	}
	drone.Latitude += dLat
	drone.Longitude += dLon
	drone.Speed = 2
	drone.Heading = heading
	consumeBattery(drone, 0.2)
}

// ApplyCommand returns the drone state after the command. Movement commands on a grounded drone
// leave the state unchanged.
func ApplyCommand(drone models.Drone, command models.DroneCommand) (models.Drone, error) {
	switch command {
	case models.DroneCommandTakeoff:
		drone.IsFlying = true
		drone.Altitude = TAKEOFF_ALTITUDE
		drone.Speed = 1
	case models.DroneCommandLand, models.DroneCommandEmergencyStop:
		drone.IsFlying = false
		drone.Altitude = 0
		drone.Speed = 0
	case models.DroneCommandMoveForward:
		moveHorizontally(&drone, MOVEMENT_STEP, 0, 0)
	case models.DroneCommandMoveBackward:
		moveHorizontally(&drone, -MOVEMENT_STEP, 0, 180)
	case models.DroneCommandMoveLeft:
		moveHorizontally(&drone, 0, -MOVEMENT_STEP, 270)
	case models.DroneCommandMoveRight:
		moveHorizontally(&drone, 0, MOVEMENT_STEP, 90)
	case models.DroneCommandMoveUp:
		if drone.IsFlying && drone.Altitude < MAX_ALTITUDE {
			drone.Altitude += 1
			consumeBattery(&drone, 0.3)
		}
	case models.DroneCommandMoveDown:
		if drone.IsFlying && drone.Altitude > MIN_ALTITUDE {
			drone.Altitude -= 1
			consumeBattery(&drone, 0.1)
		}
	case models.DroneCommandReturnHome:
		if drone.IsFlying {
			drone.Latitude = drone.Latitude*0.8 + drone.HomeLatitude*0.2
			drone.Longitude = drone.Longitude*0.8 + drone.HomeLongitude*0.2
			drone.Speed = 5
			consumeBattery(&drone, 0.5)
		}
	default:
		return drone, errors.Wrapf(models.ErrUnknownDroneCommand, "%q", command)
	}
	return drone, nil
}

// Tick advances the drone state to now: battery drain proportional to the elapsed time, random
// drift and jitter on speed and signal.
func (s *Simulator) Tick(drone models.Drone, now time.Time) models.Drone {
	elapsed := now.Sub(drone.LastUpdateAt).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if drone.IsFlying {
		consumeBattery(&drone, drainFlyingPerSecond*elapsed)
		if s.rand.Float64() < DRIFT_PROBABILITY {
			drone.Latitude += s.uniform(-DRIFT_AMPLITUDE, DRIFT_AMPLITUDE)
			drone.Longitude += s.uniform(-DRIFT_AMPLITUDE, DRIFT_AMPLITUDE)
		}
		drone.Speed = pure_utils.Clamp(drone.Speed+s.uniform(-0.2, 0.2), 0, MAX_SPEED)
	} else {
		consumeBattery(&drone, drainLandedPerSecond*elapsed)
		drone.Speed = 0
	}

	drone.SignalStrength = pure_utils.Clamp(
		drone.SignalStrength+s.uniform(-2, 2), MIN_SIGNAL_STRENGTH, MAX_SIGNAL_STRENGTH)
	drone.LastUpdateAt = now
	return drone
}
