package dbmodels

import (
	"time"

	"github.com/google/uuid"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/utils"
)

type DBDrone struct {
	Id             uuid.UUID `db:"id"`
	Name           string    `db:"name"`
	HomeLatitude   float64   `db:"home_latitude"`
	HomeLongitude  float64   `db:"home_longitude"`
	Latitude       float64   `db:"latitude"`
	Longitude      float64   `db:"longitude"`
	Altitude       float64   `db:"altitude"`
	Speed          float64   `db:"speed"`
	Heading        int       `db:"heading"`
	BatteryLevel   float64   `db:"battery_level"`
	SignalStrength float64   `db:"signal_strength"`
	IsFlying       bool      `db:"is_flying"`
	AutoScan       bool      `db:"auto_scan"`
	LastUpdateAt   time.Time `db:"last_update_at"`
	CreatedAt      time.Time `db:"created_at"`
}

const TABLE_DRONES = "drones"

var DroneFields = utils.ColumnList[DBDrone]()

func AdaptDrone(db DBDrone) (models.Drone, error) {
	return models.Drone{
		Id:             db.Id,
		Name:           db.Name,
		HomeLatitude:   db.HomeLatitude,
		HomeLongitude:  db.HomeLongitude,
		Latitude:       db.Latitude,
		Longitude:      db.Longitude,
		Altitude:       db.Altitude,
		Speed:          db.Speed,
		Heading:        db.Heading,
		BatteryLevel:   db.BatteryLevel,
		SignalStrength: db.SignalStrength,
		IsFlying:       db.IsFlying,
		AutoScan:       db.AutoScan,
		LastUpdateAt:   db.LastUpdateAt,
		CreatedAt:      db.CreatedAt,
	}, nil
}
