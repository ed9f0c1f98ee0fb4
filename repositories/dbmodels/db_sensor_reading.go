package dbmodels

import (
	"time"

	"github.com/google/uuid"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/utils"
)

type DBSensorReading struct {
	Id         uuid.UUID  `db:"id"`
	DroneId    *uuid.UUID `db:"drone_id"`
	Modality   string     `db:"modality"`
	Value      float64    `db:"value"`
	Latitude   float64    `db:"latitude"`
	Longitude  float64    `db:"longitude"`
	RecordedAt time.Time  `db:"recorded_at"`
}

const TABLE_SENSOR_READINGS = "sensor_readings"

var SensorReadingFields = utils.ColumnList[DBSensorReading]()

func AdaptSensorReading(db DBSensorReading) (models.SensorReading, error) {
	return models.SensorReading{
		Id:         db.Id,
		DroneId:    db.DroneId,
		Modality:   models.SensorModality(db.Modality),
		Value:      db.Value,
		Latitude:   db.Latitude,
		Longitude:  db.Longitude,
		RecordedAt: db.RecordedAt,
	}, nil
}
