package dbmodels

import (
	"time"

	"github.com/google/uuid"
	"github.com/guregu/null/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/utils"
)

type DBDetection struct {
	Id             uuid.UUID   `db:"id"`
	DroneId        *uuid.UUID  `db:"drone_id"`
	CreatedAt      time.Time   `db:"created_at"`
	Latitude       float64     `db:"latitude"`
	Longitude      float64     `db:"longitude"`
	Classification string      `db:"classification"`
	Confidence     float64     `db:"confidence"`
	Source         string      `db:"source"`
	ImagePath      null.String `db:"image_path"`
	X              pgtype.Int4 `db:"x"`
	Y              pgtype.Int4 `db:"y"`
	Width          pgtype.Int4 `db:"width"`
	Height         pgtype.Int4 `db:"height"`
}

const TABLE_DETECTIONS = "detections"

var DetectionFields = utils.ColumnList[DBDetection]()

func AdaptDetection(db DBDetection) (models.Detection, error) {
	detection := models.Detection{
		Id:             db.Id,
		DroneId:        db.DroneId,
		CreatedAt:      db.CreatedAt,
		Latitude:       db.Latitude,
		Longitude:      db.Longitude,
		Classification: models.Classification(db.Classification),
		Confidence:     db.Confidence,
		Source:         models.DetectionSource(db.Source),
		ImagePath:      db.ImagePath.Ptr(),
	}

	if db.X.Valid && db.Y.Valid && db.Width.Valid && db.Height.Valid {
		detection.BoundingBox = &models.BoundingBox{
			X:      int(db.X.Int32),
			Y:      int(db.Y.Int32),
			Width:  int(db.Width.Int32),
			Height: int(db.Height.Int32),
		}
	}

	return detection, nil
}

type DBDetectionCount struct {
	Classification string `db:"classification"`
	Count          int    `db:"count"`
}
