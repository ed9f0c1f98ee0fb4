package dbmodels

import (
	"time"

	"github.com/google/uuid"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/utils"
)

type DBEvent struct {
	Id          uuid.UUID  `db:"id"`
	CreatedAt   time.Time  `db:"created_at"`
	Type        string     `db:"type"`
	Message     string     `db:"message"`
	Severity    string     `db:"severity"`
	DroneId     *uuid.UUID `db:"drone_id"`
	DetectionId *uuid.UUID `db:"detection_id"`
}

const TABLE_EVENTS = "events"

var EventFields = utils.ColumnList[DBEvent]()

func AdaptEvent(db DBEvent) (models.Event, error) {
	return models.Event{
		Id:          db.Id,
		CreatedAt:   db.CreatedAt,
		Type:        models.EventType(db.Type),
		Message:     db.Message,
		Severity:    models.EventSeverity(db.Severity),
		DroneId:     db.DroneId,
		DetectionId: db.DetectionId,
	}, nil
}
