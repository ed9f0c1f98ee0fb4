package dbmodels

import (
	"time"

	"github.com/google/uuid"
	"github.com/guregu/null/v5"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/utils"
)

type DBAlertRecipient struct {
	Id          uuid.UUID   `db:"id"`
	Name        string      `db:"name"`
	Channel     string      `db:"channel"`
	Target      string      `db:"target"`
	Secret      null.String `db:"secret"`
	MinSeverity string      `db:"min_severity"`
	Enabled     bool        `db:"enabled"`
	CreatedAt   time.Time   `db:"created_at"`
	DeletedAt   null.Time   `db:"deleted_at"`
}

const TABLE_ALERT_RECIPIENTS = "alert_recipients"

var AlertRecipientFields = utils.ColumnList[DBAlertRecipient]()

func AdaptAlertRecipient(db DBAlertRecipient) (models.AlertRecipient, error) {
	return models.AlertRecipient{
		Id:          db.Id,
		Name:        db.Name,
		Channel:     models.AlertChannel(db.Channel),
		Target:      db.Target,
		Secret:      db.Secret.Ptr(),
		MinSeverity: models.EventSeverity(db.MinSeverity),
		Enabled:     db.Enabled,
		CreatedAt:   db.CreatedAt,
		DeletedAt:   db.DeletedAt.Ptr(),
	}, nil
}

type DBAlertDelivery struct {
	Id                uuid.UUID   `db:"id"`
	DetectionId       uuid.UUID   `db:"detection_id"`
	RecipientId       uuid.UUID   `db:"recipient_id"`
	Status            string      `db:"status"`
	Attempts          int         `db:"attempts"`
	NextRetryAt       null.Time   `db:"next_retry_at"`
	LastError         null.String `db:"last_error"`
	ProviderMessageId null.String `db:"provider_message_id"`
	CreatedAt         time.Time   `db:"created_at"`
	UpdatedAt         time.Time   `db:"updated_at"`
}

const TABLE_ALERT_DELIVERIES = "alert_deliveries"

var AlertDeliveryFields = utils.ColumnList[DBAlertDelivery]()

func AdaptAlertDelivery(db DBAlertDelivery) (models.AlertDelivery, error) {
	return models.AlertDelivery{
		Id:                db.Id,
		DetectionId:       db.DetectionId,
		RecipientId:       db.RecipientId,
		Status:            models.AlertDeliveryStatus(db.Status),
		Attempts:          db.Attempts,
		NextRetryAt:       db.NextRetryAt.Ptr(),
		LastError:         db.LastError.Ptr(),
		ProviderMessageId: db.ProviderMessageId.Ptr(),
		CreatedAt:         db.CreatedAt,
		UpdatedAt:         db.UpdatedAt,
	}, nil
}
