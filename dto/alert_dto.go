package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/minealert/minealert-backend/models"
)

type CreateAlertRecipientBody struct {
	Name        string `json:"name" binding:"required,max=100"`
	Channel     string `json:"channel" binding:"required,oneof=sms webhook"`
	Target      string `json:"target" binding:"required"`
	MinSeverity string `json:"min_severity" binding:"omitempty,oneof=info warning danger"`
}

func AdaptAlertRecipientCreate(input CreateAlertRecipientBody) models.AlertRecipientCreate {
	channel, _ := models.AlertChannelFrom(input.Channel)
	return models.AlertRecipientCreate{
		Name:        input.Name,
		Channel:     channel,
		Target:      input.Target,
		MinSeverity: models.EventSeverity(input.MinSeverity),
	}
}

type APIAlertRecipient struct {
	Id          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Channel     string    `json:"channel"`
	Target      string    `json:"target"`
	MinSeverity string    `json:"min_severity"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"created_at"`
}

func AdaptAlertRecipientDto(r models.AlertRecipient) APIAlertRecipient {
	return APIAlertRecipient{
		Id:          r.Id,
		Name:        r.Name,
		Channel:     string(r.Channel),
		Target:      r.Target,
		MinSeverity: string(r.MinSeverity),
		Enabled:     r.Enabled,
		CreatedAt:   r.CreatedAt,
	}
}

// APICreatedAlertRecipient is only returned on creation: the webhook signing secret is never
// shown again.
type APICreatedAlertRecipient struct {
	APIAlertRecipient
	Secret *string `json:"secret,omitempty"`
}

func AdaptCreatedAlertRecipientDto(r models.AlertRecipient) APICreatedAlertRecipient {
	return APICreatedAlertRecipient{
		APIAlertRecipient: AdaptAlertRecipientDto(r),
		Secret:            r.Secret,
	}
}

type APIAlertDelivery struct {
	Id                uuid.UUID  `json:"id"`
	DetectionId       uuid.UUID  `json:"detection_id"`
	RecipientId       uuid.UUID  `json:"recipient_id"`
	Status            string     `json:"status"`
	Attempts          int        `json:"attempts"`
	NextRetryAt       *time.Time `json:"next_retry_at"`
	LastError         *string    `json:"last_error"`
	ProviderMessageId *string    `json:"provider_message_id"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func AdaptAlertDeliveryDto(d models.AlertDelivery) APIAlertDelivery {
	return APIAlertDelivery{
		Id:                d.Id,
		DetectionId:       d.DetectionId,
		RecipientId:       d.RecipientId,
		Status:            string(d.Status),
		Attempts:          d.Attempts,
		NextRetryAt:       d.NextRetryAt,
		LastError:         d.LastError,
		ProviderMessageId: d.ProviderMessageId,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

type AlertDeliveryFiltersQuery struct {
	Status      string            `form:"status" binding:"omitempty,oneof=pending success failed"`
	DetectionId UnmarshallingUuid `form:"detection_id"`
	Limit       int               `form:"limit" binding:"omitempty,min=1,max=100"`
}

func AdaptAlertDeliveryFilters(input AlertDeliveryFiltersQuery) models.AlertDeliveryFilters {
	filters := models.AlertDeliveryFilters{
		DetectionId: input.DetectionId.Ptr(),
		Limit:       input.Limit,
	}
	if input.Status != "" {
		status := models.AlertDeliveryStatus(input.Status)
		filters.Status = &status
	}
	return filters
}
