package models

import (
	"time"

	"github.com/google/uuid"
)

type AlertChannel string

const (
	AlertChannelSms     AlertChannel = "sms"
	AlertChannelWebhook AlertChannel = "webhook"
)

func AlertChannelFrom(s string) (AlertChannel, bool) {
	switch AlertChannel(s) {
	case AlertChannelSms, AlertChannelWebhook:
		return AlertChannel(s), true
	}
	return "", false
}

type AlertRecipient struct {
	Id          uuid.UUID
	Name        string
	Channel     AlertChannel
	Target      string
	Secret      *string
	MinSeverity EventSeverity
	Enabled     bool
	CreatedAt   time.Time
	DeletedAt   *time.Time
}

func (r AlertRecipient) Accepts(d Detection) bool {
	return r.Enabled && r.DeletedAt == nil && d.Classification.Severity().AtLeast(r.MinSeverity)
}

type AlertRecipientCreate struct {
	Name        string
	Channel     AlertChannel
	Target      string
	MinSeverity EventSeverity
}

type AlertDeliveryStatus string

const (
	AlertDeliveryPending AlertDeliveryStatus = "pending"
	AlertDeliverySuccess AlertDeliveryStatus = "success"
	AlertDeliveryFailed  AlertDeliveryStatus = "failed"
)

type AlertDelivery struct {
	Id                uuid.UUID
	DetectionId       uuid.UUID
	RecipientId       uuid.UUID
	Status            AlertDeliveryStatus
	Attempts          int
	NextRetryAt       *time.Time
	LastError         *string
	ProviderMessageId *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type AlertDeliveryFilters struct {
	Status      *AlertDeliveryStatus
	DetectionId *uuid.UUID
	Limit       int
}

const DEFAULT_ALERT_DELIVERIES_LIMIT = 100

func (f AlertDeliveryFilters) MergeWithDefaults() AlertDeliveryFilters {
	if f.Limit <= 0 || f.Limit > DEFAULT_ALERT_DELIVERIES_LIMIT {
		f.Limit = DEFAULT_ALERT_DELIVERIES_LIMIT
	}
	return f
}

// AlertMessage is the payload handed over to a channel.
type AlertMessage struct {
	DeliveryId uuid.UUID
	Detection  Detection
	Body       string
}

type AlertSendResult struct {
	StatusCode        int
	ProviderMessageId string
	Error             error
}

func (r AlertSendResult) IsSuccess() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}
