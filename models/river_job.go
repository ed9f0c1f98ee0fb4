package models

import (
	"github.com/google/uuid"
)

// fan out an alert-worthy detection to every enabled recipient
type AlertDispatchArgs struct {
	DetectionId uuid.UUID `json:"detection_id"`
}

func (AlertDispatchArgs) Kind() string { return "alert_dispatch" }

// deliver one alert to one recipient
type AlertDeliveryArgs struct {
	DeliveryId uuid.UUID `json:"delivery_id"`
}

func (AlertDeliveryArgs) Kind() string { return "alert_delivery" }

const (
	QUEUE_ALERTS      = "alerts"
	QUEUE_MAINTENANCE = "maintenance"
)

// purge finished deliveries past their retention period
type AlertCleanupArgs struct{}

func (AlertCleanupArgs) Kind() string { return "alert_cleanup" }
