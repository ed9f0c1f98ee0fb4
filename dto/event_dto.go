package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/utils"
)

type APIEvent struct {
	Id          uuid.UUID  `json:"id"`
	Time        time.Time  `json:"time"`
	TimeAgo     string     `json:"time_ago"`
	Type        string     `json:"type"`
	Message     string     `json:"message"`
	Severity    string     `json:"severity"`
	DroneId     *uuid.UUID `json:"drone_id"`
	DetectionId *uuid.UUID `json:"detection_id"`
}

func AdaptEventDto(now time.Time) func(e models.Event) APIEvent {
	return func(e models.Event) APIEvent {
		return APIEvent{
			Id:          e.Id,
			Time:        e.CreatedAt,
			TimeAgo:     utils.FormatTimeAgo(e.CreatedAt, now),
			Type:        string(e.Type),
			Message:     e.Message,
			Severity:    string(e.Severity),
			DroneId:     e.DroneId,
			DetectionId: e.DetectionId,
		}
	}
}

type EventFiltersQuery struct {
	Types   []string          `form:"type" binding:"dive,oneof=CONTROL DETECTION ALERT SYSTEM"`
	DroneId UnmarshallingUuid `form:"drone_id"`
	Limit   int               `form:"limit" binding:"omitempty,min=1,max=500"`
}

func AdaptEventFilters(input EventFiltersQuery) models.EventFilters {
	filters := models.EventFilters{
		DroneId: input.DroneId.Ptr(),
		Limit:   input.Limit,
	}
	for _, t := range input.Types {
		if eventType, ok := models.EventTypeFrom(t); ok {
			filters.Types = append(filters.Types, eventType)
		}
	}
	return filters
}
