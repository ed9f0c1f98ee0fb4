package models

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventTypeControl   EventType = "CONTROL"
	EventTypeDetection EventType = "DETECTION"
	EventTypeAlert     EventType = "ALERT"
	EventTypeSystem    EventType = "SYSTEM"
)

type EventSeverity string

const (
	SeverityInfo    EventSeverity = "info"
	SeverityWarning EventSeverity = "warning"
	SeverityDanger  EventSeverity = "danger"
)

func EventSeverityFrom(s string) (EventSeverity, bool) {
	switch EventSeverity(s) {
	case SeverityInfo, SeverityWarning, SeverityDanger:
		return EventSeverity(s), true
	}
	return "", false
}

func (s EventSeverity) rank() int {
	switch s {
	case SeverityDanger:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

func (s EventSeverity) AtLeast(min EventSeverity) bool {
	return s.rank() >= min.rank()
}

type Event struct {
	Id          uuid.UUID
	CreatedAt   time.Time
	Type        EventType
	Message     string
	Severity    EventSeverity
	DroneId     *uuid.UUID
	DetectionId *uuid.UUID
}

type EventCreate struct {
	Type        EventType
	Message     string
	Severity    EventSeverity
	DroneId     *uuid.UUID
	DetectionId *uuid.UUID
}

func EventTypeFrom(s string) (EventType, bool) {
	switch EventType(s) {
	case EventTypeControl, EventTypeDetection, EventTypeAlert, EventTypeSystem:
		return EventType(s), true
	}
	return "", false
}

type EventFilters struct {
	Types   []EventType
	DroneId *uuid.UUID
	Limit   int
}

const (
	DEFAULT_EVENTS_LIMIT = 10
	MAX_EVENTS_LIMIT     = 500
)

func (f EventFilters) MergeWithDefaults() EventFilters {
	if f.Limit <= 0 {
		f.Limit = DEFAULT_EVENTS_LIMIT
	}
	if f.Limit > MAX_EVENTS_LIMIT {
		f.Limit = MAX_EVENTS_LIMIT
	}
	return f
}
