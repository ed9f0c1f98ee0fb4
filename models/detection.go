package models

import (
	"time"

	"github.com/google/uuid"
)

type Classification string

const (
	Landmine    Classification = "Landmine"
	MetalDebris Classification = "Metal Debris"
	SafeZone    Classification = "Safe Zone"
)

// Display order of the dashboard statistics.
var Classifications = []Classification{Landmine, MetalDebris, SafeZone}

func ClassificationFrom(s string) (Classification, bool) {
	for _, c := range Classifications {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Severity is the event severity attached to a detection of this class.
func (c Classification) Severity() EventSeverity {
	switch c {
	case Landmine:
		return SeverityDanger
	case MetalDebris:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

type DetectionSource string

const (
	DetectionSourceSimulation DetectionSource = "simulation"
	DetectionSourceFusion     DetectionSource = "fusion"
	DetectionSourceImage      DetectionSource = "image"
	DetectionSourceInference  DetectionSource = "inference"
)

// BoundingBox is expressed in pixels, anchored on the top left corner.
type BoundingBox struct {
	X      int
	Y      int
	Width  int
	Height int
}

type Detection struct {
	Id             uuid.UUID
	DroneId        *uuid.UUID
	CreatedAt      time.Time
	Latitude       float64
	Longitude      float64
	Classification Classification
	Confidence     float64
	Source         DetectionSource
	ImagePath      *string
	BoundingBox    *BoundingBox
}

type DetectionCreate struct {
	DroneId        *uuid.UUID
	CreatedAt      time.Time
	Latitude       float64
	Longitude      float64
	Classification Classification
	Confidence     float64
	Source         DetectionSource
	ImagePath      *string
	BoundingBox    *BoundingBox
}

type DetectionFilters struct {
	Classifications []Classification
	DroneId         *uuid.UUID
	Limit           int
}

const (
	DEFAULT_DETECTIONS_LIMIT = 100
	MAX_DETECTIONS_LIMIT     = 1000
)

func (f DetectionFilters) MergeWithDefaults() DetectionFilters {
	if f.Limit <= 0 {
		f.Limit = DEFAULT_DETECTIONS_LIMIT
	}
	if f.Limit > MAX_DETECTIONS_LIMIT {
		f.Limit = MAX_DETECTIONS_LIMIT
	}
	return f
}

type DetectionStats map[Classification]int

// Detections at or above this severity are handed to the alert dispatcher. Each recipient
// then applies its own minimum severity.
const ALERT_THRESHOLD = SeverityWarning

func (d Detection) ShouldAlert() bool {
	return d.Classification.Severity().AtLeast(ALERT_THRESHOLD)
}

type ExportFormat string

const (
	ExportFormatCsv  ExportFormat = "csv"
	ExportFormatJson ExportFormat = "json"
)
