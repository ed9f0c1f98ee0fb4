package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/utils"
)

type APIBoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type APIDetection struct {
	Id             uuid.UUID       `json:"id"`
	DroneId        *uuid.UUID      `json:"drone_id"`
	Timestamp      time.Time       `json:"timestamp"`
	TimeAgo        string          `json:"time_ago"`
	Latitude       float64         `json:"latitude"`
	Longitude      float64         `json:"longitude"`
	Classification string          `json:"classification"`
	Severity       string          `json:"severity"`
	Color          string          `json:"color"`
	Confidence     float64         `json:"confidence"`
	Source         string          `json:"source"`
	ImagePath      *string         `json:"image_path"`
	BoundingBox    *APIBoundingBox `json:"bounding_box"`
}

// classificationColor is the marker color of the detection on the dashboard map.
func classificationColor(c models.Classification) string {
	switch c {
	case models.Landmine:
		return "red"
	case models.MetalDebris:
		return "orange"
	default:
		return "green"
	}
}

func AdaptDetectionDto(now time.Time) func(d models.Detection) APIDetection {
	return func(d models.Detection) APIDetection {
		out := APIDetection{
			Id:             d.Id,
			DroneId:        d.DroneId,
			Timestamp:      d.CreatedAt,
			TimeAgo:        utils.FormatTimeAgo(d.CreatedAt, now),
			Latitude:       d.Latitude,
			Longitude:      d.Longitude,
			Classification: string(d.Classification),
			Severity:       string(d.Classification.Severity()),
			Color:          classificationColor(d.Classification),
			Confidence:     d.Confidence,
			Source:         string(d.Source),
			ImagePath:      d.ImagePath,
		}
		if d.BoundingBox != nil {
			out.BoundingBox = &APIBoundingBox{
				X:      d.BoundingBox.X,
				Y:      d.BoundingBox.Y,
				Width:  d.BoundingBox.Width,
				Height: d.BoundingBox.Height,
			}
		}
		return out
	}
}

type DetectionFiltersQuery struct {
	Classifications []string          `form:"classification" binding:"dive,oneof=Landmine 'Metal Debris' 'Safe Zone'"`
	DroneId         UnmarshallingUuid `form:"drone_id"`
	Limit           int               `form:"limit" binding:"omitempty,min=1,max=1000"`
}

func AdaptDetectionFilters(input DetectionFiltersQuery) models.DetectionFilters {
	filters := models.DetectionFilters{
		DroneId: input.DroneId.Ptr(),
		Limit:   input.Limit,
	}
	for _, c := range input.Classifications {
		if classification, ok := models.ClassificationFrom(c); ok {
			filters.Classifications = append(filters.Classifications, classification)
		}
	}
	return filters
}

type DetectionExportQuery struct {
	DetectionFiltersQuery
	Format string `form:"format" binding:"omitempty,oneof=csv json"`
}

func (q DetectionExportQuery) ExportFormat() models.ExportFormat {
	if q.Format == "" {
		return models.ExportFormatCsv
	}
	return models.ExportFormat(q.Format)
}

type APIClassificationCount struct {
	Classification string `json:"classification"`
	Color          string `json:"color"`
	Count          int    `json:"count"`
}

type APIDetectionStats struct {
	Total           int                      `json:"total"`
	Classifications []APIClassificationCount `json:"classifications"`
}

// AdaptDetectionStatsDto lists every classification, in display order, including the empty ones.
func AdaptDetectionStatsDto(stats models.DetectionStats) APIDetectionStats {
	out := APIDetectionStats{
		Classifications: make([]APIClassificationCount, 0, len(models.Classifications)),
	}
	for _, c := range models.Classifications {
		out.Total += stats[c]
		out.Classifications = append(out.Classifications, APIClassificationCount{
			Classification: string(c),
			Color:          classificationColor(c),
			Count:          stats[c],
		})
	}
	return out
}
