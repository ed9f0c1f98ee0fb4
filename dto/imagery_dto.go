package dto

import (
	"time"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/pure_utils"
)

// ImageAnalysisForm is the non file part of the multipart upload.
type ImageAnalysisForm struct {
	Detector  string   `form:"detector" binding:"omitempty,oneof=local remote"`
	Latitude  *float64 `form:"latitude" binding:"omitempty,latitude"`
	Longitude *float64 `form:"longitude" binding:"omitempty,longitude"`
}

func AdaptImageAnalysisInput(form ImageAnalysisForm, fileName string, content []byte) models.ImageAnalysisInput {
	detector, _ := models.ImageDetectorFrom(form.Detector)
	return models.ImageAnalysisInput{
		FileName:  fileName,
		Content:   content,
		Detector:  detector,
		Latitude:  form.Latitude,
		Longitude: form.Longitude,
	}
}

type APIImageAnalysis struct {
	ImagePath     string         `json:"image_path"`
	ProcessedPath string         `json:"processed_path"`
	Detector      string         `json:"detector"`
	Detections    []APIDetection `json:"detections"`
	AnalyzedAt    time.Time      `json:"analyzed_at"`
}

func AdaptImageAnalysisDto(now time.Time) func(a models.ImageAnalysis) APIImageAnalysis {
	return func(a models.ImageAnalysis) APIImageAnalysis {
		return APIImageAnalysis{
			ImagePath:     a.ImagePath,
			ProcessedPath: a.ProcessedPath,
			Detector:      string(a.Detector),
			Detections:    pure_utils.Map(a.Detections, AdaptDetectionDto(now)),
			AnalyzedAt:    a.AnalyzedAt,
		}
	}
}
