package models

import (
	"io"
	"time"
)

type ImageDetector string

const (
	ImageDetectorLocal  ImageDetector = "local"
	ImageDetectorRemote ImageDetector = "remote"
)

func ImageDetectorFrom(s string) (ImageDetector, bool) {
	switch ImageDetector(s) {
	case "":
		return ImageDetectorLocal, true
	case ImageDetectorLocal, ImageDetectorRemote:
		return ImageDetector(s), true
	}
	return "", false
}

// ImageObject is a candidate object found in an image, before geo-referencing.
type ImageObject struct {
	Box            BoundingBox
	Confidence     float64
	Classification Classification
	Label          string
}

type ImageAnalysisInput struct {
	FileName  string
	Content   []byte
	Detector  ImageDetector
	Latitude  *float64
	Longitude *float64
}

type ImageAnalysis struct {
	ImagePath     string
	ProcessedPath string
	Detector      ImageDetector
	Detections    []Detection
	AnalyzedAt    time.Time
}

type Blob struct {
	FileName   string
	ReadCloser io.ReadCloser
}
