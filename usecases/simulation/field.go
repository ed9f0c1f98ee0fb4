package simulation

import (
	"math"
	"time"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/pure_utils"
)

const (
	RANDOM_DETECTION_PROBABILITY = 0.05
	MAX_SCAN_POINTS              = 3
)

// Distance between two positions, euclidean in degrees. Good enough over a survey field.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	return math.Hypot(lat1-lat2, lon1-lon2)
}

// signal is the strength of the strongest hotspot whose extended radius covers the position,
// decreasing linearly from peak at the centre to zero at the edge.
func signal(hotspots []models.Hotspot, lat, lon, radiusFactor, peak, floor float64) float64 {
	reading := floor
	for _, h := range hotspots {
		reach := h.Radius * radiusFactor
		d := Distance(lat, lon, h.Latitude, h.Longitude)
		if d < reach {
			reading = max(reading, (1-d/reach)*peak)
		}
	}
	return reading
}

// CheckDetection rolls the detection of an object at the position. Hotspots are checked in the
// order landmines, debris, safe zones; outside of any hotspot a rare random detection can occur.
func (s *Simulator) CheckDetection(lat, lon float64) (models.Classification, float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	categories := []struct {
		classification models.Classification
		hotspots       []models.Hotspot
	}{
		{models.Landmine, s.field.Landmines},
		{models.MetalDebris, s.field.Debris},
		{models.SafeZone, s.field.SafeZones},
	}
	for _, category := range categories {
		for _, h := range category.hotspots {
			if Distance(lat, lon, h.Latitude, h.Longitude) < h.Radius && s.rand.Float64() < h.Probability {
				return category.classification, h.Probability * 100, true
			}
		}
	}

	if s.rand.Float64() < RANDOM_DETECTION_PROBABILITY {
		var classification models.Classification
		switch roll := s.rand.Float64(); {
		case roll < 0.2:
			classification = models.Landmine
		case roll < 0.7:
			classification = models.MetalDebris
		default:
			classification = models.SafeZone
		}
		return classification, s.uniform(70, 95), true
	}
	return "", 0, false
}

func (s *Simulator) MetalReading(lat, lon float64) float64 {
	reading := max(
		signal(s.field.Landmines, lat, lon, 1.5, 100, 10),
		signal(s.field.Debris, lat, lon, 1.5, 75, 10),
	)
	s.mu.Lock()
	defer s.mu.Unlock()
	return pure_utils.Clamp(reading+s.uniform(-5, 5), 0, 100)
}

func thermalTimeFactor(at time.Time) float64 {
	switch hour := at.Hour(); {
	case hour >= 10 && hour <= 16:
		return 1.2
	case (hour >= 6 && hour <= 9) || (hour >= 17 && hour <= 19):
		return 1.1
	default:
		return 1
	}
}

// ThermalReading depends on the local hour: buried explosives stand out more in the afternoon.
func (s *Simulator) ThermalReading(lat, lon float64, at time.Time) float64 {
	reading := signal(s.field.Landmines, lat, lon, 1.2, 85, 5) * thermalTimeFactor(at)
	s.mu.Lock()
	defer s.mu.Unlock()
	return pure_utils.Clamp(reading+s.uniform(-3, 3), 0, 100)
}

func (s *Simulator) GprReading(lat, lon float64) float64 {
	reading := max(
		signal(s.field.Landmines, lat, lon, 1.3, 90, 8),
		signal(s.field.Debris, lat, lon, 1.3, 60, 8),
	)
	s.mu.Lock()
	defer s.mu.Unlock()
	return pure_utils.Clamp(reading+s.uniform(-4, 4), 0, 100)
}

// HyperspectralReading picks up the disturbed soil around buried landmines.
func (s *Simulator) HyperspectralReading(lat, lon float64) float64 {
	reading := signal(s.field.Landmines, lat, lon, 2, 70, 12)
	s.mu.Lock()
	defer s.mu.Unlock()
	return pure_utils.Clamp(reading+s.uniform(-6, 6), 0, 100)
}

func (s *Simulator) Readings(lat, lon float64, at time.Time) map[models.SensorModality]float64 {
	return map[models.SensorModality]float64{
		models.ModalityMetalDetector: s.MetalReading(lat, lon),
		models.ModalityGpr:           s.GprReading(lat, lon),
		models.ModalityThermal:       s.ThermalReading(lat, lon, at),
		models.ModalityHyperspectral: s.HyperspectralReading(lat, lon),
	}
}

type Point struct {
	Latitude  float64
	Longitude float64
}

// ScanPoints returns between one and MAX_SCAN_POINTS positions within one movement step of
// the given position.
func (s *Simulator) ScanPoints(lat, lon float64) []Point {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 1 + s.rand.IntN(MAX_SCAN_POINTS)
	points := make([]Point, n)
	for i := range points {
		points[i] = Point{
			Latitude:  lat + s.uniform(-MOVEMENT_STEP, MOVEMENT_STEP),
			Longitude: lon + s.uniform(-MOVEMENT_STEP, MOVEMENT_STEP),
		}
	}
	return points
}
