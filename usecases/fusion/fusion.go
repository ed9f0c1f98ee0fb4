// Package fusion combines heterogeneous sensor readings taken at one position into a single
// classified detection signal.
package fusion

import (
	"github.com/cockroachdb/errors"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/pure_utils"
)

const (
	LANDMINE_SCORE_THRESHOLD   = 70.0
	LANDMINE_MIN_CORROBORATION = 2
	DEBRIS_SCORE_THRESHOLD     = 40.0
	DEBRIS_METAL_THRESHOLD     = 50.0
	CORROBORATION_THRESHOLD    = 50.0
	MIN_READING                = 0.0
	MAX_READING                = 100.0
	fusionScoreDecimals        = 2
)

var ModalityWeights = map[models.SensorModality]float64{
	models.ModalityMetalDetector: 0.35,
	models.ModalityGpr:           0.30,
	models.ModalityThermal:       0.20,
	models.ModalityHyperspectral: 0.15,
}

// Latest keeps one reading per modality. When a modality is repeated the most recent reading
// wins, and on equal timestamps the last one in the slice.
func Latest(readings []models.SensorReadingInput) map[models.SensorModality]float64 {
	latest := make(map[models.SensorModality]models.SensorReadingInput, len(readings))
	for _, r := range readings {
		previous, ok := latest[r.Modality]
		if !ok || !r.RecordedAt.Before(previous.RecordedAt) {
			latest[r.Modality] = r
		}
	}
	return pure_utils.MapValues(latest, func(r models.SensorReadingInput) float64 { return r.Value })
}

func Validate(readings []models.SensorReadingInput) error {
	if len(readings) == 0 {
		return models.ErrNoSensorReadings
	}
	for _, r := range readings {
		if _, ok := ModalityWeights[r.Modality]; !ok {
			return errors.Wrapf(models.ErrUnknownModality, "%q", r.Modality)
		}
		if r.Value < MIN_READING || r.Value > MAX_READING {
			return errors.Wrapf(models.ErrReadingOutOfRange, "%s=%v", r.Modality, r.Value)
		}
	}
	return nil
}

func Fuse(readings []models.SensorReadingInput) (models.FusionResult, error) {
	if err := Validate(readings); err != nil {
		return models.FusionResult{}, err
	}
	return FuseValues(Latest(readings)), nil
}

// FuseValues computes the weighted mean of the values, the weights being renormalised over the
// modalities present. Values must already be validated.
func FuseValues(values map[models.SensorModality]float64) models.FusionResult {
	totalWeight := 0.0
	for modality := range values {
		totalWeight += ModalityWeights[modality]
	}

	score := 0.0
	corroboration := 0
	contributions := make(map[models.SensorModality]float64, len(values))
	for modality, value := range values {
		contribution := value * ModalityWeights[modality] / totalWeight
		contributions[modality] = pure_utils.RoundTo(contribution, fusionScoreDecimals)
		score += contribution
		if value >= CORROBORATION_THRESHOLD {
			corroboration++
		}
	}
	score = pure_utils.RoundTo(pure_utils.Clamp(score, MIN_READING, MAX_READING), fusionScoreDecimals)

	classification := Classify(score, corroboration, values[models.ModalityMetalDetector])
	confidence := score
	if classification == models.SafeZone {
		confidence = pure_utils.RoundTo(MAX_READING-score, fusionScoreDecimals)
	}

	return models.FusionResult{
		Score:          score,
		Corroboration:  corroboration,
		Classification: classification,
		Confidence:     confidence,
		Contributions:  contributions,
	}
}

func Classify(score float64, corroboration int, metal float64) models.Classification {
	switch {
	case score >= LANDMINE_SCORE_THRESHOLD && corroboration >= LANDMINE_MIN_CORROBORATION:
		return models.Landmine
	case metal >= DEBRIS_METAL_THRESHOLD || score >= DEBRIS_SCORE_THRESHOLD:
		return models.MetalDebris
	default:
		return models.SafeZone
	}
}
