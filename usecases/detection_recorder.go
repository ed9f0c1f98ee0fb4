package usecases

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/repositories"
	"github.com/minealert/minealert-backend/repositories/clock"
	"github.com/minealert/minealert-backend/utils"
)

type detectionWriter interface {
	CreateDetection(ctx context.Context, exec repositories.Executor, id uuid.UUID, input models.DetectionCreate) error
}

type eventWriter interface {
	CreateEvent(ctx context.Context, exec repositories.Executor, id uuid.UUID, input models.EventCreate) error
}

type alertTaskQueue interface {
	EnqueueAlertDispatchTask(ctx context.Context, tx repositories.Transaction, detectionId uuid.UUID) error
}

// detectionRecorder is shared by every path that produces detections: drone scans, fused sensor
// readings and imagery.
type detectionRecorder struct {
	detectionRepository detectionWriter
	eventRepository     eventWriter
	taskQueue           alertTaskQueue
	clock               clock.Clock
}

func detectionEventMessage(d models.Detection) string {
	return fmt.Sprintf("%s detected with %.2f%% confidence", d.Classification, d.Confidence)
}

// record persists the detection and its DETECTION event. Alert-worthy detections get their
// alert dispatch job in the same transaction.
func (r detectionRecorder) record(
	ctx context.Context,
	tx repositories.Transaction,
	input models.DetectionCreate,
) (models.Detection, error) {
	if input.CreatedAt.IsZero() {
		input.CreatedAt = r.clock.Now()
	}

	id := uuid.Must(uuid.NewV7())
	if err := r.detectionRepository.CreateDetection(ctx, tx, id, input); err != nil {
		return models.Detection{}, err
	}
	detection := models.Detection{
		Id:             id,
		DroneId:        input.DroneId,
		CreatedAt:      input.CreatedAt,
		Latitude:       input.Latitude,
		Longitude:      input.Longitude,
		Classification: input.Classification,
		Confidence:     input.Confidence,
		Source:         input.Source,
		ImagePath:      input.ImagePath,
		BoundingBox:    input.BoundingBox,
	}

	err := r.eventRepository.CreateEvent(ctx, tx, uuid.Must(uuid.NewV7()), models.EventCreate{
		Type:        models.EventTypeDetection,
		Message:     detectionEventMessage(detection),
		Severity:    detection.Classification.Severity(),
		DroneId:     detection.DroneId,
		DetectionId: &detection.Id,
	})
	if err != nil {
		return models.Detection{}, err
	}

	if detection.ShouldAlert() {
		if err := r.taskQueue.EnqueueAlertDispatchTask(ctx, tx, detection.Id); err != nil {
			return models.Detection{}, err
		}
	}

	utils.MetricDetectionsCount.WithLabelValues(string(detection.Classification), string(detection.Source)).Inc()
	utils.LoggerFromContext(ctx).InfoContext(ctx, "Detection recorded",
		"detection_id", detection.Id,
		"classification", detection.Classification,
		"confidence", detection.Confidence,
		"source", detection.Source)
	return detection, nil
}
