package usecases

import (
	"context"
	"fmt"
	"image"
	"path"
	"regexp"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/repositories"
	"github.com/minealert/minealert-backend/repositories/clock"
	"github.com/minealert/minealert-backend/usecases/executor_factory"
	"github.com/minealert/minealert-backend/usecases/imagery"
	"github.com/minealert/minealert-backend/utils"
)

const (
	IMAGERY_UPLOADS_PREFIX   = "uploads"
	IMAGERY_PROCESSED_PREFIX = "processed"
)

var unsafeFileNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type imageBlobWriter interface {
	PutFile(ctx context.Context, bucketUrl, fileName, contentType string, content []byte) error
}

type imageInference interface {
	Enabled() bool
	Infer(ctx context.Context, image []byte) ([]models.ImageObject, error)
}

type ImageryUsecase struct {
	transactionFactory  executor_factory.TransactionFactory
	blobRepository      imageBlobWriter
	inferenceRepository imageInference
	recorder            detectionRecorder
	bucketUrl           string
	concurrency         int
	clock               clock.Clock
}

func sanitizeFileName(name string) string {
	name = unsafeFileNameChars.ReplaceAllString(path.Base(name), "_")
	if name == "" || name == "." || name == "_" {
		return "image"
	}
	return name
}

func (usecase ImageryUsecase) findObjects(
	ctx context.Context,
	detector models.ImageDetector,
	input models.ImageAnalysisInput,
	img image.Image,
) ([]models.ImageObject, error) {
	if detector == models.ImageDetectorLocal {
		return imagery.Detect(img), nil
	}
	if usecase.inferenceRepository == nil || !usecase.inferenceRepository.Enabled() {
		return nil, models.ErrInferenceMissing
	}
	return usecase.inferenceRepository.Infer(ctx, input.Content)
}

// AnalyzeImage finds objects in an aerial image, stores the original next to an annotated copy
// and records one detection per object, geo-referenced from the base position of the image.
func (usecase ImageryUsecase) AnalyzeImage(
	ctx context.Context,
	input models.ImageAnalysisInput,
) (models.ImageAnalysis, error) {
	start := time.Now()
	logger := utils.LoggerFromContext(ctx)

	detector, ok := models.ImageDetectorFrom(string(input.Detector))
	if !ok {
		return models.ImageAnalysis{}, errors.Wrapf(models.ErrUnknownDetector, "detector %q", input.Detector)
	}
	baseLatitude, baseLongitude := models.DEFAULT_FIELD_LATITUDE, models.DEFAULT_FIELD_LONGITUDE
	if input.Latitude != nil {
		baseLatitude = *input.Latitude
	}
	if input.Longitude != nil {
		baseLongitude = *input.Longitude
	}
	if err := models.ValidateCoordinates(baseLatitude, baseLongitude); err != nil {
		return models.ImageAnalysis{}, err
	}

	img, mime, err := imagery.Decode(input.Content)
	if err != nil {
		return models.ImageAnalysis{}, err
	}

	objects, err := usecase.findObjects(ctx, detector, input, img)
	if err != nil {
		return models.ImageAnalysis{}, err
	}

	annotated, err := imagery.EncodePNG(imagery.Annotate(img, objects))
	if err != nil {
		return models.ImageAnalysis{}, err
	}

	now := usecase.clock.Now()
	key := fmt.Sprintf("%s_%s", now.UTC().Format("20060102_150405"), uuid.Must(uuid.NewV7()))
	imagePath := path.Join(IMAGERY_UPLOADS_PREFIX, key+"_"+sanitizeFileName(input.FileName))
	processedPath := path.Join(IMAGERY_PROCESSED_PREFIX, key+".png")

	if err := usecase.blobRepository.PutFile(ctx, usecase.bucketUrl, imagePath, mime, input.Content); err != nil {
		return models.ImageAnalysis{}, errors.Wrap(err, "failed to store uploaded image")
	}
	if err := usecase.blobRepository.PutFile(ctx, usecase.bucketUrl, processedPath, "image/png", annotated); err != nil {
		return models.ImageAnalysis{}, errors.Wrap(err, "failed to store annotated image")
	}

	source := models.DetectionSourceImage
	if detector == models.ImageDetectorRemote {
		source = models.DetectionSourceInference
	}

	detections, err := executor_factory.TransactionReturnValue(ctx, usecase.transactionFactory,
		func(tx repositories.Transaction) ([]models.Detection, error) {
			detections := make([]models.Detection, 0, len(objects))
			for _, object := range objects {
				latitude, longitude := imagery.GeoReference(object.Box, baseLatitude, baseLongitude)
				box := object.Box
				detection, err := usecase.recorder.record(ctx, tx, models.DetectionCreate{
					CreatedAt:      now,
					Latitude:       latitude,
					Longitude:      longitude,
					Classification: object.Classification,
					Confidence:     object.Confidence,
					Source:         source,
					ImagePath:      &processedPath,
					BoundingBox:    &box,
				})
				if err != nil {
					return nil, err
				}
				detections = append(detections, detection)
			}
			return detections, nil
		})
	if err != nil {
		return models.ImageAnalysis{}, err
	}

	utils.MetricImageAnalysisDuration.WithLabelValues(string(detector)).Observe(time.Since(start).Seconds())
	logger.InfoContext(ctx, "image analyzed",
		"detector", detector,
		"image_path", imagePath,
		"objects", len(objects))

	return models.ImageAnalysis{
		ImagePath:     imagePath,
		ProcessedPath: processedPath,
		Detector:      detector,
		Detections:    detections,
		AnalyzedAt:    now,
	}, nil
}

// AnalyzeImages runs a batch of analyses with a bounded number in flight. Results keep the order
// of the inputs. The first failure cancels the batch.
func (usecase ImageryUsecase) AnalyzeImages(
	ctx context.Context,
	inputs []models.ImageAnalysisInput,
) ([]models.ImageAnalysis, error) {
	results := make([]models.ImageAnalysis, len(inputs))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(max(usecase.concurrency, 1))
	for i, input := range inputs {
		group.Go(func() error {
			analysis, err := usecase.AnalyzeImage(ctx, input)
			if err != nil {
				return errors.Wrapf(err, "image %s", input.FileName)
			}
			results[i] = analysis
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
