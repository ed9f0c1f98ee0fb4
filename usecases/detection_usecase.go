package usecases

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/repositories"
	"github.com/minealert/minealert-backend/usecases/executor_factory"
)

const EXPORT_TIMESTAMP_FORMAT = "2006-01-02 15:04:05"

var exportCsvHeader = []string{
	"id", "timestamp", "latitude", "longitude", "classification", "confidence",
	"source", "image_path", "x", "y", "width", "height",
}

type detectionRepository interface {
	GetDetection(ctx context.Context, exec repositories.Executor, id uuid.UUID) (models.Detection, error)
	ListDetections(ctx context.Context, exec repositories.Executor, filters models.DetectionFilters) ([]models.Detection, error)
	ForEachDetection(ctx context.Context, exec repositories.Executor, filters models.DetectionFilters,
		fn func(models.Detection) error) error
	CountDetectionsByClassification(ctx context.Context, exec repositories.Executor) (models.DetectionStats, error)
}

type DetectionUsecase struct {
	executorFactory     executor_factory.ExecutorFactory
	detectionRepository detectionRepository
}

func (usecase DetectionUsecase) ListDetections(ctx context.Context, filters models.DetectionFilters) ([]models.Detection, error) {
	return usecase.detectionRepository.ListDetections(ctx, usecase.executorFactory.NewExecutor(), filters.MergeWithDefaults())
}

func (usecase DetectionUsecase) GetDetection(ctx context.Context, id uuid.UUID) (models.Detection, error) {
	return usecase.detectionRepository.GetDetection(ctx, usecase.executorFactory.NewExecutor(), id)
}

func (usecase DetectionUsecase) GetStats(ctx context.Context) (models.DetectionStats, error) {
	return usecase.detectionRepository.CountDetectionsByClassification(ctx, usecase.executorFactory.NewExecutor())
}

func ExportFileName(format models.ExportFormat, now time.Time) string {
	return fmt.Sprintf("landmine_detections_%s.%s", now.Format("20060102_150405"), format)
}

// exportedDetection is the flat record of an export, shared by both formats.
type exportedDetection struct {
	Id             string  `json:"id"`
	Timestamp      string  `json:"timestamp"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	Classification string  `json:"classification"`
	Confidence     float64 `json:"confidence"`
	Source         string  `json:"source"`
	ImagePath      *string `json:"image_path"`
	X              *int    `json:"x"`
	Y              *int    `json:"y"`
	Width          *int    `json:"width"`
	Height         *int    `json:"height"`
}

func newExportedDetection(d models.Detection) exportedDetection {
	e := exportedDetection{
		Id:             d.Id.String(),
		Timestamp:      d.CreatedAt.Format(EXPORT_TIMESTAMP_FORMAT),
		Latitude:       d.Latitude,
		Longitude:      d.Longitude,
		Classification: string(d.Classification),
		Confidence:     d.Confidence,
		Source:         string(d.Source),
		ImagePath:      d.ImagePath,
	}
	if box := d.BoundingBox; box != nil {
		e.X, e.Y, e.Width, e.Height = &box.X, &box.Y, &box.Width, &box.Height
	}
	return e
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func (e exportedDetection) csvRecord() []string {
	imagePath := ""
	if e.ImagePath != nil {
		imagePath = *e.ImagePath
	}
	return []string{
		e.Id,
		e.Timestamp,
		strconv.FormatFloat(e.Latitude, 'f', -1, 64),
		strconv.FormatFloat(e.Longitude, 'f', -1, 64),
		e.Classification,
		strconv.FormatFloat(e.Confidence, 'f', -1, 64),
		e.Source,
		imagePath,
		optionalInt(e.X),
		optionalInt(e.Y),
		optionalInt(e.Width),
		optionalInt(e.Height),
	}
}

// ExportDetections writes every detection matching the filters, oldest first. The limit of the
// filters is ignored.
func (usecase DetectionUsecase) ExportDetections(
	ctx context.Context,
	w io.Writer,
	format models.ExportFormat,
	filters models.DetectionFilters,
) error {
	exec := usecase.executorFactory.NewExecutor()

	switch format {
	case models.ExportFormatCsv:
		writer := csv.NewWriter(w)
		if err := writer.Write(exportCsvHeader); err != nil {
			return err
		}
		err := usecase.detectionRepository.ForEachDetection(ctx, exec, filters, func(d models.Detection) error {
			return writer.Write(newExportedDetection(d).csvRecord())
		})
		if err != nil {
			return err
		}
		writer.Flush()
		return writer.Error()

	case models.ExportFormatJson:
		if _, err := io.WriteString(w, "["); err != nil {
			return err
		}
		first := true
		err := usecase.detectionRepository.ForEachDetection(ctx, exec, filters, func(d models.Detection) error {
			separator := ",\n  "
			if first {
				separator = "\n  "
				first = false
			}
			b, err := json.MarshalIndent(newExportedDetection(d), "  ", "  ")
			if err != nil {
				return err
			}
			if _, err := io.WriteString(w, separator); err != nil {
				return err
			}
			_, err = w.Write(b)
			return err
		})
		if err != nil {
			return err
		}
		closing := "\n]\n"
		if first {
			closing = "]\n"
		}
		_, err = io.WriteString(w, closing)
		return err
	}

	return errors.Wrapf(models.BadParameterError, "unknown export format %q", format)
}
