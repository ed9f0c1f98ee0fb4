package usecases

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/pure_utils"
)

func exportFixtures() []models.Detection {
	return []models.Detection{
		{
			Id:             uuid.MustParse("0194f5a0-0000-7000-8000-0000000000a1"),
			CreatedAt:      testNow,
			Latitude:       34.0525,
			Longitude:      -118.244,
			Classification: models.Landmine,
			Confidence:     78.5,
			Source:         models.DetectionSourceFusion,
		},
		{
			Id:             uuid.MustParse("0194f5a0-0000-7000-8000-0000000000a2"),
			CreatedAt:      testNow.Add(90 * time.Second),
			Latitude:       34.072,
			Longitude:      -118.2337,
			Classification: models.MetalDebris,
			Confidence:     68.79,
			Source:         models.DetectionSourceImage,
			ImagePath:      pure_utils.Ptr("processed/abc.png"),
			BoundingBox:    &models.BoundingBox{X: 25, Y: 25, Width: 11, Height: 11},
		},
	}
}

func newDetectionUsecaseForExport(detections []models.Detection) (DetectionUsecase, usecaseMocks) {
	m := newUsecaseMocks()
	m.executorFactory.On("NewExecutor").Return(m.executor)
	m.repository.On("ForEachDetection", context.Background(), m.executor, models.DetectionFilters{}).
		Return(detections, nil)
	return DetectionUsecase{executorFactory: m.executorFactory, detectionRepository: m.repository}, m
}

func TestExportDetections_csv(t *testing.T) {
	usecase, m := newDetectionUsecaseForExport(exportFixtures())
	var buf bytes.Buffer

	err := usecase.ExportDetections(context.Background(), &buf, models.ExportFormatCsv, models.DetectionFilters{})

	require.NoError(t, err)
	assert.Equal(t,
		"id,timestamp,latitude,longitude,classification,confidence,source,image_path,x,y,width,height\n"+
			"0194f5a0-0000-7000-8000-0000000000a1,2026-03-01 12:30:45,34.0525,-118.244,Landmine,78.5,fusion,,,,,\n"+
			"0194f5a0-0000-7000-8000-0000000000a2,2026-03-01 12:32:15,34.072,-118.2337,Metal Debris,68.79,image,processed/abc.png,25,25,11,11\n",
		buf.String())
	m.assertExpectations(t)
}

func TestExportDetections_json(t *testing.T) {
	usecase, m := newDetectionUsecaseForExport(exportFixtures())
	var buf bytes.Buffer

	err := usecase.ExportDetections(context.Background(), &buf, models.ExportFormatJson, models.DetectionFilters{})
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "2026-03-01 12:30:45", rows[0]["timestamp"])
	assert.Nil(t, rows[0]["image_path"])
	assert.Nil(t, rows[0]["x"])
	assert.Equal(t, "Metal Debris", rows[1]["classification"])
	assert.EqualValues(t, 11, rows[1]["width"])
	assert.Contains(t, buf.String(), "[\n  {\n    \"id\": \"0194f5a0-0000-7000-8000-0000000000a1\",")
	m.assertExpectations(t)
}

func TestExportDetections_json_empty(t *testing.T) {
	usecase, _ := newDetectionUsecaseForExport(nil)
	var buf bytes.Buffer

	err := usecase.ExportDetections(context.Background(), &buf, models.ExportFormatJson, models.DetectionFilters{})

	require.NoError(t, err)
	assert.Equal(t, "[]\n", buf.String())
}

func TestExportDetections_unknown_format(t *testing.T) {
	m := newUsecaseMocks()
	m.executorFactory.On("NewExecutor").Return(m.executor)
	usecase := DetectionUsecase{executorFactory: m.executorFactory, detectionRepository: m.repository}

	err := usecase.ExportDetections(context.Background(), &bytes.Buffer{}, "xml", models.DetectionFilters{})

	assert.ErrorIs(t, err, models.BadParameterError)
}

func TestListDetections_applies_default_limit(t *testing.T) {
	m := newUsecaseMocks()
	m.executorFactory.On("NewExecutor").Return(m.executor)
	m.repository.On("ListDetections", context.Background(), m.executor,
		models.DetectionFilters{Limit: models.DEFAULT_DETECTIONS_LIMIT}).Return([]models.Detection{}, nil)
	usecase := DetectionUsecase{executorFactory: m.executorFactory, detectionRepository: m.repository}

	_, err := usecase.ListDetections(context.Background(), models.DetectionFilters{})

	require.NoError(t, err)
	m.assertExpectations(t)
}

func TestExportFileName(t *testing.T) {
	assert.Equal(t, "landmine_detections_20260301_123045.csv", ExportFileName(models.ExportFormatCsv, testNow))
}
