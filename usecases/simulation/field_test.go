package simulation

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minealert/minealert-backend/models"
)

func TestDistance(t *testing.T) {
	assert.InDelta(t, 5.0, Distance(0, 0, 3, 4), 1e-12)
	assert.Zero(t, Distance(34.05, -118.24, 34.05, -118.24))
}

func TestReadings_are_clamped(t *testing.T) {
	sim := newTestSimulator()
	positions := [][2]float64{
		{34.0522, -118.2437},
		{34.0515, -118.2420},
		{0, 0},
	}
	for _, p := range positions {
		for i := 0; i < 100; i++ {
			for modality, v := range sim.Readings(p[0], p[1], t0) {
				assert.GreaterOrEqual(t, v, 0.0, modality)
				assert.LessOrEqual(t, v, 100.0, modality)
			}
		}
	}
}

func TestReadings_peak_near_landmine(t *testing.T) {
	sim := New(models.FieldLayout{
		Landmines: []models.Hotspot{{Latitude: 10, Longitude: 10, Radius: 0.001, Probability: 1}},
	}, rand.New(rand.NewPCG(3, 4)))

	night := time.Date(2024, 5, 10, 2, 0, 0, 0, time.UTC)
	onTop := sim.Readings(10, 10, night)
	farAway := sim.Readings(20, 20, night)

	assert.Greater(t, onTop[models.ModalityMetalDetector], 90.0)
	assert.Greater(t, onTop[models.ModalityGpr], 80.0)
	assert.Greater(t, onTop[models.ModalityThermal], 80.0)
	assert.Greater(t, onTop[models.ModalityHyperspectral], 60.0)

	assert.Less(t, farAway[models.ModalityMetalDetector], 16.0)
	assert.Less(t, farAway[models.ModalityThermal], 9.0)
}

func TestThermalTimeFactor(t *testing.T) {
	at := func(hour int) time.Time { return time.Date(2024, 5, 10, hour, 30, 0, 0, time.UTC) }
	assert.Equal(t, 1.2, thermalTimeFactor(at(10)))
	assert.Equal(t, 1.2, thermalTimeFactor(at(16)))
	assert.Equal(t, 1.1, thermalTimeFactor(at(6)))
	assert.Equal(t, 1.1, thermalTimeFactor(at(19)))
	assert.Equal(t, 1.0, thermalTimeFactor(at(3)))
	assert.Equal(t, 1.0, thermalTimeFactor(at(22)))
}

func TestCheckDetection_certain_hotspot(t *testing.T) {
	sim := New(models.FieldLayout{
		Landmines: []models.Hotspot{{Latitude: 10, Longitude: 10, Radius: 0.001, Probability: 1}},
		Debris:    []models.Hotspot{{Latitude: 10, Longitude: 10, Radius: 0.001, Probability: 1}},
	}, rand.New(rand.NewPCG(5, 6)))

	classification, confidence, ok := sim.CheckDetection(10, 10.0005)
	require.True(t, ok)
	assert.Equal(t, models.Landmine, classification)
	assert.Equal(t, 100.0, confidence)
}

func TestCheckDetection_random_outside_hotspots(t *testing.T) {
	sim := New(models.FieldLayout{}, rand.New(rand.NewPCG(7, 8)))

	detected := 0
	for i := 0; i < 2000; i++ {
		classification, confidence, ok := sim.CheckDetection(0, 0)
		if !ok {
			continue
		}
		detected++
		assert.Contains(t, models.Classifications, classification)
		assert.GreaterOrEqual(t, confidence, 70.0)
		assert.Less(t, confidence, 95.0)
	}
	// 5% of 2000, with a generous margin
	assert.Greater(t, detected, 50)
	assert.Less(t, detected, 170)
}

func TestScanPoints(t *testing.T) {
	sim := newTestSimulator()
	for i := 0; i < 20; i++ {
		points := sim.ScanPoints(34.05, -118.24)
		assert.NotEmpty(t, points)
		assert.LessOrEqual(t, len(points), MAX_SCAN_POINTS)
		for _, p := range points {
			assert.InDelta(t, 34.05, p.Latitude, MOVEMENT_STEP)
			assert.InDelta(t, -118.24, p.Longitude, MOVEMENT_STEP)
		}
	}
}

func TestLoadFieldLayout(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		layout, err := LoadFieldLayout("")
		require.NoError(t, err)
		assert.Equal(t, models.DefaultFieldLayout(), layout)
	})

	t.Run("from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "field.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
landmines:
  - lat: 12.5
    lon: 7.25
    radius: 0.002
    probability: 0.9
safe_zones:
  - lat: 12.6
    lon: 7.3
    radius: 0.01
    probability: 0.5
`), 0o600))

		layout, err := LoadFieldLayout(path)
		require.NoError(t, err)
		assert.Equal(t, []models.Hotspot{{Latitude: 12.5, Longitude: 7.25, Radius: 0.002, Probability: 0.9}}, layout.Landmines)
		assert.Empty(t, layout.Debris)
		assert.Len(t, layout.SafeZones, 1)
	})

	t.Run("invalid probability", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "field.yaml")
		require.NoError(t, os.WriteFile(path, []byte("debris:\n  - {lat: 1, lon: 1, radius: 0.1, probability: 3}\n"), 0o600))
		_, err := LoadFieldLayout(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFieldLayout(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
