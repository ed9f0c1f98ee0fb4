package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSamplingRates(t *testing.T) {
	samplingMap, err := parseSamplingRates(" /sensor-readings=0.5, alert_delivery=1,,/detections = 0 ")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"/sensor-readings": 0.5, "/detections": 0}, samplingMap.HttpRoutes)
	assert.Equal(t, map[string]float64{"alert_delivery": 1}, samplingMap.SpanNames)

	samplingMap, err = parseSamplingRates("")
	require.NoError(t, err)
	assert.Empty(t, samplingMap.HttpRoutes)
	assert.Empty(t, samplingMap.SpanNames)

	for _, invalid := range []string{"alert_delivery", "=0.5", "/health=high", "/health=1.5", "/health=-0.1"} {
		_, err := parseSamplingRates(invalid)
		assert.Error(t, err, invalid)
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"https://a.example", "https://b.example"},
		splitList(" https://a.example,, https://b.example "))
	assert.Nil(t, splitList(""))
}
