package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MetricDetectionsCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minealert_detections_total",
			Help: "Number of detections recorded, by classification and source",
		},
		[]string{"classification", "source"},
	)
	MetricSensorReadingsCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minealert_sensor_readings_total",
			Help: "Number of sensor readings ingested, by modality",
		},
		[]string{"modality"},
	)
	MetricFusionScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "minealert_fusion_score",
			Help:    "Distribution of fused detection scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)
	MetricAlertDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minealert_alert_deliveries_total",
			Help: "Alert delivery attempts, by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)
	MetricImageAnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "minealert_image_analysis_duration_seconds",
			Help:    "Duration of image analysis, by detector",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"detector"},
	)
	MetricDronesFlying = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "minealert_drones_flying",
			Help: "Number of drones currently airborne",
		},
	)
)

var MetricJobsCount = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "minealert_jobs_total",
		Help: "Background jobs run, by kind and outcome",
	},
	[]string{"kind", "outcome"},
)
