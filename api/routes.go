package api

import (
	"net/http"
	"time"

	limits "github.com/gin-contrib/size"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	timeout "github.com/vearne/gin-timeout"

	"github.com/minealert/minealert-backend/usecases"
)

func timeoutMiddleware(duration time.Duration) gin.HandlerFunc {
	return timeout.Timeout(
		timeout.WithTimeout(duration),
		timeout.WithErrorHttpCode(http.StatusRequestTimeout),
		timeout.WithDefaultMsg(`{"message":"request timeout","error_code":"timeout"}`),
	)
}

func addRoutes(r *gin.Engine, conf Configuration, uc usecases.Usecases) {
	registerFieldNames()
	defaultTimeout := timeoutMiddleware(conf.DefaultTimeout)

	r.GET("/liveness", handleLivenessProbe(uc))
	if conf.EnablePrometheus {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	router := r.Group("/", apiKeyAuthentication(conf.ApiKeys))

	router.GET("/health", defaultTimeout, handleHealth(uc))

	router.GET("/drones", defaultTimeout, handleListDrones(uc))
	router.POST("/drones", defaultTimeout, handleCreateDrone(uc))
	router.GET("/drones/:drone_id", defaultTimeout, handleGetDrone(uc))
	router.PATCH("/drones/:drone_id", defaultTimeout, handleUpdateDrone(uc))
	router.POST("/drones/:drone_id/commands", defaultTimeout, handleDroneCommand(uc))
	router.POST("/drones/:drone_id/scan", defaultTimeout, handleScanDrone(uc))
	router.GET("/drones/:drone_id/sensors", defaultTimeout, handleSensorSnapshot(uc))
	router.GET("/drones/:drone_id/readings", defaultTimeout, handleListDroneReadings(uc))

	router.POST("/sensor-readings", defaultTimeout, handleIngestSensorReadings(uc))

	router.POST("/imagery/analyze",
		timeoutMiddleware(conf.ImageryTimeout),
		limits.RequestSizeLimiter(conf.MaxUploadSize),
		handleAnalyzeImage(uc, conf.MaxUploadSize))

	router.GET("/detections", defaultTimeout, handleListDetections(uc))
	router.GET("/detections/stats", defaultTimeout, handleDetectionStats(uc))
	// no timeout: the export streams every matching row
	router.GET("/detections/export", handleExportDetections(uc))
	router.GET("/detections/:detection_id", defaultTimeout, handleGetDetection(uc))

	router.GET("/events", defaultTimeout, handleListEvents(uc))

	router.GET("/alert-recipients", defaultTimeout, handleListAlertRecipients(uc))
	router.POST("/alert-recipients", defaultTimeout, handleCreateAlertRecipient(uc))
	router.DELETE("/alert-recipients/:recipient_id", defaultTimeout, handleDeleteAlertRecipient(uc))
	router.GET("/alert-deliveries", defaultTimeout, handleListAlertDeliveries(uc))
}
