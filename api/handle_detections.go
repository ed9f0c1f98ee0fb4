package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minealert/minealert-backend/dto"
	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/pure_utils"
	"github.com/minealert/minealert-backend/usecases"
	"github.com/minealert/minealert-backend/utils"
)

func handleListDetections(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var query dto.DetectionFiltersQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		detections, err := uc.NewDetectionUsecase().ListDetections(ctx, dto.AdaptDetectionFilters(query))
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"detections": pure_utils.Map(detections, dto.AdaptDetectionDto(uc.Now()))})
	}
}

func handleGetDetection(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		detectionId, err := utils.ParseUuid(c.Param("detection_id"))
		if presentError(ctx, c, err) {
			return
		}

		detection, err := uc.NewDetectionUsecase().GetDetection(ctx, detectionId)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"detection": dto.AdaptDetectionDto(uc.Now())(detection)})
	}
}

func handleDetectionStats(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		stats, err := uc.NewDetectionUsecase().GetStats(ctx)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, dto.AdaptDetectionStatsDto(stats))
	}
}

var exportContentTypes = map[models.ExportFormat]string{
	models.ExportFormatCsv:  "text/csv; charset=utf-8",
	models.ExportFormatJson: "application/json; charset=utf-8",
}

// handleExportDetections streams the export as an attachment. Once the first row is written the
// status can no longer change, so a failure midway only shows up in the logs.
func handleExportDetections(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var query dto.DetectionExportQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			presentBindingError(ctx, c, err)
			return
		}
		format := query.ExportFormat()

		c.Header("Content-Type", exportContentTypes[format])
		c.Header("Content-Disposition",
			fmt.Sprintf(`attachment; filename="%s"`, usecases.ExportFileName(format, uc.Now())))
		c.Status(http.StatusOK)

		err := uc.NewDetectionUsecase().ExportDetections(ctx, c.Writer, format,
			dto.AdaptDetectionFilters(query.DetectionFiltersQuery))
		if err != nil && !c.Writer.Written() {
			c.Header("Content-Type", "")
			c.Header("Content-Disposition", "")
			presentError(ctx, c, err)
			return
		}
		if err != nil {
			utils.LogAndReportSentryError(ctx, err)
		}
	}
}
