package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minealert/minealert-backend/dto"
	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/pure_utils"
	"github.com/minealert/minealert-backend/usecases"
	"github.com/minealert/minealert-backend/utils"
)

func handleListDrones(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		drones, err := uc.NewDroneUsecase().ListDrones(ctx)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"drones": pure_utils.Map(drones, dto.AdaptDroneDto(uc.Now()))})
	}
}

func handleCreateDrone(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var data dto.CreateDroneBody
		if err := c.ShouldBindJSON(&data); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		drone, err := uc.NewDroneUsecase().CreateDrone(ctx, dto.AdaptDroneCreate(data))
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusCreated, gin.H{"drone": dto.AdaptDroneDto(uc.Now())(drone)})
	}
}

func handleGetDrone(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		droneId, err := utils.ParseUuid(c.Param("drone_id"))
		if presentError(ctx, c, err) {
			return
		}

		drone, err := uc.NewDroneUsecase().GetDrone(ctx, droneId)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"drone": dto.AdaptDroneDto(uc.Now())(drone)})
	}
}

func handleUpdateDrone(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		droneId, err := utils.ParseUuid(c.Param("drone_id"))
		if presentError(ctx, c, err) {
			return
		}
		var data dto.UpdateDroneBody
		if err := c.ShouldBindJSON(&data); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		drone, err := uc.NewDroneUsecase().UpdateDrone(ctx, droneId, dto.AdaptDroneUpdate(data))
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"drone": dto.AdaptDroneDto(uc.Now())(drone)})
	}
}

func handleDroneCommand(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		droneId, err := utils.ParseUuid(c.Param("drone_id"))
		if presentError(ctx, c, err) {
			return
		}
		var data dto.DroneCommandBody
		if err := c.ShouldBindJSON(&data); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		drone, err := uc.NewDroneUsecase().ExecuteCommand(ctx, droneId, models.DroneCommand(data.Command))
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"drone": dto.AdaptDroneDto(uc.Now())(drone)})
	}
}

func handleScanDrone(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		droneId, err := utils.ParseUuid(c.Param("drone_id"))
		if presentError(ctx, c, err) {
			return
		}

		result, err := uc.NewDroneUsecase().ScanDrone(ctx, droneId)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, dto.AdaptScanResultDto(result, uc.Now()))
	}
}

func handleSensorSnapshot(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		droneId, err := utils.ParseUuid(c.Param("drone_id"))
		if presentError(ctx, c, err) {
			return
		}

		snapshot, err := uc.NewDroneUsecase().SensorSnapshot(ctx, droneId)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, dto.AdaptSensorSnapshotDto(snapshot))
	}
}

func handleListDroneReadings(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		droneId, err := utils.ParseUuid(c.Param("drone_id"))
		if presentError(ctx, c, err) {
			return
		}
		var query dto.SensorReadingsQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		readings, err := uc.NewDroneUsecase().ListSensorReadings(ctx, droneId, query.Limit)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"readings": pure_utils.Map(readings, dto.AdaptSensorReadingDto)})
	}
}
