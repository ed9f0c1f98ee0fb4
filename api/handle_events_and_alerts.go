package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minealert/minealert-backend/dto"
	"github.com/minealert/minealert-backend/pure_utils"
	"github.com/minealert/minealert-backend/usecases"
	"github.com/minealert/minealert-backend/utils"
)

func handleListEvents(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var query dto.EventFiltersQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		events, err := uc.NewEventUsecase().ListEvents(ctx, dto.AdaptEventFilters(query))
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"events": pure_utils.Map(events, dto.AdaptEventDto(uc.Now()))})
	}
}

func handleListAlertRecipients(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		recipients, err := uc.NewAlertRecipientUsecase().ListRecipients(ctx)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"recipients": pure_utils.Map(recipients, dto.AdaptAlertRecipientDto)})
	}
}

func handleCreateAlertRecipient(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var data dto.CreateAlertRecipientBody
		if err := c.ShouldBindJSON(&data); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		recipient, err := uc.NewAlertRecipientUsecase().CreateRecipient(ctx, dto.AdaptAlertRecipientCreate(data))
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusCreated, gin.H{"recipient": dto.AdaptCreatedAlertRecipientDto(recipient)})
	}
}

func handleDeleteAlertRecipient(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		recipientId, err := utils.ParseUuid(c.Param("recipient_id"))
		if presentError(ctx, c, err) {
			return
		}

		err = uc.NewAlertRecipientUsecase().DeleteRecipient(ctx, recipientId)
		if presentError(ctx, c, err) {
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleListAlertDeliveries(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var query dto.AlertDeliveryFiltersQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		deliveries, err := uc.NewAlertRecipientUsecase().ListDeliveries(ctx, dto.AdaptAlertDeliveryFilters(query))
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"deliveries": pure_utils.Map(deliveries, dto.AdaptAlertDeliveryDto)})
	}
}
