package api

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/minealert/minealert-backend/dto"
	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/utils"
)

func presentError(ctx context.Context, c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	logger := utils.LoggerFromContext(ctx)
	var maxBytesErr *http.MaxBytesError
	var fieldErr models.FieldValidationError

	switch {
	case errors.As(err, &maxBytesErr):
		logger.InfoContext(ctx, "Request body too large: "+err.Error())
		c.JSON(http.StatusRequestEntityTooLarge, dto.APIErrorResponse{
			Message:   "request body too large",
			ErrorCode: dto.ErrorCodeFileTooLarge,
		})

	case errors.As(err, &fieldErr), errors.Is(err, models.BadParameterError):
		logger.InfoContext(ctx, "BadParameterError: "+err.Error())
		c.JSON(http.StatusBadRequest, dto.APIErrorResponse{Message: err.Error(), ErrorCode: dto.ErrorCodeBadParameter})

	case errors.Is(err, models.UnAuthorizedError):
		logger.InfoContext(ctx, "UnAuthorizedError: "+err.Error())
		c.JSON(http.StatusUnauthorized, dto.APIErrorResponse{Message: err.Error(), ErrorCode: dto.ErrorCodeUnauthorized})

	case errors.Is(err, models.ForbiddenError):
		logger.InfoContext(ctx, "ForbiddenError: "+err.Error())
		c.JSON(http.StatusForbidden, dto.APIErrorResponse{Message: err.Error(), ErrorCode: dto.ErrorCodeForbidden})

	case errors.Is(err, models.NotFoundError):
		logger.InfoContext(ctx, "NotFoundError: "+err.Error())
		c.JSON(http.StatusNotFound, dto.APIErrorResponse{Message: err.Error(), ErrorCode: dto.ErrorCodeNotFound})

	case errors.Is(err, models.ConflictError):
		logger.InfoContext(ctx, "ConflictError: "+err.Error())
		c.JSON(http.StatusConflict, dto.APIErrorResponse{Message: err.Error(), ErrorCode: dto.ErrorCodeConflict})

	case errors.Is(err, context.Canceled):
		// client went away, nobody reads the answer
		logger.InfoContext(ctx, "Request canceled: "+err.Error())
		c.Status(499)

	default:
		utils.LogAndReportSentryError(ctx, err)
		c.JSON(http.StatusInternalServerError, dto.APIErrorResponse{
			Message:   "An unexpected error occurred. Please try again later, or contact support if the problem persists.",
			ErrorCode: dto.ErrorCodeInternal,
		})
	}

	_ = c.Error(err)
	return true
}

// presentBindingError answers 400 for a request that could not be bound to its DTO.
func presentBindingError(ctx context.Context, c *gin.Context, err error) {
	presentError(ctx, c, bindingError(err))
}
