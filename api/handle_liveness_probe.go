package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minealert/minealert-backend/dto"
	"github.com/minealert/minealert-backend/usecases"
)

func handleLivenessProbe(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usecase := uc.NewLivenessUsecase()
		err := usecase.Liveness(ctx)
		if presentError(ctx, c, err) {
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"mood": "Scanning the field",
		})
	}
}

func handleHealth(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		usecase := uc.NewHealthUsecase()
		status := usecase.GetHealthStatus(c.Request.Context())

		code := http.StatusOK
		if !status.IsHealthy() {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, dto.AdaptHealthStatus(status))
	}
}
