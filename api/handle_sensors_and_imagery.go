package api

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/minealert/minealert-backend/dto"
	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/pure_utils"
	"github.com/minealert/minealert-backend/usecases"
)

func handleIngestSensorReadings(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var data dto.SensorIngestionBody
		if err := c.ShouldBindJSON(&data); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		result, err := uc.NewSensorIngestionUsecase().IngestReadings(ctx, dto.AdaptSensorIngestion(data, uc.Now()))
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusCreated, dto.AdaptSensorIngestionResultDto(result, uc.Now()))
	}
}

const imageFormField = "image"

func readUploadedImage(header *multipart.FileHeader, maxSize int64) ([]byte, error) {
	if header.Size > maxSize {
		return nil, errors.Wrapf(models.BadParameterError, "image %s is larger than %d bytes", header.Filename, maxSize)
	}
	file, err := header.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "could not open uploaded image %s", header.Filename)
	}
	defer file.Close()
	return io.ReadAll(io.LimitReader(file, maxSize))
}

// handleAnalyzeImage accepts one or several "image" parts sharing the same detector and base
// position. A single image answers with one analysis, several with a list in upload order.
func handleAnalyzeImage(uc usecases.Usecases, maxUploadSize int64) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var form dto.ImageAnalysisForm
		if err := c.ShouldBind(&form); err != nil {
			presentBindingError(ctx, c, err)
			return
		}
		multipartForm, err := c.MultipartForm()
		if err != nil {
			presentBindingError(ctx, c, err)
			return
		}
		headers := multipartForm.File[imageFormField]
		if len(headers) == 0 {
			presentError(ctx, c, errors.Wrap(models.BadParameterError, "the multipart form has no image part"))
			return
		}

		inputs := make([]models.ImageAnalysisInput, 0, len(headers))
		for _, header := range headers {
			content, err := readUploadedImage(header, maxUploadSize)
			if presentError(ctx, c, err) {
				return
			}
			inputs = append(inputs, dto.AdaptImageAnalysisInput(form, header.Filename, content))
		}

		usecase := uc.NewImageryUsecase()
		adapt := dto.AdaptImageAnalysisDto(uc.Now())
		if len(inputs) == 1 {
			analysis, err := usecase.AnalyzeImage(ctx, inputs[0])
			if presentError(ctx, c, err) {
				return
			}
			c.JSON(http.StatusCreated, adapt(analysis))
			return
		}

		analyses, err := usecase.AnalyzeImages(ctx, inputs)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusCreated, gin.H{"analyses": pure_utils.Map(analyses, adapt)})
	}
}
