package models

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Base errors, related to default API status codes
var (
	// BadParameterError is rendered with the http status code 400
	BadParameterError = errors.New("bad parameter")

	// UnAuthorizedError is rendered with the http status code 401
	UnAuthorizedError = errors.New("unauthorized")

	// ForbiddenError is rendered with the http status code 403
	ForbiddenError = errors.New("forbidden")

	// NotFoundError is rendered with the http status code 404
	NotFoundError = errors.New("not found")

	// ConflictError is rendered with the http status code 409
	ConflictError = errors.New("duplicate value")
)

// DB related errors
var (
	ErrIgnoreRollBackError = errors.New("ignore rollback error")
)

// Fusion related errors
var (
	ErrNoSensorReadings   = errors.Wrap(BadParameterError, "at least one sensor reading is required")
	ErrReadingOutOfRange  = errors.Wrap(BadParameterError, "sensor reading value must be between 0 and 100")
	ErrUnknownModality    = errors.Wrap(BadParameterError, "unknown sensor modality")
	ErrInvalidCoordinates = errors.Wrap(BadParameterError, "latitude must be within [-90, 90] and longitude within [-180, 180]")
)

// Drone control related errors
var (
	ErrUnknownDroneCommand = errors.Wrap(BadParameterError, "unknown drone command")
)

// Imagery related errors
var (
	ErrUnreadableImage  = errors.Wrap(BadParameterError, "could not decode image")
	ErrUnknownDetector  = errors.Wrap(BadParameterError, "unknown image detector")
	ErrInferenceMissing = errors.Wrap(BadParameterError, "remote inference is not configured")
)

// Alerting related errors
var (
	ErrInvalidPhoneNumber = errors.Wrap(BadParameterError, "phone number must be in E.164 format")
	ErrInvalidWebhookUrl  = errors.Wrap(BadParameterError, "webhook url is not valid")
)

type FieldValidationError map[string]string

func (e FieldValidationError) Error() string {
	return fmt.Sprintf("%v", map[string]string(e))
}
