package utils

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/minealert/minealert-backend/models"
)

func ValidateUuid(uuidParam string) error {
	_, err := uuid.Parse(uuidParam)
	if err != nil {
		err = fmt.Errorf("'%s' is not a valid UUID: %w", uuidParam, models.BadParameterError)
	}
	return err
}

func ParseUuid(uuidParam string) (uuid.UUID, error) {
	id, err := uuid.Parse(uuidParam)
	if err != nil {
		return uuid.Nil, fmt.Errorf("'%s' is not a valid UUID: %w", uuidParam, models.BadParameterError)
	}
	return id, nil
}
