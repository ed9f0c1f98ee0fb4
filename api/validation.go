package api

import (
	"reflect"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/minealert/minealert-backend/models"
)

var registerValidatorOnce sync.Once

// registerFieldNames makes validation errors name fields the way clients send them.
func registerFieldNames() {
	registerValidatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name, _, _ := strings.Cut(field.Tag.Get(tag), ",")
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return field.Name
		})
	})
}

// bindingError turns validator errors into a field => failed rule map. Other binding errors
// (malformed json, wrong types) are returned as plain bad parameters.
func bindingError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return errors.Wrap(models.BadParameterError, err.Error())
	}

	fields := make(models.FieldValidationError, len(validationErrors))
	for _, fieldErr := range validationErrors {
		// drop the root struct name: "SensorIngestionBody.readings[0].value" => "readings[0].value"
		_, namespace, _ := strings.Cut(fieldErr.Namespace(), ".")
		if namespace == "" {
			namespace = fieldErr.Field()
		}
		rule := fieldErr.Tag()
		if fieldErr.Param() != "" {
			rule += "=" + fieldErr.Param()
		}
		fields[namespace] = rule
	}
	return fields
}
