package utils

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

type envVarType interface {
	string | int | bool | float64 | time.Duration
}

// GetEnv reads an environment variable and converts it to the type of the default value.
// Invalid values are a configuration error and stop the program.
func GetEnv[T envVarType](envVarName string, defaultValue T) T {
	envValue, ok := os.LookupEnv(envVarName)
	if !ok || envValue == "" {
		return defaultValue
	}
	value, err := parseEnv[T](envValue)
	if err != nil {
		panic(fmt.Sprintf("Environment variable %s is not valid: %s", envVarName, err))
	}
	return value
}

func GetRequiredEnv[T envVarType](envVarName string) T {
	envValue, ok := os.LookupEnv(envVarName)
	if !ok || envValue == "" {
		log.Fatalf("%s environment variable is required", envVarName)
	}
	value, err := parseEnv[T](envValue)
	if err != nil {
		log.Fatalf("%s environment variable is not valid: %s", envVarName, err)
	}
	return value
}

func parseEnv[T envVarType](envValue string) (T, error) {
	var value T
	var parsed any

	switch any(value).(type) {
	case string:
		parsed = envValue
	case int:
		v, err := strconv.Atoi(envValue)
		if err != nil {
			return value, fmt.Errorf("'%s' is not an integer", envValue)
		}
		parsed = v
	case bool:
		v, err := strconv.ParseBool(envValue)
		if err != nil {
			return value, fmt.Errorf("'%s' cannot be converted to bool", envValue)
		}
		parsed = v
	case float64:
		v, err := strconv.ParseFloat(envValue, 64)
		if err != nil {
			return value, fmt.Errorf("'%s' is not a number", envValue)
		}
		parsed = v
	case time.Duration:
		v, err := time.ParseDuration(envValue)
		if err != nil {
			return value, fmt.Errorf("'%s' is not a duration", envValue)
		}
		parsed = v
	}

	return parsed.(T), nil
}
