package api

import (
	"time"
)

type Configuration struct {
	Env                 string
	AppName             string
	AppVersion          string
	Port                string
	RequestLoggingLevel string
	AllowedOrigins      []string
	// api key value => api key name
	ApiKeys          map[string]string
	DefaultTimeout   time.Duration
	ImageryTimeout   time.Duration
	MaxUploadSize    int64
	EnablePrometheus bool
}

const (
	DEFAULT_TIMEOUT         = 10 * time.Second
	DEFAULT_IMAGERY_TIMEOUT = 2 * time.Minute
	// Aerial pictures straight from the drone camera.
	DEFAULT_MAX_UPLOAD_SIZE = 20 * 1024 * 1024
)
