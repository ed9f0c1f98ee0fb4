package utils

type ContextKey int

const (
	ContextKeyLogger ContextKey = iota
	ContextKeyClientIp
	ContextKeyApiKeyName
	ContextKeyOpenTelemetryTracer
)
