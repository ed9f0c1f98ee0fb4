package cmd

import (
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/minealert/minealert-backend/infra"
	"github.com/minealert/minealert-backend/repositories"
	"github.com/minealert/minealert-backend/utils"
)

const appName = "minealert-backend"

type CompiledConfig struct {
	Version string
}

// commonConfig holds the settings shared by the server and the worker.
type commonConfig struct {
	env               string
	loggingFormat     string
	loggingLevel      string
	sentryDsn         string
	imageryBucketUrl  string
	fieldLayoutFile   string
	telemetryEnabled  bool
	telemetryExporter string
	gcpProjectId      string
	otelSamplingRates string
	webhookInsecure   bool
	webhookWhitelist  string
}

func commonConfigFromEnv() commonConfig {
	return commonConfig{
		env:               utils.GetEnv("ENV", "development"),
		loggingFormat:     utils.GetEnv("LOGGING_FORMAT", "text"),
		loggingLevel:      utils.GetEnv("LOGGING_LEVEL", "info"),
		sentryDsn:         utils.GetEnv("SENTRY_DSN", ""),
		imageryBucketUrl:  utils.GetEnv("IMAGERY_BUCKET_URL", ""),
		fieldLayoutFile:   utils.GetEnv("FIELD_LAYOUT_FILE", ""),
		telemetryEnabled:  utils.GetEnv("ENABLE_TRACING", false),
		telemetryExporter: utils.GetEnv("TRACING_EXPORTER", "otlp"),
		gcpProjectId:      utils.GetEnv("GOOGLE_CLOUD_PROJECT", ""),
		otelSamplingRates: utils.GetEnv("TRACING_SAMPLING_RATES", ""),
		webhookInsecure:   utils.GetEnv("WEBHOOK_ALLOW_INSECURE", false),
		webhookWhitelist:  utils.GetEnv("WEBHOOK_IP_WHITELIST", ""),
	}
}

func (config commonConfig) isDevelopment() bool {
	return config.env == "development"
}

func pgConfigFromEnv() infra.PgConfig {
	return infra.PgConfig{
		ConnectionString:   utils.GetEnv("PG_CONNECTION_STRING", ""),
		Database:           utils.GetEnv("PG_DATABASE", "minealert"),
		Hostname:           utils.GetEnv("PG_HOSTNAME", "localhost"),
		Password:           utils.GetEnv("PG_PASSWORD", ""),
		Port:               utils.GetEnv("PG_PORT", "5432"),
		User:               utils.GetEnv("PG_USER", "postgres"),
		MaxPoolConnections: utils.GetEnv("PG_MAX_POOL_SIZE", infra.DEFAULT_MAX_CONNECTIONS),
		SslMode:            utils.GetEnv("PG_SSL_MODE", "prefer"),
	}
}

func smsConfigFromEnv() repositories.SmsConfig {
	return repositories.SmsConfig{
		ApiUrl:     utils.GetEnv("TWILIO_API_URL", "https://api.twilio.com"),
		AccountSid: utils.GetEnv("TWILIO_ACCOUNT_SID", ""),
		AuthToken:  utils.GetEnv("TWILIO_AUTH_TOKEN", ""),
		FromNumber: utils.GetEnv("TWILIO_PHONE_NUMBER", ""),
		Timeout:    utils.GetEnv("TWILIO_TIMEOUT", 10*time.Second),
	}
}

func inferenceConfigFromEnv() repositories.InferenceConfig {
	return repositories.InferenceConfig{
		ApiUrl:   utils.GetEnv("INFERENCE_API_URL", ""),
		ApiKey:   utils.GetEnv("INFERENCE_API_KEY", ""),
		ModelId:  utils.GetEnv("INFERENCE_MODEL_ID", ""),
		Timeout:  utils.GetEnv("INFERENCE_TIMEOUT", 30*time.Second),
		Attempts: uint(utils.GetEnv("INFERENCE_ATTEMPTS", 3)),
	}
}

func (config commonConfig) telemetryConfig() (infra.TelemetryConfiguration, error) {
	samplingMap, err := parseSamplingRates(config.otelSamplingRates)
	if err != nil {
		return infra.TelemetryConfiguration{}, err
	}
	return infra.TelemetryConfiguration{
		Enabled:         config.telemetryEnabled,
		ApplicationName: appName,
		Exporter:        config.telemetryExporter,
		ProjectID:       config.gcpProjectId,
		SamplingMap:     samplingMap,
	}, nil
}

// parseSamplingRates reads a comma separated list of overrides. Keys starting with a slash are
// http route prefixes, other keys are span names: "/sensor-readings=0.5,alert_delivery=1".
func parseSamplingRates(value string) (infra.TelemetrySamplingMap, error) {
	samplingMap := infra.TelemetrySamplingMap{
		HttpRoutes: make(map[string]float64),
		SpanNames:  make(map[string]float64),
	}
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		key, rawRate, found := strings.Cut(entry, "=")
		if !found || strings.TrimSpace(key) == "" {
			return infra.TelemetrySamplingMap{}, errors.Newf("invalid sampling rate %q, expected key=rate", entry)
		}
		rate, err := strconv.ParseFloat(strings.TrimSpace(rawRate), 64)
		if err != nil || rate < 0 || rate > 1 {
			return infra.TelemetrySamplingMap{}, errors.Newf("sampling rate of %q must be a number between 0 and 1", key)
		}

		key = strings.TrimSpace(key)
		if strings.HasPrefix(key, "/") {
			samplingMap.HttpRoutes[key] = rate
		} else {
			samplingMap.SpanNames[key] = rate
		}
	}
	return samplingMap, nil
}
