package infra

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	texporter "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"
	gcppropagator "github.com/GoogleCloudPlatform/opentelemetry-operations-go/propagator"
	"google.golang.org/api/option"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type TelemetryRessources struct {
	TracerProvider    trace.TracerProvider
	Tracer            trace.Tracer
	TextMapPropagator propagation.TextMapPropagator
}

func NoopTelemetry() TelemetryRessources {
	return TelemetryRessources{
		TracerProvider:    noop.NewTracerProvider(),
		Tracer:            noop.Tracer{},
		TextMapPropagator: propagation.NewCompositeTextMapPropagator(),
	}
}

func InitTelemetry(configuration TelemetryConfiguration, apiVersion string) (TelemetryRessources, error) {
	if !configuration.Enabled {
		return NoopTelemetry(), nil
	}

	var exporter sdktrace.SpanExporter

	switch configuration.Exporter {
	case "gcp":
		gcpExporter, err := texporter.New(
			texporter.WithProjectID(configuration.ProjectID),
			texporter.WithTraceClientOptions([]option.ClientOption{option.WithTelemetryDisabled()}),
		)
		if err != nil {
			return TelemetryRessources{}, fmt.Errorf("texporter.New error: %w", err)
		}
		exporter = gcpExporter

	default:
		otlpExporter, err := otlptracegrpc.New(context.Background())
		if err != nil {
			return TelemetryRessources{}, fmt.Errorf("otlptracegrpc.New error: %w", err)
		}
		exporter = otlpExporter
	}

	res, err := resource.New(context.Background(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(configuration.ApplicationName),
			semconv.ServiceVersion(apiVersion),
		),
	)
	if err != nil {
		return TelemetryRessources{}, fmt.Errorf("resource.New error: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(MineAlertSampler{SamplingMap: configuration.SamplingMap}),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	propagators := propagation.NewCompositeTextMapPropagator(
		gcppropagator.CloudTraceFormatPropagator{},
		propagation.TraceContext{},
		propagation.Baggage{},
	)
	otel.SetTextMapPropagator(propagators)

	return TelemetryRessources{
		TracerProvider:    tp,
		Tracer:            tp.Tracer(configuration.ApplicationName),
		TextMapPropagator: propagators,
	}, nil
}

type SpanKind int

const DEFAULT_SAMPLING_RATE = 0.3

const (
	SpanOther SpanKind = iota
	SpanHttpIngress
	SpanDatabaseQuery
)

var (
	defaultSpanNamesSampling = map[string]float64{
		"alert_dispatch": 0.1,
		"alert_delivery": 0.1,
		"alert_cleanup":  0.0,
	}

	defaultRoutePrefixSampling = map[string]float64{
		"/health":          0.0,
		"/liveness":        0.0,
		"/metrics":         0.0,
		"/sensor-readings": 0.05,
	}
)

// MineAlertSampler samples by http route prefix or span name, and drops database spans whose
// parent was not sampled.
type MineAlertSampler struct {
	SamplingMap TelemetrySamplingMap
}

func (MineAlertSampler) Description() string {
	return "minealert-sampler"
}

func (ms MineAlertSampler) probability(p sdktrace.SamplingParameters, psc trace.SpanContext) float64 {
	var (
		kind  SpanKind
		value string
	)
	for _, attr := range p.Attributes {
		if attr.Key == semconv.HTTPRouteKey {
			kind = SpanHttpIngress
			value = attr.Value.AsString()
			break
		}
		if attr.Key == semconv.DBQueryTextKey {
			kind = SpanDatabaseQuery
			value = attr.Value.AsString()
			break
		}
	}

	switch kind {
	case SpanHttpIngress:
		for _, rates := range []map[string]float64{ms.SamplingMap.HttpRoutes, defaultRoutePrefixSampling} {
			for prefix, prob := range rates {
				if strings.HasPrefix(value, prefix) {
					return prob
				}
			}
		}
		return DEFAULT_SAMPLING_RATE

	case SpanDatabaseQuery:
		if strings.HasPrefix(p.Name, "prepare ") {
			return 0.0
		}
		if psc.IsSampled() {
			return 1.0
		}
		return DEFAULT_SAMPLING_RATE
	}

	if ratio, ok := ms.SamplingMap.SpanNames[p.Name]; ok {
		return ratio
	}
	if ratio, ok := defaultSpanNamesSampling[p.Name]; ok {
		return ratio
	}
	if p.Name == "pool.acquire" {
		return 0.0
	}
	return 1.0
}

func (ms MineAlertSampler) ShouldSample(p sdktrace.SamplingParameters) sdktrace.SamplingResult {
	psc := trace.SpanContextFromContext(p.ParentContext)

	// Children of an unsampled span are never sampled. Root spans have no trace id yet.
	if psc.HasTraceID() && !psc.IsSampled() {
		return sdktrace.NeverSample().ShouldSample(p)
	}

	prob := ms.probability(p, psc)
	decision := sdktrace.Drop
	traceId := binary.BigEndian.Uint64(p.TraceID[:8])
	if traceId < uint64(prob*float64(math.MaxUint64)) {
		decision = sdktrace.RecordAndSample
	}

	return sdktrace.SamplingResult{
		Decision:   decision,
		Attributes: p.Attributes,
		Tracestate: psc.TraceState(),
	}
}
