package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/minealert/minealert-backend/utils"
)

const (
	sentryErrorGroupingTime = 30 * time.Second
	sdkIdentifier           = "sentry.go.river.minealert"
)

// Identifiers carried by the alert job args, copied onto logs, spans and sentry scopes.
var jobArgKeys = []string{"detection_id", "delivery_id"}

func jobArgAttributes(job *rivertype.JobRow) map[string]string {
	attrs := make(map[string]string, len(jobArgKeys))
	for _, key := range jobArgKeys {
		if value := gjson.GetBytes(job.EncodedArgs, key); value.Exists() {
			attrs[key] = value.String()
		}
	}
	return attrs
}

// Logger middleware

type LoggerMiddleware struct {
	l              *slog.Logger
	errorCount     map[string]int
	errorCountLock *sync.Mutex
	groupingTime   time.Duration
}

// IsMiddleware satisfies the rivertype.Middleware sentinel.
func (m LoggerMiddleware) IsMiddleware() bool { return true }

func (m LoggerMiddleware) Work(ctx context.Context, job *rivertype.JobRow, doInner func(context.Context) error) error {
	logger := m.l.With(
		"job_id", job.ID,
		"job_kind", job.Kind,
		"job_attempt", job.Attempt,
		"queue", job.Queue,
	)
	for key, value := range jobArgAttributes(job) {
		logger = logger.With(key, value)
	}
	start := time.Now()
	logger.DebugContext(ctx, fmt.Sprintf("Starting %s job n°%d - attempt %d", job.Kind, job.ID, job.Attempt))

	ctx = utils.StoreLoggerInContext(ctx, logger)
	err := doInner(ctx)

	var snoozeErr *river.JobSnoozeError
	switch {
	case err != nil && errors.As(err, &snoozeErr):
		utils.MetricJobsCount.WithLabelValues(job.Kind, "snoozed").Inc()
		logger.InfoContext(ctx, fmt.Sprintf("%s job n°%d snoozed after %s", job.Kind, job.ID, time.Since(start)))
	case err != nil:
		utils.MetricJobsCount.WithLabelValues(job.Kind, "error").Inc()
		logger.ErrorContext(ctx, fmt.Sprintf("%s job n°%d failed after %s", job.Kind, job.ID, time.Since(start)),
			"error", err.Error())
		m.aggregateAndReportError(ctx, job, err)
	default:
		utils.MetricJobsCount.WithLabelValues(job.Kind, "success").Inc()
		logger.InfoContext(ctx, fmt.Sprintf("%s job n°%d succeeded after %s", job.Kind, job.ID, time.Since(start)))
	}
	return err
}

// A failing alert target makes every retry of the same delivery fail the same way. Identical
// errors are reported once per grouping window.
func (m LoggerMiddleware) aggregateAndReportError(ctx context.Context, job *rivertype.JobRow, err error) {
	m.errorCountLock.Lock()
	defer m.errorCountLock.Unlock()

	errorKey := fmt.Sprintf("%s:%s", job.Kind, err.Error())
	m.errorCount[errorKey]++
	if m.errorCount[errorKey] > 1 {
		return
	}

	go func() {
		time.Sleep(m.groupingTime)
		m.errorCountLock.Lock()
		count := m.errorCount[errorKey]
		delete(m.errorCount, errorKey)
		m.errorCountLock.Unlock()

		utils.LogAndReportSentryError(ctx, errors.Wrapf(err, "%s job failed %d time(s)", job.Kind, count))
	}()
}

func NewLoggerMiddleware(l *slog.Logger) LoggerMiddleware {
	return LoggerMiddleware{
		l:              l,
		errorCount:     make(map[string]int),
		errorCountLock: &sync.Mutex{},
		groupingTime:   sentryErrorGroupingTime,
	}
}

// Recoverer middleware

type RecovererMiddleware struct{}

// IsMiddleware satisfies the rivertype.Middleware sentinel.
func (m RecovererMiddleware) IsMiddleware() bool { return true }

func (m RecovererMiddleware) Work(ctx context.Context, job *rivertype.JobRow, doInner func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("panic in %s job n°%d: %v", job.Kind, job.ID, r)
		}
	}()
	return doInner(ctx)
}

func NewRecovererMiddleware() RecovererMiddleware {
	return RecovererMiddleware{}
}

// Opentelemetry tracing middleware

type TracingMiddleware struct {
	tracer trace.Tracer
}

// IsMiddleware satisfies the rivertype.Middleware sentinel.
func (m TracingMiddleware) IsMiddleware() bool { return true }

func (m TracingMiddleware) Work(ctx context.Context, job *rivertype.JobRow, doInner func(context.Context) error) error {
	attributes := []attribute.KeyValue{
		attribute.Int64("job_id", job.ID),
		attribute.String("job_kind", job.Kind),
		attribute.Int("job_attempt", job.Attempt),
		attribute.String("created_at", job.CreatedAt.Format(time.RFC3339)),
		attribute.String("queue", job.Queue),
	}
	for key, value := range jobArgAttributes(job) {
		attributes = append(attributes, attribute.String(key, value))
	}

	ctx, span := m.tracer.Start(ctx, job.Kind, trace.WithAttributes(attributes...))
	defer span.End()

	return doInner(ctx)
}

func NewTracingMiddleware(tracer trace.Tracer) TracingMiddleware {
	return TracingMiddleware{tracer: tracer}
}

// Sentry middleware

type SentryMiddleware struct{}

// IsMiddleware satisfies the rivertype.Middleware sentinel.
func (m SentryMiddleware) IsMiddleware() bool { return true }

func (m SentryMiddleware) Work(ctx context.Context, job *rivertype.JobRow, doInner func(context.Context) error) error {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
		ctx = sentry.SetHubOnContext(ctx, hub)
	}
	if client := hub.Client(); client != nil {
		client.SetSDKIdentifier(sdkIdentifier)
	}

	scope := hub.PushScope()
	defer hub.PopScope()
	scope.SetTag("job_id", strconv.FormatInt(job.ID, 10))
	scope.SetTag("job_kind", job.Kind)
	scope.SetTag("job_attempt", strconv.Itoa(job.Attempt))
	scope.SetTag("queue", job.Queue)
	for key, value := range jobArgAttributes(job) {
		scope.SetTag(key, value)
	}

	transaction := sentry.StartTransaction(ctx,
		job.Kind,
		sentry.WithOpName("river.task"),
		sentry.WithTransactionSource(sentry.SourceTask),
	)
	defer transaction.Finish()

	return doInner(transaction.Context())
}

func NewSentryMiddleware() SentryMiddleware {
	return SentryMiddleware{}
}
