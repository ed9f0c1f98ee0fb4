package repositories

import (
	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/minealert/minealert-backend/repositories/clock"
)

// MineAlertDbRepository holds every query on the application database. Methods are split by
// table across the *_repository.go files of this package.
type MineAlertDbRepository struct {
	clock clock.Clock
}

type options struct {
	riverClient    *river.Client[pgx.Tx]
	tracerProvider trace.TracerProvider
	clock          clock.Clock
	sms            SmsConfig
	inference      InferenceConfig
}

type Option func(*options)

func WithRiverClient(client *river.Client[pgx.Tx]) Option {
	return func(o *options) {
		o.riverClient = client
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

func WithSmsConfig(config SmsConfig) Option {
	return func(o *options) {
		o.sms = config
	}
}

func WithInferenceConfig(config InferenceConfig) Option {
	return func(o *options) {
		o.inference = config
	}
}

type Repositories struct {
	ExecutorGetter        ExecutorGetter
	MineAlertDbRepository MineAlertDbRepository
	TaskQueueRepository   TaskQueueRepository
	BlobRepository        BlobRepository
	SmsRepository         SmsRepository
	InferenceRepository   InferenceRepository
}

func NewRepositories(pool PgxPool, opts ...Option) Repositories {
	options := options{
		tracerProvider: noop.NewTracerProvider(),
		clock:          clock.New(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	return Repositories{
		ExecutorGetter:        NewExecutorGetter(pool),
		MineAlertDbRepository: MineAlertDbRepository{clock: options.clock},
		TaskQueueRepository:   NewTaskQueueRepository(options.riverClient),
		BlobRepository:        NewBlobRepository(options.tracerProvider),
		SmsRepository:         NewSmsRepository(options.sms),
		InferenceRepository:   NewInferenceRepository(options.inference),
	}
}
