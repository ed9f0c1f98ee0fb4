package usecases

import (
	"net"
	"time"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/repositories"
	"github.com/minealert/minealert-backend/repositories/clock"
	"github.com/minealert/minealert-backend/usecases/executor_factory"
	"github.com/minealert/minealert-backend/usecases/simulation"
	"github.com/minealert/minealert-backend/usecases/worker_jobs"
)

const (
	DEFAULT_IMAGERY_BUCKET_URL    = "file:///tmp/minealert-imagery"
	DEFAULT_INFERENCE_CONCURRENCY = 4
)

type Usecases struct {
	Repositories         repositories.Repositories
	apiVersion           string
	imageryBucketUrl     string
	inferenceConcurrency int
	webhookAllowInsecure bool
	webhookIpWhitelist   []*net.IPNet
	simulator            *simulation.Simulator
	clock                clock.Clock
}

type Option func(*options)

func WithApiVersion(apiVersion string) Option {
	return func(o *options) {
		o.apiVersion = apiVersion
	}
}

func WithImageryBucketUrl(bucket string) Option {
	return func(o *options) {
		o.imageryBucketUrl = bucket
	}
}

func WithInferenceConcurrency(n int) Option {
	return func(o *options) {
		o.inferenceConcurrency = n
	}
}

// WithWebhookTargets relaxes the validation of webhook recipients. Only meant for local setups.
func WithWebhookTargets(allowInsecure bool, ipWhitelist string) Option {
	return func(o *options) {
		o.webhookAllowInsecure = allowInsecure
		o.webhookIpWhitelist = ParseCIDRList(ipWhitelist)
	}
}

func WithSimulator(simulator *simulation.Simulator) Option {
	return func(o *options) {
		o.simulator = simulator
	}
}

func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

type options struct {
	apiVersion           string
	imageryBucketUrl     string
	inferenceConcurrency int
	webhookAllowInsecure bool
	webhookIpWhitelist   []*net.IPNet
	simulator            *simulation.Simulator
	clock                clock.Clock
}

func newUsecasesWithOptions(repositories repositories.Repositories, o *options) Usecases {
	if o.imageryBucketUrl == "" {
		o.imageryBucketUrl = DEFAULT_IMAGERY_BUCKET_URL
	}
	if o.inferenceConcurrency <= 0 {
		o.inferenceConcurrency = DEFAULT_INFERENCE_CONCURRENCY
	}
	if o.simulator == nil {
		o.simulator = simulation.New(models.DefaultFieldLayout(), nil)
	}
	if o.clock == nil {
		o.clock = clock.New()
	}
	return Usecases{
		Repositories:         repositories,
		apiVersion:           o.apiVersion,
		imageryBucketUrl:     o.imageryBucketUrl,
		inferenceConcurrency: o.inferenceConcurrency,
		webhookAllowInsecure: o.webhookAllowInsecure,
		webhookIpWhitelist:   o.webhookIpWhitelist,
		simulator:            o.simulator,
		clock:                o.clock,
	}
}

func NewUsecases(repositories repositories.Repositories, opts ...Option) Usecases {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return newUsecasesWithOptions(repositories, o)
}

func (usecases *Usecases) NewExecutorFactory() executor_factory.ExecutorFactory {
	return executor_factory.NewDbExecutorFactory(usecases.Repositories.ExecutorGetter)
}

func (usecases *Usecases) NewTransactionFactory() executor_factory.TransactionFactory {
	return executor_factory.NewDbExecutorFactory(usecases.Repositories.ExecutorGetter)
}

func (usecases *Usecases) NewLivenessUsecase() LivenessUsecase {
	return LivenessUsecase{
		executorFactory:    usecases.NewExecutorFactory(),
		livenessRepository: usecases.Repositories.MineAlertDbRepository,
	}
}

func (usecases *Usecases) NewHealthUsecase() HealthUsecase {
	return HealthUsecase{
		executorFactory:  usecases.NewExecutorFactory(),
		healthRepository: usecases.Repositories.MineAlertDbRepository,
		blobRepository:   usecases.Repositories.BlobRepository,
		imageryBucketUrl: usecases.imageryBucketUrl,
	}
}

func (usecases *Usecases) newDetectionRecorder() detectionRecorder {
	return detectionRecorder{
		detectionRepository: usecases.Repositories.MineAlertDbRepository,
		eventRepository:     usecases.Repositories.MineAlertDbRepository,
		taskQueue:           usecases.Repositories.TaskQueueRepository,
		clock:               usecases.clock,
	}
}

func (usecases *Usecases) NewDroneUsecase() DroneUsecase {
	return DroneUsecase{
		executorFactory:    usecases.NewExecutorFactory(),
		transactionFactory: usecases.NewTransactionFactory(),
		droneRepository:    usecases.Repositories.MineAlertDbRepository,
		readingRepository:  usecases.Repositories.MineAlertDbRepository,
		eventRepository:    usecases.Repositories.MineAlertDbRepository,
		recorder:           usecases.newDetectionRecorder(),
		simulator:          usecases.simulator,
		clock:              usecases.clock,
	}
}

func (usecases *Usecases) NewSensorIngestionUsecase() SensorIngestionUsecase {
	return SensorIngestionUsecase{
		transactionFactory: usecases.NewTransactionFactory(),
		executorFactory:    usecases.NewExecutorFactory(),
		droneRepository:    usecases.Repositories.MineAlertDbRepository,
		readingRepository:  usecases.Repositories.MineAlertDbRepository,
		recorder:           usecases.newDetectionRecorder(),
		clock:              usecases.clock,
	}
}

func (usecases *Usecases) NewDetectionUsecase() DetectionUsecase {
	return DetectionUsecase{
		executorFactory:     usecases.NewExecutorFactory(),
		detectionRepository: usecases.Repositories.MineAlertDbRepository,
	}
}

func (usecases *Usecases) NewEventUsecase() EventUsecase {
	return EventUsecase{
		executorFactory: usecases.NewExecutorFactory(),
		eventRepository: usecases.Repositories.MineAlertDbRepository,
	}
}

func (usecases *Usecases) NewImageryUsecase() ImageryUsecase {
	return ImageryUsecase{
		transactionFactory:  usecases.NewTransactionFactory(),
		blobRepository:      usecases.Repositories.BlobRepository,
		inferenceRepository: usecases.Repositories.InferenceRepository,
		recorder:            usecases.newDetectionRecorder(),
		bucketUrl:           usecases.imageryBucketUrl,
		concurrency:         usecases.inferenceConcurrency,
		clock:               usecases.clock,
	}
}

func (usecases *Usecases) NewAlertRecipientUsecase() AlertRecipientUsecase {
	return AlertRecipientUsecase{
		executorFactory:     usecases.NewExecutorFactory(),
		recipientRepository: usecases.Repositories.MineAlertDbRepository,
		deliveryRepository:  usecases.Repositories.MineAlertDbRepository,
		targetValidator:     NewAlertTargetValidator(usecases.webhookAllowInsecure, usecases.webhookIpWhitelist),
	}
}

func (usecases *Usecases) NewAlertSender() *AlertSender {
	return NewAlertSender(usecases.Repositories.SmsRepository, usecases.apiVersion)
}

func (usecases *Usecases) NewAlertDispatchWorker() *worker_jobs.AlertDispatchWorker {
	return worker_jobs.NewAlertDispatchWorker(
		usecases.Repositories.MineAlertDbRepository,
		usecases.Repositories.TaskQueueRepository,
		usecases.NewExecutorFactory(),
		usecases.NewTransactionFactory(),
	)
}

func (usecases *Usecases) NewAlertDeliveryWorker() *worker_jobs.AlertDeliveryWorker {
	return worker_jobs.NewAlertDeliveryWorker(
		usecases.Repositories.MineAlertDbRepository,
		usecases.Repositories.TaskQueueRepository,
		usecases.NewAlertSender().Send,
		AlertBody,
		usecases.NewExecutorFactory(),
		usecases.NewTransactionFactory(),
		usecases.clock,
	)
}

func (usecases *Usecases) NewAlertCleanupWorker() *worker_jobs.AlertCleanupWorker {
	return worker_jobs.NewAlertCleanupWorker(
		usecases.Repositories.MineAlertDbRepository,
		usecases.NewExecutorFactory(),
		usecases.clock,
	)
}

// Now is the reference time of the presentation layer, for relative timestamps.
func (usecases *Usecases) Now() time.Time {
	return usecases.clock.Now()
}
