package worker_jobs

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/minealert/minealert-backend/mocks"
	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/repositories/clock"
)

var jobsNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type AlertJobsTestSuite struct {
	suite.Suite
	repository         *mocks.MineAlertRepository
	taskQueue          *mocks.TaskQueueRepository
	executorFactory    *mocks.ExecutorFactory
	executor           *mocks.Executor
	transaction        *mocks.Transaction
	transactionFactory *mocks.TransactionFactory
	clock              *clock.Mock
	ctx                context.Context

	detection models.Detection
	sms       models.AlertRecipient
	webhook   models.AlertRecipient
}

func (suite *AlertJobsTestSuite) SetupTest() {
	suite.repository = new(mocks.MineAlertRepository)
	suite.taskQueue = new(mocks.TaskQueueRepository)
	suite.executorFactory = new(mocks.ExecutorFactory)
	suite.executor = new(mocks.Executor)
	suite.transaction = new(mocks.Transaction)
	suite.transactionFactory = &mocks.TransactionFactory{TxMock: suite.transaction}
	suite.clock = clock.NewMock(jobsNow)
	suite.ctx = context.Background()

	suite.executorFactory.On("NewExecutor").Return(suite.executor)

	suite.detection = models.Detection{
		Id:             uuid.MustParse("0194f5a0-0000-7000-8000-0000000000d1"),
		Classification: models.MetalDebris,
		Confidence:     64,
		Latitude:       34.05,
		Longitude:      -118.24,
	}
	suite.sms = models.AlertRecipient{
		Id:          uuid.MustParse("0194f5a0-0000-7000-8000-0000000000b1"),
		Name:        "Field team",
		Channel:     models.AlertChannelSms,
		Target:      "+14155550123",
		MinSeverity: models.SeverityDanger,
		Enabled:     true,
	}
	suite.webhook = models.AlertRecipient{
		Id:          uuid.MustParse("0194f5a0-0000-7000-8000-0000000000b2"),
		Name:        "Ops",
		Channel:     models.AlertChannelWebhook,
		Target:      "https://hooks.example.com",
		MinSeverity: models.SeverityWarning,
		Enabled:     true,
	}
}

func (suite *AlertJobsTestSuite) AssertExpectations() {
	t := suite.T()
	suite.repository.AssertExpectations(t)
	suite.taskQueue.AssertExpectations(t)
	suite.transactionFactory.AssertExpectations(t)
}

func (suite *AlertJobsTestSuite) TestDispatch_only_matching_recipients() {
	worker := NewAlertDispatchWorker(suite.repository, suite.taskQueue, suite.executorFactory, suite.transactionFactory)
	job := &river.Job[models.AlertDispatchArgs]{Args: models.AlertDispatchArgs{DetectionId: suite.detection.Id}}

	suite.repository.On("GetDetection", mock.Anything, suite.executor, suite.detection.Id).Return(suite.detection, nil)
	suite.repository.On("ListAlertRecipients", mock.Anything, suite.executor, true).
		Return([]models.AlertRecipient{suite.sms, suite.webhook}, nil).Once()
	suite.transactionFactory.On("Transaction", mock.Anything, mock.Anything).Return(nil)
	suite.repository.On("CreateAlertDelivery", mock.Anything, suite.transaction, mock.Anything,
		suite.detection.Id, suite.webhook.Id).Return(true, nil).Once()
	suite.repository.On("CreateAlertDelivery", mock.Anything, suite.transaction, mock.Anything,
		suite.detection.Id, suite.webhook.Id).Return(false, nil).Once()
	suite.taskQueue.On("EnqueueAlertDeliveryTask", mock.Anything, suite.transaction, mock.Anything).Return(nil).Once()

	suite.NoError(worker.Work(suite.ctx, job))
	// the recipient list is cached between jobs
	suite.NoError(worker.Work(suite.ctx, job))

	suite.repository.AssertNotCalled(suite.T(), "CreateAlertDelivery", mock.Anything, mock.Anything,
		mock.Anything, suite.detection.Id, suite.sms.Id)
	suite.AssertExpectations()
}

func (suite *AlertJobsTestSuite) TestDispatch_existing_delivery_is_not_enqueued_again() {
	worker := NewAlertDispatchWorker(suite.repository, suite.taskQueue, suite.executorFactory, suite.transactionFactory)
	job := &river.Job[models.AlertDispatchArgs]{Args: models.AlertDispatchArgs{DetectionId: suite.detection.Id}}

	suite.repository.On("GetDetection", mock.Anything, suite.executor, suite.detection.Id).Return(suite.detection, nil)
	suite.repository.On("ListAlertRecipients", mock.Anything, suite.executor, true).
		Return([]models.AlertRecipient{suite.webhook}, nil)
	suite.transactionFactory.On("Transaction", mock.Anything, mock.Anything).Return(nil)
	suite.repository.On("CreateAlertDelivery", mock.Anything, suite.transaction, mock.Anything,
		suite.detection.Id, suite.webhook.Id).Return(false, nil)

	suite.NoError(worker.Work(suite.ctx, job))

	suite.taskQueue.AssertNotCalled(suite.T(), "EnqueueAlertDeliveryTask", mock.Anything, mock.Anything, mock.Anything)
	suite.AssertExpectations()
}

func (suite *AlertJobsTestSuite) TestDispatch_infrastructure_error_is_returned() {
	worker := NewAlertDispatchWorker(suite.repository, suite.taskQueue, suite.executorFactory, suite.transactionFactory)
	job := &river.Job[models.AlertDispatchArgs]{Args: models.AlertDispatchArgs{DetectionId: suite.detection.Id}}

	suite.repository.On("GetDetection", mock.Anything, suite.executor, suite.detection.Id).
		Return(models.Detection{}, errors.New("connection reset"))

	suite.Error(worker.Work(suite.ctx, job))
}

type recordedSend struct {
	recipient models.AlertRecipient
	message   models.AlertMessage
}

func (suite *AlertJobsTestSuite) deliveryWorker(result models.AlertSendResult, sent *[]recordedSend) *AlertDeliveryWorker {
	send := func(ctx context.Context, recipient models.AlertRecipient, message models.AlertMessage) models.AlertSendResult {
		*sent = append(*sent, recordedSend{recipient, message})
		return result
	}
	body := func(d models.Detection) string { return "alert " + string(d.Classification) }
	return NewAlertDeliveryWorker(suite.repository, suite.taskQueue, send, body,
		suite.executorFactory, suite.transactionFactory, suite.clock)
}

func (suite *AlertJobsTestSuite) pendingDelivery(attempts int) models.AlertDelivery {
	return models.AlertDelivery{
		Id:          uuid.MustParse("0194f5a0-0000-7000-8000-0000000000c1"),
		DetectionId: suite.detection.Id,
		RecipientId: suite.webhook.Id,
		Status:      models.AlertDeliveryPending,
		Attempts:    attempts,
	}
}

func deliveryJob(d models.AlertDelivery) *river.Job[models.AlertDeliveryArgs] {
	return &river.Job[models.AlertDeliveryArgs]{Args: models.AlertDeliveryArgs{DeliveryId: d.Id}}
}

func (suite *AlertJobsTestSuite) TestDelivery_success() {
	var sent []recordedSend
	delivery := suite.pendingDelivery(0)
	worker := suite.deliveryWorker(models.AlertSendResult{StatusCode: http.StatusOK, ProviderMessageId: "m-1"}, &sent)

	suite.repository.On("GetAlertDelivery", mock.Anything, suite.executor, delivery.Id).Return(delivery, nil)
	suite.repository.On("GetAlertRecipient", mock.Anything, suite.executor, suite.webhook.Id).Return(suite.webhook, nil)
	suite.repository.On("GetDetection", mock.Anything, suite.executor, suite.detection.Id).Return(suite.detection, nil)
	suite.transactionFactory.On("Transaction", mock.Anything, mock.Anything).Return(nil)
	suite.repository.On("UpdateAlertDeliverySuccess", mock.Anything, suite.transaction, delivery.Id, 1, "m-1").Return(nil)
	suite.repository.On("CreateEvent", mock.Anything, suite.transaction, mock.Anything, mock.MatchedBy(func(e models.EventCreate) bool {
		return e.Type == models.EventTypeAlert && e.Severity == models.SeverityInfo &&
			e.Message == "Alert sent to Ops via webhook" && *e.DetectionId == suite.detection.Id
	})).Return(nil)

	suite.NoError(worker.Work(suite.ctx, deliveryJob(delivery)))

	suite.Require().Len(sent, 1)
	suite.Equal("alert Metal Debris", sent[0].message.Body)
	suite.Equal(delivery.Id, sent[0].message.DeliveryId)
	suite.AssertExpectations()
}

func (suite *AlertJobsTestSuite) TestDelivery_failure_schedules_retry() {
	var sent []recordedSend
	delivery := suite.pendingDelivery(1)
	worker := suite.deliveryWorker(models.AlertSendResult{StatusCode: http.StatusServiceUnavailable}, &sent)
	nextRetryAt := jobsNow.Add(2 * time.Minute)

	suite.repository.On("GetAlertDelivery", mock.Anything, suite.executor, delivery.Id).Return(delivery, nil)
	suite.repository.On("GetAlertRecipient", mock.Anything, suite.executor, suite.webhook.Id).Return(suite.webhook, nil)
	suite.repository.On("GetDetection", mock.Anything, suite.executor, suite.detection.Id).Return(suite.detection, nil)
	suite.transactionFactory.On("Transaction", mock.Anything, mock.Anything).Return(nil)
	suite.repository.On("UpdateAlertDeliveryAttempt", mock.Anything, suite.transaction, delivery.Id, 2,
		"status 503", nextRetryAt).Return(nil)
	suite.taskQueue.On("EnqueueAlertDeliveryTaskAt", mock.Anything, suite.transaction, delivery.Id, nextRetryAt).Return(nil)

	suite.NoError(worker.Work(suite.ctx, deliveryJob(delivery)))

	suite.repository.AssertNotCalled(suite.T(), "CreateEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.AssertExpectations()
}

func (suite *AlertJobsTestSuite) TestDelivery_gives_up_after_max_attempts() {
	var sent []recordedSend
	delivery := suite.pendingDelivery(DEFAULT_MAX_ALERT_ATTEMPTS - 1)
	worker := suite.deliveryWorker(models.AlertSendResult{Error: errors.New("connection refused")}, &sent)

	suite.repository.On("GetAlertDelivery", mock.Anything, suite.executor, delivery.Id).Return(delivery, nil)
	suite.repository.On("GetAlertRecipient", mock.Anything, suite.executor, suite.webhook.Id).Return(suite.webhook, nil)
	suite.repository.On("GetDetection", mock.Anything, suite.executor, suite.detection.Id).Return(suite.detection, nil)
	suite.transactionFactory.On("Transaction", mock.Anything, mock.Anything).Return(nil)
	suite.repository.On("UpdateAlertDeliveryFailed", mock.Anything, suite.transaction, delivery.Id,
		DEFAULT_MAX_ALERT_ATTEMPTS, "connection refused").Return(nil)
	suite.repository.On("CreateEvent", mock.Anything, suite.transaction, mock.Anything, mock.MatchedBy(func(e models.EventCreate) bool {
		return e.Type == models.EventTypeAlert && e.Severity == models.SeverityWarning &&
			e.Message == "Alert to Ops failed after 6 attempt(s): connection refused"
	})).Return(nil)

	suite.NoError(worker.Work(suite.ctx, deliveryJob(delivery)))

	suite.taskQueue.AssertNotCalled(suite.T(), "EnqueueAlertDeliveryTaskAt", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.AssertExpectations()
}

func (suite *AlertJobsTestSuite) TestDelivery_completed_delivery_is_skipped() {
	var sent []recordedSend
	delivery := suite.pendingDelivery(1)
	delivery.Status = models.AlertDeliverySuccess
	worker := suite.deliveryWorker(models.AlertSendResult{StatusCode: http.StatusOK}, &sent)

	suite.repository.On("GetAlertDelivery", mock.Anything, suite.executor, delivery.Id).Return(delivery, nil)

	suite.NoError(worker.Work(suite.ctx, deliveryJob(delivery)))
	suite.Empty(sent)
}

func (suite *AlertJobsTestSuite) TestDelivery_removed_recipient_fails_the_delivery() {
	var sent []recordedSend
	delivery := suite.pendingDelivery(0)
	worker := suite.deliveryWorker(models.AlertSendResult{StatusCode: http.StatusOK}, &sent)

	suite.repository.On("GetAlertDelivery", mock.Anything, suite.executor, delivery.Id).Return(delivery, nil)
	suite.repository.On("GetAlertRecipient", mock.Anything, suite.executor, suite.webhook.Id).
		Return(models.AlertRecipient{}, errors.Wrap(models.NotFoundError, "recipient"))
	suite.transactionFactory.On("Transaction", mock.Anything, mock.Anything).Return(nil)
	suite.repository.On("UpdateAlertDeliveryFailed", mock.Anything, suite.transaction, delivery.Id, 1,
		"recipient was removed").Return(nil)
	suite.repository.On("CreateEvent", mock.Anything, suite.transaction, mock.Anything, mock.Anything).Return(nil)

	suite.NoError(worker.Work(suite.ctx, deliveryJob(delivery)))
	suite.Empty(sent)
	suite.AssertExpectations()
}

func (suite *AlertJobsTestSuite) TestCleanup_uses_retention_period() {
	worker := NewAlertCleanupWorker(suite.repository, suite.executorFactory, suite.clock)

	suite.repository.On("DeleteFinishedAlertDeliveries", mock.Anything, suite.executor,
		jobsNow.Add(-30*24*time.Hour)).Return(int64(12), nil)

	suite.NoError(worker.Work(suite.ctx, &river.Job[models.AlertCleanupArgs]{}))
	suite.AssertExpectations()
}

func TestAlertJobs(t *testing.T) {
	suite.Run(t, new(AlertJobsTestSuite))
}

func TestCalculateBackoff(t *testing.T) {
	assert.Equal(t, time.Duration(0), CalculateBackoff(0))
	assert.Equal(t, 30*time.Second, CalculateBackoff(1))
	assert.Equal(t, 2*time.Minute, CalculateBackoff(2))
	assert.Equal(t, 10*time.Minute, CalculateBackoff(3))
	assert.Equal(t, time.Hour, CalculateBackoff(4))
	assert.Equal(t, time.Hour, CalculateBackoff(9))
}
