package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/repositories"
)

type MineAlertRepository struct {
	mock.Mock
}

func (m *MineAlertRepository) Liveness(ctx context.Context, exec repositories.Executor) error {
	args := m.Called(ctx, exec)
	return args.Error(0)
}

func (m *MineAlertRepository) CreateDrone(ctx context.Context, exec repositories.Executor, id uuid.UUID, input models.DroneCreate) error {
	args := m.Called(ctx, exec, id, input)
	return args.Error(0)
}

func (m *MineAlertRepository) GetDrone(ctx context.Context, exec repositories.Executor, id uuid.UUID, forUpdate bool) (models.Drone, error) {
	args := m.Called(ctx, exec, id, forUpdate)
	return args.Get(0).(models.Drone), args.Error(1)
}

func (m *MineAlertRepository) ListDrones(ctx context.Context, exec repositories.Executor, autoScanOnly bool) ([]models.Drone, error) {
	args := m.Called(ctx, exec, autoScanOnly)
	return args.Get(0).([]models.Drone), args.Error(1)
}

func (m *MineAlertRepository) UpdateDroneState(ctx context.Context, exec repositories.Executor, drone models.Drone) error {
	args := m.Called(ctx, exec, drone)
	return args.Error(0)
}

func (m *MineAlertRepository) UpdateDroneSettings(ctx context.Context, exec repositories.Executor, id uuid.UUID, input models.DroneUpdate) error {
	args := m.Called(ctx, exec, id, input)
	return args.Error(0)
}

func (m *MineAlertRepository) CreateSensorReadings(ctx context.Context, exec repositories.Executor, readings []models.SensorReading) error {
	args := m.Called(ctx, exec, readings)
	return args.Error(0)
}

func (m *MineAlertRepository) ListSensorReadings(ctx context.Context, exec repositories.Executor, droneId uuid.UUID, limit int) ([]models.SensorReading, error) {
	args := m.Called(ctx, exec, droneId, limit)
	return args.Get(0).([]models.SensorReading), args.Error(1)
}

func (m *MineAlertRepository) CreateDetection(ctx context.Context, exec repositories.Executor, id uuid.UUID, input models.DetectionCreate) error {
	args := m.Called(ctx, exec, id, input)
	return args.Error(0)
}

func (m *MineAlertRepository) GetDetection(ctx context.Context, exec repositories.Executor, id uuid.UUID) (models.Detection, error) {
	args := m.Called(ctx, exec, id)
	return args.Get(0).(models.Detection), args.Error(1)
}

func (m *MineAlertRepository) ListDetections(ctx context.Context, exec repositories.Executor, filters models.DetectionFilters) ([]models.Detection, error) {
	args := m.Called(ctx, exec, filters)
	return args.Get(0).([]models.Detection), args.Error(1)
}

// ForEachDetection feeds the configured detections to fn.
func (m *MineAlertRepository) ForEachDetection(
	ctx context.Context,
	exec repositories.Executor,
	filters models.DetectionFilters,
	fn func(models.Detection) error,
) error {
	args := m.Called(ctx, exec, filters)
	for _, d := range args.Get(0).([]models.Detection) {
		if err := fn(d); err != nil {
			return err
		}
	}
	return args.Error(1)
}

func (m *MineAlertRepository) CountDetectionsByClassification(ctx context.Context, exec repositories.Executor) (models.DetectionStats, error) {
	args := m.Called(ctx, exec)
	return args.Get(0).(models.DetectionStats), args.Error(1)
}

func (m *MineAlertRepository) CreateEvent(ctx context.Context, exec repositories.Executor, id uuid.UUID, input models.EventCreate) error {
	args := m.Called(ctx, exec, id, input)
	return args.Error(0)
}

func (m *MineAlertRepository) ListEvents(ctx context.Context, exec repositories.Executor, filters models.EventFilters) ([]models.Event, error) {
	args := m.Called(ctx, exec, filters)
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *MineAlertRepository) CreateAlertRecipient(
	ctx context.Context,
	exec repositories.Executor,
	id uuid.UUID,
	input models.AlertRecipientCreate,
	secret *string,
) error {
	args := m.Called(ctx, exec, id, input, secret)
	return args.Error(0)
}

func (m *MineAlertRepository) GetAlertRecipient(ctx context.Context, exec repositories.Executor, id uuid.UUID) (models.AlertRecipient, error) {
	args := m.Called(ctx, exec, id)
	return args.Get(0).(models.AlertRecipient), args.Error(1)
}

func (m *MineAlertRepository) ListAlertRecipients(ctx context.Context, exec repositories.Executor, enabledOnly bool) ([]models.AlertRecipient, error) {
	args := m.Called(ctx, exec, enabledOnly)
	return args.Get(0).([]models.AlertRecipient), args.Error(1)
}

func (m *MineAlertRepository) DeleteAlertRecipient(ctx context.Context, exec repositories.Executor, id uuid.UUID) error {
	args := m.Called(ctx, exec, id)
	return args.Error(0)
}

func (m *MineAlertRepository) CreateAlertDelivery(
	ctx context.Context,
	exec repositories.Executor,
	id, detectionId, recipientId uuid.UUID,
) (bool, error) {
	args := m.Called(ctx, exec, id, detectionId, recipientId)
	return args.Bool(0), args.Error(1)
}

func (m *MineAlertRepository) GetAlertDelivery(ctx context.Context, exec repositories.Executor, id uuid.UUID) (models.AlertDelivery, error) {
	args := m.Called(ctx, exec, id)
	return args.Get(0).(models.AlertDelivery), args.Error(1)
}

func (m *MineAlertRepository) ListAlertDeliveries(
	ctx context.Context,
	exec repositories.Executor,
	filters models.AlertDeliveryFilters,
) ([]models.AlertDelivery, error) {
	args := m.Called(ctx, exec, filters)
	return args.Get(0).([]models.AlertDelivery), args.Error(1)
}

func (m *MineAlertRepository) UpdateAlertDeliverySuccess(
	ctx context.Context,
	exec repositories.Executor,
	id uuid.UUID,
	attempts int,
	providerMessageId string,
) error {
	args := m.Called(ctx, exec, id, attempts, providerMessageId)
	return args.Error(0)
}

func (m *MineAlertRepository) UpdateAlertDeliveryFailed(
	ctx context.Context,
	exec repositories.Executor,
	id uuid.UUID,
	attempts int,
	errMsg string,
) error {
	args := m.Called(ctx, exec, id, attempts, errMsg)
	return args.Error(0)
}

func (m *MineAlertRepository) UpdateAlertDeliveryAttempt(
	ctx context.Context,
	exec repositories.Executor,
	id uuid.UUID,
	attempts int,
	errMsg string,
	nextRetryAt time.Time,
) error {
	args := m.Called(ctx, exec, id, attempts, errMsg, nextRetryAt)
	return args.Error(0)
}

func (m *MineAlertRepository) DeleteFinishedAlertDeliveries(ctx context.Context, exec repositories.Executor, before time.Time) (int64, error) {
	args := m.Called(ctx, exec, before)
	return args.Get(0).(int64), args.Error(1)
}
