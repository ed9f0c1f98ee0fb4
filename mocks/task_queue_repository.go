package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/minealert/minealert-backend/repositories"
)

type TaskQueueRepository struct {
	mock.Mock
}

func (m *TaskQueueRepository) EnqueueAlertDispatchTask(ctx context.Context, tx repositories.Transaction, detectionId uuid.UUID) error {
	args := m.Called(ctx, tx, detectionId)
	return args.Error(0)
}

func (m *TaskQueueRepository) EnqueueAlertDeliveryTask(ctx context.Context, tx repositories.Transaction, deliveryId uuid.UUID) error {
	args := m.Called(ctx, tx, deliveryId)
	return args.Error(0)
}

func (m *TaskQueueRepository) EnqueueAlertDeliveryTaskAt(
	ctx context.Context,
	tx repositories.Transaction,
	deliveryId uuid.UUID,
	scheduledAt time.Time,
) error {
	args := m.Called(ctx, tx, deliveryId, scheduledAt)
	return args.Error(0)
}
