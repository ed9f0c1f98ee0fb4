package usecases

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/repositories"
	"github.com/minealert/minealert-backend/usecases/executor_factory"
	"github.com/minealert/minealert-backend/utils"
)

const DEFAULT_RECIPIENT_MIN_SEVERITY = models.SeverityDanger

type alertRecipientRepository interface {
	CreateAlertRecipient(ctx context.Context, exec repositories.Executor, id uuid.UUID,
		input models.AlertRecipientCreate, secret *string) error
	GetAlertRecipient(ctx context.Context, exec repositories.Executor, id uuid.UUID) (models.AlertRecipient, error)
	ListAlertRecipients(ctx context.Context, exec repositories.Executor, enabledOnly bool) ([]models.AlertRecipient, error)
	DeleteAlertRecipient(ctx context.Context, exec repositories.Executor, id uuid.UUID) error
}

type alertDeliveryReader interface {
	ListAlertDeliveries(ctx context.Context, exec repositories.Executor,
		filters models.AlertDeliveryFilters) ([]models.AlertDelivery, error)
}

type alertTargetValidator interface {
	Validate(ctx context.Context, channel models.AlertChannel, target string) error
}

type AlertRecipientUsecase struct {
	executorFactory     executor_factory.ExecutorFactory
	recipientRepository alertRecipientRepository
	deliveryRepository  alertDeliveryReader
	targetValidator     alertTargetValidator
}

// CreateRecipient registers a recipient. Webhook recipients get a signing secret, returned once
// on the created recipient.
func (usecase AlertRecipientUsecase) CreateRecipient(
	ctx context.Context,
	input models.AlertRecipientCreate,
) (models.AlertRecipient, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Target = strings.TrimSpace(input.Target)
	if input.Name == "" {
		return models.AlertRecipient{}, errors.Wrap(models.BadParameterError, "recipient name is required")
	}
	if input.MinSeverity == "" {
		input.MinSeverity = DEFAULT_RECIPIENT_MIN_SEVERITY
	}
	if _, ok := models.EventSeverityFrom(string(input.MinSeverity)); !ok {
		return models.AlertRecipient{}, errors.Wrapf(models.BadParameterError,
			"unknown severity %q", input.MinSeverity)
	}
	if err := usecase.targetValidator.Validate(ctx, input.Channel, input.Target); err != nil {
		return models.AlertRecipient{}, err
	}

	var secret *string
	if input.Channel == models.AlertChannelWebhook {
		s, err := GenerateAlertSecret()
		if err != nil {
			return models.AlertRecipient{}, err
		}
		secret = &s
	}

	exec := usecase.executorFactory.NewExecutor()
	id := uuid.Must(uuid.NewV7())
	if err := usecase.recipientRepository.CreateAlertRecipient(ctx, exec, id, input, secret); err != nil {
		return models.AlertRecipient{}, err
	}

	utils.LoggerFromContext(ctx).InfoContext(ctx, "alert recipient created",
		"recipient_id", id, "channel", input.Channel)

	return usecase.recipientRepository.GetAlertRecipient(ctx, exec, id)
}

func (usecase AlertRecipientUsecase) ListRecipients(ctx context.Context) ([]models.AlertRecipient, error) {
	return usecase.recipientRepository.ListAlertRecipients(ctx, usecase.executorFactory.NewExecutor(), false)
}

func (usecase AlertRecipientUsecase) DeleteRecipient(ctx context.Context, id uuid.UUID) error {
	return usecase.recipientRepository.DeleteAlertRecipient(ctx, usecase.executorFactory.NewExecutor(), id)
}

func (usecase AlertRecipientUsecase) ListDeliveries(
	ctx context.Context,
	filters models.AlertDeliveryFilters,
) ([]models.AlertDelivery, error) {
	return usecase.deliveryRepository.ListAlertDeliveries(ctx, usecase.executorFactory.NewExecutor(),
		filters.MergeWithDefaults())
}
