package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/repositories/dbmodels"
)

func selectAlertRecipients() squirrel.SelectBuilder {
	return NewQueryBuilder().
		Select(dbmodels.AlertRecipientFields...).
		From(dbmodels.TABLE_ALERT_RECIPIENTS).
		Where(squirrel.Eq{"deleted_at": nil})
}

func (repo MineAlertDbRepository) CreateAlertRecipient(
	ctx context.Context,
	exec Executor,
	id uuid.UUID,
	input models.AlertRecipientCreate,
	secret *string,
) error {
	err := ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Insert(dbmodels.TABLE_ALERT_RECIPIENTS).
			Columns(
				"id",
				"name",
				"channel",
				"target",
				"secret",
				"min_severity",
				"created_at",
			).
			Values(
				id,
				input.Name,
				input.Channel,
				input.Target,
				secret,
				input.MinSeverity,
				repo.clock.Now(),
			),
	)
	if IsUniqueViolationError(err) {
		return errors.Wrapf(models.ConflictError, "a %s recipient with target %s already exists", input.Channel, input.Target)
	}
	return err
}

func (repo MineAlertDbRepository) GetAlertRecipient(ctx context.Context, exec Executor, id uuid.UUID) (models.AlertRecipient, error) {
	return SqlToModel(
		ctx,
		exec,
		selectAlertRecipients().Where(squirrel.Eq{"id": id}),
		dbmodels.AdaptAlertRecipient,
	)
}

func (repo MineAlertDbRepository) ListAlertRecipients(ctx context.Context, exec Executor, enabledOnly bool) ([]models.AlertRecipient, error) {
	query := selectAlertRecipients().OrderBy("created_at")
	if enabledOnly {
		query = query.Where(squirrel.Eq{"enabled": true})
	}
	return SqlToListOfModels(ctx, exec, query, dbmodels.AdaptAlertRecipient)
}

func (repo MineAlertDbRepository) DeleteAlertRecipient(ctx context.Context, exec Executor, id uuid.UUID) error {
	affected, err := ExecBuilderRowsAffected(
		ctx,
		exec,
		NewQueryBuilder().
			Update(dbmodels.TABLE_ALERT_RECIPIENTS).
			Set("deleted_at", repo.clock.Now()).
			Set("enabled", false).
			Where(squirrel.Eq{"id": id, "deleted_at": nil}),
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.Wrapf(models.NotFoundError, "alert recipient %s not found", id)
	}
	return nil
}
