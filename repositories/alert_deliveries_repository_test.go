package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minealert/minealert-backend/models"
)

func TestCreateAlertDelivery(t *testing.T) {
	query := escapeSql("INSERT INTO alert_deliveries (id,detection_id,recipient_id,status,created_at,updated_at) VALUES ($1,$2,$3,$4,$5,$6) ON CONFLICT (detection_id, recipient_id) DO NOTHING")

	t.Run("inserted", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		id, detectionId, recipientId := uuid.New(), uuid.New(), uuid.New()
		mock.ExpectExec(query).
			WithArgs(id, detectionId, recipientId, models.AlertDeliveryPending, testNow, testNow).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		created, err := newTestRepository().CreateAlertDelivery(context.Background(), mock, id, detectionId, recipientId)
		require.NoError(t, err)
		assert.True(t, created)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already exists", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(query).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 0))

		created, err := newTestRepository().CreateAlertDelivery(context.Background(), mock, uuid.New(), uuid.New(), uuid.New())
		require.NoError(t, err)
		assert.False(t, created)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteFinishedAlertDeliveries(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	before := testNow.AddDate(0, 0, -30)
	mock.ExpectExec(escapeSql("DELETE FROM alert_deliveries WHERE status IN ($1,$2) AND updated_at < $3")).
		WithArgs(models.AlertDeliverySuccess, models.AlertDeliveryFailed, before).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	deleted, err := newTestRepository().DeleteFinishedAlertDeliveries(context.Background(), mock, before)
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAlertRecipient_not_found(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectExec(escapeSql("UPDATE alert_recipients SET deleted_at = $1, enabled = $2 WHERE deleted_at IS NULL AND id = $3")).
		WithArgs(testNow, false, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = newTestRepository().DeleteAlertRecipient(context.Background(), mock, id)
	assert.ErrorIs(t, err, models.NotFoundError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
