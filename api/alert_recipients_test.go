package api

import (
	"net/http"
	"testing"

	"github.com/gavv/httpexpect/v2"
	"github.com/google/uuid"
	"github.com/guregu/null/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"

	"github.com/minealert/minealert-backend/repositories/dbmodels"
)

func newExpect(t *testing.T) (*httpexpect.Expect, pgxmock.PgxPoolIface) {
	router, mock := newTestRouter(t)
	e := httpexpect.WithConfig(httpexpect.Config{
		BaseURL:  "http://minealert.test",
		Client:   &http.Client{Transport: httpexpect.NewBinder(router)},
		Reporter: httpexpect.NewAssertReporter(t),
	})
	auth := e.Builder(func(req *httpexpect.Request) {
		req.WithHeader(apiKeyHeader, testApiKey)
	})
	return auth, mock
}

func TestListAlertRecipients_hides_secrets(t *testing.T) {
	e, mock := newExpect(t)
	smsId := uuid.Must(uuid.NewV7())
	webhookId := uuid.Must(uuid.NewV7())
	mock.ExpectQuery(`SELECT .* FROM alert_recipients WHERE deleted_at IS NULL ORDER BY created_at`).
		WillReturnRows(pgxmock.NewRows(dbmodels.AlertRecipientFields).
			AddRow(smsId, "Field team", "sms", "+33612345678", null.String{}, "danger", true,
				testNow, null.Time{}).
			AddRow(webhookId, "Command post", "webhook", "https://hooks.example.com/mines",
				null.StringFrom("whsec_abc"), "warning", true, testNow, null.Time{}))

	recipients := e.GET("/alert-recipients").
		Expect().Status(http.StatusOK).
		JSON().Object().Value("recipients").Array()

	recipients.Length().IsEqual(2)
	recipients.Value(0).Object().
		HasValue("id", smsId.String()).
		HasValue("channel", "sms").
		HasValue("min_severity", "danger")
	recipients.Value(1).Object().
		HasValue("channel", "webhook").
		NotContainsKey("secret")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAlertRecipient(t *testing.T) {
	e, mock := newExpect(t)
	id := uuid.Must(uuid.NewV7())

	mock.ExpectExec(`UPDATE alert_recipients SET deleted_at = \$1, enabled = \$2 WHERE deleted_at IS NULL AND id = \$3`).
		WithArgs(testNow, false, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	e.DELETE("/alert-recipients/" + id.String()).
		Expect().Status(http.StatusNoContent)

	mock.ExpectExec(`UPDATE alert_recipients`).
		WithArgs(testNow, false, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	e.DELETE("/alert-recipients/" + id.String()).
		Expect().Status(http.StatusNotFound).
		JSON().Object().HasValue("error_code", "not_found")

	assert.NoError(t, mock.ExpectationsWereMet())
}
