package usecases

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/minealert/minealert-backend/mocks"
	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/pure_utils"
)

func alertFixture() models.AlertMessage {
	detection := models.Detection{
		Id:             uuid.MustParse("0194f5a0-0000-7000-8000-0000000000d1"),
		CreatedAt:      testNow,
		Latitude:       34.0525,
		Longitude:      -118.244,
		Classification: models.Landmine,
		Confidence:     87.6,
		Source:         models.DetectionSourceFusion,
	}
	return models.AlertMessage{
		DeliveryId: uuid.MustParse("0194f5a0-0000-7000-8000-0000000000e1"),
		Detection:  detection,
		Body:       AlertBody(detection),
	}
}

func TestAlertBody(t *testing.T) {
	assert.Equal(t,
		"Alert! Landmine detected at 34.05250, -118.24400 (88% confidence). Stay safe!",
		alertFixture().Body)
}

func TestAlertSender_sms(t *testing.T) {
	sms := new(mocks.SmsRepository)
	sms.On("Enabled").Return(true)
	sms.On("SendSms", mock.Anything, "+14155550123", alertFixture().Body).
		Return(models.AlertSendResult{StatusCode: http.StatusCreated, ProviderMessageId: "SM1"})

	result := NewAlertSender(sms, "v1").Send(context.Background(),
		models.AlertRecipient{Channel: models.AlertChannelSms, Target: "+14155550123"}, alertFixture())

	assert.True(t, result.IsSuccess())
	assert.Equal(t, "SM1", result.ProviderMessageId)
	sms.AssertExpectations(t)
}

func TestAlertSender_sms_not_configured(t *testing.T) {
	sms := new(mocks.SmsRepository)
	sms.On("Enabled").Return(false)

	result := NewAlertSender(sms, "v1").Send(context.Background(),
		models.AlertRecipient{Channel: models.AlertChannelSms, Target: "+14155550123"}, alertFixture())

	assert.False(t, result.IsSuccess())
	assert.Error(t, result.Error)
	sms.AssertNotCalled(t, "SendSms", mock.Anything, mock.Anything, mock.Anything)
}

func TestAlertSender_webhook_is_signed(t *testing.T) {
	defer gock.Off()

	secret := "s3cr3t"
	message := alertFixture()
	gock.New("https://hooks.example.com").
		Post("/minealert").
		MatchHeader("User-Agent", "^MineAlert/1.0$").
		MatchHeader(HeaderAlertDeliveryId, message.DeliveryId.String()).
		MatchHeader(HeaderAlertApiVersion, "v1").
		AddMatcher(func(req *http.Request, _ *gock.Request) (bool, error) {
			body, err := io.ReadAll(req.Body)
			if err != nil {
				return false, err
			}
			req.Body = io.NopCloser(bytes.NewReader(body))

			var payload map[string]any
			if err := json.Unmarshal(body, &payload); err != nil {
				return false, err
			}
			return payload["classification"] == "Landmine" &&
				payload["severity"] == "danger" &&
				payload["message"] == message.Body &&
				req.Header.Get(HeaderAlertSignature) == SignAlertPayload(body, secret, 1772368245) &&
				VerifyAlertSignature(body, secret, req.Header.Get(HeaderAlertSignature)), nil
		}).
		Reply(http.StatusNoContent)

	sender := NewAlertSender(nil, "v1")
	sender.now = func() time.Time { return time.Unix(1772368245, 0) }

	result := sender.Send(context.Background(), models.AlertRecipient{
		Channel: models.AlertChannelWebhook,
		Target:  "https://hooks.example.com/minealert",
		Secret:  pure_utils.Ptr(secret),
	}, message)

	assert.NoError(t, result.Error)
	assert.True(t, result.IsSuccess())
	assert.True(t, gock.IsDone())
}

func TestAlertSender_webhook_error_status(t *testing.T) {
	defer gock.Off()

	gock.New("https://hooks.example.com").
		Post("/minealert").
		Reply(http.StatusBadGateway)

	result := NewAlertSender(nil, "").Send(context.Background(), models.AlertRecipient{
		Channel: models.AlertChannelWebhook,
		Target:  "https://hooks.example.com/minealert",
	}, alertFixture())

	assert.False(t, result.IsSuccess())
	assert.Equal(t, http.StatusBadGateway, result.StatusCode)
	assert.ErrorContains(t, result.Error, "502")
	assert.True(t, gock.IsDone())
}
