package usecases

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/repositories"
	"github.com/minealert/minealert-backend/utils"
)

const (
	ALERT_WEBHOOK_TIMEOUT = 15 * time.Second
	AlertUserAgent        = "MineAlert/1.0"

	HeaderAlertSignature  = "X-MineAlert-Signature"
	HeaderAlertApiVersion = "X-MineAlert-Api-Version"
	HeaderAlertDeliveryId = "X-MineAlert-Delivery-Id"
)

func AlertBody(d models.Detection) string {
	return fmt.Sprintf("Alert! %s detected at %.5f, %.5f (%.0f%% confidence). Stay safe!",
		d.Classification, d.Latitude, d.Longitude, d.Confidence)
}

type alertWebhookPayload struct {
	DeliveryId     string    `json:"delivery_id"`
	DetectionId    string    `json:"detection_id"`
	Classification string    `json:"classification"`
	Severity       string    `json:"severity"`
	Confidence     float64   `json:"confidence"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	Source         string    `json:"source"`
	DetectedAt     time.Time `json:"detected_at"`
	Message        string    `json:"message"`
}

// AlertSender pushes one alert to one recipient over the recipient's channel.
type AlertSender struct {
	sms        repositories.SmsRepository
	httpClient *http.Client
	apiVersion string
	now        func() time.Time
}

func NewAlertSender(sms repositories.SmsRepository, apiVersion string) *AlertSender {
	return &AlertSender{
		sms:        sms,
		httpClient: &http.Client{Timeout: ALERT_WEBHOOK_TIMEOUT},
		apiVersion: apiVersion,
		now:        time.Now,
	}
}

func (s *AlertSender) Send(
	ctx context.Context,
	recipient models.AlertRecipient,
	message models.AlertMessage,
) models.AlertSendResult {
	switch recipient.Channel {
	case models.AlertChannelSms:
		if s.sms == nil || !s.sms.Enabled() {
			return models.AlertSendResult{Error: errors.New("sms channel is not configured")}
		}
		return s.sms.SendSms(ctx, recipient.Target, message.Body)
	case models.AlertChannelWebhook:
		return s.sendWebhook(ctx, recipient, message)
	}
	return models.AlertSendResult{Error: errors.Newf("unknown alert channel %q", recipient.Channel)}
}

func (s *AlertSender) sendWebhook(
	ctx context.Context,
	recipient models.AlertRecipient,
	message models.AlertMessage,
) models.AlertSendResult {
	logger := utils.LoggerFromContext(ctx)
	d := message.Detection

	payload, err := json.Marshal(alertWebhookPayload{
		DeliveryId:     message.DeliveryId.String(),
		DetectionId:    d.Id.String(),
		Classification: string(d.Classification),
		Severity:       string(d.Classification.Severity()),
		Confidence:     d.Confidence,
		Latitude:       d.Latitude,
		Longitude:      d.Longitude,
		Source:         string(d.Source),
		DetectedAt:     d.CreatedAt,
		Message:        message.Body,
	})
	if err != nil {
		return models.AlertSendResult{Error: errors.Wrap(err, "failed to encode webhook payload")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, recipient.Target, bytes.NewReader(payload))
	if err != nil {
		return models.AlertSendResult{Error: errors.Wrap(err, "failed to create webhook request")}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", AlertUserAgent)
	req.Header.Set(HeaderAlertDeliveryId, message.DeliveryId.String())
	if s.apiVersion != "" {
		req.Header.Set(HeaderAlertApiVersion, s.apiVersion)
	}
	if recipient.Secret != nil {
		req.Header.Set(HeaderAlertSignature, SignAlertPayload(payload, *recipient.Secret, s.now().Unix()))
	}

	logger.DebugContext(ctx, "sending webhook alert", "recipient_id", recipient.Id, "delivery_id", message.DeliveryId)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return models.AlertSendResult{Error: errors.Wrap(err, "webhook request failed")}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	result := models.AlertSendResult{StatusCode: resp.StatusCode}
	if !result.IsSuccess() {
		result.Error = errors.Newf("webhook target answered %d", resp.StatusCode)
	}
	return result
}
