package repositories

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"

	"github.com/minealert/minealert-backend/models"
)

const DEFAULT_TWILIO_API_URL = "https://api.twilio.com/2010-04-01"

type SmsConfig struct {
	ApiUrl     string
	AccountSid string
	AuthToken  string
	FromNumber string
	Timeout    time.Duration
}

func (c SmsConfig) Enabled() bool {
	return c.AccountSid != "" && c.AuthToken != "" && c.FromNumber != ""
}

type SmsRepository interface {
	Enabled() bool
	SendSms(ctx context.Context, to, body string) models.AlertSendResult
}

// twilioRepository sends text messages through the Twilio Messages REST resource.
type twilioRepository struct {
	config SmsConfig
	client *http.Client
}

func NewSmsRepository(config SmsConfig) SmsRepository {
	if config.ApiUrl == "" {
		config.ApiUrl = DEFAULT_TWILIO_API_URL
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	return twilioRepository{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

func (r twilioRepository) Enabled() bool {
	return r.config.Enabled()
}

func (r twilioRepository) SendSms(ctx context.Context, to, body string) models.AlertSendResult {
	if !r.Enabled() {
		return models.AlertSendResult{Error: errors.New("sms provider is not configured")}
	}

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json",
		strings.TrimSuffix(r.config.ApiUrl, "/"), url.PathEscape(r.config.AccountSid))
	form := url.Values{
		"To":   {to},
		"From": {r.config.FromNumber},
		"Body": {body},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return models.AlertSendResult{Error: errors.Wrap(err, "failed to create sms request")}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(r.config.AccountSid, r.config.AuthToken)

	resp, err := r.client.Do(req)
	if err != nil {
		return models.AlertSendResult{Error: errors.Wrap(err, "sms request failed")}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return models.AlertSendResult{StatusCode: resp.StatusCode, Error: errors.Wrap(err, "failed to read sms response")}
	}

	result := models.AlertSendResult{StatusCode: resp.StatusCode}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := gjson.GetBytes(raw, "message").String()
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		result.Error = errors.Newf("sms provider error %d: %s (code %d)",
			resp.StatusCode, message, gjson.GetBytes(raw, "code").Int())
		return result
	}

	result.ProviderMessageId = gjson.GetBytes(raw, "sid").String()
	return result
}
