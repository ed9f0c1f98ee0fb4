package repositories

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"

	"github.com/minealert/minealert-backend/models"
)

const DEFAULT_INFERENCE_API_URL = "https://detect.roboflow.com"

type InferenceConfig struct {
	ApiUrl   string
	ApiKey   string
	ModelId  string
	Timeout  time.Duration
	Attempts uint
}

type InferenceRepository interface {
	Enabled() bool
	Infer(ctx context.Context, image []byte) ([]models.ImageObject, error)
}

type inferenceRepository struct {
	config InferenceConfig
	client *http.Client
}

func NewInferenceRepository(config InferenceConfig) InferenceRepository {
	if config.ApiUrl == "" {
		config.ApiUrl = DEFAULT_INFERENCE_API_URL
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.Attempts == 0 {
		config.Attempts = 3
	}
	return inferenceRepository{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

func (r inferenceRepository) Enabled() bool {
	return r.config.ApiKey != "" && r.config.ModelId != ""
}

type inferenceHttpError struct {
	statusCode int
	body       string
}

func (e inferenceHttpError) Error() string {
	return fmt.Sprintf("inference api returned status %d: %s", e.statusCode, e.body)
}

// Infer posts the base64 encoded image to the hosted object detection model. Server side and
// network errors are retried, client errors are not.
func (r inferenceRepository) Infer(ctx context.Context, image []byte) ([]models.ImageObject, error) {
	if !r.Enabled() {
		return nil, models.ErrInferenceMissing
	}

	endpoint := fmt.Sprintf("%s/%s?%s",
		strings.TrimSuffix(r.config.ApiUrl, "/"),
		r.config.ModelId,
		url.Values{"api_key": {r.config.ApiKey}}.Encode(),
	)
	payload := base64.StdEncoding.EncodeToString(image)

	raw, err := retry.DoWithData(
		func() ([]byte, error) {
			return r.post(ctx, endpoint, payload)
		},
		retry.Context(ctx),
		retry.Attempts(r.config.Attempts),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var httpErr inferenceHttpError
			if errors.As(err, &httpErr) {
				return httpErr.statusCode >= 500 || httpErr.statusCode == http.StatusTooManyRequests
			}
			return true
		}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "remote inference failed")
	}

	return parsePredictions(raw), nil
}

func (r inferenceRepository) post(ctx context.Context, endpoint, payload string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(payload))
	if err != nil {
		return nil, retry.Unrecoverable(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, inferenceHttpError{statusCode: resp.StatusCode, body: string(raw)}
	}
	return raw, nil
}

// parsePredictions converts centre anchored predictions to top left anchored boxes.
func parsePredictions(raw []byte) []models.ImageObject {
	predictions := gjson.GetBytes(raw, "predictions").Array()
	objects := make([]models.ImageObject, 0, len(predictions))

	for _, p := range predictions {
		width := p.Get("width").Float()
		height := p.Get("height").Float()
		label := p.Get("class").String()

		objects = append(objects, models.ImageObject{
			Box: models.BoundingBox{
				X:      int(math.Round(p.Get("x").Float() - width/2)),
				Y:      int(math.Round(p.Get("y").Float() - height/2)),
				Width:  int(math.Round(width)),
				Height: int(math.Round(height)),
			},
			Confidence:     math.Min(100, p.Get("confidence").Float()*100),
			Classification: ClassificationFromLabel(label),
			Label:          label,
		})
	}
	return objects
}

func ClassificationFromLabel(label string) models.Classification {
	if strings.Contains(strings.ToLower(label), "mine") {
		return models.Landmine
	}
	return models.MetalDebris
}
