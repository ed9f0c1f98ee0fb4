package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/minealert/minealert-backend/models"
)

type BlobRepository struct {
	mock.Mock
}

func (m *BlobRepository) PutFile(ctx context.Context, bucketUrl, fileName, contentType string, content []byte) error {
	args := m.Called(ctx, bucketUrl, fileName, contentType, content)
	return args.Error(0)
}

func (m *BlobRepository) GetBlob(ctx context.Context, bucketUrl, fileName string) (models.Blob, error) {
	args := m.Called(ctx, bucketUrl, fileName)
	return args.Get(0).(models.Blob), args.Error(1)
}

func (m *BlobRepository) DeleteFile(ctx context.Context, bucketUrl, fileName string) error {
	args := m.Called(ctx, bucketUrl, fileName)
	return args.Error(0)
}

func (m *BlobRepository) IsAccessible(ctx context.Context, bucketUrl string) (bool, error) {
	args := m.Called(ctx, bucketUrl)
	return args.Bool(0), args.Error(1)
}

type SmsRepository struct {
	mock.Mock
}

func (m *SmsRepository) Enabled() bool {
	return m.Called().Bool(0)
}

func (m *SmsRepository) SendSms(ctx context.Context, to, body string) models.AlertSendResult {
	args := m.Called(ctx, to, body)
	return args.Get(0).(models.AlertSendResult)
}

type InferenceRepository struct {
	mock.Mock
}

func (m *InferenceRepository) Enabled() bool {
	return m.Called().Bool(0)
}

func (m *InferenceRepository) Infer(ctx context.Context, image []byte) ([]models.ImageObject, error) {
	args := m.Called(ctx, image)
	return args.Get(0).([]models.ImageObject), args.Error(1)
}
