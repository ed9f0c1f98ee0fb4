package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"
	"gocloud.dev/gcerrors"

	"github.com/minealert/minealert-backend/models"
)

type BlobRepository interface {
	PutFile(ctx context.Context, bucketUrl, fileName, contentType string, content []byte) error
	GetBlob(ctx context.Context, bucketUrl, fileName string) (models.Blob, error)
	DeleteFile(ctx context.Context, bucketUrl, fileName string) error
	IsAccessible(ctx context.Context, bucketUrl string) (bool, error)
}

type blobRepository struct {
	buckets map[string]*blob.Bucket
	m       sync.Mutex
	tracer  trace.Tracer
}

func NewBlobRepository(tp trace.TracerProvider) BlobRepository {
	return &blobRepository{
		buckets: make(map[string]*blob.Bucket),
		tracer:  tp.Tracer("repositories.BlobRepository"),
	}
}

func (repository *blobRepository) openBlobBucket(ctx context.Context, bucketUrl string) (*blob.Bucket, error) {
	ctx, span := repository.tracer.Start(
		ctx,
		"repositories.BlobRepository.openBlobBucket",
		trace.WithAttributes(attribute.String("bucket", bucketUrl)),
	)
	defer span.End()

	repository.m.Lock()
	defer repository.m.Unlock()

	if bucket, ok := repository.buckets[bucketUrl]; ok {
		return bucket, nil
	}

	bucket, err := blob.OpenBucket(ctx, bucketUrl)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bucket %s", bucketUrl)
	}
	repository.buckets[bucketUrl] = bucket
	return bucket, nil
}

func (repository *blobRepository) PutFile(ctx context.Context, bucketUrl, fileName, contentType string, content []byte) error {
	ctx, span := repository.tracer.Start(
		ctx,
		"repositories.BlobRepository.PutFile",
		trace.WithAttributes(attribute.String("bucket", bucketUrl)),
		trace.WithAttributes(attribute.String("fileName", fileName)),
	)
	defer span.End()

	bucket, err := repository.openBlobBucket(ctx, bucketUrl)
	if err != nil {
		return err
	}

	err = bucket.WriteAll(ctx, fileName, content, &blob.WriterOptions{ContentType: contentType})
	return errors.Wrapf(err, "failed to write %s to bucket %s", fileName, bucketUrl)
}

func (repository *blobRepository) GetBlob(ctx context.Context, bucketUrl, fileName string) (models.Blob, error) {
	ctx, span := repository.tracer.Start(
		ctx,
		"repositories.BlobRepository.GetBlob",
		trace.WithAttributes(attribute.String("bucket", bucketUrl)),
		trace.WithAttributes(attribute.String("fileName", fileName)),
	)
	defer span.End()

	bucket, err := repository.openBlobBucket(ctx, bucketUrl)
	if err != nil {
		return models.Blob{}, err
	}

	reader, err := bucket.NewReader(ctx, fileName, nil)
	if gcerrors.Code(err) == gcerrors.NotFound {
		return models.Blob{}, errors.Wrapf(models.NotFoundError,
			"file %s does not exist in bucket %s", fileName, bucketUrl)
	}
	if err != nil {
		return models.Blob{}, errors.Wrapf(err, "failed to read %s/%s", bucketUrl, fileName)
	}

	return models.Blob{FileName: fileName, ReadCloser: reader}, nil
}

func (repository *blobRepository) DeleteFile(ctx context.Context, bucketUrl, fileName string) error {
	bucket, err := repository.openBlobBucket(ctx, bucketUrl)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	return bucket.Delete(ctx, fileName)
}

func (repository *blobRepository) IsAccessible(ctx context.Context, bucketUrl string) (bool, error) {
	bucket, err := repository.openBlobBucket(ctx, bucketUrl)
	if err != nil {
		return false, err
	}
	return bucket.IsAccessible(ctx)
}
