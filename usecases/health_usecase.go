package usecases

import (
	"context"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/repositories"
	"github.com/minealert/minealert-backend/usecases/executor_factory"
)

type healthRepository interface {
	Liveness(ctx context.Context, exec repositories.Executor) error
}

type blobHealthRepository interface {
	IsAccessible(ctx context.Context, bucketUrl string) (bool, error)
}

type HealthUsecase struct {
	executorFactory  executor_factory.ExecutorFactory
	healthRepository healthRepository
	blobRepository   blobHealthRepository
	imageryBucketUrl string
}

func (u *HealthUsecase) GetHealthStatus(ctx context.Context) models.HealthStatus {
	statuses := []models.HealthItemStatus{}

	err := u.healthRepository.Liveness(ctx, u.executorFactory.NewExecutor())
	statuses = append(statuses, models.HealthItemStatus{
		Name:   models.DatabaseHealthItemName,
		Status: err == nil,
	})

	ok, err := u.blobRepository.IsAccessible(ctx, u.imageryBucketUrl)
	statuses = append(statuses, models.HealthItemStatus{
		Name:   models.BlobHealthItemName,
		Status: ok && err == nil,
	})

	return models.HealthStatus{
		Statuses: statuses,
	}
}
