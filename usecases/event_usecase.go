package usecases

import (
	"context"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/repositories"
	"github.com/minealert/minealert-backend/usecases/executor_factory"
)

type eventReader interface {
	ListEvents(ctx context.Context, exec repositories.Executor, filters models.EventFilters) ([]models.Event, error)
}

type EventUsecase struct {
	executorFactory executor_factory.ExecutorFactory
	eventRepository eventReader
}

// ListEvents returns the event stream, newest first.
func (usecase EventUsecase) ListEvents(ctx context.Context, filters models.EventFilters) ([]models.Event, error) {
	return usecase.eventRepository.ListEvents(ctx, usecase.executorFactory.NewExecutor(), filters.MergeWithDefaults())
}
