package usecases

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/minealert/minealert-backend/mocks"
	"github.com/minealert/minealert-backend/repositories/clock"
)

var testNow = time.Date(2026, 3, 1, 12, 30, 45, 0, time.UTC)

// usecaseMocks bundles the doubles shared by the usecase suites.
type usecaseMocks struct {
	repository         *mocks.MineAlertRepository
	taskQueue          *mocks.TaskQueueRepository
	executorFactory    *mocks.ExecutorFactory
	executor           *mocks.Executor
	transaction        *mocks.Transaction
	transactionFactory *mocks.TransactionFactory
	clock              *clock.Mock
}

func newUsecaseMocks() usecaseMocks {
	tx := new(mocks.Transaction)
	return usecaseMocks{
		repository:         new(mocks.MineAlertRepository),
		taskQueue:          new(mocks.TaskQueueRepository),
		executorFactory:    new(mocks.ExecutorFactory),
		executor:           new(mocks.Executor),
		transaction:        tx,
		transactionFactory: &mocks.TransactionFactory{TxMock: tx},
		clock:              clock.NewMock(testNow),
	}
}

func (m usecaseMocks) recorder() detectionRecorder {
	return detectionRecorder{
		detectionRepository: m.repository,
		eventRepository:     m.repository,
		taskQueue:           m.taskQueue,
		clock:               m.clock,
	}
}

func (m usecaseMocks) assertExpectations(t mock.TestingT) {
	m.repository.AssertExpectations(t)
	m.taskQueue.AssertExpectations(t)
	m.executorFactory.AssertExpectations(t)
	m.transactionFactory.AssertExpectations(t)
}
