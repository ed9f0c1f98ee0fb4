package usecases

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/minealert/minealert-backend/models"
)

type AlertRecipientUsecaseTestSuite struct {
	suite.Suite
	mocks usecaseMocks
	ctx   context.Context
}

func (suite *AlertRecipientUsecaseTestSuite) SetupTest() {
	suite.mocks = newUsecaseMocks()
	suite.ctx = context.Background()
}

func (suite *AlertRecipientUsecaseTestSuite) makeUsecase() AlertRecipientUsecase {
	return AlertRecipientUsecase{
		executorFactory:     suite.mocks.executorFactory,
		recipientRepository: suite.mocks.repository,
		deliveryRepository:  suite.mocks.repository,
		targetValidator:     testValidator(false, ""),
	}
}

func (suite *AlertRecipientUsecaseTestSuite) TestCreateRecipient_sms_defaults_to_danger() {
	exec := suite.mocks.executor
	input := models.AlertRecipientCreate{Name: " Field team ", Channel: models.AlertChannelSms, Target: "+14155550123"}
	expected := models.AlertRecipientCreate{
		Name:        "Field team",
		Channel:     models.AlertChannelSms,
		Target:      "+14155550123",
		MinSeverity: models.SeverityDanger,
	}

	suite.mocks.executorFactory.On("NewExecutor").Return(exec)
	suite.mocks.repository.On("CreateAlertRecipient", suite.ctx, exec, mock.Anything, expected, (*string)(nil)).Return(nil)
	suite.mocks.repository.On("GetAlertRecipient", suite.ctx, exec, mock.Anything).
		Return(models.AlertRecipient{Name: "Field team", Channel: models.AlertChannelSms, Enabled: true}, nil)

	recipient, err := suite.makeUsecase().CreateRecipient(suite.ctx, input)

	suite.Require().NoError(err)
	suite.Equal("Field team", recipient.Name)
	suite.mocks.assertExpectations(suite.T())
}

func (suite *AlertRecipientUsecaseTestSuite) TestCreateRecipient_webhook_gets_a_secret() {
	exec := suite.mocks.executor
	input := models.AlertRecipientCreate{
		Name:        "Ops",
		Channel:     models.AlertChannelWebhook,
		Target:      "https://hooks.example.com/minealert",
		MinSeverity: models.SeverityWarning,
	}

	suite.mocks.executorFactory.On("NewExecutor").Return(exec)
	suite.mocks.repository.On("CreateAlertRecipient", suite.ctx, exec, mock.Anything, input,
		mock.MatchedBy(func(secret *string) bool { return secret != nil && len(*secret) == 64 })).Return(nil)
	suite.mocks.repository.On("GetAlertRecipient", suite.ctx, exec, mock.Anything).Return(models.AlertRecipient{}, nil)

	_, err := suite.makeUsecase().CreateRecipient(suite.ctx, input)

	suite.Require().NoError(err)
	suite.mocks.assertExpectations(suite.T())
}

func (suite *AlertRecipientUsecaseTestSuite) TestCreateRecipient_rejects_invalid_input() {
	tests := []struct {
		input models.AlertRecipientCreate
		err   error
	}{
		{models.AlertRecipientCreate{Name: "", Channel: models.AlertChannelSms, Target: "+14155550123"}, models.BadParameterError},
		{models.AlertRecipientCreate{Name: "a", Channel: models.AlertChannelSms, Target: "0612345678"}, models.ErrInvalidPhoneNumber},
		{models.AlertRecipientCreate{Name: "a", Channel: models.AlertChannelWebhook, Target: "https://10.0.0.1/x"}, models.ErrInvalidWebhookUrl},
		{models.AlertRecipientCreate{Name: "a", Channel: models.AlertChannelSms, Target: "+14155550123", MinSeverity: "panic"}, models.BadParameterError},
	}
	for _, tt := range tests {
		_, err := suite.makeUsecase().CreateRecipient(suite.ctx, tt.input)
		suite.ErrorIs(err, tt.err)
	}
	suite.mocks.repository.AssertNotCalled(suite.T(), "CreateAlertRecipient",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AlertRecipientUsecaseTestSuite) TestDeleteRecipient() {
	id := uuid.New()
	suite.mocks.executorFactory.On("NewExecutor").Return(suite.mocks.executor)
	suite.mocks.repository.On("DeleteAlertRecipient", suite.ctx, suite.mocks.executor, id).Return(nil)

	suite.NoError(suite.makeUsecase().DeleteRecipient(suite.ctx, id))
	suite.mocks.assertExpectations(suite.T())
}

func (suite *AlertRecipientUsecaseTestSuite) TestListDeliveries_caps_limit() {
	suite.mocks.executorFactory.On("NewExecutor").Return(suite.mocks.executor)
	suite.mocks.repository.On("ListAlertDeliveries", suite.ctx, suite.mocks.executor,
		models.AlertDeliveryFilters{Limit: models.DEFAULT_ALERT_DELIVERIES_LIMIT}).Return([]models.AlertDelivery{}, nil)

	_, err := suite.makeUsecase().ListDeliveries(suite.ctx, models.AlertDeliveryFilters{Limit: 5000})

	suite.Require().NoError(err)
	suite.mocks.assertExpectations(suite.T())
}

func TestAlertRecipientUsecase(t *testing.T) {
	suite.Run(t, new(AlertRecipientUsecaseTestSuite))
}
