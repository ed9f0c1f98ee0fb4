package usecases

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/usecases/simulation"
)

type DroneUsecaseTestSuite struct {
	suite.Suite
	mocks   usecaseMocks
	ctx     context.Context
	droneId uuid.UUID
}

func (suite *DroneUsecaseTestSuite) SetupTest() {
	suite.mocks = newUsecaseMocks()
	suite.ctx = context.Background()
	suite.droneId = uuid.MustParse("0194f5a0-0000-7000-8000-000000000001")
}

func (suite *DroneUsecaseTestSuite) makeUsecase() DroneUsecase {
	return DroneUsecase{
		executorFactory:    suite.mocks.executorFactory,
		transactionFactory: suite.mocks.transactionFactory,
		droneRepository:    suite.mocks.repository,
		readingRepository:  suite.mocks.repository,
		eventRepository:    suite.mocks.repository,
		recorder:           suite.mocks.recorder(),
		simulator:          simulation.New(models.DefaultFieldLayout(), rand.New(rand.NewPCG(7, 11))),
		clock:              suite.mocks.clock,
	}
}

func (suite *DroneUsecaseTestSuite) drone(flying bool) models.Drone {
	d := models.Drone{
		Id:             suite.droneId,
		Name:           "scout-1",
		HomeLatitude:   models.DEFAULT_FIELD_LATITUDE,
		HomeLongitude:  models.DEFAULT_FIELD_LONGITUDE,
		Latitude:       models.DEFAULT_FIELD_LATITUDE,
		Longitude:      models.DEFAULT_FIELD_LONGITUDE,
		BatteryLevel:   80,
		SignalStrength: 90,
		LastUpdateAt:   testNow,
	}
	if flying {
		d.IsFlying = true
		d.Altitude = simulation.TAKEOFF_ALTITUDE
		d.Speed = 1
	}
	return d
}

func (suite *DroneUsecaseTestSuite) TestCreateDrone() {
	tx := suite.mocks.transaction
	input := models.DroneCreate{Name: "scout-1", HomeLatitude: 34.05, HomeLongitude: -118.24}

	suite.mocks.transactionFactory.On("Transaction", suite.ctx, mock.Anything).Return(nil)
	suite.mocks.repository.On("CreateDrone", suite.ctx, tx, mock.Anything, input).Return(nil)
	suite.mocks.repository.On("CreateEvent", suite.ctx, tx, mock.Anything, mock.MatchedBy(func(e models.EventCreate) bool {
		return e.Type == models.EventTypeSystem && e.Message == "Drone scout-1 registered"
	})).Return(nil)
	suite.mocks.repository.On("GetDrone", suite.ctx, tx, mock.Anything, false).Return(suite.drone(false), nil)

	drone, err := suite.makeUsecase().CreateDrone(suite.ctx, input)

	suite.Require().NoError(err)
	suite.Equal("scout-1", drone.Name)
	suite.mocks.assertExpectations(suite.T())
}

func (suite *DroneUsecaseTestSuite) TestCreateDrone_invalid_home() {
	_, err := suite.makeUsecase().CreateDrone(suite.ctx, models.DroneCreate{Name: "x", HomeLatitude: 91})
	suite.ErrorIs(err, models.ErrInvalidCoordinates)
}

func (suite *DroneUsecaseTestSuite) TestExecuteCommand_takeoff() {
	tx := suite.mocks.transaction

	suite.mocks.transactionFactory.On("Transaction", suite.ctx, mock.Anything).Return(nil)
	suite.mocks.repository.On("GetDrone", suite.ctx, tx, suite.droneId, true).Return(suite.drone(false), nil)
	suite.mocks.repository.On("UpdateDroneState", suite.ctx, tx, mock.MatchedBy(func(d models.Drone) bool {
		return d.IsFlying && d.Altitude == simulation.TAKEOFF_ALTITUDE
	})).Return(nil)
	suite.mocks.repository.On("CreateEvent", suite.ctx, tx, mock.Anything, mock.MatchedBy(func(e models.EventCreate) bool {
		return e.Type == models.EventTypeControl && e.Message == "Drone took off" && *e.DroneId == suite.droneId
	})).Return(nil)

	drone, err := suite.makeUsecase().ExecuteCommand(suite.ctx, suite.droneId, models.DroneCommandTakeoff)

	suite.Require().NoError(err)
	suite.True(drone.IsFlying)
	suite.mocks.assertExpectations(suite.T())
}

func (suite *DroneUsecaseTestSuite) TestExecuteCommand_navigation_has_no_event() {
	tx := suite.mocks.transaction

	suite.mocks.transactionFactory.On("Transaction", suite.ctx, mock.Anything).Return(nil)
	suite.mocks.repository.On("GetDrone", suite.ctx, tx, suite.droneId, true).Return(suite.drone(true), nil)
	suite.mocks.repository.On("UpdateDroneState", suite.ctx, tx, mock.Anything).Return(nil)

	_, err := suite.makeUsecase().ExecuteCommand(suite.ctx, suite.droneId, models.DroneCommandMoveUp)

	suite.Require().NoError(err)
	suite.mocks.repository.AssertNotCalled(suite.T(), "CreateEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mocks.assertExpectations(suite.T())
}

func (suite *DroneUsecaseTestSuite) TestExecuteCommand_unknown() {
	_, err := suite.makeUsecase().ExecuteCommand(suite.ctx, suite.droneId, models.DroneCommand("barrel_roll"))
	suite.ErrorIs(err, models.ErrUnknownDroneCommand)
	suite.mocks.transactionFactory.AssertNotCalled(suite.T(), "Transaction", mock.Anything, mock.Anything)
}

func (suite *DroneUsecaseTestSuite) TestScanDrone_landed_only_ticks() {
	tx := suite.mocks.transaction

	suite.mocks.transactionFactory.On("Transaction", suite.ctx, mock.Anything).Return(nil)
	suite.mocks.repository.On("GetDrone", suite.ctx, tx, suite.droneId, true).Return(suite.drone(false), nil)
	suite.mocks.repository.On("UpdateDroneState", suite.ctx, tx, mock.Anything).Return(nil)

	result, err := suite.makeUsecase().ScanDrone(suite.ctx, suite.droneId)

	suite.Require().NoError(err)
	suite.Empty(result.Readings)
	suite.Empty(result.Detections)
	suite.mocks.repository.AssertNotCalled(suite.T(), "CreateSensorReadings", mock.Anything, mock.Anything, mock.Anything)
	suite.mocks.assertExpectations(suite.T())
}

func (suite *DroneUsecaseTestSuite) TestScanDrone_flying_records_readings() {
	tx := suite.mocks.transaction

	suite.mocks.transactionFactory.On("Transaction", suite.ctx, mock.Anything).Return(nil)
	suite.mocks.repository.On("GetDrone", suite.ctx, tx, suite.droneId, true).Return(suite.drone(true), nil)
	suite.mocks.repository.On("UpdateDroneState", suite.ctx, tx, mock.Anything).Return(nil)
	suite.mocks.repository.On("CreateSensorReadings", suite.ctx, tx, mock.MatchedBy(func(r []models.SensorReading) bool {
		return len(r) == len(models.SensorModalities)
	})).Return(nil)
	// detections depend on the random draw
	suite.mocks.repository.On("CreateDetection", suite.ctx, tx, mock.Anything, mock.Anything).Return(nil).Maybe()
	suite.mocks.repository.On("CreateEvent", suite.ctx, tx, mock.Anything, mock.Anything).Return(nil).Maybe()
	suite.mocks.taskQueue.On("EnqueueAlertDispatchTask", suite.ctx, tx, mock.Anything).Return(nil).Maybe()

	result, err := suite.makeUsecase().ScanDrone(suite.ctx, suite.droneId)

	suite.Require().NoError(err)
	suite.Len(result.Readings, 4)
	for _, r := range result.Readings {
		suite.Equal(suite.droneId, *r.DroneId)
		suite.GreaterOrEqual(r.Value, 0.0)
		suite.LessOrEqual(r.Value, 100.0)
	}
	for _, d := range result.Detections {
		suite.Equal(models.DetectionSourceSimulation, d.Source)
	}
	suite.mocks.assertExpectations(suite.T())
}

func (suite *DroneUsecaseTestSuite) TestScanAutoDrones_reports_failures() {
	tx := suite.mocks.transaction
	broken := uuid.MustParse("0194f5a0-0000-7000-8000-000000000002")

	suite.mocks.executorFactory.On("NewExecutor").Return(suite.mocks.executor)
	suite.mocks.repository.On("ListDrones", suite.ctx, suite.mocks.executor, true).
		Return([]models.Drone{{Id: broken}, {Id: suite.droneId}}, nil)
	suite.mocks.transactionFactory.On("Transaction", suite.ctx, mock.Anything).Return(nil)
	suite.mocks.repository.On("GetDrone", suite.ctx, tx, broken, true).
		Return(models.Drone{}, errors.Wrap(models.NotFoundError, "gone"))
	suite.mocks.repository.On("GetDrone", suite.ctx, tx, suite.droneId, true).Return(suite.drone(false), nil)
	suite.mocks.repository.On("UpdateDroneState", suite.ctx, tx, mock.Anything).Return(nil)

	err := suite.makeUsecase().ScanAutoDrones(suite.ctx)

	suite.EqualError(err, "auto scan failed for 1 of 2 drones")
	suite.mocks.assertExpectations(suite.T())
}

func (suite *DroneUsecaseTestSuite) TestSensorSnapshot() {
	suite.mocks.executorFactory.On("NewExecutor").Return(suite.mocks.executor)
	suite.mocks.repository.On("GetDrone", suite.ctx, suite.mocks.executor, suite.droneId, false).
		Return(suite.drone(true), nil)

	snapshot, err := suite.makeUsecase().SensorSnapshot(suite.ctx, suite.droneId)

	suite.Require().NoError(err)
	suite.Len(snapshot.Readings, 4)
	suite.Equal(testNow, snapshot.TakenAt)
	suite.Equal(len(snapshot.Readings), len(snapshot.Fusion.Contributions))
	suite.mocks.assertExpectations(suite.T())
}

func (suite *DroneUsecaseTestSuite) TestListSensorReadings_caps_limit() {
	suite.mocks.executorFactory.On("NewExecutor").Return(suite.mocks.executor)
	suite.mocks.repository.On("GetDrone", suite.ctx, suite.mocks.executor, suite.droneId, false).
		Return(suite.drone(false), nil)
	suite.mocks.repository.On("ListSensorReadings", suite.ctx, suite.mocks.executor, suite.droneId, MAX_READINGS_LIMIT).
		Return([]models.SensorReading{}, nil)

	_, err := suite.makeUsecase().ListSensorReadings(suite.ctx, suite.droneId, 10_000)

	suite.Require().NoError(err)
	suite.mocks.assertExpectations(suite.T())
}

func TestDroneUsecase(t *testing.T) {
	suite.Run(t, new(DroneUsecaseTestSuite))
}
