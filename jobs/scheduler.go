package jobs

import (
	"context"

	"github.com/adhocore/gronx/pkg/tasker"

	"github.com/minealert/minealert-backend/usecases"
)

const (
	AUTO_SCAN_JOB      = "drone-auto-scan"
	AUTO_SCAN_SCHEDULE = "* * * * *"
)

func errToReturnCode(err error) int {
	if err != nil {
		return 1
	}
	return 0
}

type autoScanner interface {
	ScanAutoDrones(ctx context.Context) error
}

// ScanAutoDrones runs one scan on every flying drone with auto scan enabled.
func ScanAutoDrones(ctx context.Context, scanner autoScanner) error {
	return executeWithMonitoring(ctx, AUTO_SCAN_JOB, scanner.ScanAutoDrones)
}

// RunScheduler blocks until the context is done.
func RunScheduler(ctx context.Context, uc usecases.Usecases, tz string) {
	taskr := tasker.New(tasker.Option{
		Verbose: true,
		Tz:      tz,
	}).WithContext(ctx)

	notConcurrent := false
	droneUsecase := uc.NewDroneUsecase()
	taskr.Task(AUTO_SCAN_SCHEDULE, func(ctx context.Context) (int, error) {
		err := ScanAutoDrones(ctx, droneUsecase)
		return errToReturnCode(err), err
	}, notConcurrent)

	taskr.Run()
}
