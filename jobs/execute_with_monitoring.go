package jobs

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"

	"github.com/minealert/minealert-backend/utils"
)

// executeWithMonitoring wraps a cron job with a sentry check-in, so that a stalled scheduler
// shows up as a missed monitor.
func executeWithMonitoring(ctx context.Context, jobName string, fn func(context.Context) error) error {
	logger := utils.LoggerFromContext(ctx).With("job", jobName)
	ctx = utils.StoreLoggerInContext(ctx, logger)
	logger.DebugContext(ctx, fmt.Sprintf("Start job %s", jobName))

	checkinId := sentry.CaptureCheckIn(
		&sentry.CheckIn{
			MonitorSlug: jobName,
			Status:      sentry.CheckInStatusInProgress,
		},
		nil,
	)
	finish := func(status sentry.CheckInStatus) {
		if checkinId == nil {
			return
		}
		sentry.CaptureCheckIn(&sentry.CheckIn{ID: *checkinId, MonitorSlug: jobName, Status: status}, nil)
	}

	if err := fn(ctx); err != nil {
		finish(sentry.CheckInStatusError)
		utils.MetricJobsCount.WithLabelValues(jobName, "error").Inc()
		err = errors.Wrapf(err, "error executing job %s", jobName)
		utils.LogAndReportSentryError(ctx, err)
		return err
	}

	finish(sentry.CheckInStatusOK)
	utils.MetricJobsCount.WithLabelValues(jobName, "success").Inc()
	logger.DebugContext(ctx, fmt.Sprintf("Done executing job %s", jobName))
	return nil
}
