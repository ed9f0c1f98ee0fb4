package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"
	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivertype"

	"github.com/minealert/minealert-backend/jobs"
	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/usecases/worker_jobs"
	"github.com/minealert/minealert-backend/utils"
)

func RunWorker(config CompiledConfig) error {
	commonConfig := commonConfigFromEnv()
	workerConfig := struct {
		alertWorkers      int
		maintenanceWorker int
		schedulerTimezone string
		cloudRunProbePort string
	}{
		alertWorkers:      utils.GetEnv("ALERT_WORKERS", 10),
		maintenanceWorker: utils.GetEnv("MAINTENANCE_WORKERS", 1),
		schedulerTimezone: utils.GetEnv("SCHEDULER_TIMEZONE", "UTC"),
		cloudRunProbePort: utils.GetEnv("CLOUD_RUN_PROBE_PORT", ""),
	}

	rt, err := setupRuntime(commonConfig, config.Version)
	if err != nil {
		return err
	}
	defer sentry.Flush(3 * time.Second)
	defer rt.pool.Close()
	ctx, logger := rt.ctx, rt.logger

	// The workers need the usecases, which need a river client to enqueue jobs: start with an
	// insert-only client, then build the one that runs the queues.
	riverClient, err := river.NewClient(riverpgxv5.New(rt.pool), &river.Config{})
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}
	repositories := rt.newRepositories(riverClient)
	uc, err := newUsecases(commonConfig, repositories, config.Version)
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, uc.NewAlertDispatchWorker())
	river.AddWorker(workers, uc.NewAlertDeliveryWorker())
	river.AddWorker(workers, uc.NewAlertCleanupWorker())

	riverClient, err = river.NewClient(riverpgxv5.New(rt.pool), &river.Config{
		FetchPollInterval: 100 * time.Millisecond,
		Queues: map[string]river.QueueConfig{
			models.QUEUE_ALERTS:      {MaxWorkers: workerConfig.alertWorkers},
			models.QUEUE_MAINTENANCE: {MaxWorkers: workerConfig.maintenanceWorker},
		},
		PeriodicJobs: []*river.PeriodicJob{
			worker_jobs.NewAlertCleanupPeriodicJob(),
		},
		// Must be larger than the longest job timeout.
		RescueStuckJobsAfter: worker_jobs.ALERT_CLEANUP_TIMEOUT + time.Minute,
		WorkerMiddleware: []rivertype.WorkerMiddleware{
			jobs.NewTracingMiddleware(rt.telemetry.Tracer),
			jobs.NewSentryMiddleware(),
			jobs.NewLoggerMiddleware(logger),
			jobs.NewRecovererMiddleware(),
		},
		Workers: workers,
	})
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}

	if err := riverClient.Start(ctx); err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}

	// non-blocking server answering the Cloud Run http probes
	if workerConfig.cloudRunProbePort != "" {
		go func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("OK"))
			})
			if err := http.ListenAndServe(":"+workerConfig.cloudRunProbePort, mux); err != nil {
				utils.LogAndReportSentryError(ctx, err)
			}
		}()
	}

	schedulerCtx, stopScheduler := context.WithCancel(ctx)
	defer stopScheduler()
	go jobs.RunScheduler(schedulerCtx, uc, workerConfig.schedulerTimezone)

	sigintOrTerm := make(chan os.Signal, 1)
	signal.Notify(sigintOrTerm, syscall.SIGINT, syscall.SIGTERM)

	go cleanStop(ctx, sigintOrTerm, riverClient, stopScheduler)

	<-riverClient.Stopped()
	logger.InfoContext(ctx, "River client stopped")

	return nil
}

// cleanStop waits for SIGINT/SIGTERM, then lets running jobs finish for a few seconds. A second
// signal, or the end of the grace period, cancels the context of the jobs still running.
func cleanStop(
	ctx context.Context,
	sigintOrTerm chan os.Signal,
	riverClient *river.Client[pgx.Tx],
	stopScheduler context.CancelFunc,
) {
	logger := utils.LoggerFromContext(ctx)
	<-sigintOrTerm
	logger.InfoContext(ctx, "Received SIGINT/SIGTERM; initiating soft stop (try to wait for jobs to finish)")
	stopScheduler()

	softStopCtx, softStopCtxCancel := context.WithTimeout(ctx, 5*time.Second)
	defer softStopCtxCancel()

	go func() {
		select {
		case <-sigintOrTerm:
			logger.InfoContext(ctx, "Received SIGINT/SIGTERM again; initiating hard stop (cancel everything)")
			softStopCtxCancel()
		case <-softStopCtx.Done():
			logger.InfoContext(ctx, "Soft stop timeout; initiating hard stop (cancel everything)")
		}
	}()

	err := riverClient.Stop(softStopCtx)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		logger.ErrorContext(ctx, "Soft stop failed", "error", err)
		panic(err)
	}
	if err == nil {
		logger.InfoContext(ctx, "Soft stop succeeded")
		return
	}

	hardStopCtx, hardStopCtxCancel := context.WithTimeout(ctx, 10*time.Second)
	defer hardStopCtxCancel()

	err = riverClient.StopAndCancel(hardStopCtx)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		logger.InfoContext(ctx, "Hard stop timeout; ignoring stop procedure and exiting unsafely")
	} else if err != nil {
		panic(err)
	}
}
