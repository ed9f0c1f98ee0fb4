package cmd

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"

	"github.com/minealert/minealert-backend/infra"
	"github.com/minealert/minealert-backend/repositories"
	"github.com/minealert/minealert-backend/usecases"
	"github.com/minealert/minealert-backend/usecases/simulation"
	"github.com/minealert/minealert-backend/utils"
)

// runtime is what both the server and the worker need once the environment is read.
type runtime struct {
	logger    *slog.Logger
	ctx       context.Context
	telemetry infra.TelemetryRessources
	pool      *pgxpool.Pool
}

func setupRuntime(config commonConfig, apiVersion string) (runtime, error) {
	logger := utils.NewLogger(config.loggingFormat, config.loggingLevel)
	ctx := utils.StoreLoggerInContext(context.Background(), logger)

	infra.SetupSentry(config.sentryDsn, config.env, apiVersion)

	telemetryConfig, err := config.telemetryConfig()
	if err != nil {
		return runtime{}, err
	}
	telemetryRessources, err := infra.InitTelemetry(telemetryConfig, apiVersion)
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		telemetryRessources = infra.NoopTelemetry()
	}
	ctx = utils.StoreOpenTelemetryTracerInContext(ctx, telemetryRessources.Tracer)

	pgConfig := pgConfigFromEnv()
	pool, err := infra.NewPostgresConnectionPool(ctx, pgConfig.GetConnectionString(),
		telemetryRessources.TracerProvider, pgConfig.MaxPoolConnections)
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return runtime{}, errors.Wrap(err, "could not create the postgres connection pool")
	}

	return runtime{
		logger:    logger,
		ctx:       ctx,
		telemetry: telemetryRessources,
		pool:      pool,
	}, nil
}

func (rt runtime) newRepositories(riverClient *river.Client[pgx.Tx]) repositories.Repositories {
	return repositories.NewRepositories(
		rt.pool,
		repositories.WithRiverClient(riverClient),
		repositories.WithTracerProvider(rt.telemetry.TracerProvider),
		repositories.WithSmsConfig(smsConfigFromEnv()),
		repositories.WithInferenceConfig(inferenceConfigFromEnv()),
	)
}

func newUsecases(
	config commonConfig,
	repos repositories.Repositories,
	apiVersion string,
) (usecases.Usecases, error) {
	layout, err := simulation.LoadFieldLayout(config.fieldLayoutFile)
	if err != nil {
		return usecases.Usecases{}, err
	}

	return usecases.NewUsecases(repos,
		usecases.WithApiVersion(apiVersion),
		usecases.WithImageryBucketUrl(config.imageryBucketUrl),
		usecases.WithInferenceConcurrency(utils.GetEnv("INFERENCE_CONCURRENCY", usecases.DEFAULT_INFERENCE_CONCURRENCY)),
		usecases.WithWebhookTargets(config.webhookInsecure, config.webhookWhitelist),
		usecases.WithSimulator(simulation.New(layout, nil)),
	), nil
}
