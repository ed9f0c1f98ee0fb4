package cmd

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	"github.com/minealert/minealert-backend/api"
	"github.com/minealert/minealert-backend/utils"
)

func RunServer(config CompiledConfig) error {
	commonConfig := commonConfigFromEnv()
	apiKeys, err := api.ParseApiKeys(utils.GetEnv("API_KEYS", ""))
	if err != nil {
		return errors.Wrap(err, "invalid API_KEYS")
	}
	if len(apiKeys) == 0 && !commonConfig.isDevelopment() {
		return errors.New("API_KEYS is required outside of development")
	}

	apiConfig := api.Configuration{
		Env:                 commonConfig.env,
		AppName:             appName,
		AppVersion:          config.Version,
		Port:                utils.GetRequiredEnv[string]("PORT"),
		RequestLoggingLevel: utils.GetEnv("REQUEST_LOGGING_LEVEL", "all"),
		AllowedOrigins:      splitList(utils.GetEnv("CORS_ALLOWED_ORIGINS", "")),
		ApiKeys:             apiKeys,
		DefaultTimeout:      utils.GetEnv("DEFAULT_TIMEOUT", api.DEFAULT_TIMEOUT),
		ImageryTimeout:      utils.GetEnv("IMAGERY_TIMEOUT", api.DEFAULT_IMAGERY_TIMEOUT),
		MaxUploadSize:       int64(utils.GetEnv("MAX_UPLOAD_SIZE_BYTES", int(api.DEFAULT_MAX_UPLOAD_SIZE))),
		EnablePrometheus:    utils.GetEnv("ENABLE_PROMETHEUS", true),
	}

	rt, err := setupRuntime(commonConfig, config.Version)
	if err != nil {
		return err
	}
	defer sentry.Flush(3 * time.Second)
	defer rt.pool.Close()
	ctx, logger := rt.ctx, rt.logger

	if len(apiKeys) == 0 {
		logger.WarnContext(ctx, "no API_KEYS configured, the api is open")
	}

	// Insert-only client: alerts raised by the api are processed by the worker.
	riverClient, err := river.NewClient(riverpgxv5.New(rt.pool), &river.Config{})
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}

	uc, err := newUsecases(commonConfig, rt.newRepositories(riverClient), config.Version)
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}

	router := api.InitRouterMiddlewares(ctx, apiConfig, rt.telemetry)
	server := api.NewServer(router, apiConfig, uc)

	notify, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.InfoContext(ctx, "starting server", slog.String("port", apiConfig.Port),
			slog.String("version", config.Version))
		err := server.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			utils.LogAndReportSentryError(ctx, errors.Wrap(err, "Error while serving the app"))
			stop()
		}
		logger.InfoContext(ctx, "server returned")
	}()

	<-notify.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		utils.LogAndReportSentryError(ctx, errors.Wrap(err, "Error while shutting down the server"))
		return err
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
