package cmd

import (
	"context"
	"fmt"

	"github.com/minealert/minealert-backend/repositories"
	"github.com/minealert/minealert-backend/utils"
)

func RunMigrations() error {
	pgConfig := pgConfigFromEnv()

	logger := utils.NewLogger(utils.GetEnv("LOGGING_FORMAT", "text"), utils.GetEnv("LOGGING_LEVEL", "info"))
	ctx := utils.StoreLoggerInContext(context.Background(), logger)

	migrater := repositories.NewMigrater(pgConfig.GetConnectionString(), logger)
	if err := migrater.Run(ctx); err != nil {
		logger.ErrorContext(ctx, fmt.Sprintf("error running migrations: %v", err))
		return err
	}

	return nil
}
