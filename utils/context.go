package utils

import (
	"context"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
)

func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.Default()
	}
	logger, found := ctx.Value(ContextKeyLogger).(*slog.Logger)
	if !found {
		return slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return logger
}

func StoreLoggerInContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ContextKeyLogger, logger)
}

func StoreLoggerInContextMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctxWithLogger := StoreLoggerInContext(c.Request.Context(), logger)
		c.Request = c.Request.WithContext(ctxWithLogger)
		c.Next()
	}
}

// ApiKeyNameFromContext returns the name of the api key used to authenticate the request, if any.
func ApiKeyNameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(ContextKeyApiKeyName).(string)
	return name, ok
}

func StoreApiKeyNameInContext(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ContextKeyApiKeyName, name)
}
