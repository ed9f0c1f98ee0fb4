package api

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/utils"
)

const apiKeyHeader = "X-Api-Key"

// ParseApiKeys reads "name:key" pairs separated by commas. A key without a name is named after
// its position in the list.
func ParseApiKeys(value string) (map[string]string, error) {
	keys := make(map[string]string)
	for i, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, key, found := strings.Cut(entry, ":")
		if !found {
			name, key = "", name
		}
		name, key = strings.TrimSpace(name), strings.TrimSpace(key)
		if key == "" {
			return nil, errors.Newf("api key n°%d is empty", i+1)
		}
		if name == "" {
			name = fmt.Sprintf("key-%d", i+1)
		}
		if _, ok := keys[key]; ok {
			return nil, errors.Newf("api key %q is declared twice", name)
		}
		keys[key] = name
	}
	return keys, nil
}

func matchApiKey(keys map[string]string, candidate string) (string, bool) {
	var matched string
	for key, name := range keys {
		if subtle.ConstantTimeCompare([]byte(key), []byte(candidate)) == 1 {
			matched = name
		}
	}
	return matched, matched != ""
}

// apiKeyAuthentication rejects requests without a known X-Api-Key header. When no key is configured
// the api is open, which is only accepted outside of production (see cmd).
func apiKeyAuthentication(keys map[string]string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(keys) == 0 {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		candidate := strings.TrimSpace(c.GetHeader(apiKeyHeader))
		if candidate == "" {
			presentError(ctx, c, errors.Wrap(models.UnAuthorizedError, "missing X-Api-Key header"))
			c.Abort()
			return
		}
		name, ok := matchApiKey(keys, candidate)
		if !ok {
			presentError(ctx, c, errors.Wrap(models.UnAuthorizedError, "unknown api key"))
			c.Abort()
			return
		}

		ctx = utils.StoreApiKeyNameInContext(ctx, name)
		ctx = utils.StoreLoggerInContext(ctx, utils.LoggerFromContext(ctx).With("api_key", name))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
