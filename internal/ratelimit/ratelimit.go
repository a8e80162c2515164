// Package ratelimit throttles clients of the API per IP address.
package ratelimit

import (
	"fmt"

	"codeberg.org/genius/server/internal/errors"
	"codeberg.org/genius/server/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const keyPrefix = "ratelimit"

// builds the middleware for a formatted rate such as "60-M"; counters are
// shared through redis when a client is given and kept in process otherwise
func Middleware(formatted string, client *redis.Client) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q: %w", formatted, err)
	}

	store, err := newStore(client)
	if err != nil {
		return nil, err
	}

	instance := limiter.New(store, rate)

	return mgin.NewMiddleware(instance,
		mgin.WithLimitReachedHandler(errors.TooManyRequests),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			// fail open when the store is unreachable
			logger.FromContext(c.Request.Context()).Warn("rate limiter unavailable", "error", err)
			c.Next()
		}),
	), nil
}

func newStore(client *redis.Client) (limiter.Store, error) {
	if client == nil {
		return memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: keyPrefix}), nil
	}

	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: keyPrefix})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis rate limit store: %w", err)
	}

	return store, nil
}
