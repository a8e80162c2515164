package usage

import (
	"context"
	"net/http"

	"codeberg.org/genius/server/internal/auth"
	"codeberg.org/genius/server/internal/errors"
	"github.com/gin-gonic/gin"
)

type Counter interface {
	Count(ctx context.Context, userID string) (int, error)
}

type SubscriptionChecker interface {
	IsPro(ctx context.Context, userID string) (bool, error)
}

// GetUsage godoc
// @Summary Get the caller's usage
// @Description Returns the recorded call count, the free tier limit and whether the caller is subscribed
// @Tags usage
// @Produce json
// @Success 200 {object} UsageResponse
// @Failure 401 {string} string "Unauthorized"
// @Failure 500 {string} string "Internal Error"
// @Router /api/v1/usage [get]
// @Security BearerAuth
func GetUsage(counter Counter, subs SubscriptionChecker, freeLimit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c)
			return
		}

		ctx := c.Request.Context()

		count, err := counter.Count(ctx, userID)
		if err != nil {
			errors.InternalError(c, "USAGE_ERROR", err)
			return
		}

		isPro, err := subs.IsPro(ctx, userID)
		if err != nil {
			errors.InternalError(c, "USAGE_ERROR", err)
			return
		}

		limit := freeLimit
		remaining := max(limit-count, 0)

		if isPro {
			limit = -1
			remaining = -1
		}

		c.JSON(http.StatusOK, UsageResponse{
			Count:     count,
			Limit:     limit,
			Remaining: remaining,
			IsPro:     isPro,
		})
	}
}
