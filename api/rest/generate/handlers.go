package generate

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"codeberg.org/genius/server/internal/auth"
	"codeberg.org/genius/server/internal/errors"
	"codeberg.org/genius/server/internal/gate"
	"codeberg.org/genius/server/internal/logger"
	"codeberg.org/genius/server/internal/monitoring"
	"github.com/gin-gonic/gin"
)

// admits calls against the free tier
type Gatekeeper interface {
	Acquire(ctx context.Context, userID string) (*gate.Grant, error)
}

// shared collaborators for every generation route
type Deps struct {
	Gate Gatekeeper

	// reports whether a capability name is subject to the free tier
	Gated func(name string) bool

	Metrics *monitoring.Metrics

	// upper bound for one upstream call, zero means no bound
	Timeout time.Duration
}

// Handler godoc
// @Summary Generate a response
// @Description Forwards a validated payload to the generation service, gating free tier usage
// @Tags generate
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} any
// @Failure 400 {string} string "validation message"
// @Failure 401 {string} string "Unauthorized"
// @Failure 403 {string} string "Free trial has expired. Please upgrade to pro."
// @Failure 500 {string} string "Internal Error"
func Handler(capability Capability, deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		ctx := c.Request.Context()
		name := capability.Name()

		record := func(outcome string) {
			deps.Metrics.RecordRequest(ctx, name, outcome, time.Since(start))
		}

		fail := func(err error) {
			deps.Metrics.RecordFailure(ctx, name, errors.Category(err), time.Since(start))
			errors.InternalError(c, capability.ErrorTag(), err)
		}

		userID, ok := auth.GetUserID(c)
		if !ok {
			record(monitoring.OutcomeUnauthorized)
			errors.Unauthorized(c)
			return
		}

		invoke, err := capability.Prepare(c)
		if err != nil {
			var validation *ValidationError
			if stderrors.As(err, &validation) {
				record(monitoring.OutcomeInvalid)
				errors.BadRequest(c, validation.Message)
				return
			}

			fail(err)
			return
		}

		if deps.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, deps.Timeout)
			defer cancel()
		}

		var grant *gate.Grant
		if deps.Gated != nil && deps.Gated(name) {
			grant, err = deps.Gate.Acquire(ctx, userID)
			if err != nil {
				if stderrors.Is(err, gate.ErrLimitExceeded) {
					record(monitoring.OutcomeLimited)
					errors.LimitExceeded(c)
					return
				}

				fail(err)
				return
			}
		}

		result, err := invoke(ctx)
		if err != nil {
			if grant != nil {
				if releaseErr := grant.Release(context.WithoutCancel(ctx)); releaseErr != nil {
					logger.FromContext(ctx).Error("failed to release usage slot",
						"error", releaseErr,
						"user_id", userID,
						"capability", name,
					)
				}
			}

			fail(err)
			return
		}

		if grant != nil {
			if err := grant.Commit(context.WithoutCancel(ctx)); err != nil {
				fail(err)
				return
			}

			deps.Metrics.RecordUsage(ctx, name)
		}

		record(monitoring.OutcomeSuccess)
		c.JSON(http.StatusOK, result)
	}
}
