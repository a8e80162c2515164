package billing

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"

	"codeberg.org/genius/server/genius/subscriptions"
	"codeberg.org/genius/server/internal/auth"
	"codeberg.org/genius/server/internal/errors"
	"codeberg.org/genius/server/internal/logger"
	"github.com/gin-gonic/gin"
)

// max webhook payload, larger bodies get a 413
const maxWebhookBody = 512 * 1024

// the Stripe side of billing
type Provider interface {
	CheckoutURL(ctx context.Context, userID, email string) (string, error)
	PortalURL(ctx context.Context, customerID string) (string, error)
	ParseWebhook(ctx context.Context, payload []byte, signature string) (*subscriptions.Update, error)
}

// the stored side of billing
type SubscriptionStore interface {
	Get(ctx context.Context, userID string) (*subscriptions.Subscription, error)
	Apply(ctx context.Context, update *subscriptions.Update) error
}

// GetBillingURL godoc
// @Summary Get a billing URL
// @Description Returns the customer portal for subscribers and a checkout session for everyone else
// @Tags billing
// @Produce json
// @Success 200 {object} URLResponse
// @Failure 401 {string} string "Unauthorized"
// @Failure 500 {string} string "Internal Error"
// @Router /api/v1/stripe [get]
// @Security BearerAuth
func GetBillingURL(provider Provider, store SubscriptionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c)
			return
		}

		ctx := c.Request.Context()

		sub, err := store.Get(ctx, userID)
		if err != nil && !stderrors.Is(err, subscriptions.ErrNotFound) {
			errors.InternalError(c, "STRIPE_ERROR", err)
			return
		}

		if sub != nil && sub.CustomerID != "" {
			url, err := provider.PortalURL(ctx, sub.CustomerID)
			if err != nil {
				errors.InternalError(c, "STRIPE_ERROR", err)
				return
			}

			c.JSON(http.StatusOK, URLResponse{URL: url})
			return
		}

		url, err := provider.CheckoutURL(ctx, userID, auth.GetUserEmail(c))
		if err != nil {
			errors.InternalError(c, "STRIPE_ERROR", err)
			return
		}

		c.JSON(http.StatusOK, URLResponse{URL: url})
	}
}

// Webhook godoc
// @Summary Stripe webhook
// @Description Verifies a Stripe event and syncs the subscription it describes
// @Tags billing
// @Accept json
// @Success 200
// @Failure 400 {string} string "Webhook Error"
// @Failure 413 {string} string "Webhook Error: payload too large"
// @Failure 500 {string} string "Internal Error"
// @Router /api/v1/webhook [post]
func Webhook(provider Provider, store SubscriptionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if stderrors.As(err, &tooLarge) {
				logger.FromContext(c.Request.Context()).Warn("oversized stripe webhook", "limit", tooLarge.Limit)
				c.String(http.StatusRequestEntityTooLarge, "Webhook Error: payload too large")
				return
			}

			errors.BadRequest(c, "Webhook Error: unreadable body")
			return
		}

		ctx := c.Request.Context()

		update, err := provider.ParseWebhook(ctx, payload, c.GetHeader("Stripe-Signature"))
		if err != nil {
			if stderrors.Is(err, subscriptions.ErrInvalidWebhook) {
				logger.FromContext(ctx).Warn("rejected stripe webhook", "error", err)
				errors.BadRequest(c, "Webhook Error: "+err.Error())
				return
			}

			errors.InternalError(c, "WEBHOOK_ERROR", err)
			return
		}

		if update == nil {
			c.Status(http.StatusOK)
			return
		}

		if err := store.Apply(ctx, update); err != nil {
			// the first invoice can arrive before checkout completes, which
			// stores the same period end
			if stderrors.Is(err, subscriptions.ErrUnknownRenewal) {
				logger.FromContext(ctx).Warn("renewal for unknown subscription",
					"subscription_id", update.SubscriptionID,
				)
				c.Status(http.StatusOK)
				return
			}

			errors.InternalError(c, "WEBHOOK_ERROR", err)
			return
		}

		logger.FromContext(ctx).Info("subscription synced",
			"kind", update.Kind,
			"subscription_id", update.SubscriptionID,
			"user_id", update.UserID,
		)

		c.Status(http.StatusOK)
	}
}
