package billing

import (
	"codeberg.org/genius/server/internal/auth"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(rg *gin.RouterGroup, provider Provider, store SubscriptionStore) {
	rg.GET("/stripe", auth.AuthMiddleware(), GetBillingURL(provider, store))

	// authenticated by the Stripe signature instead of a bearer token
	rg.POST("/webhook", Webhook(provider, store))
}
