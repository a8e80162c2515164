package usage

import (
	"codeberg.org/genius/server/internal/auth"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(rg *gin.RouterGroup, counter Counter, subs SubscriptionChecker, freeLimit int) {
	rg.GET("/usage", auth.AuthMiddleware(), GetUsage(counter, subs, freeLimit))
}
