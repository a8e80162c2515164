package health

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler godoc
// @Summary Health check
// @Description Returns the server health status, degraded when the ledger store is unreachable
// @Tags health
// @Produce json
// @Success 200 {object} Response
// @Failure 503 {object} Response
// @Router /health [get]
func Handler(version string, store Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := Response{
			Status:  "healthy",
			Service: "genius",
			Version: version,
		}

		if store != nil {
			if err := store.Ping(c.Request.Context()); err != nil {
				resp.Status = "degraded"
				c.JSON(http.StatusServiceUnavailable, resp)
				return
			}
		}

		c.JSON(http.StatusOK, resp)
	}
}

// responds with pong for testing
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{Message: "pong"})
}
