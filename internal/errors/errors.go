package errors

import (
	"net/http"

	"codeberg.org/genius/server/internal/logger"
	"github.com/gin-gonic/gin"
)

// Error Handling Guidelines:
//
// For HTTP REST handlers:
//   - Use errors.InternalError(), errors.BadRequest(), etc. for critical errors
//     These functions handle both logging and HTTP response automatically
//   - Use logger.ErrorErr() only for non-critical errors where processing continues
//   - Never call both logger.ErrorErr() and errors.InternalError() for the same error
//
// For services/repositories/internal packages:
//   - Return wrapped errors with context using fmt.Errorf("context: %w", err)
//   - Let the caller (handler) decide how to log and respond
//   - Do not log errors in non-handler code (avoid double logging)
//
// Response bodies are plain text and never carry error codes or details.

// fixed response bodies
const (
	MessageUnauthorized    = "Unauthorized"
	MessageLimitExceeded   = "Free trial has expired. Please upgrade to pro."
	MessageInternalError   = "Internal Error"
	MessageTooManyRequests = "Too Many Requests"
	MessageInvalidBody     = "Invalid request body"
)

// returns a 401 for requests without an identity
func Unauthorized(c *gin.Context) {
	c.String(http.StatusUnauthorized, MessageUnauthorized)
}

// returns a 400 with the given message
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = MessageInvalidBody
	}

	c.String(http.StatusBadRequest, message)
}

// returns a 403 when the free tier is exhausted
func LimitExceeded(c *gin.Context) {
	c.String(http.StatusForbidden, MessageLimitExceeded)
}

// returns a 429 when the client is rate limited
func TooManyRequests(c *gin.Context) {
	c.String(http.StatusTooManyRequests, MessageTooManyRequests)
}

// logs the failure under tag and returns a generic 500
func InternalError(c *gin.Context, tag string, err error) {
	// log full error server-side with context
	logger.FromContext(c.Request.Context()).Error("["+tag+"]",
		"error", err,
		"category", Category(err),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"user_id", c.GetString("user_id"),
	)

	c.String(http.StatusInternalServerError, MessageInternalError)
}
