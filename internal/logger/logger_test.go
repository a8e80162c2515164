package logger

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug", slog.LevelInfo))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARN", slog.LevelInfo))
	assert.Equal(t, slog.LevelError, parseLevel("error", slog.LevelInfo))
	assert.Equal(t, slog.LevelInfo, parseLevel("", slog.LevelInfo))
	assert.Equal(t, slog.LevelDebug, parseLevel("verbose", slog.LevelDebug))
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	assert.Equal(t, Default(), FromContext(context.Background()))

	//nolint:staticcheck // nil context is handled explicitly
	assert.Equal(t, Default(), FromContext(nil))
}

func TestFromContext_ReturnsAttachedLogger(t *testing.T) {
	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := WithContext(context.Background(), custom)

	assert.Same(t, custom, FromContext(ctx))
}

func TestRequestLogger_AssignsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	original := Default()
	SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer SetDefault(original)

	router := gin.New()
	router.Use(RequestLogger())

	var scoped *slog.Logger
	router.GET("/ping", func(c *gin.Context) {
		scoped = FromContext(c.Request.Context())
		c.String(http.StatusOK, "pong")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.NotNil(t, scoped)
	assert.Contains(t, buf.String(), `"path":"/ping"`)
	assert.Contains(t, buf.String(), w.Header().Get(RequestIDHeader))
}

func TestRequestLogger_KeepsIncomingRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestLogger())
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "req-123", w.Body.String())
}
