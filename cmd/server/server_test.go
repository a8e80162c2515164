package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"codeberg.org/genius/server/internal/auth"
	"codeberg.org/genius/server/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, upstreamURL string) *Server {
	t.Helper()
	t.Setenv("JWT_SECRET", "server-test-secret")

	cfg, err := config.FromEnv(func(key string) string {
		return map[string]string{
			"JWT_SECRET":      "server-test-secret",
			"OPENAI_API_KEY":  "sk-test",
			"OPENAI_BASE_URL": upstreamURL,
			"LEDGER_BACKEND":  "memory",
			"FREE_LIMIT":      "1",
			"RATE_LIMIT":      "100-M",
		}[key]
	})
	require.NoError(t, err)

	srv, err := NewServer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	return srv
}

func serve(srv *Server, method, path, token, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	srv.router.ServeHTTP(w, req)
	return w
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t, "")

	w := serve(srv, http.MethodGet, "/health", "", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"service":"genius"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestServer_BillingRoutesAbsentWithoutStripe(t *testing.T) {
	srv := newTestServer(t, "")

	w := serve(srv, http.MethodPost, "/api/v1/webhook", "", "{}")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_ImageFreeTier(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images/generations", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"created":1,"data":[{"url":"https://images.example.com/cat.png"}]}`))
	}))
	defer upstream.Close()

	srv := newTestServer(t, upstream.URL+"/v1/")

	token, err := auth.GenerateJWT("u1", "")
	require.NoError(t, err)

	w := serve(srv, http.MethodPost, "/api/v1/image", token, `{"prompt":"a cat"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"url":"https://images.example.com/cat.png"}]`, w.Body.String())

	w = serve(srv, http.MethodPost, "/api/v1/image", token, `{"prompt":"a cat"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(srv, http.MethodGet, "/api/v1/usage", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":1,"limit":1,"remaining":0,"is_pro":false}`, w.Body.String())
}

func TestServer_Unauthorized(t *testing.T) {
	srv := newTestServer(t, "")

	w := serve(srv, http.MethodPost, "/api/v1/conversation", "", `{"messages":[{"role":"user","content":"hi"}]}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized", w.Body.String())
}
