package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"codeberg.org/genius/server/internal/auth"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out

	err := app.Run(context.Background(), append([]string{"geniusctl"}, args...))
	return out.String(), err
}

func TestToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-test-secret")

	out, err := run(t, "token", "--user", "u1", "--email", "ada@example.com", "--ttl", "1h")
	require.NoError(t, err)

	claims, err := auth.ValidateJWT(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestToken_RequiresUser(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-test-secret")

	_, err := run(t, "token")
	assert.Error(t, err)
}

func TestUsage_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("usage:count:u1", "4"))

	redisURL := "redis://" + mr.Addr()

	out, err := run(t, "--ledger", "redis", "--redis-url", redisURL, "usage", "get", "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1: 4\n", out)

	out, err = run(t, "--ledger", "redis", "--redis-url", redisURL, "usage", "reset", "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1: reset\n", out)

	out, err = run(t, "--ledger", "redis", "--redis-url", redisURL, "usage", "get", "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1: 0\n", out)
}

func TestUsage_RequiresUserID(t *testing.T) {
	_, err := run(t, "--ledger", "redis", "--redis-url", "redis://localhost:1", "usage", "get")
	assert.Error(t, err)
}

func TestUsage_MemoryLedgerUnsupported(t *testing.T) {
	_, err := run(t, "--ledger", "memory", "usage", "get", "u1")
	assert.Error(t, err)
}
