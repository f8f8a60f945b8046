package hooks

import (
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/gustav/dispatch"
)

func basicAuthHeader(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

func TestBasicAuthHook(t *testing.T) {
	t.Run("requires an auth source", func(t *testing.T) {
		_, err := BasicAuthHook(BasicAuthConfig{})
		assert.ErrorIs(t, err, ErrNoAuthSource)
	})

	t.Run("accepts valid static credentials", func(t *testing.T) {
		hook, err := BasicAuthHook(BasicAuthConfig{
			Credentials: map[string]string{"alice": "secret"},
		})
		require.NoError(t, err)

		ctx := newFakeContext(http.MethodGet, "/x/")
		ctx.Request.Header().Set("Authorization", basicAuthHeader("alice", "secret"))

		assert.NoError(t, hook(ctx))
		assert.Equal(t, http.StatusOK, ctx.Response.Status())
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		hook, err := BasicAuthHook(BasicAuthConfig{
			Credentials: map[string]string{"alice": "secret"},
		})
		require.NoError(t, err)

		ctx := newFakeContext(http.MethodGet, "/x/")
		ctx.Request.Header().Set("Authorization", basicAuthHeader("alice", "wrong"))

		err = hook(ctx)
		require.ErrorIs(t, err, dispatch.ErrStopRequest)
		assert.Equal(t, http.StatusUnauthorized, ctx.Response.Status())
		assert.Equal(t, `Basic realm="Restricted"`, ctx.Response.Header().Get("WWW-Authenticate"))
	})

	t.Run("rejects unknown user", func(t *testing.T) {
		hook, err := BasicAuthHook(BasicAuthConfig{
			Credentials: map[string]string{"alice": "secret"},
		})
		require.NoError(t, err)

		ctx := newFakeContext(http.MethodGet, "/x/")
		ctx.Request.Header().Set("Authorization", basicAuthHeader("mallory", "secret"))

		assert.ErrorIs(t, hook(ctx), dispatch.ErrStopRequest)
	})

	t.Run("rejects missing header", func(t *testing.T) {
		hook, err := BasicAuthHook(BasicAuthConfig{
			Credentials: map[string]string{"alice": "secret"},
		})
		require.NoError(t, err)

		ctx := newFakeContext(http.MethodGet, "/x/")

		err = hook(ctx)
		require.ErrorIs(t, err, dispatch.ErrStopRequest)
		assert.Equal(t, http.StatusUnauthorized, ctx.Response.Status())
	})

	t.Run("rejects malformed header", func(t *testing.T) {
		hook, err := BasicAuthHook(BasicAuthConfig{
			Credentials: map[string]string{"alice": "secret"},
		})
		require.NoError(t, err)

		ctx := newFakeContext(http.MethodGet, "/x/")
		ctx.Request.Header().Set("Authorization", "Basic not-base64!!!")

		assert.ErrorIs(t, hook(ctx), dispatch.ErrStopRequest)
	})

	t.Run("validate func takes priority", func(t *testing.T) {
		hook, err := BasicAuthHook(BasicAuthConfig{
			ValidateFunc: func(username, password string) bool {
				return username == "bob" && password == "hunter2"
			},
			Credentials: map[string]string{"alice": "secret"},
		})
		require.NoError(t, err)

		ctx := newFakeContext(http.MethodGet, "/x/")
		ctx.Request.Header().Set("Authorization", basicAuthHeader("alice", "secret"))
		assert.ErrorIs(t, hook(ctx), dispatch.ErrStopRequest)

		ctx = newFakeContext(http.MethodGet, "/x/")
		ctx.Request.Header().Set("Authorization", basicAuthHeader("bob", "hunter2"))
		assert.NoError(t, hook(ctx))
	})

	t.Run("custom realm", func(t *testing.T) {
		hook, err := BasicAuthHook(BasicAuthConfig{
			Realm:       "Admin Area",
			Credentials: map[string]string{"alice": "secret"},
		})
		require.NoError(t, err)

		ctx := newFakeContext(http.MethodGet, "/x/")
		require.ErrorIs(t, hook(ctx), dispatch.ErrStopRequest)
		assert.Equal(t, `Basic realm="Admin Area"`, ctx.Response.Header().Get("WWW-Authenticate"))
	})
}

func TestParseBasicAuth(t *testing.T) {
	t.Run("lowercase scheme is tolerated", func(t *testing.T) {
		auth := "basic " + base64.StdEncoding.EncodeToString([]byte("u:p"))
		username, password, ok := parseBasicAuth(auth)
		require.True(t, ok)
		assert.Equal(t, "u", username)
		assert.Equal(t, "p", password)
	})

	t.Run("password may contain colons", func(t *testing.T) {
		auth := "Basic " + base64.StdEncoding.EncodeToString([]byte("u:p:q"))
		_, password, ok := parseBasicAuth(auth)
		require.True(t, ok)
		assert.Equal(t, "p:q", password)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		_, _, ok := parseBasicAuth("Bearer token")
		assert.False(t, ok)
	})

	t.Run("no colon", func(t *testing.T) {
		auth := "Basic " + base64.StdEncoding.EncodeToString([]byte("just-a-user"))
		_, _, ok := parseBasicAuth(auth)
		assert.False(t, ok)
	})
}
