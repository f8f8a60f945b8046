package httpd

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExchange(t *testing.T) (*exchange, *httptest.ResponseRecorder) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/some/path?q=1", strings.NewReader("payload"))
	req.RemoteAddr = "192.0.2.7:1234"
	return newExchange(rec, req), rec
}

func TestRequestWrapper(t *testing.T) {
	ex, _ := newTestExchange(t)

	assert.Equal(t, http.MethodGet, ex.req.Method())
	assert.Equal(t, "/some/path", ex.req.Path())
	assert.Equal(t, "192.0.2.7:1234", ex.req.RemoteAddr())

	body, err := io.ReadAll(ex.req.Body())
	require.NoError(t, err)
	assert.Equal(t, "payload", string(body))
}

func TestResponseBuffering(t *testing.T) {
	t.Run("status and headers stay mutable after body writes", func(t *testing.T) {
		ex, rec := newTestExchange(t)
		res := ex.res

		_, err := io.WriteString(res, "hello")
		require.NoError(t, err)

		// Nothing reaches the peer before Close.
		assert.Empty(t, rec.Body.String())

		res.SetStatus(http.StatusTeapot)
		res.Header().Set("X-Late", "yes")
		require.NoError(t, res.Close())

		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.Equal(t, "yes", rec.Header().Get("X-Late"))
		assert.Equal(t, "hello", rec.Body.String())
	})

	t.Run("content-length emitted when chunked is off", func(t *testing.T) {
		ex, rec := newTestExchange(t)
		res := ex.res

		res.SetChunked(false)
		_, _ = io.WriteString(res, "12345")
		require.NoError(t, res.Close())

		assert.Equal(t, "5", rec.Header().Get("Content-Length"))
	})

	t.Run("no content-length when chunked", func(t *testing.T) {
		ex, rec := newTestExchange(t)
		res := ex.res

		res.SetChunked(true)
		_, _ = io.WriteString(res, "12345")
		require.NoError(t, res.Close())

		assert.Empty(t, rec.Header().Get("Content-Length"))
	})
}

func TestResponseClose(t *testing.T) {
	t.Run("close is idempotent", func(t *testing.T) {
		ex, rec := newTestExchange(t)
		res := ex.res

		require.NoError(t, res.Close())
		require.NoError(t, res.Close())
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("writes after close are rejected", func(t *testing.T) {
		ex, _ := newTestExchange(t)
		res := ex.res

		require.NoError(t, res.Close())
		_, err := io.WriteString(res, "late")
		assert.Error(t, err)
	})

	t.Run("status frozen after close", func(t *testing.T) {
		ex, rec := newTestExchange(t)
		res := ex.res

		require.NoError(t, res.Close())
		res.SetStatus(http.StatusTeapot)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, http.StatusOK, res.Status())
	})

	t.Run("close releases the parked goroutine", func(t *testing.T) {
		ex, _ := newTestExchange(t)

		require.NoError(t, ex.res.Close())
		select {
		case <-ex.res.done:
		default:
			t.Fatal("done channel not released by Close")
		}
	})
}

func TestResponseAbort(t *testing.T) {
	t.Run("abort marks and releases", func(t *testing.T) {
		ex, rec := newTestExchange(t)
		res := ex.res

		require.NoError(t, res.Abort())
		assert.True(t, res.isAborted())
		select {
		case <-res.done:
		default:
			t.Fatal("done channel not released by Abort")
		}

		// Nothing was written to the peer.
		assert.Empty(t, rec.Body.String())
	})

	t.Run("abort after close is a no-op", func(t *testing.T) {
		ex, _ := newTestExchange(t)
		res := ex.res

		require.NoError(t, res.Close())
		require.NoError(t, res.Abort())
		assert.False(t, res.isAborted())
	})

	t.Run("close after abort is a no-op", func(t *testing.T) {
		ex, rec := newTestExchange(t)
		res := ex.res

		require.NoError(t, res.Abort())
		require.NoError(t, res.Close())
		assert.Empty(t, rec.Body.String())
	})
}
