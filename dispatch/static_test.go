package dispatch

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResolver(t *testing.T, root string, mutate func(*Config)) *StaticFileResolver {
	t.Helper()
	cfg := DefaultConfig()
	cfg.StaticFilesURLPrefix = "/static/"
	cfg.StaticFilesRootPath = root
	if mutate != nil {
		mutate(&cfg)
	}
	r, err := newStaticFileResolver(cfg, func(ext string) (string, bool) {
		if ext == "txt" {
			return "text/plain", true
		}
		return "", false
	}, nil)
	require.NoError(t, err)
	return r
}

func TestStaticFileResolverIsStaticRequest(t *testing.T) {
	r := testResolver(t, t.TempDir(), nil)

	assert.True(t, r.IsStaticRequest(http.MethodGet, "/static/a.txt"))
	assert.False(t, r.IsStaticRequest(http.MethodPost, "/static/a.txt"))
	assert.False(t, r.IsStaticRequest(http.MethodGet, "/assets/a.txt"))
}

func TestStaticFileResolverResolve(t *testing.T) {
	t.Run("resolves below the root", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "a.txt"), []byte("data"), 0o644))

		r := testResolver(t, root, nil)
		resolved, data, err := r.Resolve("/static/sub/a.txt")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "sub", "a.txt"), resolved)
		assert.Equal(t, []byte("data"), data)
	})

	t.Run("missing file", func(t *testing.T) {
		r := testResolver(t, t.TempDir(), nil)
		_, _, err := r.Resolve("/static/absent.txt")
		assert.ErrorIs(t, err, ErrMissingFile)
	})

	t.Run("directory counts as missing", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "dir"), 0o755))

		r := testResolver(t, root, nil)
		_, _, err := r.Resolve("/static/dir")
		assert.ErrorIs(t, err, ErrMissingFile)
	})

	t.Run("escape attempt resolves as missing", func(t *testing.T) {
		root := t.TempDir()
		outside := filepath.Join(filepath.Dir(root), "passwd")
		require.NoError(t, os.WriteFile(outside, []byte("root:x"), 0o644))

		r := testResolver(t, root, nil)
		_, _, err := r.Resolve("/static/../passwd")
		assert.ErrorIs(t, err, ErrMissingFile)

		_, _, err = r.Resolve("/static/../../etc/passwd")
		assert.ErrorIs(t, err, ErrMissingFile)
	})

	t.Run("pluggable reader errors propagate", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("data"), 0o644))

		cfg := DefaultConfig()
		cfg.StaticFilesURLPrefix = "/static/"
		cfg.StaticFilesRootPath = root
		boom := errors.New("disk gone")
		r, err := newStaticFileResolver(cfg, nil, func(_ string) ([]byte, error) {
			return nil, boom
		})
		require.NoError(t, err)

		_, _, err = r.Resolve("/static/a.txt")
		require.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrMissingFile)
	})
}

func TestStaticFileResolverWriteFile(t *testing.T) {
	t.Run("html page served inline as text/html", func(t *testing.T) {
		r := testResolver(t, t.TempDir(), nil)
		res := newFakeResponse()

		require.NoError(t, r.WriteFile(res, "/root/index.html", []byte("<html></html>")))
		assert.Equal(t, `inline;filename="index.html"`, res.Header().Get("Content-Disposition"))
		assert.Equal(t, "text/html", res.Header().Get("Content-Type"))
		assert.Equal(t, "<html></html>", res.body())
	})

	t.Run("known extension uses the mime table", func(t *testing.T) {
		r := testResolver(t, t.TempDir(), nil)
		res := newFakeResponse()

		require.NoError(t, r.WriteFile(res, "/root/notes.txt", []byte("n")))
		assert.Equal(t, `attachment;filename="notes.txt"`, res.Header().Get("Content-Disposition"))
		assert.Equal(t, "text/plain", res.Header().Get("Content-Type"))
	})

	t.Run("unknown extension falls back to binary", func(t *testing.T) {
		r := testResolver(t, t.TempDir(), nil)
		res := newFakeResponse()

		require.NoError(t, r.WriteFile(res, "/root/blob.xyz", []byte{1}))
		assert.Equal(t, "application/octet-stream", res.Header().Get("Content-Type"))
	})

	t.Run("mime resolution disabled", func(t *testing.T) {
		r := testResolver(t, t.TempDir(), func(cfg *Config) {
			cfg.EnableMIMEResolution = false
		})
		res := newFakeResponse()

		require.NoError(t, r.WriteFile(res, "/root/notes.txt", []byte("n")))
		assert.Equal(t, "application/octet-stream", res.Header().Get("Content-Type"))
	})

	t.Run("charset is appended when configured", func(t *testing.T) {
		r := testResolver(t, t.TempDir(), func(cfg *Config) {
			cfg.StaticFileCharset = CharsetUTF8
		})
		res := newFakeResponse()

		require.NoError(t, r.WriteFile(res, "/root/notes.txt", []byte("n")))
		assert.Equal(t, "text/plain;charset=utf-8", res.Header().Get("Content-Type"))

		res = newFakeResponse()
		require.NoError(t, r.WriteFile(res, "/root/page.html", []byte("<p>")))
		assert.Equal(t, "text/html;charset=utf-8", res.Header().Get("Content-Type"))
	})
}
