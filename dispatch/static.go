package dispatch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrMissingFile is the outcome of resolving a static-file request that
// does not name an existing regular file under the configured root. It
// is a normal outcome, not a failure: the dispatcher answers it with the
// MissingFile channel and a 404.
var ErrMissingFile = errors.New("dispatch: static file not found")

// FileReader reads the full contents of the file at path. The default
// reader loads the whole file into memory; there is no streaming and no
// range support, which keeps static serving deliberately simple.
type FileReader func(path string) ([]byte, error)

// MIMEResolver maps a lowercased file extension without the leading dot
// to a content type. The second return value reports whether the
// extension is known. The mimetype package provides a configurable
// implementation.
type MIMEResolver func(ext string) (string, bool)

// binaryContentType is the fallback when mime resolution is disabled or
// the extension is unknown.
const binaryContentType = "application/octet-stream"

// StaticFileResolver decides whether a request targets a static asset,
// resolves it to a file below the configured root, and writes the file
// bytes with the appropriate headers. The actual channel invocations and
// response close stay with the dispatcher.
type StaticFileResolver struct {
	urlPrefix  string
	root       string
	reader     FileReader
	mime       MIMEResolver
	enableMIME bool
	charset    Charset
}

// newStaticFileResolver validates the static-file configuration and
// builds a resolver. A nil reader defaults to os.ReadFile.
func newStaticFileResolver(cfg Config, mime MIMEResolver, reader FileReader) (*StaticFileResolver, error) {
	if !strings.HasSuffix(cfg.StaticFilesURLPrefix, "/") {
		return nil, ErrStaticPrefixNoSlash
	}
	if cfg.StaticFilesRootPath == "" {
		return nil, ErrStaticRootMissing
	}
	if reader == nil {
		reader = os.ReadFile
	}
	return &StaticFileResolver{
		urlPrefix:  cfg.StaticFilesURLPrefix,
		root:       filepath.Clean(cfg.StaticFilesRootPath),
		reader:     reader,
		mime:       mime,
		enableMIME: cfg.EnableMIMEResolution,
		charset:    cfg.StaticFileCharset,
	}, nil
}

// IsStaticRequest reports whether the exchange targets the static-file
// path: a GET request whose path starts with the configured URL prefix.
func (s *StaticFileResolver) IsStaticRequest(method, path string) bool {
	return method == "GET" && strings.HasPrefix(path, s.urlPrefix)
}

// Resolve strips the URL prefix from requestPath, joins the remainder
// onto the filesystem root, and reads the file. The joined path is
// canonicalized and checked against the root so that ".." segments
// cannot escape it; an escaping path resolves as missing rather than
// reading outside the root.
func (s *StaticFileResolver) Resolve(requestPath string) (string, []byte, error) {
	rel := strings.TrimPrefix(requestPath, s.urlPrefix)
	resolved := filepath.Join(s.root, filepath.FromSlash(rel))

	if resolved != s.root && !strings.HasPrefix(resolved, s.root+string(filepath.Separator)) {
		return "", nil, ErrMissingFile
	}

	info, err := os.Stat(resolved)
	if err != nil || !info.Mode().IsRegular() {
		return "", nil, ErrMissingFile
	}

	data, err := s.reader(resolved)
	if err != nil {
		return "", nil, fmt.Errorf("dispatch: read static file %s: %w", resolved, err)
	}
	return resolved, data, nil
}

// WriteFile sets the Content-Disposition and Content-Type headers for
// the resolved file and writes its bytes to the response body. HTML
// pages are rendered inline as text/html; everything else is served as
// an attachment with a mime-table content type when resolution is
// enabled, falling back to the generic binary type.
func (s *StaticFileResolver) WriteFile(resp Response, resolved string, data []byte) error {
	name := filepath.Base(resolved)
	htmlPage := isHTMLPage(name)

	if htmlPage {
		resp.Header().Set("Content-Disposition", fmt.Sprintf("inline;filename=%q", name))
	} else {
		resp.Header().Set("Content-Disposition", fmt.Sprintf("attachment;filename=%q", name))
	}

	contentType := binaryContentType
	if htmlPage {
		contentType = "text/html"
	} else if s.enableMIME && s.mime != nil {
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
		if ct, ok := s.mime(ext); ok {
			contentType = ct
		}
	}
	if s.charset != CharsetDefault {
		contentType += ";charset=" + s.charset.String()
	}
	resp.Header().Set("Content-Type", contentType)

	if _, err := resp.Write(data); err != nil {
		return fmt.Errorf("dispatch: write static file %s: %w", resolved, err)
	}
	return nil
}

// isHTMLPage reports whether the file is rendered as an HTML page based
// on its extension.
func isHTMLPage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return true
	default:
		return false
	}
}
