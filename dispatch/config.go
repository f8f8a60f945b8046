package dispatch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrStaticPrefixNoSlash is returned when the static-file URL prefix
// does not end with the path separator.
var ErrStaticPrefixNoSlash = errors.New("dispatch: static files URL prefix must end with /")

// ErrStaticRootMissing is returned when a static-file URL prefix is
// configured without a filesystem root path.
var ErrStaticRootMissing = errors.New("dispatch: static files root path is required when a URL prefix is set")

// Charset selects the charset parameter appended to the Content-Type of
// served static files.
type Charset int

const (
	// CharsetDefault appends no charset parameter.
	CharsetDefault Charset = iota

	// CharsetUTF8 appends ;charset=utf-8.
	CharsetUTF8

	// CharsetUTF32 appends ;charset=utf-32.
	CharsetUTF32

	// CharsetUnicode appends ;charset=utf-16.
	CharsetUnicode
)

// String returns the charset name as it appears in the Content-Type
// parameter, or "default" when none is appended.
func (c Charset) String() string {
	switch c {
	case CharsetUTF8:
		return "utf-8"
	case CharsetUTF32:
		return "utf-32"
	case CharsetUnicode:
		return "utf-16"
	default:
		return "default"
	}
}

// UnmarshalText implements encoding.TextUnmarshaler so the charset can
// be parsed from environment variables and config files. Accepted
// values: default, utf8, utf32, unicode.
func (c *Charset) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "default":
		*c = CharsetDefault
	case "utf8", "utf-8":
		*c = CharsetUTF8
	case "utf32", "utf-32":
		*c = CharsetUTF32
	case "unicode", "utf16", "utf-16":
		*c = CharsetUnicode
	default:
		return fmt.Errorf("dispatch: unknown charset %q", text)
	}
	return nil
}

// Config holds the dispatcher policy flags and the static-file serving
// settings. The zero value is not usable directly; start from
// DefaultConfig or LoadConfig so the boolean defaults documented below
// apply.
type Config struct {
	// UseThreads dispatches every accepted request on its own
	// goroutine so the accept loop never blocks on request
	// completion. There is no pool bound and no backpressure; callers
	// needing admission control add it via the event hooks or cap
	// connections at the transport.
	UseThreads bool `env:"DISPATCH_USE_THREADS" envDefault:"false"`

	// AutoCloseRequests closes the response after the last dispatch
	// step. Static-file serving closes unconditionally regardless of
	// this flag.
	AutoCloseRequests bool `env:"DISPATCH_AUTO_CLOSE_REQUESTS" envDefault:"true"`

	// UseChunkedTransfer selects chunked transfer encoding for
	// response bodies.
	UseChunkedTransfer bool `env:"DISPATCH_USE_CHUNKED_TRANSFER" envDefault:"true"`

	// EnableMIMEResolution consults the mime table for static-file
	// content types. When disabled every non-HTML file is served with
	// the generic binary content type.
	EnableMIMEResolution bool `env:"DISPATCH_ENABLE_MIME_RESOLUTION" envDefault:"true"`

	// StaticFilesURLPrefix routes every GET request whose path starts
	// with this prefix to the static-file resolver, bypassing the
	// route table entirely. Must end with "/". Empty disables static
	// serving.
	StaticFilesURLPrefix string `env:"DISPATCH_STATIC_FILES_URL_PREFIX"`

	// StaticFilesRootPath is the filesystem directory static files are
	// resolved against. Required when StaticFilesURLPrefix is set.
	StaticFilesRootPath string `env:"DISPATCH_STATIC_FILES_ROOT_PATH"`

	// StaticFileCharset is appended to the Content-Type of served
	// files when not CharsetDefault.
	StaticFileCharset Charset `env:"DISPATCH_STATIC_FILE_CHARSET" envDefault:"default"`
}

// DefaultConfig returns the documented defaults: inline dispatch,
// auto-close on, chunked transfer on, mime resolution on, static
// serving disabled.
func DefaultConfig() Config {
	return Config{
		UseThreads:           false,
		AutoCloseRequests:    true,
		UseChunkedTransfer:   true,
		EnableMIMEResolution: true,
		StaticFileCharset:    CharsetDefault,
	}
}

// LoadConfig reads the configuration from environment variables,
// loading a .env file first when one is present.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("dispatch: parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate fails fast on static-file misconfiguration.
func (c Config) validate() error {
	if c.StaticFilesURLPrefix != "" {
		if !strings.HasSuffix(c.StaticFilesURLPrefix, "/") {
			return ErrStaticPrefixNoSlash
		}
		if c.StaticFilesRootPath == "" {
			return ErrStaticRootMissing
		}
	}
	return nil
}
