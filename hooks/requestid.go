package hooks

import (
	"github.com/google/uuid"

	"github.com/vitalvas/gustav/dispatch"
)

// DefaultRequestIDHeader is the header used when RequestIDConfig.Header
// is empty.
const DefaultRequestIDHeader = "X-Request-Id"

// RequestIDConfig configures the RequestIDHook behaviour.
type RequestIDConfig struct {
	// Header is the response header carrying the request ID.
	// Defaults to X-Request-Id.
	Header string

	// TrustInbound reuses an inbound header value instead of
	// generating a new ID when the client sent one.
	TrustInbound bool
}

// RequestIDHook returns a subscriber for the RawRequest channel that
// stamps every response with a UUID request identifier.
func RequestIDHook(cfg RequestIDConfig) dispatch.Subscriber {
	header := cfg.Header
	if header == "" {
		header = DefaultRequestIDHeader
	}

	return func(ctx *dispatch.Context) error {
		id := ""
		if cfg.TrustInbound {
			id = ctx.Request.Header().Get(header)
		}
		if id == "" {
			id = uuid.NewString()
		}

		ctx.Response.Header().Set(header, id)
		return nil
	}
}
