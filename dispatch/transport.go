package dispatch

import (
	"errors"
	"io"
	"net/http"
)

// ErrTransportClosed is returned by Transport.AcceptNext once the
// transport has been stopped; the dispatcher treats it as a normal
// shutdown of the accept loop.
var ErrTransportClosed = errors.New("dispatch: transport closed")

// Transport is the collaborator that owns the sockets and the HTTP wire
// protocol. The dispatcher only pulls fully parsed exchanges from it.
// The httpd package provides an implementation backed by net/http.
type Transport interface {
	// Start begins listening on the given addresses. It must return
	// once the listeners are accepting.
	Start(addrs []string) error

	// Stop shuts the listeners down and unblocks pending AcceptNext
	// calls with ErrTransportClosed.
	Stop() error

	// AcceptNext blocks until the next inbound exchange arrives and
	// returns its request/response pair. It returns ErrTransportClosed
	// after Stop, or another error when acceptance itself failed.
	AcceptNext() (Request, Response, error)
}

// Request is the read side of one inbound exchange.
type Request interface {
	// Method returns the HTTP method token.
	Method() string

	// Path returns the raw URL path of the request.
	Path() string

	// RemoteAddr returns the peer address.
	RemoteAddr() string

	// Header returns the request headers.
	Header() http.Header

	// Body returns the request body stream.
	Body() io.Reader
}

// Response is the write side of one inbound exchange. Implementations
// must buffer body writes until Close so that headers and the status
// code stay mutable while handlers run; a later matching handler may
// still set headers after an earlier one wrote a body.
type Response interface {
	io.Writer

	// Status returns the current status code.
	Status() int

	// SetStatus replaces the status code. It has no effect after
	// Close.
	SetStatus(code int)

	// Header returns the mutable, multi-valued response header map.
	Header() http.Header

	// SetChunked selects chunked transfer encoding for the response
	// body. When disabled the transport emits a Content-Length header
	// instead.
	SetChunked(chunked bool)

	// Close writes the status, headers, and buffered body to the peer
	// and finalizes the exchange. Closing an already closed response
	// is a no-op returning nil.
	Close() error

	// Abort forcibly terminates the underlying connection without
	// sending a well-formed response.
	Abort() error
}
