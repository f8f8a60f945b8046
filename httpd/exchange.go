package httpd

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"sync"
)

// exchange pairs the wrapped request and response of one inbound HTTP
// request while it travels from ServeHTTP to the dispatcher and back.
type exchange struct {
	req *request
	res *response
}

func newExchange(w http.ResponseWriter, r *http.Request) *exchange {
	return &exchange{
		req: &request{r: r},
		res: &response{
			w:      w,
			status: http.StatusOK,
			done:   make(chan struct{}),
		},
	}
}

// request implements dispatch.Request over *http.Request.
type request struct {
	r *http.Request
}

func (r *request) Method() string      { return r.r.Method }
func (r *request) Path() string        { return r.r.URL.Path }
func (r *request) RemoteAddr() string  { return r.r.RemoteAddr }
func (r *request) Header() http.Header { return r.r.Header }
func (r *request) Body() io.Reader     { return r.r.Body }

// response implements dispatch.Response. Body writes are buffered until
// Close so the status code and headers stay mutable for the whole
// dispatch; when chunked transfer is disabled a Content-Length header
// is emitted instead.
type response struct {
	w http.ResponseWriter

	mu      sync.Mutex
	status  int
	chunked bool
	buf     bytes.Buffer
	closed  bool
	aborted bool

	// done releases the parked ServeHTTP goroutine once the exchange
	// is closed or aborted.
	done chan struct{}
}

func (r *response) Status() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *response) SetStatus(code int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.closed && !r.aborted {
		r.status = code
	}
}

func (r *response) Header() http.Header {
	return r.w.Header()
}

func (r *response) SetChunked(chunked bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chunked = chunked
}

func (r *response) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.aborted {
		return 0, http.ErrBodyNotAllowed
	}
	return r.buf.Write(p)
}

// Close flushes the status, headers, and buffered body to the peer and
// releases the connection. Closing again is a no-op.
func (r *response) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.aborted {
		return nil
	}
	r.closed = true

	if !r.chunked {
		r.w.Header().Set("Content-Length", strconv.Itoa(r.buf.Len()))
	}
	r.w.WriteHeader(r.status)
	_, err := r.w.Write(r.buf.Bytes())

	close(r.done)
	return err
}

// Abort marks the exchange as forcibly terminated and releases the
// parked ServeHTTP goroutine, which tears the connection down without
// writing a response. Aborting after Close is a no-op.
func (r *response) Abort() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.aborted {
		return nil
	}
	r.aborted = true

	close(r.done)
	return nil
}

func (r *response) isAborted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.aborted
}
