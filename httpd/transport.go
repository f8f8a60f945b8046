package httpd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/netutil"

	"github.com/vitalvas/gustav/dispatch"
)

// ErrTransportRunning is returned by Start when the transport is
// already listening.
var ErrTransportRunning = errors.New("httpd: transport already running")

// ErrNoAddresses is returned by Start when no listen address is given.
var ErrNoAddresses = errors.New("httpd: at least one listen address is required")

// Transport implements dispatch.Transport over net/http.
type Transport struct {
	logger          *slog.Logger
	readTimeout     time.Duration
	idleTimeout     time.Duration
	shutdownTimeout time.Duration
	maxHeaderBytes  int
	maxConcurrent   int

	accepts chan *exchange
	stop    chan struct{}

	mu        sync.Mutex
	running   bool
	stopped   bool
	servers   []*http.Server
	listeners []net.Listener
}

// Option configures a Transport.
type Option func(*Transport)

// WithLogger sets the structured logger. The default discards all
// output.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithReadTimeout sets the maximum duration for reading an entire
// request, including the body.
func WithReadTimeout(d time.Duration) Option {
	return func(t *Transport) {
		if d > 0 {
			t.readTimeout = d
		}
	}
}

// WithIdleTimeout sets how long keep-alive connections may stay idle.
func WithIdleTimeout(d time.Duration) Option {
	return func(t *Transport) {
		if d > 0 {
			t.idleTimeout = d
		}
	}
}

// WithShutdownTimeout bounds the graceful drain performed by Stop.
func WithShutdownTimeout(d time.Duration) Option {
	return func(t *Transport) {
		if d > 0 {
			t.shutdownTimeout = d
		}
	}
}

// WithMaxHeaderBytes limits the size of request headers.
func WithMaxHeaderBytes(n int) Option {
	return func(t *Transport) {
		if n > 0 {
			t.maxHeaderBytes = n
		}
	}
}

// WithMaxConcurrent caps simultaneously accepted connections per
// listener using netutil.LimitListener. Zero (the default) leaves
// acceptance unbounded.
func WithMaxConcurrent(n int) Option {
	return func(t *Transport) {
		if n > 0 {
			t.maxConcurrent = n
		}
	}
}

// New creates a Transport with the given options.
func New(opts ...Option) *Transport {
	t := &Transport{
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		readTimeout:     DefaultReadTimeout,
		idleTimeout:     DefaultIdleTimeout,
		shutdownTimeout: DefaultShutdownTimeout,
		maxHeaderBytes:  DefaultMaxHeaderBytes,
		accepts:         make(chan *exchange),
		stop:            make(chan struct{}),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Start listens on every given address and begins serving. It returns
// once all listeners are accepting; serve errors after that point are
// logged, not returned.
func (t *Transport) Start(addrs []string) error {
	if len(addrs) == 0 {
		return ErrNoAddresses
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return ErrTransportRunning
	}

	for _, addr := range addrs {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			t.closeListenersLocked()
			return err
		}
		if t.maxConcurrent > 0 {
			ln = netutil.LimitListener(ln, t.maxConcurrent)
		}
		t.listeners = append(t.listeners, ln)

		srv := &http.Server{
			Handler:        http.HandlerFunc(t.serveHTTP),
			ReadTimeout:    t.readTimeout,
			IdleTimeout:    t.idleTimeout,
			MaxHeaderBytes: t.maxHeaderBytes,
		}
		t.servers = append(t.servers, srv)

		t.logger.Info("listening", "addr", ln.Addr().String())
		go func(srv *http.Server, ln net.Listener) {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				t.logger.Error("serve failed", "addr", ln.Addr().String(), "error", err)
			}
		}(srv, ln)
	}

	t.running = true
	return nil
}

// Stop unblocks pending AcceptNext calls, refuses queued handoffs with
// 503, and drains the listeners gracefully within the shutdown
// timeout. Stopping an already stopped transport is a no-op.
func (t *Transport) Stop() error {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return nil
	}
	t.stopped = true
	close(t.stop)
	servers := t.servers
	t.servers = nil
	t.listeners = nil
	t.running = false
	t.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), t.shutdownTimeout)
	defer cancel()

	var errs []error
	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Addrs returns the bound listener addresses. Useful when listening on
// ":0" ports.
func (t *Transport) Addrs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	addrs := make([]string, 0, len(t.listeners))
	for _, ln := range t.listeners {
		addrs = append(addrs, ln.Addr().String())
	}
	return addrs
}

// AcceptNext blocks until the next inbound exchange or shutdown.
func (t *Transport) AcceptNext() (dispatch.Request, dispatch.Response, error) {
	select {
	case ex := <-t.accepts:
		return ex.req, ex.res, nil
	case <-t.stop:
		return nil, nil, dispatch.ErrTransportClosed
	}
}

// serveHTTP hands the exchange to AcceptNext and parks until the
// dispatcher closes or aborts it. The handoff channel is unbuffered so
// an exchange is only ever owned by an active AcceptNext caller; during
// shutdown pending handoffs answer 503 instead of leaking.
func (t *Transport) serveHTTP(w http.ResponseWriter, r *http.Request) {
	ex := newExchange(w, r)

	select {
	case t.accepts <- ex:
	case <-t.stop:
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}

	<-ex.res.done

	if ex.res.isAborted() {
		if hj, ok := w.(http.Hijacker); ok {
			if conn, _, err := hj.Hijack(); err == nil {
				conn.Close()
				return
			}
		}
		// No hijack support; let net/http tear the connection down.
		panic(http.ErrAbortHandler)
	}
}

// closeListenersLocked closes listeners opened by a partially failed
// Start. Callers must hold t.mu.
func (t *Transport) closeListenersLocked() {
	for _, ln := range t.listeners {
		ln.Close()
	}
	t.listeners = nil
	t.servers = nil
}
