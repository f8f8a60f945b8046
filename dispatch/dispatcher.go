package dispatch

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/vitalvas/gustav/mimetype"
)

// ErrDispatcherRunning is returned by Start when the dispatcher is
// already serving.
var ErrDispatcherRunning = errors.New("dispatch: dispatcher already running")

// Handler is a caller-supplied function invoked when a route matches.
// A returned error is routed to the request-level exception boundary,
// as is a panic.
type Handler func(ctx *Context) error

type routeEntry struct {
	pattern RoutePattern
	handler Handler
}

// Dispatcher owns the ordered route table and the named event channels,
// runs the accept loop against its transport, and executes the dispatch
// algorithm for every inbound exchange.
//
// Routes and event subscribers are expected to be fully configured
// before Start and treated as read-only afterward; the dispatcher adds
// no locking around them. When threaded dispatch is enabled, handlers
// and subscribers touching shared state must be safe to run
// concurrently.
type Dispatcher struct {
	// Events are the lifecycle hook points. Subscribe before Start.
	Events Events

	cfg       Config
	routes    []routeEntry
	static    *StaticFileResolver
	transport Transport
	logger    *slog.Logger

	mimeResolver MIMEResolver
	fileReader   FileReader

	mu      sync.Mutex
	running bool
	wg      sync.WaitGroup
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the structured logger. The default discards all
// output.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithMIMEResolver replaces the content-type lookup used for static
// files. The default is the mimetype package's built-in table.
func WithMIMEResolver(fn MIMEResolver) Option {
	return func(d *Dispatcher) {
		if fn != nil {
			d.mimeResolver = fn
		}
	}
}

// WithFileReader replaces the static-file byte reader. The default
// reads the whole file into memory with os.ReadFile.
func WithFileReader(fn FileReader) Option {
	return func(d *Dispatcher) {
		if fn != nil {
			d.fileReader = fn
		}
	}
}

// New builds a dispatcher over the given transport. Static-file
// misconfiguration (a URL prefix without trailing slash or without a
// root path) is reported immediately.
func New(cfg Config, transport Transport, opts ...Option) (*Dispatcher, error) {
	d := &Dispatcher{
		cfg:          cfg,
		transport:    transport,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		mimeResolver: mimetype.Default().Lookup,
	}

	for _, opt := range opts {
		opt(d)
	}

	if cfg.StaticFilesURLPrefix != "" {
		resolver, err := newStaticFileResolver(cfg, d.mimeResolver, d.fileReader)
		if err != nil {
			return nil, err
		}
		d.static = resolver
	}

	return d, nil
}

// Handle appends a (pattern, handler) pair to the route table. Route
// order is significant: every matching entry's handler runs, in
// registration order.
func (d *Dispatcher) Handle(pattern RoutePattern, handler Handler) {
	d.routes = append(d.routes, routeEntry{pattern: pattern, handler: handler})
}

// HandleExact registers a handler for requests whose path equals path.
func (d *Dispatcher) HandleExact(path string, handler Handler) {
	d.Handle(RoutePattern{pattern: path, mode: MatchExact}, handler)
}

// HandlePrefix registers a handler for requests whose path starts with
// prefix.
func (d *Dispatcher) HandlePrefix(prefix string, handler Handler) {
	d.Handle(RoutePattern{pattern: prefix, mode: MatchPrefix}, handler)
}

// HandleSuffix registers a handler for requests whose path ends with
// suffix.
func (d *Dispatcher) HandleSuffix(suffix string, handler Handler) {
	d.Handle(RoutePattern{pattern: suffix, mode: MatchSuffix}, handler)
}

// HandleRegexp registers a handler for requests whose path contains a
// match of expr. The expression is compiled immediately; an invalid
// expression is reported here and nothing is registered.
func (d *Dispatcher) HandleRegexp(expr string, handler Handler) error {
	p, err := NewRoutePattern(expr, MatchRegexp)
	if err != nil {
		return err
	}
	d.Handle(p, handler)
	return nil
}

// Routes returns the number of registered routes.
func (d *Dispatcher) Routes() int {
	return len(d.routes)
}

// Start brings the transport up on the given addresses and runs the
// accept loop until Stop. It blocks; when threaded dispatch is enabled
// it additionally waits for in-flight requests to finish after the
// accept loop ends.
func (d *Dispatcher) Start(addrs ...string) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return ErrDispatcherRunning
	}
	d.running = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.running = false
		d.mu.Unlock()
	}()

	if err := d.transport.Start(addrs); err != nil {
		return fmt.Errorf("dispatch: start transport: %w", err)
	}

	d.logger.Info("dispatcher started", "addrs", addrs, "routes", len(d.routes), "threaded", d.cfg.UseThreads)
	d.acceptLoop()
	d.wg.Wait()
	d.logger.Info("dispatcher stopped")
	return nil
}

// Stop shuts the transport down, which unblocks the accept loop and
// makes Start return once in-flight requests complete.
func (d *Dispatcher) Stop() error {
	return d.transport.Stop()
}

// acceptLoop blocks on the transport for the next exchange, gates it
// through the RawRequest channel, and hands it to the per-request
// algorithm either inline or on its own goroutine. The loop never
// blocks on request completion when threading is enabled.
func (d *Dispatcher) acceptLoop() {
	for {
		req, resp, err := d.transport.AcceptNext()
		if err != nil {
			if errors.Is(err, ErrTransportClosed) {
				return
			}
			// Acceptance failed before a context exists.
			d.handleException(nil, err)
			continue
		}

		ctx := &Context{Request: req, Response: resp}
		resp.SetStatus(http.StatusOK)
		resp.SetChunked(d.cfg.UseChunkedTransfer)

		sig, err := d.runChannel(&d.Events.RawRequest, ctx)
		if err != nil {
			d.handleException(ctx, err)
			continue
		}
		if sig != Continue {
			d.finalize(ctx)
			continue
		}

		if d.cfg.UseThreads {
			d.wg.Add(1)
			go func() {
				defer d.wg.Done()
				d.serve(ctx)
			}()
		} else {
			d.serve(ctx)
		}
	}
}

// serve runs the per-request algorithm to completion on the current
// worker, recovering panics and routing them, along with returned
// errors, to the exception boundary.
func (d *Dispatcher) serve(ctx *Context) {
	defer func() {
		if r := recover(); r != nil {
			d.handleException(ctx, panicError(r))
		}
	}()

	if err := d.process(ctx); err != nil {
		d.handleException(ctx, err)
		return
	}
	d.finalize(ctx)
}

// process is the per-request algorithm. Exactly one of the static-file
// path, the route-table path, or the undefined-URL path is taken. A
// returned error belongs to the exception boundary; a nil return means
// the request ran its course (possibly cut short by a subscriber
// signal) and the close policy applies.
func (d *Dispatcher) process(ctx *Context) error {
	method := ctx.Request.Method()
	path := ctx.Request.Path()

	if d.static != nil && d.static.IsStaticRequest(method, path) {
		return d.serveStatic(ctx)
	}

	if sig, err := d.runChannel(&d.Events.PreMatch, ctx); err != nil || sig != Continue {
		return err
	}

	// Linear scan; every matching entry runs, not just the first. A
	// later entry's handler observes whatever an earlier one already
	// wrote to the response.
	matched := false
	for _, rt := range d.routes {
		if !rt.pattern.Matches(path, method) {
			continue
		}
		if sig, err := d.runChannel(&d.Events.PreHandler, ctx); err != nil || sig != Continue {
			return err
		}
		if err := rt.handler(ctx); err != nil {
			return err
		}
		matched = true
	}
	ctx.matched = matched

	if !matched {
		ctx.Response.SetStatus(http.StatusNotFound)
		if sig, err := d.runChannel(&d.Events.UndefinedURL, ctx); err != nil || sig != Continue {
			return err
		}
	} else {
		if sig, err := d.runChannel(&d.Events.PostHandler, ctx); err != nil || sig != Continue {
			return err
		}
	}

	if sig, err := d.runChannel(&d.Events.PostRequest, ctx); err != nil || sig != Continue {
		return err
	}
	return nil
}

// serveStatic resolves and serves a static-file request. This path
// never touches the route table or the PreMatch/PreHandler/PostHandler
// channels, and it closes the response unconditionally regardless of
// the auto-close policy.
func (d *Dispatcher) serveStatic(ctx *Context) error {
	resolved, data, err := d.static.Resolve(ctx.Request.Path())
	if errors.Is(err, ErrMissingFile) {
		sig, cerr := d.runChannel(&d.Events.MissingFile, ctx)
		if cerr != nil {
			return cerr
		}
		switch sig {
		case Abort:
			return nil
		case Continue:
			ctx.Response.SetStatus(http.StatusNotFound)
		}
		d.closeResponse(ctx)
		return nil
	}
	if err != nil {
		return err
	}

	if err := d.static.WriteFile(ctx.Response, resolved, data); err != nil {
		return err
	}
	sig, cerr := d.runChannel(&d.Events.ServingFile, ctx)
	if cerr != nil {
		return cerr
	}
	if sig == Abort {
		return nil
	}
	d.closeResponse(ctx)
	return nil
}

// runChannel invokes a channel and applies the Abort signal to the
// exchange: the response is forcibly aborted before control returns to
// the algorithm.
func (d *Dispatcher) runChannel(ch *EventChannel, ctx *Context) (Signal, error) {
	sig, err := ch.invoke(ctx)
	if err != nil {
		return Continue, err
	}
	if sig == Abort && ctx != nil && !ctx.aborted {
		ctx.aborted = true
		if aerr := ctx.Response.Abort(); aerr != nil {
			d.logger.Warn("abort failed", "error", aerr)
		}
	}
	return sig, nil
}

// handleException is the request-level exception boundary: best-effort
// 500, Exception channel with the error exposed on the context, then
// the usual close policy. Errors during acceptance arrive with a nil
// context and only reach the channel and the log.
func (d *Dispatcher) handleException(ctx *Context, err error) {
	if ctx == nil {
		d.logger.Error("accept failed", "error", err)
		if _, cerr := d.Events.Exception.invoke(nil); cerr != nil {
			d.logger.Error("exception subscriber failed", "error", cerr)
		}
		return
	}

	d.logger.Error("request failed",
		"error", err,
		"method", ctx.Request.Method(),
		"path", ctx.Request.Path(),
		"remote", ctx.Request.RemoteAddr(),
	)

	ctx.Response.SetStatus(http.StatusInternalServerError)

	ctx.lastErr = err
	sig, cerr := d.Events.Exception.invoke(ctx)
	ctx.lastErr = nil
	if cerr != nil {
		d.logger.Error("exception subscriber failed", "error", cerr)
	}
	if sig == Abort && !ctx.aborted {
		ctx.aborted = true
		if aerr := ctx.Response.Abort(); aerr != nil {
			d.logger.Warn("abort failed", "error", aerr)
		}
	}

	d.finalize(ctx)
}

// finalize applies the auto-close policy at the end of a request,
// suppressing errors from an already-closed or broken connection.
// Aborted exchanges are left alone.
func (d *Dispatcher) finalize(ctx *Context) {
	if ctx.aborted {
		return
	}
	if d.cfg.AutoCloseRequests {
		d.closeResponse(ctx)
	}
}

// closeResponse closes the response, suppressing close errors.
func (d *Dispatcher) closeResponse(ctx *Context) {
	if err := ctx.Response.Close(); err != nil {
		d.logger.Debug("close failed", "error", err)
	}
}

// panicError converts a recovered value into an error for the
// exception boundary.
func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("dispatch: handler panic: %w", err)
	}
	return fmt.Errorf("dispatch: handler panic: %v", r)
}
